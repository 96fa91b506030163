package codec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_MapKeysSorted(t *testing.T) {
	// map 的遍历顺序是随机的，canonical 模式必须抹平这一点
	a := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(a)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Marshal(map[string]int{"mid": 3, "alpha": 2, "zeta": 1})
		require.NoError(t, err)
		assert.Equal(t, first, again, "canonical 编码必须与插入顺序无关")
	}
}

func TestMarshalHex_RoundTrip(t *testing.T) {
	type item struct {
		Name  string   `cbor:"n"`
		Items []string `cbor:"i"`
	}
	in := item{Name: "cfg", Items: []string{"a", "b"}}

	text, err := MarshalHex(in)
	require.NoError(t, err)

	raw, err := hex.DecodeString(text)
	require.NoError(t, err)

	var out item
	require.NoError(t, Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshal_RejectsDuplicateKeys(t *testing.T) {
	// {"a": 1, "a": 2}
	raw, _ := hex.DecodeString("a2616101616102")
	var out map[string]int
	assert.Error(t, Unmarshal(raw, &out))
}

func TestUnmarshalHex(t *testing.T) {
	text, err := MarshalHex([]string{"a", "b"})
	require.NoError(t, err)

	var out []string
	require.NoError(t, UnmarshalHex(text, &out))
	assert.Equal(t, []string{"a", "b"}, out)

	assert.Error(t, UnmarshalHex("not hex", &out))
}
