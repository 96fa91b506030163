package mangle

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 1. Sanitize
// -----------------------------------------------------------------------------

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ident", "foo_bar1", "foo_bar1"},
		{"managed box", "@int", "_sbox_int"},
		{"unique box", "~str", "_ubox_str"},
		{"raw pointer", "*u8", "_ptr_u8"},
		{"reference", "&T", "_ref_T"},
		{"generic args", "Vec<int,uint>", "Vecint_uint"},
		{"record", "{x:int}", "_of_xint"},
		{"tuple", "(a,b)", "_of_a_b"},
		{"leading digit", "0.1", "_01"},
		{"dropped chars", "a-b.c/d", "abcd"},
		{"empty", "", ""},
		{"only dropped", "...", ""},
		{"unicode letters kept", "naïve", "naïve"},
		{"unicode leading letter", "λx", "λx"},
		{"combining mark leading", "\u0301a", "_\u0301a"},
		{"ascii above z dropped", "a|b}c", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "_", "0", "@", "~@*&,{(", "9lives", "a b c", "日本語", "\u0301", "x·y", "‿tie",
		"fn(&mut Vec<~[int]>) -> @str", "__", "_ZN3fooE",
	}
	r := rand.New(rand.NewSource(42))
	alphabet := []rune("ab_09@~*&,{(}).-<>:λ日\u0301· ")
	for i := 0; i < 500; i++ {
		n := r.Intn(12)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[r.Intn(len(alphabet))])
		}
		inputs = append(inputs, b.String())
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "Sanitize 必须幂等 (input %q)", in)
		if once != "" {
			first := []rune(once)[0]
			assert.True(t, first == '_' || isIdentStart(first), "非法首字符 %q", once)
		}
	}
}

// -----------------------------------------------------------------------------
// 2. Mangle / Demangle
// -----------------------------------------------------------------------------

func TestMangle_Basic(t *testing.T) {
	assert.Equal(t, "_ZNE", Mangle(nil))
	assert.Equal(t, "_ZN3mod4itemE", Mangle([]string{"mod", "item"}))
	// 长度是 UTF-8 字节数
	assert.Equal(t, "_ZN2λE", Mangle([]string{"λ"}))
}

func TestExportedName_Deterministic(t *testing.T) {
	path := []string{"mod", "item"}
	got := ExportedName(path, "_abc", "0.1")

	assert.Equal(t, "_ZN3mod4item4_abc3_01E", got)
	for i := 0; i < 10; i++ {
		assert.Equal(t, got, ExportedName([]string{"mod", "item"}, "_abc", "0.1"), "重复运行必须字节一致")
	}
	// 不修改调用方的 path
	assert.Equal(t, []string{"mod", "item"}, path)
}

func TestInternalNames(t *testing.T) {
	assert.Equal(t, "_ZN4glue7Vec_int4_abcE", InternalNameByType("glue", "Vec,int", "_abc"))
	assert.Equal(t, "_ZN1a1bE", InternalNameByPath([]string{"a", "b"}))
}

func TestMangle_Injective(t *testing.T) {
	// 同样拼接成 "abc" 的不同切分必须得到不同编码
	cases := [][]string{
		{"abc"},
		{"a", "bc"},
		{"ab", "c"},
		{"a", "b", "c"},
		{"", "abc"},
		{"abc", ""},
		{"", ""},
		{""},
		{},
		{"_1", "a"},
		{"_1a"},
	}

	seen := make(map[string][]string)
	for _, segs := range cases {
		m := Mangle(segs)
		if prev, dup := seen[m]; dup {
			t.Fatalf("%v and %v both encode to %s", prev, segs, m)
		}
		seen[m] = segs
	}
}

func TestDemangle_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	alphabet := []rune("abz_09λ日@,(")

	for i := 0; i < 300; i++ {
		segs := make([]string, r.Intn(6))
		for j := range segs {
			var b strings.Builder
			for k := r.Intn(14); k > 0; k-- {
				b.WriteRune(alphabet[r.Intn(len(alphabet))])
			}
			segs[j] = Sanitize(b.String())
		}

		got, err := Demangle(Mangle(segs))
		require.NoError(t, err)
		assert.Equal(t, segs, got)
	}
}

func TestDemangle_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no prefix", "3fooE"},
		{"no suffix", "_ZN3foo"},
		{"missing length", "_ZNfooE"},
		{"overrun", "_ZN9fooE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Demangle(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

// -----------------------------------------------------------------------------
// 3. NameGen
// -----------------------------------------------------------------------------

func TestNameGen(t *testing.T) {
	g := NewNameGen()
	assert.Equal(t, "glue_0", g.InternalNameBySeq("glue"))
	assert.Equal(t, "_ZN3mod9closure_1E", g.InternalNameByPathAndSeq([]string{"mod"}, "closure"))
	assert.Equal(t, "glue_2", g.Fresh("glue"))
}

func TestNameGen_ConcurrentUnique(t *testing.T) {
	g := NewNameGen()
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := g.Fresh("f")
			mu.Lock()
			defer mu.Unlock()
			seen[n] = true
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 64)
}
