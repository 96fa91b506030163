package attr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral_String(t *testing.T) {
	assert.Equal(t, `"x\"y"`, Str(`x"y`).String())
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "0.5", Float(0.5).String())
}

func TestSort_OrderIndependent(t *testing.T) {
	a := []Attribute{
		NameValue("author", Str("alice")),
		Word("test"),
		List("cfg", Word("b"), NameValue("a", Int(1))),
	}
	b := []Attribute{
		List("cfg", NameValue("a", Int(1)), Word("b")),
		Word("test"),
		NameValue("author", Str("alice")),
	}

	sa, err := Sort(a)
	require.NoError(t, err)
	sb, err := Sort(b)
	require.NoError(t, err)

	assert.Equal(t, sa, sb)
	assert.Equal(t, []string{"author", "cfg", "test"}, names(sa))
	// 子项也要排序
	assert.Equal(t, []string{"a", "b"}, names(sa[2].Items))
}

func TestSort_SameNameUsesValue(t *testing.T) {
	sorted, err := Sort([]Attribute{
		NameValue("feature", Str("zz")),
		NameValue("feature", Str("aa")),
	})
	require.NoError(t, err)
	assert.Equal(t, "aa", sorted[0].Value.Text)
	assert.Equal(t, "zz", sorted[1].Value.Text)
}

func TestSerialize(t *testing.T) {
	v, err := Word("w").Serialize()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = NameValue("k", Str("v")).Serialize()
	require.NoError(t, err)
	assert.Equal(t, `"v"`, v)

	l1, err := List("l", Word("x"), Word("y")).Serialize()
	require.NoError(t, err)
	l2, err := List("l", Word("y"), Word("x")).Serialize()
	require.NoError(t, err)
	assert.Equal(t, l1, l2, "list 序列化必须与子项顺序无关")
	assert.NotEmpty(t, l1)
}

func TestCollect(t *testing.T) {
	crate := []Attribute{
		Word("no_core"),
		List(LinkAttr, NameValue(NameKey, Str("foo")), NameValue(VersKey, Str("0.1"))),
		List("doc", Word("hidden")),
		List(LinkAttr, NameValue("author", Str("bob"))),
	}

	metas, err := Collect(crate)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "vers", "author"}, names(metas))
}

func TestCollect_DuplicateReserved(t *testing.T) {
	crate := []Attribute{
		List(LinkAttr, NameValue(NameKey, Str("foo"))),
		List(LinkAttr, NameValue(NameKey, Str("bar"))),
	}

	_, err := Collect(crate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateLinkageTag))
	assert.Contains(t, err.Error(), "`name`")

	// 非保留键可以重复
	_, err = Collect([]Attribute{
		List(LinkAttr, Word("feature"), Word("feature")),
	})
	assert.NoError(t, err)
}

func TestSplit(t *testing.T) {
	p := Split([]Attribute{
		NameValue(NameKey, Str("foo")),
		NameValue(VersKey, Int(3)), // 非字符串 -> extras
		Word("author"),
	})

	assert.Equal(t, "foo", p.Name)
	assert.Equal(t, "", p.Vers)
	assert.Equal(t, []string{"vers", "author"}, names(p.Extras))
}

func names(as []Attribute) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func TestParseLiteral(t *testing.T) {
	lit, err := ParseLiteral(LitInt, " 07")
	require.NoError(t, err)
	assert.Equal(t, Int(7), lit)

	lit, err = ParseLiteral(LitBool, "true")
	require.NoError(t, err)
	assert.Equal(t, Bool(true), lit)

	lit, err = ParseLiteral(LitFloat, "0.50")
	require.NoError(t, err)
	assert.Equal(t, "0.5", lit.String())

	lit, err = ParseLiteral(LitStr, " keep ")
	require.NoError(t, err)
	assert.Equal(t, `" keep "`, lit.String())

	_, err = ParseLiteral(LitInt, "x")
	assert.Error(t, err)
	_, err = ParseLiteral(LitKind(9), "1")
	assert.Error(t, err)
}
