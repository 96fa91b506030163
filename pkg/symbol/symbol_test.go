package symbol

import (
	"strings"
	"sync"
	"testing"

	"linkforge/pkg/core"
	"linkforge/pkg/mangle"
	"linkforge/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 1. Interner
// -----------------------------------------------------------------------------

func TestInterner_StableIDs(t *testing.T) {
	in := NewInterner()

	vecInt := mustIntern(t, in, Named("Vec", Named("int")))
	vecUint := mustIntern(t, in, Named("Vec", Named("uint")))
	again := mustIntern(t, in, Named("Vec", Named("int")))

	assert.Equal(t, vecInt.ID(), again.ID())
	assert.Same(t, vecInt, again)
	assert.NotEqual(t, vecInt.ID(), vecUint.ID())
	assert.NotEqual(t, vecInt.Encoding(), vecUint.Encoding(), "单态化实例的编码必须不同")
	assert.Equal(t, "Vec<int>", vecInt.ShortString())
	assert.Equal(t, 2, in.Len())
}

func TestTypeDesc_ShortStringTruncated(t *testing.T) {
	in := NewInterner()
	long := Named(strings.Repeat("Long", 20), Named("int"))
	ty := mustIntern(t, in, long)
	assert.LessOrEqual(t, len(ty.ShortString()), maxShortLen)
	assert.True(t, strings.HasPrefix(long.String(), ty.ShortString()))
}

// -----------------------------------------------------------------------------
// 2. TypeHashCache 记忆化
// -----------------------------------------------------------------------------

func TestContext_SymbolHashMemoized(t *testing.T) {
	spy := &CountingDigest{}
	ctx := NewContext(testIdentity(), spy.Digest())
	in := NewInterner()
	ty := mustIntern(t, in, Named("Option", Named("str")))

	first := ctx.SymbolHash(ty)
	second := ctx.SymbolHash(ty)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), spy.Calls(), "同一类型的哈希只能计算一次")
	assert.True(t, first.IsValid())

	other := mustIntern(t, in, Named("Option", Named("int")))
	assert.NotEqual(t, first, ctx.SymbolHash(other))
	assert.Equal(t, int64(2), spy.Calls())
	assert.Equal(t, 2, ctx.Cache().Len())
}

func TestContext_SymbolHashConcurrent(t *testing.T) {
	spy := &CountingDigest{}
	ctx := NewContext(testIdentity(), spy.Digest())
	in := NewInterner()

	tys := []*Interned{
		mustIntern(t, in, Named("A")),
		mustIntern(t, in, Named("B")),
		mustIntern(t, in, Named("C", Named("A"))),
	}

	var wg sync.WaitGroup
	results := make([][]types.SymbolHash, 32)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, ty := range tys {
				results[g] = append(results[g], ctx.SymbolHash(ty))
			}
		}(g)
	}
	wg.Wait()

	for g := 1; g < len(results); g++ {
		assert.Equal(t, results[0], results[g])
	}
	assert.Equal(t, int64(len(tys)), spy.Calls(), "并发下每个类型仍然只计算一次")
}

func TestContext_ForeignInternersDoNotCollide(t *testing.T) {
	d, err := core.NewDigest(core.DigestSHA256)
	require.NoError(t, err)
	ctx := NewContext(testIdentity(), d)

	// 两个独立的 Interner 都会分配 ID 0
	vecInt := mustIntern(t, NewInterner(), Named("Vec", Named("int")))
	vecStr := mustIntern(t, NewInterner(), Named("Vec", Named("str")))
	require.Equal(t, vecInt.ID(), vecStr.ID())

	a := ctx.MangledName([]string{"push"}, vecInt, true)
	b := ctx.MangledName([]string{"push"}, vecStr, true)
	assert.NotEqual(t, a, b)
	assert.Equal(t, core.SymbolHash(d, testIdentity(), vecStr.Encoding()), ctx.SymbolHash(vecStr))

	// 与上下文自己驻留的同一类型共享缓存条目
	own, err := ctx.Intern(Named("Vec", Named("int")))
	require.NoError(t, err)
	assert.Equal(t, ctx.SymbolHash(vecInt), ctx.SymbolHash(own))
	assert.Equal(t, 2, ctx.Cache().Len())
}

// rawType 是不经过 Interner 的自定义 Type
type rawType struct {
	id  TypeID
	enc string
}

func (r rawType) ID() TypeID          { return r.id }
func (r rawType) Encoding() string    { return r.enc }
func (r rawType) ShortString() string { return r.enc }

func TestContext_CustomTypeKeyedByEncoding(t *testing.T) {
	d, err := core.NewDigest(core.DigestSHA256)
	require.NoError(t, err)
	ctx := NewContext(testIdentity(), d)

	x := ctx.SymbolHash(rawType{id: 0, enc: "x"})
	y := ctx.SymbolHash(rawType{id: 0, enc: "y"})
	assert.NotEqual(t, x, y)
	assert.Equal(t, x, ctx.SymbolHash(rawType{id: 9, enc: "x"}))
}

func TestDecodeTypeDesc(t *testing.T) {
	want := Named("Map", Named("str"), Named("Vec", Named("int")))
	enc, err := want.Encode()
	require.NoError(t, err)

	got, err := DecodeTypeDesc(enc)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = DecodeTypeDesc("zz")
	assert.ErrorIs(t, err, ErrBadType)
}

func TestTypeHashCache_InsertIfAbsent(t *testing.T) {
	c := NewTypeHashCache()
	got := c.GetOrCompute(7, func() types.SymbolHash { return "_1111111111111111" })
	assert.Equal(t, types.SymbolHash("_1111111111111111"), got)

	// 已存在时 compute 不会被调用
	got = c.GetOrCompute(7, func() types.SymbolHash {
		t.Fatal("compute must not run on hit")
		return ""
	})
	assert.Equal(t, types.SymbolHash("_1111111111111111"), got)

	_, ok := c.Lookup(8)
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------
// 3. MangledName
// -----------------------------------------------------------------------------

func TestContext_MangledName(t *testing.T) {
	d, err := core.NewDigest(core.DigestSHA256)
	require.NoError(t, err)
	ctx := NewContext(testIdentity(), d)
	in := NewInterner()

	ty := mustIntern(t, in, Named("fn", Named("int")))
	sth := ctx.SymbolHash(ty).String()

	exported := ctx.MangledName([]string{"mod", "item"}, ty, true)
	assert.Equal(t, mangle.ExportedName([]string{"mod", "item"}, sth, "0.1"), exported)
	assert.True(t, strings.HasSuffix(exported, "3_01E"), "导出名以版本段结尾: %s", exported)

	internal := ctx.MangledName([]string{"mod", "item"}, ty, false)
	segs, err := mangle.Demangle(internal)
	require.NoError(t, err)
	assert.Equal(t, []string{"mod", "item", sth}, segs, "内部名不带版本段")
}

func TestContext_MonomorphizationDistinct(t *testing.T) {
	d, err := core.NewDigest(core.DigestSHA256)
	require.NoError(t, err)
	ctx := NewContext(testIdentity(), d)
	in := NewInterner()

	// 同一个泛型函数 map<T> 的两个实例，路径完全相同
	path := []string{"vec", "map"}
	a := ctx.MangledName(path, mustIntern(t, in, Named("fn", Named("int"))), true)
	b := ctx.MangledName(path, mustIntern(t, in, Named("fn", Named("str"))), true)

	assert.NotEqual(t, a, b)
}

func TestContext_InternalNames(t *testing.T) {
	d, err := core.NewDigest("")
	require.NoError(t, err)
	ctx := NewContext(testIdentity(), d)
	ty := mustIntern(t, NewInterner(), Named("Vec", Named("int")))

	glue := ctx.InternalNameByType(ty, "drop_glue")
	segs, err := mangle.Demangle(glue)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "drop_glue", segs[0])
	assert.Equal(t, "Vecint", segs[1])
	assert.Equal(t, ctx.SymbolHash(ty).String(), segs[2])

	assert.Equal(t, "_ZN1aE", ctx.InternalNameByPath([]string{"a"}))
	assert.Equal(t, "anon_0", ctx.InternalNameBySeq("anon"))
	assert.Equal(t, "_ZN1a9closure_1E", ctx.InternalNameByPathAndSeq([]string{"a"}, "closure"))
	assert.Equal(t, testIdentity(), ctx.Identity())
}

// -----------------------------------------------------------------------------
// 4. 类型表达式解析
// -----------------------------------------------------------------------------

func TestParseTypeDesc(t *testing.T) {
	d, err := ParseTypeDesc("Map<str, Vec<int>>")
	require.NoError(t, err)
	assert.Equal(t, Named("Map", Named("str"), Named("Vec", Named("int"))), d)
	assert.Equal(t, "Map<str,Vec<int>>", d.String())

	again, err := ParseTypeDesc(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, again)

	for _, bad := range []string{"", "Vec<", "Vec<int", "Vec<>", "Vec<int>>", "a b", "<int>"} {
		_, err := ParseTypeDesc(bad)
		assert.ErrorIs(t, err, ErrBadType, bad)
	}
}
