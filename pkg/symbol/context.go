package symbol

import (
	"linkforge/pkg/core"
	"linkforge/pkg/mangle"
	"linkforge/pkg/types"
)

// Context 是单个编译单元的符号命名上下文
// 持有不可变的 LinkIdentity、类型 Interner 和共享的 TypeHashCache，可被多个 codegen goroutine 同时使用。
// TypeID 只在分配它的 Interner 内唯一，所以缓存只接受本上下文 Interner 分配的 ID。
type Context struct {
	id       core.LinkIdentity
	digest   core.Digest
	interner *Interner
	cache    *TypeHashCache
	names    *mangle.NameGen
}

func NewContext(id core.LinkIdentity, d core.Digest) *Context {
	return &Context{
		id:       id,
		digest:   d,
		interner: NewInterner(),
		cache:    NewTypeHashCache(),
		names:    mangle.NewNameGen(),
	}
}

func (c *Context) Identity() core.LinkIdentity { return c.id }
func (c *Context) Cache() *TypeHashCache       { return c.cache }

// Intern 在本上下文的 Interner 中驻留类型
func (c *Context) Intern(d TypeDesc) (*Interned, error) {
	return c.interner.Intern(d)
}

// SymbolHash 返回类型的 STH，同一个类型只计算一次
func (c *Context) SymbolHash(t Type) types.SymbolHash {
	return c.cache.GetOrCompute(c.typeID(t), func() types.SymbolHash {
		return core.SymbolHash(c.digest, c.id, t.Encoding())
	})
}

// typeID 把任意 Type 映射到本上下文的 ID 空间
// 别的 Interner 或自定义实现给出的 ID 可能重复，按编码重新驻留。
func (c *Context) typeID(t Type) TypeID {
	if c.interner.owns(t) {
		return t.ID()
	}
	if it, err := c.interner.InternEncoded(t.Encoding()); err == nil {
		return it.ID()
	}
	return c.interner.intern(t.Encoding(), t.ShortString()).ID()
}

// MangledName 是 codegen 的入口
//   - exported: path ++ [STH, vers]，跨单元唯一
//   - 内部符号: path ++ [STH]，只需要在本单元内区分单态化实例，不带版本
func (c *Context) MangledName(path []string, t Type, exported bool) string {
	hash := c.SymbolHash(t).String()
	if exported {
		return mangle.ExportedName(path, hash, c.id.Vers())
	}
	segs := make([]string, 0, len(path)+1)
	segs = append(segs, path...)
	return mangle.Mangle(append(segs, hash))
}

// InternalNameByType 只由类型决定的内部符号 (如 drop glue)
func (c *Context) InternalNameByType(t Type, name string) string {
	return mangle.InternalNameByType(name, t.ShortString(), c.SymbolHash(t).String())
}

func (c *Context) InternalNameByPath(path []string) string {
	return mangle.InternalNameByPath(path)
}

func (c *Context) InternalNameByPathAndSeq(path []string, flavor string) string {
	return c.names.InternalNameByPathAndSeq(path, flavor)
}

func (c *Context) InternalNameBySeq(flavor string) string {
	return c.names.InternalNameBySeq(flavor)
}
