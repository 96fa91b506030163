package attr

import (
	"errors"
	"fmt"
)

// 保留的链接属性名
const (
	LinkAttr = "link"
	NameKey  = "name"
	VersKey  = "vers"
)

// ErrDuplicateLinkageTag 同一个保留键被声明了两次，这是致命错误
var ErrDuplicateLinkageTag = errors.New("duplicate linkage tag")

// FindLinkage 从 crate 级属性中取出所有 link(...) 列表的子项
// 例如 #[link(name = "foo", vers = "0.1", author = "x")] -> [name, vers, author]
func FindLinkage(crateAttrs []Attribute) []Attribute {
	var metas []Attribute
	for _, a := range crateAttrs {
		if a.Kind == KindList && a.Name == LinkAttr {
			metas = append(metas, a.Items...)
		}
	}
	return metas
}

// RequireUniqueReserved 确认 name/vers 没有重复声明
func RequireUniqueReserved(metas []Attribute) error {
	seen := make(map[string]bool, 2)
	for _, m := range metas {
		if m.Name != NameKey && m.Name != VersKey {
			continue
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: `%s` declared more than once", ErrDuplicateLinkageTag, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Collect 是 MetadataCollector 的入口：提取 linkage 子集并做唯一性检查
func Collect(crateAttrs []Attribute) ([]Attribute, error) {
	metas := FindLinkage(crateAttrs)
	if err := RequireUniqueReserved(metas); err != nil {
		return nil, err
	}
	return metas, nil
}

// Provided 是 linkage 属性拆分后的结果
type Provided struct {
	Name   string
	Vers   string
	Extras []Attribute
}

// Split 拿出字符串字面量形式的 name/vers，其余 (包括非字符串形式的 name/vers) 都进 Extras
func Split(metas []Attribute) Provided {
	var p Provided
	for _, m := range metas {
		switch m.Name {
		case NameKey:
			if v, ok := m.ValueStr(); ok {
				p.Name = v
				continue
			}
		case VersKey:
			if v, ok := m.ValueStr(); ok {
				p.Vers = v
				continue
			}
		}
		p.Extras = append(p.Extras, m)
	}
	return p
}
