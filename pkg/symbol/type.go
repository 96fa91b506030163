// Package symbol 把 crate 身份和实体类型组合成每个实体的链接名
package symbol

import (
	"fmt"
	"strings"
	"sync"

	"linkforge/pkg/codec"
)

// TypeID 是类型的稳定身份
// 由 Interner 分配的整数，同一次编译内相同的类型编码总是得到同一个 ID。
type TypeID uint32

// Type 是 codegen 交给我们的“已完全解析”的类型
type Type interface {
	ID() TypeID
	// Encoding 返回完整的类型序列化结果，参与 STH
	Encoding() string
	// ShortString 返回可读的短名字，用于 InternalNameByType
	ShortString() string
}

// TypeDesc 是类型的结构化描述：构造器 + 类型实参
// 例如 Vec<int> = {Ctor: "Vec", Args: [{Ctor: "int"}]}
type TypeDesc struct {
	Ctor string     `cbor:"c"`
	Args []TypeDesc `cbor:"a,omitempty"`
}

func Named(ctor string, args ...TypeDesc) TypeDesc {
	return TypeDesc{Ctor: ctor, Args: args}
}

// Encode 返回 canonical CBOR 的 hex 形式
// 单态化实例只在 Args 上不同，编码也就不同。
func (d TypeDesc) Encode() (string, error) {
	return codec.MarshalHex(d)
}

// DecodeTypeDesc 是 Encode 的逆操作
func DecodeTypeDesc(enc string) (TypeDesc, error) {
	var d TypeDesc
	if err := codec.UnmarshalHex(enc, &d); err != nil {
		return TypeDesc{}, fmt.Errorf("%w: %v", ErrBadType, err)
	}
	if d.Ctor == "" {
		return TypeDesc{}, fmt.Errorf("%w: empty constructor", ErrBadType)
	}
	return d, nil
}

// String: Vec<int,Option<T>>
func (d TypeDesc) String() string {
	if len(d.Args) == 0 {
		return d.Ctor
	}
	parts := make([]string, len(d.Args))
	for i, a := range d.Args {
		parts[i] = a.String()
	}
	return d.Ctor + "<" + strings.Join(parts, ",") + ">"
}

const maxShortLen = 32

// Interned 是驻留后的类型，实现 Type
type Interned struct {
	id    TypeID
	enc   string
	short string
	owner *Interner
}

func (t *Interned) ID() TypeID          { return t.id }
func (t *Interned) Encoding() string    { return t.enc }
func (t *Interned) ShortString() string { return t.short }

// Interner 为类型编码分配稳定的整数 ID
// 键是编码文本本身，绝不使用内存地址。
type Interner struct {
	mu    sync.Mutex
	ids   map[string]*Interned
	count uint32
}

func NewInterner() *Interner {
	return &Interner{ids: make(map[string]*Interned)}
}

// Intern 返回描述对应的驻留类型；相同编码返回同一个实例
func (in *Interner) Intern(d TypeDesc) (*Interned, error) {
	enc, err := d.Encode()
	if err != nil {
		return nil, err
	}
	return in.intern(enc, d.String()), nil
}

// InternEncoded 按编码驻留；编码必须是 TypeDesc.Encode 的输出
func (in *Interner) InternEncoded(enc string) (*Interned, error) {
	d, err := DecodeTypeDesc(enc)
	if err != nil {
		return nil, err
	}
	return in.intern(enc, d.String()), nil
}

func (in *Interner) intern(enc, display string) *Interned {
	in.mu.Lock()
	defer in.mu.Unlock()

	if t, ok := in.ids[enc]; ok {
		return t
	}
	t := &Interned{id: TypeID(in.count), enc: enc, short: shorten(display), owner: in}
	in.count++
	in.ids[enc] = t
	return t
}

// owns 判断 t 的 ID 是否由本 Interner 分配
func (in *Interner) owns(t Type) bool {
	it, ok := t.(*Interned)
	return ok && it.owner == in
}

// Len 返回已驻留的类型数量
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.ids)
}

// shorten 在 rune 边界上截断到 maxShortLen 字节以内
func shorten(s string) string {
	if len(s) <= maxShortLen {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxShortLen {
			break
		}
		cut = i
	}
	return s[:cut]
}
