// Package attr 描述 crate 级声明属性，以及从中提取链接元数据 (linkage metas) 的逻辑
package attr

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"linkforge/pkg/codec"
)

// Kind 是属性的三种形态
type Kind uint8

const (
	KindWord      Kind = iota // word(name)
	KindNameValue             // name_value(name, literal)
	KindList                  // list(name, items)
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindNameValue:
		return "name_value"
	case KindList:
		return "list"
	}
	return "unknown"
}

// LitKind 是字面量的类型
type LitKind uint8

const (
	LitStr LitKind = iota
	LitInt
	LitFloat
	LitBool
)

// Literal 是 name_value 属性右侧的字面量
// Text 保存字面量的原始文本 (字符串字面量不含引号)
type Literal struct {
	Kind LitKind `cbor:"k"`
	Text string  `cbor:"t"`
}

func Str(s string) Literal       { return Literal{Kind: LitStr, Text: s} }
func Int(n int64) Literal        { return Literal{Kind: LitInt, Text: strconv.FormatInt(n, 10)} }
func Float(f float64) Literal    { return Literal{Kind: LitFloat, Text: strconv.FormatFloat(f, 'g', -1, 64)} }
func Bool(b bool) Literal        { return Literal{Kind: LitBool, Text: strconv.FormatBool(b)} }
func (l Literal) IsString() bool { return l.Kind == LitStr }

// ParseLiteral 解析文本形式的字面量
// 数值和布尔值会被规范化："07" 和 "7" 得到同一个 Int。
func ParseLiteral(kind LitKind, text string) (Literal, error) {
	if kind == LitStr {
		return Str(text), nil
	}
	text = strings.TrimSpace(text)
	switch kind {
	case LitInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("invalid int literal %q: %w", text, err)
		}
		return Int(n), nil
	case LitFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("invalid float literal %q: %w", text, err)
		}
		return Float(f), nil
	case LitBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Literal{}, fmt.Errorf("invalid bool literal %q: %w", text, err)
		}
		return Bool(b), nil
	}
	return Literal{}, fmt.Errorf("unknown literal kind %d", kind)
}

// String 返回字面量的源码形式：字符串带引号，其它原样输出
func (l Literal) String() string {
	if l.Kind == LitStr {
		return strconv.Quote(l.Text)
	}
	return l.Text
}

// Attribute 是一条导出属性
type Attribute struct {
	Kind  Kind        `cbor:"k"`
	Name  string      `cbor:"n"`
	Value Literal     `cbor:"v,omitempty"`
	Items []Attribute `cbor:"i,omitempty"`
}

func Word(name string) Attribute { return Attribute{Kind: KindWord, Name: name} }

func NameValue(name string, v Literal) Attribute {
	return Attribute{Kind: KindNameValue, Name: name, Value: v}
}

func List(name string, items ...Attribute) Attribute {
	return Attribute{Kind: KindList, Name: name, Items: items}
}

// ValueStr 仅当属性是 name = "string" 形式时返回字符串值
func (a Attribute) ValueStr() (string, bool) {
	if a.Kind != KindNameValue || !a.Value.IsString() {
		return "", false
	}
	return a.Value.Text, true
}

// Serialize 返回属性“值”的文本形式，用于哈希帧
//   - word: 没有值，返回 ""
//   - name_value: 字面量的源码形式
//   - list: 排序后子项的 canonical CBOR (hex)
func (a Attribute) Serialize() (string, error) {
	switch a.Kind {
	case KindNameValue:
		return a.Value.String(), nil
	case KindList:
		items, err := Sort(a.Items)
		if err != nil {
			return "", err
		}
		return codec.MarshalHex(items)
	}
	return "", nil
}

// Sort 返回按 (name, 序列化值) 排序的副本，list 的子项递归排序
// 声明顺序不能影响任何哈希结果。
func Sort(attrs []Attribute) ([]Attribute, error) {
	type keyed struct {
		attr Attribute
		val  string
	}

	ks := make([]keyed, 0, len(attrs))
	for _, a := range attrs {
		if a.Kind == KindList {
			items, err := Sort(a.Items)
			if err != nil {
				return nil, err
			}
			a.Items = items
		}
		v, err := a.Serialize()
		if err != nil {
			return nil, err
		}
		ks = append(ks, keyed{attr: a, val: v})
	}

	slices.SortStableFunc(ks, func(x, y keyed) int {
		if c := cmp.Compare(x.attr.Name, y.attr.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(x.attr.Kind, y.attr.Kind); c != 0 {
			return c
		}
		return cmp.Compare(x.val, y.val)
	})

	out := make([]Attribute, len(ks))
	for i, k := range ks {
		out[i] = k.attr
	}
	return out, nil
}
