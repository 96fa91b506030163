// pkg/types/common.go
package types

import "strings"

// HashWidth 是 CMH / STH 截断后的十六进制宽度
// 16 个 hex 字符 = 64 bit，生日界约 2^32 个同名符号才开始有碰撞风险
const HashWidth = 16

// MetaHash 代表 crate 元数据哈希 (CMH, extras_hash)
// 这是一个“值对象”，应当是不可变的。
type MetaHash string

func (h MetaHash) String() string { return string(h) }

// 验证 MetaHash 合法性
func (h MetaHash) IsZero() bool { return h == "" }
func (h MetaHash) IsValid() bool {
	return len(h) == HashWidth && isHex(string(h))
}

// SymbolHash 代表符号类型哈希 (STH)
// 以 '_' 开头，保证在 mangling 时不会和前面的长度数字粘在一起
type SymbolHash string

func (h SymbolHash) String() string { return string(h) }
func (h SymbolHash) IsValid() bool {
	return len(h) == HashWidth+1 && h[0] == '_' && isHex(string(h[1:]))
}

// Hash 代表产物内容的唯一标识符 (SHA256 Hex String)
type Hash string

func (h Hash) String() string { return string(h) }

func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == 64 } // 简单的长度检查

// Short 返回用于展示的短哈希
func (h Hash) Short() string {
	if len(h) < 8 {
		return string(h)
	}
	return string(h[:8])
}

type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

func isHex(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) < 0
}
