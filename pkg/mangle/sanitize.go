// Package mangle 把层级路径压平成所有目标链接器都能接受的单个符号名
package mangle

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// 特殊字符的固定替换表
var replacements = map[rune]string{
	'@': "_sbox_",
	'~': "_ubox_",
	'*': "_ptr_",
	'&': "_ref_",
	',': "_",
	'{': "_of_",
	'(': "_of_",
}

// Sanitize 把任意字符串映射到安全的标识符字符集
// LLVM 能接受奇怪的名字，但汇编器 (gas) 不行。
//   - 少数特殊字符替换成固定文本
//   - ASCII 字母数字和 '_' 原样保留
//   - 'z' 之后的字符只保留 identifier-continue 类
//   - 其它全部丢弃
//
// 结果非空且首字符不是 '_' 或 identifier-start 时，前面补一个 '_'。
// Sanitize 是幂等的。
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, c := range s {
		if rep, ok := replacements[c]; ok {
			b.WriteString(rep)
			continue
		}
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		case c > 'z' && isIdentContinue(c):
			b.WriteRune(c)
		}
	}

	result := b.String()
	if result == "" {
		return result
	}
	first, _ := utf8.DecodeRuneInString(result)
	if first != '_' && !isIdentStart(first) {
		return "_" + result
	}
	return result
}

// isIdentStart 近似 Unicode XID_Start
func isIdentStart(r rune) bool {
	return unicode.In(r, unicode.L, unicode.Nl, unicode.Other_ID_Start)
}

// isIdentContinue 近似 Unicode XID_Continue
func isIdentContinue(r rune) bool {
	return isIdentStart(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}
