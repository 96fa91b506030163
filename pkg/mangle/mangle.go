package mangle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 采用 C++ 命名空间 mangling 风格: _ZN <len><seg>... E
const (
	beginMarker = "_ZN"
	endMarker   = "E"
)

var ErrMalformed = errors.New("malformed mangled name")

// Mangle 把路径编码为扁平符号
// 每个段先经过 Sanitize，再以 UTF-8 字节长度作前缀写入。
// 长度前缀让解码永远可以无歧义地重新切分，所以编码在段序列上是单射。
func Mangle(path []string) string {
	var b strings.Builder
	b.WriteString(beginMarker)
	for _, seg := range path {
		sani := Sanitize(seg)
		b.WriteString(strconv.Itoa(len(sani)))
		b.WriteString(sani)
	}
	b.WriteString(endMarker)
	return b.String()
}

// ExportedName 导出符号: path ++ [STH, vers]
// 在名字、非名字元数据、类型三个维度上唯一，并以系统链接器能理解的方式带上版本。
func ExportedName(path []string, hash, vers string) string {
	return Mangle(appendSegs(path, hash, vers))
}

// InternalNameByType 只由类型决定的内部符号 (例如 glue 函数): [name, 短类型名, STH]
func InternalNameByType(name, shortType, hash string) string {
	return Mangle([]string{name, shortType, hash})
}

// InternalNameByPath 内部符号，不需要跨单元唯一
func InternalNameByPath(path []string) string {
	return Mangle(path)
}

// Demangle 是 Mangle 的逆操作，返回 (已 sanitize 的) 段序列
func Demangle(s string) ([]string, error) {
	if !strings.HasPrefix(s, beginMarker) || !strings.HasSuffix(s, endMarker) {
		return nil, fmt.Errorf("%w: missing %s...%s markers", ErrMalformed, beginMarker, endMarker)
	}
	body := s[len(beginMarker) : len(s)-len(endMarker)]

	segs := []string{}
	for i := 0; i < len(body); {
		// 读长度：长度不会有前导 0，所以遇到 '0' 就是空段
		j := i
		if body[j] == '0' {
			j++
		} else {
			for j < len(body) && body[j] >= '0' && body[j] <= '9' {
				j++
			}
		}
		if j == i {
			return nil, fmt.Errorf("%w: expected length at offset %d", ErrMalformed, i+len(beginMarker))
		}
		n, err := strconv.Atoi(body[i:j])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if j+n > len(body) {
			return nil, fmt.Errorf("%w: segment length %d overruns input", ErrMalformed, n)
		}
		segs = append(segs, body[j:j+n])
		i = j + n
	}
	return segs, nil
}

func appendSegs(path []string, extra ...string) []string {
	out := make([]string, 0, len(path)+len(extra))
	out = append(out, path...)
	return append(out, extra...)
}
