package symbol

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadType = errors.New("malformed type expression")

// ParseTypeDesc 解析 String() 的输出形式: Ctor 或 Ctor<T1,T2,...>
// 空白会被忽略。
func ParseTypeDesc(s string) (TypeDesc, error) {
	p := &typeParser{src: s}
	d, err := p.parse()
	if err != nil {
		return TypeDesc{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeDesc{}, fmt.Errorf("%w: unexpected %q at %d", ErrBadType, p.src[p.pos:], p.pos)
	}
	return d, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) parse() (TypeDesc, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>, \t", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return TypeDesc{}, fmt.Errorf("%w: expected type name at %d", ErrBadType, start)
	}
	d := TypeDesc{Ctor: p.src[start:p.pos]}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return d, nil
	}
	p.pos++

	for {
		arg, err := p.parse()
		if err != nil {
			return TypeDesc{}, err
		}
		d.Args = append(d.Args, arg)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return TypeDesc{}, fmt.Errorf("%w: unclosed '<' in %q", ErrBadType, p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return d, nil
		default:
			return TypeDesc{}, fmt.Errorf("%w: unexpected %q at %d", ErrBadType, p.src[p.pos], p.pos)
		}
	}
}
