package mangle

import (
	"strconv"
	"sync/atomic"
)

// NameGen 为内部符号生成新名字 (flavor_N)
// 计数器在整个编译上下文内单调递增，并发安全。
type NameGen struct {
	next atomic.Uint64
}

func NewNameGen() *NameGen { return &NameGen{} }

// Fresh 返回一个在本生成器内唯一的名字
func (g *NameGen) Fresh(flavor string) string {
	n := g.next.Add(1) - 1
	return flavor + "_" + strconv.FormatUint(n, 10)
}

// InternalNameByPathAndSeq: path ++ [fresh(flavor)]
func (g *NameGen) InternalNameByPathAndSeq(path []string, flavor string) string {
	return Mangle(appendSegs(path, g.Fresh(flavor)))
}

// InternalNameBySeq 不经过 mangling，直接返回 flavor_N
func (g *NameGen) InternalNameBySeq(flavor string) string {
	return g.Fresh(flavor)
}
