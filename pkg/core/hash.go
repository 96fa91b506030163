package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strconv"

	"linkforge/pkg/types"

	"github.com/zeebo/blake3"
)

// Digest 是可插拔的抗碰撞哈希函数工厂
// 具体算法无关紧要，重要的是帧格式 (长度前缀) 和截断宽度。
type Digest func() hash.Hash

const (
	DigestSHA256 = "sha256"
	DigestBLAKE3 = "blake3"
)

var digests = map[string]Digest{
	DigestSHA256: sha256.New,
	DigestBLAKE3: func() hash.Hash { return blake3.New() },
}

// NewDigest 按名字选择摘要算法；空字符串等价于 sha256
func NewDigest(name string) (Digest, error) {
	if name == "" {
		name = DigestSHA256
	}
	d, ok := digests[name]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm %q (supported: %v)", name, DigestNames())
	}
	return d, nil
}

// DigestNames 返回所有支持的算法名 (已排序)
func DigestNames() []string {
	names := make([]string, 0, len(digests))
	for n := range digests {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// State 是一个可重置的哈希状态
// 不是并发安全的：每个 State 只属于一个调用方。
type State struct {
	h hash.Hash
}

func NewState(d Digest) *State {
	return &State{h: d()}
}

func (s *State) Reset() { s.h.Reset() }

// WriteStr 原样写入
func (s *State) WriteStr(str string) {
	// hash.Hash 的 Write 永远不会返回错误
	_, _ = s.h.Write([]byte(str))
}

// WriteFramed 以 "{len}_{text}" 的形式写入，避免相邻字段之间的歧义
// 例如 ("ab", "c") 与 ("a", "bc") 会得到不同的输入流
func (s *State) WriteFramed(str string) {
	s.WriteStr(lenAndStr(str))
}

// Result 返回截断到 HashWidth 的十六进制摘要
func (s *State) Result() string {
	return hex.EncodeToString(s.h.Sum(nil))[:types.HashWidth]
}

func lenAndStr(s string) string {
	return strconv.Itoa(len(s)) + "_" + s
}
