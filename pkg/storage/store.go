// Package storage 是链接产物的内容寻址仓库
package storage

import (
	"context"
	"errors"
	"io"

	"linkforge/pkg/types"
)

var (
	ErrNotFound       = errors.New("artifact not found")
	ErrAmbiguousHash  = errors.New("ambiguous hash prefix")
	ErrPrefixTooShort = errors.New("hash prefix too short")
)

// MinPrefixLen 是 ExpandHash 接受的最短前缀
const MinPrefixLen = 4

// Object 是可以被存入仓库的内容
type Object interface {
	ID() types.Hash
	Bytes() []byte
}

// Store defines the interface for a storage backend.
// Implementations can be local disk, cloud storage, or a cache decorator.
type Store interface {
	// Put 将对象持久化；内容已存在时直接返回 (幂等)
	Put(ctx context.Context, obj Object) error

	// Get 根据 Hash 读取原始数据
	// 返回 io.ReadCloser，大产物可以流式读取
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把唯一的短前缀扩展成完整哈希
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)
}
