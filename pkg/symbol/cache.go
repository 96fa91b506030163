package symbol

import (
	"strconv"
	"sync"

	"linkforge/pkg/types"

	"golang.org/x/sync/singleflight"
)

// TypeHashCache 记忆每个类型的 STH
// 由编译上下文持有，整个编译期间有效，一次运行内从不失效。
//
// 多个 codegen 调用点可能同时为同一个类型请求哈希：
//  1. 读锁查表，命中直接返回
//  2. 未命中则进入 singleflight，同一个 TypeID 的并发请求只会有一个真正计算
//  3. flight 内部再查一次表，防止“查表之后、进入 flight 之前”别人刚写完
//
// 这样每个类型的哈希在一次运行内只计算一次。
type TypeHashCache struct {
	mu      sync.RWMutex
	entries map[TypeID]types.SymbolHash
	group   singleflight.Group
}

func NewTypeHashCache() *TypeHashCache {
	return &TypeHashCache{entries: make(map[TypeID]types.SymbolHash)}
}

// Lookup 只查不算
func (c *TypeHashCache) Lookup(id TypeID) (types.SymbolHash, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[id]
	return h, ok
}

// GetOrCompute 查表，未命中时调用 compute 并插入 (insert-if-absent)
func (c *TypeHashCache) GetOrCompute(id TypeID, compute func() types.SymbolHash) types.SymbolHash {
	if h, ok := c.Lookup(id); ok {
		return h
	}

	v, _, _ := c.group.Do(strconv.FormatUint(uint64(id), 10), func() (any, error) {
		if h, ok := c.Lookup(id); ok {
			return h, nil
		}
		h := compute()

		c.mu.Lock()
		c.entries[id] = h
		c.mu.Unlock()
		return h, nil
	})
	return v.(types.SymbolHash)
}

// Len 返回缓存条目数
func (c *TypeHashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
