package symbol

import (
	"crypto/sha256"
	"hash"
	"sync/atomic"
	"testing"

	"linkforge/pkg/core"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// CountingDigest (间谍摘要)
// 统计哈希状态被创建的次数：每次 STH 计算恰好创建一个状态
// -----------------------------------------------------------------------------
type CountingDigest struct {
	calls atomic.Int64
}

func (c *CountingDigest) Digest() core.Digest {
	return func() hash.Hash {
		c.calls.Add(1)
		return sha256.New()
	}
}

func (c *CountingDigest) Calls() int64 { return c.calls.Load() }

func testIdentity() core.LinkIdentity {
	return core.NewLinkIdentity("foo", "0.1", "abcd1234abcd1234")
}

// mustIntern 驻留类型，失败则终止
func mustIntern(t *testing.T, in *Interner, d TypeDesc) *Interned {
	t.Helper()
	ty, err := in.Intern(d)
	require.NoError(t, err)
	return ty
}
