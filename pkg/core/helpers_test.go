package core

import (
	"testing"

	"linkforge/pkg/attr"
	"linkforge/pkg/diag"
	"linkforge/pkg/types"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 辅助工具
// -----------------------------------------------------------------------------

// mustDigest 按名字取摘要算法，失败直接终止测试
func mustDigest(t *testing.T, name string) Digest {
	t.Helper()
	d, err := NewDigest(name)
	require.NoError(t, err)
	return d
}

// mustIdentity 用默认 sha256 计算身份
// 这让主测试代码极其干净
func mustIdentity(t *testing.T, crate []attr.Attribute, deps []types.MetaHash, output string, msgAndArgs ...any) (LinkIdentity, *diag.Sink) {
	t.Helper()
	metas, err := attr.Collect(crate)
	require.NoError(t, err, msgAndArgs...)

	sink := diag.NewSink(nil)
	id, err := NewCrateHasher(mustDigest(t, DigestSHA256), sink).Identity(metas, deps, output)
	require.NoError(t, err, msgAndArgs...) // 透传消息
	return id, sink
}

func link(items ...attr.Attribute) []attr.Attribute {
	return []attr.Attribute{attr.List(attr.LinkAttr, items...)}
}
