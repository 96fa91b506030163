package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"linkforge/pkg/attr"
	"linkforge/pkg/diag"
	"linkforge/pkg/types"
)

// DefaultVers 是缺少 vers 时使用的版本号
const DefaultVers = "0.0"

var ErrNoOutputStem = errors.New("output file name has no stem")

// LinkIdentity 是编译单元的链接身份 (name, vers, extras_hash)
// 每个单元只创建一次，之后不可变，所以字段都不导出。
type LinkIdentity struct {
	name       string
	vers       string
	extrasHash types.MetaHash
}

// NewLinkIdentity 用已知的三元组还原身份 (例如从 crate store 读出的依赖)
func NewLinkIdentity(name, vers string, extrasHash types.MetaHash) LinkIdentity {
	return LinkIdentity{name: name, vers: vers, extrasHash: extrasHash}
}

func (l LinkIdentity) Name() string               { return l.name }
func (l LinkIdentity) Vers() string               { return l.vers }
func (l LinkIdentity) ExtrasHash() types.MetaHash { return l.extrasHash }
func (l LinkIdentity) IsZero() bool               { return l == LinkIdentity{} }

// String 返回 name-hash-vers，也就是库文件名去掉平台前后缀的部分
func (l LinkIdentity) String() string {
	return fmt.Sprintf("%s-%s-%s", l.name, l.extrasHash, l.vers)
}

// CrateHasher 把导出元数据和依赖哈希规约成一个 CMH
// 持有一个可重置的哈希状态，一个编译单元用一个。
type CrateHasher struct {
	state *State
	sink  *diag.Sink
}

func NewCrateHasher(d Digest, sink *diag.Sink) *CrateHasher {
	if sink == nil {
		sink = diag.NewSink(nil)
	}
	return &CrateHasher{state: NewState(d), sink: sink}
}

// ExtrasHash 计算 CMH = hash(sorted extras + sorted dep hashes)
func (c *CrateHasher) ExtrasHash(extras []attr.Attribute, depHashes []types.MetaHash) (types.MetaHash, error) {
	sorted, err := attr.Sort(extras)
	if err != nil {
		return "", fmt.Errorf("failed to sort linkage metas: %w", err)
	}

	deps := slices.Clone(depHashes)
	slices.Sort(deps)

	// 每个 meta 先写 kind，否则 word(a), word(true) 和 a = true 会得到同一串输入
	c.state.Reset()
	c.state.WriteFramed(strconv.Itoa(len(sorted)))
	for _, m := range sorted {
		c.state.WriteFramed(m.Kind.String())
		c.state.WriteFramed(m.Name)
		if m.Kind == attr.KindWord {
			continue
		}
		v, err := m.Serialize()
		if err != nil {
			return "", fmt.Errorf("failed to serialize meta `%s`: %w", m.Name, err)
		}
		c.state.WriteFramed(v)
	}
	for _, dh := range deps {
		c.state.WriteFramed(dh.String())
	}

	return types.MetaHash(c.state.Result()), nil
}

// Identity 构建编译单元的 LinkIdentity
// metas 是 attr.Collect 的输出；output 用于在缺少 name 时推断 crate 名。
func (c *CrateHasher) Identity(metas []attr.Attribute, depHashes []types.MetaHash, output string) (LinkIdentity, error) {
	provided := attr.Split(metas)

	name := provided.Name
	if name == "" {
		stem := fileStem(output)
		if stem == "" {
			return LinkIdentity{}, fmt.Errorf("%w: `%s`", ErrNoOutputStem, output)
		}
		name = stem
		c.warnMissing(attr.NameKey, name)
	}

	vers := provided.Vers
	if vers == "" {
		vers = DefaultVers
		c.warnMissing(attr.VersKey, vers)
	}

	extrasHash, err := c.ExtrasHash(provided.Extras, depHashes)
	if err != nil {
		return LinkIdentity{}, err
	}

	return LinkIdentity{name: name, vers: vers, extrasHash: extrasHash}, nil
}

func (c *CrateHasher) warnMissing(key, def string) {
	c.sink.Warn(diag.MetadataDefaultApplied, "missing crate link meta `%s`, using `%s` as default", key, def)
}

// fileStem: "out/libfoo.so" -> "libfoo"
func fileStem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
