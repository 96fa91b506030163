// Package pipeline 串起链接阶段：元数据 -> 身份 -> 链接 -> 记录 -> 发布
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"linkforge/pkg/attr"
	"linkforge/pkg/core"
	"linkforge/pkg/cstore"
	"linkforge/pkg/diag"
	"linkforge/pkg/filesearch"
	"linkforge/pkg/link"
	"linkforge/pkg/manifest"
	"linkforge/pkg/storage"
	"linkforge/pkg/target"
	"linkforge/pkg/types"

	"github.com/sirupsen/logrus"
)

var ErrNoCrateStore = errors.New("dependency needs the crate store, but none is configured")

// Pipeline 处理一批清单
// repo 和 store 都可以为 nil：没有 crate store 时只接受按路径给出的依赖，没有产物仓库时不发布。
type Pipeline struct {
	digest core.Digest
	linker *link.Linker
	repo   *cstore.Repository
	store  storage.Store
	os     target.OS
	sink   *diag.Sink
	log    logrus.FieldLogger
}

type Options struct {
	Digest core.Digest
	Linker *link.Linker
	Repo   *cstore.Repository
	Store  storage.Store
	// 清单未指定 os 时使用的目标平台
	OS   target.OS
	Sink *diag.Sink
	Log  logrus.FieldLogger
}

func New(opts Options) *Pipeline {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.NewSink(log)
	}
	d := opts.Digest
	if d == nil {
		d, _ = core.NewDigest(core.DigestSHA256)
	}
	linker := opts.Linker
	if linker == nil {
		linker = link.NewLinker(nil, link.Options{}, sink, log)
	}
	return &Pipeline{
		digest: d,
		linker: linker,
		repo:   opts.Repo,
		store:  opts.Store,
		os:     opts.OS,
		sink:   sink,
		log:    log,
	}
}

// Unit 是准备好、尚未链接的编译单元
type Unit struct {
	Manifest *manifest.Manifest
	Metas    []attr.Attribute
	Identity core.LinkIdentity
	Job      link.Job
}

// Result 是一个单元的链接结果
type Result struct {
	Identity     core.LinkIdentity
	Output       string
	ArtifactHash types.Hash
}

// Prepare 计算单元的链接身份并组装链接任务
// 致命的元数据错误 (重复的 name/vers) 在这里报告，链接阶段不会被进入。
func (p *Pipeline) Prepare(ctx context.Context, m *manifest.Manifest) (*Unit, error) {
	// 1. 收集链接元数据
	crateAttrs, err := m.CrateAttributes()
	if err != nil {
		return nil, err
	}
	metas, err := attr.Collect(crateAttrs)
	if err != nil {
		return nil, err
	}

	// 2. 解析依赖
	deps, err := p.resolveDeps(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	depHashes := make([]types.MetaHash, 0, len(deps))
	for _, d := range deps {
		if d.Hash != "" {
			depHashes = append(depHashes, d.Hash)
		}
	}

	// 3. 链接身份
	id, err := core.NewCrateHasher(p.digest, p.sink).Identity(metas, depHashes, m.Output)
	if err != nil {
		return nil, err
	}

	return &Unit{
		Manifest: m,
		Metas:    metas,
		Identity: id,
		Job: link.Job{
			Object:     m.Object,
			Output:     m.Output,
			Identity:   id,
			Library:    m.Library,
			Deps:       deps,
			Libs:       m.Libs,
			SearchDirs: m.SearchDirs,
			OS:         m.TargetOS(p.os),
			SaveTemps:  m.SaveTemps,
		},
	}, nil
}

func (p *Pipeline) resolveDeps(ctx context.Context, m *manifest.Manifest) ([]link.Dependency, error) {
	deps := make([]link.Dependency, 0, len(m.Deps))
	for _, spec := range m.Deps {
		if spec.Path != "" {
			deps = append(deps, pathDependency(spec, m.TargetOS(p.os)))
			continue
		}
		if p.repo == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoCrateStore, spec.Name)
		}
		resolved, err := p.repo.ResolveDeps(ctx, []cstore.DepRef{{
			Name: spec.Name,
			Vers: spec.Vers,
			Hash: types.MetaHash(spec.Hash),
		}})
		if err != nil {
			return nil, err
		}
		deps = append(deps, resolved...)
	}
	return deps, nil
}

// pathDependency 按路径给出的依赖：CMH 优先取清单里的值，否则从文件名解析
func pathDependency(spec manifest.DepSpec, o target.OS) link.Dependency {
	dep := link.Dependency{Path: spec.Path, Hash: types.MetaHash(spec.Hash)}
	if dep.Hash != "" {
		return dep
	}
	if _, hash, _, ok := target.ArchiveName(spec.Path); ok {
		dep.Hash = types.MetaHash(hash)
	} else if p, err := target.Lookup(o); err == nil {
		if _, hash, _, ok := p.LibName(spec.Path); ok {
			dep.Hash = types.MetaHash(hash)
		}
	}
	return dep
}

// Run 准备并链接所有清单
// 身份按顺序同步计算；链接阶段并行执行。任何一个单元准备失败，都不会启动任何链接。
func (p *Pipeline) Run(ctx context.Context, manifests []*manifest.Manifest, parallelism int) ([]Result, error) {
	units := make([]*Unit, 0, len(manifests))
	jobs := make([]link.Job, 0, len(manifests))
	for _, m := range manifests {
		u, err := p.Prepare(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Source, err)
		}
		units = append(units, u)
		jobs = append(jobs, u.Job)
	}

	outputs, err := p.linker.LinkAll(ctx, jobs, parallelism)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(units))
	for i, u := range units {
		results[i] = Result{Identity: u.Identity, Output: outputs[i]}

		if err := p.record(ctx, u, outputs[i]); err != nil {
			return nil, err
		}
		if p.store != nil && u.Job.Library {
			h, err := p.Publish(ctx, u.Identity, outputs[i])
			if err != nil {
				return nil, err
			}
			results[i].ArtifactHash = h
		}
	}
	return results, nil
}

func (p *Pipeline) record(ctx context.Context, u *Unit, output string) error {
	if p.repo == nil {
		return nil
	}
	kind := cstore.KindExecutable
	if u.Job.Library {
		kind = cstore.KindShared
	}
	rec, err := cstore.NewUnit(u.Identity, kind, output, u.Manifest.LinkArgs, u.Metas)
	if err != nil {
		return err
	}
	return p.repo.RecordUnit(ctx, rec)
}

// Publish 把产物存入产物仓库，并在 crate store 中记下内容哈希
func (p *Pipeline) Publish(ctx context.Context, id core.LinkIdentity, path string) (types.Hash, error) {
	if p.store == nil {
		return "", fmt.Errorf("no artifact store configured")
	}
	art, err := storage.ReadArtifact(path)
	if err != nil {
		return "", err
	}
	if err := p.store.Put(ctx, art); err != nil {
		return "", fmt.Errorf("failed to publish %s: %w", art.Filename(), err)
	}
	p.log.WithFields(logrus.Fields{"unit": id.String(), "artifact": art.ID().Short()}).Info("published")

	if p.repo != nil && !id.IsZero() {
		err := p.repo.SetArtifactHash(ctx, id.Name(), id.Vers(), id.ExtrasHash(), art.ID())
		switch {
		case errors.Is(err, cstore.ErrUnitNotFound):
			// 没有登记过的单元：产物照样入库，只是不关联
			p.log.WithField("unit", id.String()).Debug("unit not recorded, artifact left unlinked")
		case err != nil:
			return "", err
		}
	}
	return art.ID(), nil
}

// Register 把已有的库文件登记进 crate store (不链接)
func (p *Pipeline) Register(ctx context.Context, found []filesearch.Found) (int, error) {
	if p.repo == nil {
		return 0, ErrNoCrateStore
	}
	for _, f := range found {
		kind := cstore.KindShared
		if f.Archive {
			kind = cstore.KindArchive
		}
		rec, err := cstore.NewUnit(core.NewLinkIdentity(f.Name, f.Vers, f.Hash), kind, f.Path, nil, nil)
		if err != nil {
			return 0, err
		}
		if err := p.repo.RecordUnit(ctx, rec); err != nil {
			return 0, err
		}
	}
	return len(found), nil
}

func (p *Pipeline) Sink() *diag.Sink { return p.sink }
