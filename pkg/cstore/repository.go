package cstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkforge/pkg/link"
	"linkforge/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnitNotFound  = errors.New("unit not found in crate store")
	ErrAmbiguousUnit = errors.New("dependency matches more than one unit")
)

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// DepRef 是对依赖单元的引用；Vers 和 Hash 为空时表示不限定
type DepRef struct {
	Name string
	Vers string
	Hash types.MetaHash
}

func (r DepRef) String() string {
	s := r.Name
	if r.Vers != "" {
		s += "#" + r.Vers
	}
	if r.Hash != "" {
		s += "@" + r.Hash.String()
	}
	return s
}

// -----------------------------------------------------------------------------
// 1. 写入
// -----------------------------------------------------------------------------

// RecordUnit 写入单元记录 (幂等)
// 同一身份重复链接时更新路径、链接参数和时间戳。
func (r *Repository) RecordUnit(ctx context.Context, u *Unit) error {
	if u.LinkedAt.IsZero() {
		u.LinkedAt = time.Now()
	}
	err := r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}, {Name: "vers"}, {Name: "extras_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"kind", "path", "link_args", "attrs", "linked_at", "updated_at",
			}),
		}).
		Create(u).Error
	if err != nil {
		return fmt.Errorf("failed to record unit %s: %w", u.Name, err)
	}
	return nil
}

// SetArtifactHash 记录单元产物在产物仓库中的哈希
func (r *Repository) SetArtifactHash(ctx context.Context, name, vers string, extras types.MetaHash, hash types.Hash) error {
	result := r.db.GetConn().WithContext(ctx).
		Model(&Unit{}).
		Where("name = ? AND vers = ? AND extras_hash = ?", name, vers, extras.String()).
		Update("artifact_hash", hash.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnitNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// 2. 查询
// -----------------------------------------------------------------------------

func (r *Repository) GetUnit(ctx context.Context, name, vers string, extras types.MetaHash) (*Unit, error) {
	var u Unit
	err := r.db.GetConn().WithContext(ctx).
		Where("name = ? AND vers = ? AND extras_hash = ?", name, vers, extras.String()).
		First(&u).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByName 返回同名的所有单元，最近链接的在前
func (r *Repository) FindByName(ctx context.Context, name string) ([]Unit, error) {
	var units []Unit
	err := r.db.GetConn().WithContext(ctx).
		Where("name = ?", name).
		Order("linked_at DESC").
		Find(&units).Error
	return units, err
}

// List 返回所有单元，按名字排序
func (r *Repository) List(ctx context.Context, limit int) ([]Unit, error) {
	var units []Unit
	q := r.db.GetConn().WithContext(ctx).Order("name ASC, vers ASC, extras_hash ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&units).Error
	return units, err
}

// Resolve 找到引用唯一对应的库单元；可执行文件不能作为依赖
func (r *Repository) Resolve(ctx context.Context, ref DepRef) (*Unit, error) {
	q := r.db.GetConn().WithContext(ctx).
		Where("name = ?", ref.Name).
		Where("kind <> ?", KindExecutable)
	if ref.Vers != "" {
		q = q.Where("vers = ?", ref.Vers)
	}
	if ref.Hash != "" {
		q = q.Where("extras_hash = ?", ref.Hash.String())
	}

	var units []Unit
	if err := q.Order("linked_at DESC").Limit(2).Find(&units).Error; err != nil {
		return nil, err
	}

	switch len(units) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, ref)
	case 1:
		return &units[0], nil
	default:
		return nil, fmt.Errorf("%w: %s (e.g. %s and %s)", ErrAmbiguousUnit, ref,
			units[0].Identity(), units[1].Identity())
	}
}

// ResolveDeps 把依赖引用解析成链接器输入
// 返回的依赖顺序与 refs 一致，每个依赖都带着自己的 CMH 和链接参数。
func (r *Repository) ResolveDeps(ctx context.Context, refs []DepRef) ([]link.Dependency, error) {
	deps := make([]link.Dependency, 0, len(refs))
	for _, ref := range refs {
		u, err := r.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		args, err := u.LinkArgList()
		if err != nil {
			return nil, err
		}
		deps = append(deps, link.Dependency{
			Path:     u.Path,
			Hash:     types.MetaHash(u.ExtrasHash),
			LinkArgs: args,
		})
	}
	return deps, nil
}
