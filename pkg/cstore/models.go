package cstore

import (
	"encoding/json"
	"fmt"
	"time"

	"linkforge/pkg/core"
	"linkforge/pkg/types"

	"gorm.io/datatypes"
)

// Kind 是单元产物的形态
type Kind string

const (
	KindArchive    Kind = "archive"
	KindShared     Kind = "shared"
	KindExecutable Kind = "exe"
)

// Unit 是一个已链接单元在数据库中的记录
// (name, vers, extras_hash) 就是链接身份，三者共同构成主键。
type Unit struct {
	Name       string `gorm:"primaryKey;type:varchar(255)"`
	Vers       string `gorm:"primaryKey;type:varchar(64)"`
	ExtrasHash string `gorm:"primaryKey;type:char(16)"`

	Kind Kind   `gorm:"type:varchar(16);not null"`
	Path string `gorm:"type:text;not null"`

	// 发布到产物仓库后的内容哈希，未发布时为空
	ArtifactHash string `gorm:"type:varchar(64);index"`

	// 需要向依赖方传递的链接参数 ["-lz", ...]
	LinkArgs datatypes.JSON
	// 参与 CMH 计算的导出属性
	Attrs datatypes.JSON

	LinkedAt  time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Unit) TableName() string {
	return "units"
}

// Identity 还原链接身份
func (u *Unit) Identity() core.LinkIdentity {
	return core.NewLinkIdentity(u.Name, u.Vers, types.MetaHash(u.ExtrasHash))
}

// LinkArgList 解码 LinkArgs
func (u *Unit) LinkArgList() ([]string, error) {
	if len(u.LinkArgs) == 0 {
		return nil, nil
	}
	var args []string
	if err := json.Unmarshal(u.LinkArgs, &args); err != nil {
		return nil, fmt.Errorf("failed to decode link args of %s: %w", u.Name, err)
	}
	return args, nil
}

// NewUnit 从链接身份构造记录
func NewUnit(id core.LinkIdentity, kind Kind, path string, linkArgs []string, attrs any) (*Unit, error) {
	if linkArgs == nil {
		linkArgs = []string{}
	}
	argsJSON, err := json.Marshal(linkArgs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal link args: %w", err)
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attrs: %w", err)
	}
	return &Unit{
		Name:       id.Name(),
		Vers:       id.Vers(),
		ExtrasHash: id.ExtrasHash().String(),
		Kind:       kind,
		Path:       path,
		LinkArgs:   datatypes.JSON(argsJSON),
		Attrs:      datatypes.JSON(attrsJSON),
		LinkedAt:   time.Now(),
	}, nil
}
