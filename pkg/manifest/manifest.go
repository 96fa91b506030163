// Package manifest 读取描述一个编译单元链接阶段的清单文件
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"linkforge/pkg/attr"
	"linkforge/pkg/target"

	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid manifest")

// AttrSpec 是清单中的一条属性
// 只有 name 时是 word；有 value 时是 name = value；有 items 时是列表。
type AttrSpec struct {
	Name  string     `mapstructure:"name"`
	Value *string    `mapstructure:"value"`
	Type  string     `mapstructure:"type"` // str (默认) | int | float | bool
	Items []AttrSpec `mapstructure:"items"`
}

// DepSpec 引用一个依赖单元
// 给出 path 时直接使用该文件；否则按 name/vers/hash 在 crate store 中查找。
type DepSpec struct {
	Name string `mapstructure:"name"`
	Vers string `mapstructure:"vers"`
	Hash string `mapstructure:"hash"`
	Path string `mapstructure:"path"`
}

// Manifest 对应一个清单文件
type Manifest struct {
	Object  string `mapstructure:"object"`
	Output  string `mapstructure:"output"`
	Library bool   `mapstructure:"library"`

	// link(...) 中的链接元数据
	Link []AttrSpec `mapstructure:"link"`
	// 其它 crate 级属性
	Attrs []AttrSpec `mapstructure:"attrs"`

	Deps       []DepSpec `mapstructure:"deps"`
	Libs       []string  `mapstructure:"libs"`
	SearchDirs []string  `mapstructure:"search_dirs"`
	// 依赖本单元的单元需要追加的链接参数
	LinkArgs []string `mapstructure:"link_args"`

	// 覆盖全局 target.os
	OS        string `mapstructure:"os"`
	SaveTemps bool   `mapstructure:"save_temps"`

	// 清单文件自身的路径
	Source string `mapstructure:"-"`
}

// Load 读取清单 (YAML/JSON/TOML，按扩展名判断)
// 清单中的相对路径相对于清单所在目录解析。
func Load(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	m.Source = path

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolvePaths(filepath.Dir(path))
	return &m, nil
}

func (m *Manifest) Validate() error {
	if m.Object == "" {
		return fmt.Errorf("%w: `object` is required", ErrInvalid)
	}
	if m.Output == "" {
		return fmt.Errorf("%w: `output` is required", ErrInvalid)
	}
	for i, d := range m.Deps {
		if d.Path == "" && d.Name == "" {
			return fmt.Errorf("%w: deps[%d] needs `name` or `path`", ErrInvalid, i)
		}
	}
	if m.OS != "" {
		if _, err := target.ParseOS(m.OS); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

func (m *Manifest) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	m.Object = abs(m.Object)
	m.Output = abs(m.Output)
	for i := range m.Deps {
		m.Deps[i].Path = abs(m.Deps[i].Path)
	}
	for i := range m.SearchDirs {
		m.SearchDirs[i] = abs(m.SearchDirs[i])
	}
}

// TargetOS 返回清单指定的 OS，未指定时返回 def
func (m *Manifest) TargetOS(def target.OS) target.OS {
	if m.OS == "" {
		return def
	}
	o, err := target.ParseOS(m.OS)
	if err != nil {
		return def
	}
	return o
}

// CrateAttributes 把清单转换成 crate 级属性列表
// link 段被包装成一个 link(...) 列表属性，交给 attr.Collect 处理。
func (m *Manifest) CrateAttributes() ([]attr.Attribute, error) {
	out := make([]attr.Attribute, 0, len(m.Attrs)+1)
	for _, s := range m.Attrs {
		a, err := s.Attribute()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if len(m.Link) > 0 {
		items := make([]attr.Attribute, 0, len(m.Link))
		for _, s := range m.Link {
			a, err := s.Attribute()
			if err != nil {
				return nil, err
			}
			items = append(items, a)
		}
		out = append(out, attr.List(attr.LinkAttr, items...))
	}
	return out, nil
}

// Attribute 转换单条属性
func (s AttrSpec) Attribute() (attr.Attribute, error) {
	if s.Name == "" {
		return attr.Attribute{}, fmt.Errorf("%w: attribute without name", ErrInvalid)
	}
	if len(s.Items) > 0 {
		items := make([]attr.Attribute, 0, len(s.Items))
		for _, it := range s.Items {
			a, err := it.Attribute()
			if err != nil {
				return attr.Attribute{}, err
			}
			items = append(items, a)
		}
		return attr.List(s.Name, items...), nil
	}
	if s.Value == nil {
		return attr.Word(s.Name), nil
	}

	lit, err := literal(s.Type, *s.Value)
	if err != nil {
		return attr.Attribute{}, fmt.Errorf("%w: attribute `%s`: %v", ErrInvalid, s.Name, err)
	}
	return attr.NameValue(s.Name, lit), nil
}

func literal(typ, text string) (attr.Literal, error) {
	switch strings.ToLower(typ) {
	case "", "str", "string":
		return attr.Str(text), nil
	case "int":
		return attr.ParseLiteral(attr.LitInt, text)
	case "float":
		return attr.ParseLiteral(attr.LitFloat, text)
	case "bool":
		return attr.ParseLiteral(attr.LitBool, text)
	default:
		return attr.Literal{}, fmt.Errorf("unknown literal type %q", typ)
	}
}
