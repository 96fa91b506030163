// Package filesearch 在库搜索目录里查找已经构建好的单元
package filesearch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"linkforge/pkg/ignore"
	"linkforge/pkg/target"
	"linkforge/pkg/types"
)

// Found 是一个按命名约定识别出的库文件
type Found struct {
	Path    string
	Name    string
	Hash    types.MetaHash
	Vers    string
	Archive bool
}

// Search 遍历 dirs，返回符合目标平台库命名约定的文件
// 每个目录各自读取自己的 .lfignore；结果按路径排序。
// 不存在的目录被跳过，与链接器对 -L 的处理一致。
func Search(dirs []string, o target.OS) ([]Found, error) {
	p, err := target.Lookup(o)
	if err != nil {
		return nil, err
	}

	var found []Found
	for _, root := range dirs {
		matcher, err := ignore.NewMatcher(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load ignore rules in %s: %w", root, err)
		}

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// 根目录不存在
				if path == root && errorIsNotExist(err) {
					return filepath.SkipDir
				}
				return err
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			if rel != "." && matcher.Matches(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			if f, ok := classify(p, path); ok {
				found = append(found, f)
			}
			return nil
		}

		if err := filepath.WalkDir(root, walkFn); err != nil {
			return nil, fmt.Errorf("walk failed: %w", err)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func classify(p target.Platform, path string) (Found, bool) {
	if name, hash, vers, ok := target.ArchiveName(path); ok {
		return Found{Path: path, Name: name, Hash: types.MetaHash(hash), Vers: vers, Archive: true}, validHash(hash)
	}
	if name, hash, vers, ok := p.LibName(path); ok {
		return Found{Path: path, Name: name, Hash: types.MetaHash(hash), Vers: vers}, validHash(hash)
	}
	return Found{}, false
}

// 只接受完整宽度的 CMH，避免把 libfoo-1-2.so 这类普通库误认为单元
func validHash(h string) bool {
	return types.MetaHash(h).IsValid()
}

func errorIsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
