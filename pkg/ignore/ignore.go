package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 是用户忽略规则文件的名字
const FileName = ".lfignore"

// Matcher 封装了忽略逻辑
// 它负责判断搜索目录下的某个路径是否应该跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 搜索目录 (用于查找 .lfignore 文件)
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 默认规则，强制生效
	defaultRules := []string{
		// --- 元数据目录 ---
		".lf",
		".git",

		// --- 调试符号包，里面的 DWARF 文件名和库名一样 ---
		"*.dSYM",

		// --- 常见垃圾文件 ---
		".DS_Store", // macOS
		"Thumbs.db", // Windows
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 用户规则和默认规则合并编译
	ignoreFilePath := filepath.Join(rootPath, FileName)
	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定的路径是否匹配忽略规则
// path: 相对于搜索目录的路径 (例如 "deps/libfoo.so")
// 返回: true 表示应该忽略
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(filepath.ToSlash(path))
}
