package link

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"linkforge/pkg/core"
	"linkforge/pkg/target"
	"linkforge/pkg/types"
)

// Dependency 是一个已经编译好的依赖单元
type Dependency struct {
	// 静态库 (.rlib/.a) 或共享库的路径
	Path string
	// 依赖单元的 CMH，参与当前单元的身份计算
	Hash types.MetaHash
	// 依赖单元在自身编译时累积、需要向下传递的链接参数
	LinkArgs []string
}

// IsArchive 报告依赖是否按路径静态链接
func (d Dependency) IsArchive() bool {
	switch filepath.Ext(d.Path) {
	case target.ArchiveExt, ".a":
		return true
	}
	return false
}

// Job 描述一个编译单元的链接阶段
type Job struct {
	Object   string
	Output   string
	Identity core.LinkIdentity
	Library  bool

	Deps       []Dependency
	Libs       []string
	SearchDirs []string

	OS        target.OS
	SaveTemps bool
}

// Options 是所有链接任务共享的工具链设置
type Options struct {
	// 覆盖平台默认链接器
	Linker string
	// 运行时支持库名 (-l 参数) 及其目录
	RuntimeLib    string
	RuntimeLibDir string
	// 目标相关的前置参数，紧跟在运行时库目录之后
	PreArgs []string
}

const DefaultRuntimeLib = "lfrt"

// DefaultRuntimeLibDir 是安装目录下的 lib：<可执行文件目录>/../lib
// 拿不到可执行文件路径时退回相对路径 "lib"。
func DefaultRuntimeLibDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "lib"
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "..", "lib")
}

// Command 是组装完成、可以直接执行的链接器调用
type Command struct {
	Tool   string
	Args   []string
	Output string
}

func (c Command) String() string {
	return c.Tool + " " + strings.Join(c.Args, " ")
}

// OutputPath 计算真正的输出路径
// 构建库时文件名由平台和链接身份决定，只保留调用方给出的目录；
// 构建可执行文件时原样使用调用方的路径。
func OutputPath(job Job) (string, error) {
	if !job.Library {
		return job.Output, nil
	}
	if job.Identity.IsZero() {
		return "", fmt.Errorf("library output requires a link identity")
	}
	name, err := target.DLLFilename(job.OS, job.Identity)
	if err != nil {
		return "", err
	}
	dir := "."
	if job.Output != "" {
		dir = filepath.Dir(job.Output)
	}
	return filepath.Join(dir, name), nil
}

// BuildCommand 按固定顺序组装链接器参数；除了定位默认运行时库目录，不接触文件系统
func BuildCommand(job Job, opts Options) (Command, error) {
	p, err := target.Lookup(job.OS)
	if err != nil {
		return Command{}, err
	}
	out, err := OutputPath(job)
	if err != nil {
		return Command{}, err
	}

	tool := p.Linker
	if opts.Linker != "" {
		tool = opts.Linker
	}
	rt := opts.RuntimeLib
	if rt == "" {
		rt = DefaultRuntimeLib
	}

	var args []string

	// 1. 运行时库目录、目标前置参数、输出和目标文件
	rtDir := opts.RuntimeLibDir
	if rtDir == "" {
		rtDir = DefaultRuntimeLibDir()
	}
	args = append(args, "-L"+rtDir)
	args = append(args, opts.PreArgs...)
	args = append(args, "-o", out, job.Object)

	// 2. 依赖：静态库按路径，共享库按 -L 目录 + -l 名字
	var rpathDirs []string
	for _, dep := range job.Deps {
		if dep.IsArchive() {
			args = append(args, dep.Path)
			continue
		}
		dir := filepath.Dir(dep.Path)
		if dir != "" && dir != "." {
			args = append(args, "-L"+dir)
			rpathDirs = append(rpathDirs, dir)
		}
		stem := strings.TrimSuffix(filepath.Base(dep.Path), filepath.Ext(dep.Path))
		args = append(args, "-l"+p.Unlib(stem))
	}

	// 3. 依赖传递下来的链接参数
	for _, dep := range job.Deps {
		args = append(args, dep.LinkArgs...)
	}

	// 4. 用户的搜索目录和额外库
	for _, dir := range job.SearchDirs {
		args = append(args, "-L"+dir)
	}
	rpathDirs = append(rpathDirs, job.SearchDirs...)
	for _, lib := range job.Libs {
		args = append(args, "-l"+lib)
	}

	// 5. 库模式
	if job.Library {
		args = append(args, p.LibFlag)
		if p.InstallName {
			args = append(args, "-Wl,-install_name,@rpath/"+filepath.Base(out))
		}
	}

	// 6. 运行时支持库和平台隐式库
	args = append(args, "-l"+rt)
	args = append(args, p.ImplicitLibs...)
	args = append(args, p.ExtraFlags...)
	if p.Morestack {
		args = append(args, "-lmorestack")
	}

	// 7. rpath
	args = append(args, RpathFlags(p, filepath.Dir(out), rpathDirs)...)

	return Command{Tool: tool, Args: args, Output: out}, nil
}

// RpathFlags 生成运行时库搜索路径
// 先是相对输出目录的路径 (随产物一起移动仍然有效)，再是绝对路径；重复项只保留第一次出现。
func RpathFlags(p target.Platform, outDir string, dirs []string) []string {
	if p.RpathOrigin == "" || len(dirs) == 0 {
		return nil
	}

	absOut := absPath(outDir)
	seen := make(map[string]struct{})
	var rel, abs []string
	add := func(list *[]string, path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		*list = append(*list, path)
	}

	for _, dir := range dirs {
		absDir := absPath(dir)
		if r, err := filepath.Rel(absOut, absDir); err == nil {
			if r == "." {
				add(&rel, p.RpathOrigin)
			} else {
				add(&rel, p.RpathOrigin+"/"+filepath.ToSlash(r))
			}
		}
		add(&abs, absDir)
	}

	flags := make([]string, 0, len(rel)+len(abs))
	for _, path := range append(rel, abs...) {
		flags = append(flags, "-Wl,-rpath,"+path)
	}
	return flags
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}
