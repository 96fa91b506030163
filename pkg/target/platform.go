package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"linkforge/pkg/types"
)

// Platform 是单个 OS 的全部链接约定
// 所有平台差异都集中在 platforms 这张静态表里，链接逻辑本身不做 OS 分支。
type Platform struct {
	OS OS

	// 共享库文件名前后缀
	DLLPrefix string
	DLLSuffix string

	// 默认链接器程序
	Linker string

	// 构建库时追加的参数
	LibFlag string
	// 构建库时是否追加 -install_name (让库可以被 rpath 定位)
	InstallName bool

	// 依赖库 stem 是否去掉 "lib" 前缀再作为 -l 参数
	StripLibPrefix bool

	// 运行时间接依赖、需要显式声明的系统库
	ImplicitLibs []string
	// 固定追加的平台参数 (例如关闭 compact unwind)
	ExtraFlags []string
	// 是否静态链接 __morestack
	Morestack bool

	// rpath 中表示“可执行文件所在目录”的前缀；为空表示平台不支持 rpath
	RpathOrigin string

	// 链接后运行的调试符号提取工具，为空表示不需要
	DebugSymbolTool string
}

var platforms = map[OS]Platform{
	Linux: {
		OS:             Linux,
		DLLPrefix:      "lib",
		DLLSuffix:      ".so",
		Linker:         "cc",
		LibFlag:        "-shared",
		StripLibPrefix: true,
		// librt/libdl 是运行时的间接依赖，binutils 2.22+ 不会自动加入
		// frem 会变成对 fmod 的调用，需要 libm
		ImplicitLibs: []string{"-lrt", "-ldl", "-lm"},
		Morestack:    true,
		RpathOrigin:  "$ORIGIN",
	},
	MacOS: {
		OS:             MacOS,
		DLLPrefix:      "lib",
		DLLSuffix:      ".dylib",
		Linker:         "cc",
		LibFlag:        "-dynamiclib",
		InstallName:    true,
		StripLibPrefix: true,
		// 链接器生成的 compact unwind 信息无法展开 __morestack 栈帧
		ExtraFlags:      []string{"-Wl,-no_compact_unwind"},
		Morestack:       true,
		RpathOrigin:     "@loader_path",
		DebugSymbolTool: "dsymutil",
	},
	Windows: {
		OS:        Windows,
		DLLPrefix: "",
		DLLSuffix: ".dll",
		Linker:    "gcc",
		LibFlag:   "-shared",
		Morestack: true,
	},
	FreeBSD: {
		OS:             FreeBSD,
		DLLPrefix:      "lib",
		DLLSuffix:      ".so",
		Linker:         "cc",
		LibFlag:        "-shared",
		StripLibPrefix: true,
		ImplicitLibs: []string{
			"-pthread", "-lrt",
			"-L/usr/local/lib", "-lexecinfo",
			"-L/usr/local/lib/gcc46", "-L/usr/local/lib/gcc44", "-lstdc++",
			"-Wl,-z,origin",
			"-Wl,-rpath,/usr/local/lib/gcc46", "-Wl,-rpath,/usr/local/lib/gcc44",
		},
		Morestack:   true,
		RpathOrigin: "$ORIGIN",
	},
	Android: {
		OS:             Android,
		DLLPrefix:      "lib",
		DLLSuffix:      ".so",
		Linker:         "arm-linux-androideabi-g++",
		LibFlag:        "-shared",
		StripLibPrefix: true,
		ImplicitLibs:   []string{"-ldl", "-llog", "-lsupc++", "-lgnustl_shared", "-lm"},
		RpathOrigin:    "$ORIGIN",
	},
}

// Lookup 返回 OS 的平台描述
func Lookup(o OS) (Platform, error) {
	p, ok := platforms[o]
	if !ok {
		return Platform{}, fmt.Errorf("no platform table entry for %s", o)
	}
	return p, nil
}

// MustLookup 用于 OS 值来自枚举常量的场合
func MustLookup(o OS) Platform {
	p, err := Lookup(o)
	if err != nil {
		panic(err)
	}
	return p
}

// DLLFilename 返回共享库的文件名: {prefix}{name}-{hash}-{vers}{suffix}
func (p Platform) DLLFilename(name, extrasHash, vers string) string {
	return p.DLLPrefix + fmt.Sprintf("%s-%s-%s", name, extrasHash, vers) + p.DLLSuffix
}

// Unlib 把库文件 stem 转成 -l 参数: "libfoo" -> "foo"
func (p Platform) Unlib(stem string) string {
	if p.StripLibPrefix && strings.HasPrefix(stem, "lib") {
		return stem[len("lib"):]
	}
	return stem
}

// LibName 是 DLLFilename 的逆操作
// 成功时返回 (name, hash, vers)；名字本身可以包含 '-'，所以从右往左切。
func (p Platform) LibName(filename string) (name, extrasHash, vers string, ok bool) {
	base := filepath.Base(filename)
	if !strings.HasPrefix(base, p.DLLPrefix) || !strings.HasSuffix(base, p.DLLSuffix) {
		return "", "", "", false
	}
	core := strings.TrimSuffix(strings.TrimPrefix(base, p.DLLPrefix), p.DLLSuffix)
	return splitLibCore(core)
}

// ArchiveName 解析静态库文件名: lib{name}-{hash}-{vers}.rlib
func ArchiveName(filename string) (name, extrasHash, vers string, ok bool) {
	base := filepath.Base(filename)
	if filepath.Ext(base) != ArchiveExt {
		return "", "", "", false
	}
	core := strings.TrimPrefix(strings.TrimSuffix(base, ArchiveExt), "lib")
	return splitLibCore(core)
}

// ArchiveExt 是静态库依赖的扩展名
const ArchiveExt = ".rlib"

// splitLibCore 切分 {name}-{hash}-{vers}
// name 和 vers 都可能含 '-'，以最右边一个合法的 CMH 段为界。
func splitLibCore(core string) (name, extrasHash, vers string, ok bool) {
	parts := strings.Split(core, "-")
	for i := len(parts) - 2; i >= 1; i-- {
		if !types.MetaHash(parts[i]).IsValid() {
			continue
		}
		name = strings.Join(parts[:i], "-")
		vers = strings.Join(parts[i+1:], "-")
		if name == "" || vers == "" {
			return "", "", "", false
		}
		return name, parts[i], vers, true
	}
	return "", "", "", false
}
