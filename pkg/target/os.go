// Package target 描述目标平台
// 一个 OS 值驱动文件名前后缀、隐式库以及少数平台相关的链接参数。
package target

import (
	"fmt"
	"runtime"
	"strings"
)

type OS uint8

const (
	Linux OS = iota
	MacOS
	Windows
	FreeBSD
	Android
)

var osNames = map[OS]string{
	Linux:   "linux",
	MacOS:   "macos",
	Windows: "win32",
	FreeBSD: "freebsd",
	Android: "android",
}

// 额外接受的别名 (GOOS 风格)
var osAliases = map[string]OS{
	"darwin":  MacOS,
	"windows": Windows,
	"win64":   Windows,
}

func (o OS) String() string {
	if n, ok := osNames[o]; ok {
		return n
	}
	return fmt.Sprintf("OS(%d)", uint8(o))
}

// ParseOS 解析目标 OS 名字 (不区分大小写)
func ParseOS(s string) (OS, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for o, n := range osNames {
		if n == s {
			return o, nil
		}
	}
	if o, ok := osAliases[s]; ok {
		return o, nil
	}
	return 0, fmt.Errorf("unknown target os %q", s)
}

// Host 返回当前运行平台对应的 OS，未知平台按 Linux 处理
func Host() OS {
	if o, err := ParseOS(runtime.GOOS); err == nil {
		return o
	}
	return Linux
}

// All 按枚举顺序返回所有 OS
func All() []OS {
	return []OS{Linux, MacOS, Windows, FreeBSD, Android}
}
