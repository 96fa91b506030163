// Package link 负责组装并执行外部链接器调用
package link

import (
	"errors"
	"fmt"
	"os/exec"
)

// Result 是一次外部进程执行的结果
type Result struct {
	ExitCode int
	// stdout 与 stderr 合并后的输出
	Output []byte
}

// Runner 抽象“执行一个外部程序”
// 生产环境使用 ExecRunner，测试里替换成记录调用的假实现。
type Runner interface {
	Run(name string, args []string) (Result, error)
}

// ExecRunner 通过 os/exec 启动真实进程
type ExecRunner struct {
	// 工作目录，为空时继承当前进程
	Dir string
	// 额外的环境变量 (KEY=VALUE)，追加在当前环境之后
	Env []string
}

// Run 执行程序并等待其退出
// 非零退出码不是 error：它通过 Result.ExitCode 返回，由调用方解释。
// 只有进程无法启动 (例如程序不存在) 时才返回 error。
func (r ExecRunner) Run(name string, args []string) (Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Output: out}, nil
		}
		return Result{ExitCode: -1, Output: out}, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return Result{ExitCode: 0, Output: out}, nil
}
