package link

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExternalTool 标记所有外部工具 (链接器、调试符号工具) 的失败
var ErrExternalTool = errors.New("external tool failed")

// ToolError 携带诊断外部工具失败所需的全部信息
type ToolError struct {
	Tool     string
	ExitCode int
	Args     []string
	Output   []byte
	// 进程无法启动时的底层错误
	Err error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	if e.Err != nil {
		fmt.Fprintf(&b, "could not run `%s`: %v", e.Tool, e.Err)
	} else {
		fmt.Fprintf(&b, "linking with `%s` failed with code %d", e.Tool, e.ExitCode)
	}
	fmt.Fprintf(&b, "\nnote: %s %s", e.Tool, strings.Join(e.Args, " "))
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		fmt.Fprintf(&b, "\nnote: %s", out)
	}
	return b.String()
}

func (e *ToolError) Is(target error) bool { return target == ErrExternalTool }
func (e *ToolError) Unwrap() error        { return e.Err }
