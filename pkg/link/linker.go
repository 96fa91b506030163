package link

import (
	"context"
	"fmt"
	"os"

	"linkforge/pkg/diag"
	"linkforge/pkg/target"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Linker 执行链接阶段
// 自身不持有可变状态，可以被多个 goroutine 同时用于不同单元。
type Linker struct {
	runner Runner
	opts   Options
	sink   *diag.Sink
	log    logrus.FieldLogger
}

func NewLinker(runner Runner, opts Options, sink *diag.Sink, log logrus.FieldLogger) *Linker {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		log = l
	}
	if sink == nil {
		sink = diag.NewSink(log)
	}
	return &Linker{runner: runner, opts: opts, sink: sink, log: log}
}

func (l *Linker) Sink() *diag.Sink { return l.sink }

// Link 链接一个单元，返回最终产物路径
// 链接阶段不可中断：ctx 已经取消时直接返回，不会启动链接器。
func (l *Linker) Link(ctx context.Context, job Job) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("link stage not entered: %w", err)
	}

	cmd, err := BuildCommand(job, l.opts)
	if err != nil {
		return "", fmt.Errorf("failed to build link command: %w", err)
	}

	log := l.log.WithFields(logrus.Fields{
		"unit":   job.Identity.String(),
		"output": cmd.Output,
	})
	log.WithField("cmd", cmd.String()).Debug("running linker")

	// 1. 链接
	res, err := l.runner.Run(cmd.Tool, cmd.Args)
	if err != nil {
		return "", &ToolError{Tool: cmd.Tool, ExitCode: res.ExitCode, Args: cmd.Args, Output: res.Output, Err: err}
	}
	if res.ExitCode != 0 {
		// 目标文件保留在磁盘上，供诊断使用
		return "", &ToolError{Tool: cmd.Tool, ExitCode: res.ExitCode, Args: cmd.Args, Output: res.Output}
	}

	// 2. 调试符号提取 (尽力而为)
	p := target.MustLookup(job.OS)
	if p.DebugSymbolTool != "" {
		l.extractDebugSymbols(p.DebugSymbolTool, cmd.Output)
	}

	// 3. 清理中间目标文件
	if !job.SaveTemps {
		if err := os.Remove(job.Object); err != nil {
			l.sink.Warn(diag.CleanupWarning, "failed to remove %s: %v", job.Object, err)
		}
	}

	log.Info("linked")
	return cmd.Output, nil
}

func (l *Linker) extractDebugSymbols(tool, output string) {
	args := []string{output}
	res, err := l.runner.Run(tool, args)
	if err != nil {
		l.sink.Warn(diag.SupportToolWarning, "could not run `%s`: %v", tool, err)
		return
	}
	if res.ExitCode != 0 {
		l.sink.Warn(diag.SupportToolWarning, "`%s %s` exited with code %d: %s", tool, output, res.ExitCode, res.Output)
	}
}

// LinkAll 并行链接互不依赖的单元
// 返回的路径与 jobs 一一对应；任一单元失败后，尚未开始的单元不再进入链接阶段。
func (l *Linker) LinkAll(ctx context.Context, jobs []Job, parallelism int) ([]string, error) {
	outputs := make([]string, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, job := range jobs {
		g.Go(func() error {
			out, err := l.Link(gctx, job)
			if err != nil {
				return fmt.Errorf("unit %s: %w", job.Identity, err)
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
