// Package diag 收集链接阶段产生的非致命警告
// 警告只累积和上报，永远不会中断流程；致命错误走普通的 error 返回值。
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Kind 区分警告的来源
type Kind string

const (
	// MetadataDefaultApplied: 缺少 name/vers，使用了推断出的默认值
	MetadataDefaultApplied Kind = "metadata_default_applied"
	// CleanupWarning: 临时目标文件删除失败
	CleanupWarning Kind = "cleanup_warning"
	// SupportToolWarning: dsymutil 这类尽力而为的辅助工具失败
	SupportToolWarning Kind = "support_tool_warning"
)

type Warning struct {
	Kind    Kind
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("warning[%s]: %s", w.Kind, w.Message) }

// Sink 是并发安全的警告收集器，同时把每条警告转发给 logrus
type Sink struct {
	mu       sync.Mutex
	warnings []Warning
	log      logrus.FieldLogger
}

// NewSink 创建收集器；log 为 nil 时丢弃日志输出
func NewSink(log logrus.FieldLogger) *Sink {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Sink{log: log}
}

// Warn 记录一条警告
func (s *Sink) Warn(kind Kind, format string, args ...any) {
	w := Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}

	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()

	s.log.WithField("kind", string(kind)).Warn(w.Message)
}

// Warnings 返回当前警告的副本
func (s *Sink) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Count 返回某一类警告的数量；kind 为空时返回总数
func (s *Sink) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == "" {
		return len(s.warnings)
	}
	n := 0
	for _, w := range s.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// NewLogger 按配置的级别创建 logrus 日志器，输出到 stderr
func NewLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}
