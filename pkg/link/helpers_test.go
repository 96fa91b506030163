package link

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"linkforge/pkg/core"
	"linkforge/pkg/diag"

	"github.com/stretchr/testify/require"
)

type call struct {
	Name string
	Args []string
}

// fakeRunner 记录每次调用，并按程序名返回预设结果
type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	results map[string]Result
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string]Result), errs: make(map[string]error)}
}

func (f *fakeRunner) Run(name string, args []string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Name: name, Args: append([]string(nil), args...)})
	if err, ok := f.errs[name]; ok {
		return Result{ExitCode: -1}, err
	}
	return f.results[name], nil
}

func (f *fakeRunner) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func testIdentity() core.LinkIdentity {
	return core.NewLinkIdentity("foo", "0.1", "abcd1234abcd1234")
}

// writeObject 在临时目录里放一个假的目标文件
func writeObject(t *testing.T, dir string) string {
	t.Helper()
	obj := filepath.Join(dir, "foo.o")
	require.NoError(t, os.WriteFile(obj, []byte("\x7fELF"), 0644))
	return obj
}

func newTestLinker(r Runner) (*Linker, *diag.Sink) {
	sink := diag.NewSink(nil)
	return NewLinker(r, Options{RuntimeLibDir: "/rt"}, sink, nil), sink
}
