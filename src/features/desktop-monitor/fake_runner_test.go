package desktopmonitor

import (
	"context"
	"strings"
	"sync"

	"github.com/ln64-git/hyprarrange/src/utility"
)

type call struct {
	name string
	args []string
}

// fakeRunner answers commands from a table keyed by "name arg1 arg2 ..."
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]*utility.Result
	errs    map[string]error
	calls   []call
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string]*utility.Result),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) on(command, stdout string) *fakeRunner {
	f.results[command] = &utility.Result{Stdout: stdout, Command: command}
	return f
}

func (f *fakeRunner) Execute(_ context.Context, name string, args []string, _ *utility.ExecOptions) (*utility.Result, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})

	if err, ok := f.errs[key]; ok {
		return &utility.Result{ExitCode: -1, Command: key}, err
	}
	if r, ok := f.results[key]; ok {
		return r, nil
	}
	return &utility.Result{ExitCode: 1, Stderr: "unexpected command", Command: key}, nil
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
	}
	return out
}

func envWith(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func hyprlandEnv() func(string) string {
	return envWith(map[string]string{hyprlandSignatureEnv: "abc_123"})
}

func newTestHyprctl(runner utility.Runner, getenv func(string) string) *Hyprctl {
	h := NewHyprctl(runner, 0)
	h.getenv = getenv
	return h
}
