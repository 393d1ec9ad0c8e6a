package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Executor runs git commands. It is the seam tests replace.
type Executor interface {
	RunInDir(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecError carries git's stderr so callers can recognise benign failures.
type ExecError struct {
	Args   []string
	Dir    string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("git %s failed in %s: %v\nstderr: %s",
		strings.Join(e.Args, " "), e.Dir, e.Err, e.Stderr)
}

func (e *ExecError) Unwrap() error { return e.Err }

// RealExecutor shells out to the git binary found in PATH.
type RealExecutor struct{}

func NewExecutor() Executor {
	return &RealExecutor{}
}

func (e *RealExecutor) RunInDir(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ExecError{Args: args, Dir: dir, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// MockExecutor implements Executor for testing.
type MockExecutor struct {
	// RunInDirFunc is called when RunInDir is invoked
	RunInDirFunc func(dir string, args ...string) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall represents a recorded call to the mock executor
type MockCall struct {
	Dir  string
	Args []string
}

func (m *MockExecutor) RunInDir(_ context.Context, dir string, args ...string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Dir: dir, Args: args})
	m.mu.Unlock()

	if m.RunInDirFunc == nil {
		return "", nil
	}
	return m.RunInDirFunc(dir, args...)
}

// Calls returns a copy of the recorded calls.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
