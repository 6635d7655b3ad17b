// Package testutil provides stub capabilities and helpers for lexa tests.
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pablasso/lexa/internal/tool"
)

// Succeed returns a capability that always succeeds with payload.
func Succeed(payload any) tool.Capability {
	return tool.CapabilityFunc(func(ctx context.Context, in tool.Input) tool.Result {
		return tool.Success("", payload)
	})
}

// Fail returns a capability that always reports msg as an error result.
func Fail(msg string) tool.Capability {
	return tool.CapabilityFunc(func(ctx context.Context, in tool.Input) tool.Result {
		return tool.Failure("", errors.New(msg))
	})
}

// Panic returns a capability that panics with msg. Registered through a
// tool.Registry it surfaces as an error result.
func Panic(msg string) tool.Capability {
	return tool.CapabilityFunc(func(ctx context.Context, in tool.Input) tool.Result {
		panic(msg)
	})
}

// Block returns a capability that waits for ctx to end, then fails with
// the context error.
func Block() tool.Capability {
	return tool.CapabilityFunc(func(ctx context.Context, in tool.Input) tool.Result {
		<-ctx.Done()
		return tool.Failure("", ctx.Err())
	})
}

// Gate returns a capability that succeeds with payload once release is
// closed. Entered is closed when the first invocation starts.
func Gate(payload any, release <-chan struct{}) (c tool.Capability, entered <-chan struct{}) {
	ch := make(chan struct{})
	var once sync.Once
	return tool.CapabilityFunc(func(ctx context.Context, in tool.Input) tool.Result {
		once.Do(func() { close(ch) })
		<-release
		return tool.Success("", payload)
	}), ch
}

// Recorder wraps a capability and keeps every input it was invoked with.
type Recorder struct {
	mu     sync.Mutex
	inner  tool.Capability
	inputs []tool.Input
}

// NewRecorder wraps c.
func NewRecorder(c tool.Capability) *Recorder {
	return &Recorder{inner: c}
}

// Invoke records in and delegates.
func (r *Recorder) Invoke(ctx context.Context, in tool.Input) tool.Result {
	r.mu.Lock()
	r.inputs = append(r.inputs, in)
	r.mu.Unlock()
	return r.inner.Invoke(ctx, in)
}

// Inputs returns the recorded inputs.
func (r *Recorder) Inputs() []tool.Input {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]tool.Input, len(r.inputs))
	copy(out, r.inputs)
	return out
}

// Calls returns how many times the capability was invoked.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

// ChdirTemp creates a temp directory holding files (name to content),
// changes into it and restores the working directory on cleanup. Symlinks
// are resolved so the returned path matches os.Getwd on macOS.
func ChdirTemp(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return dir
}
