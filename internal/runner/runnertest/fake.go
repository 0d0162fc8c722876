// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/teamcutter/imgrip/internal/domain"
)

type Handler func(ctx context.Context, args []string) (stdout []byte, err error)

// Fake dispatches Run calls to per-tool handlers and records every call.
// Tools without a handler behave as if missing from PATH.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []string
}

func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

func (f *Fake) Handle(tool string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tool] = h
	return f
}

func (f *Fake) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", name, domain.ErrToolUnavailable)
	}
	out, err := h(ctx, args)
	return out, nil, err
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[name]; !ok {
		return "", fmt.Errorf("%s: %w", name, domain.ErrToolUnavailable)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns the command lines run so far, each as "tool arg1 arg2".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallsTo counts invocations of tool.
func (f *Fake) CallsTo(tool string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == tool || strings.HasPrefix(c, tool+" ") {
			n++
		}
	}
	return n
}

// Failed is a tool failure as the exec runner would report it.
func Failed(tool string, code int) error {
	return fmt.Errorf("%s: exit status %d: %w", tool, code, domain.ErrToolFailed)
}
