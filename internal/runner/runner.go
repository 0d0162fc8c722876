// Package runner invokes external tools. Extractors depend on the Runner
// interface so tests can stub every executable.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
)

type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	LookPath(name string) (string, error)
}

type ExecRunner struct {
	timeout time.Duration
}

// New returns a Runner backed by os/exec. A zero timeout disables the
// per-invocation deadline.
func New(timeout time.Duration) *ExecRunner {
	return &ExecRunner{timeout: timeout}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, domain.ErrToolUnavailable)
	}
	return path, nil
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	log.Debug().Str("tool", name).Str("args", strings.Join(args, " ")).Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		err = classify(name, err, errb.Bytes())
		log.Debug().
			Str("tool", name).
			Int64("duration_ms", dur.Milliseconds()).
			Str("stderr", truncate(errb.String(), 8<<10)).
			Err(err).
			Msg("exec failed")
		return out.Bytes(), errb.Bytes(), err
	}

	log.Debug().
		Str("tool", name).
		Int64("duration_ms", dur.Milliseconds()).
		Int("stdout_bytes", out.Len()).
		Msg("exec ok")
	return out.Bytes(), errb.Bytes(), nil
}

func classify(name string, err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s: %w", name, domain.ErrToolUnavailable)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(truncate(string(stderr), 512))
		if msg == "" {
			return fmt.Errorf("%s: exit status %d: %w", name, exitErr.ExitCode(), domain.ErrToolFailed)
		}
		return fmt.Errorf("%s: exit status %d: %s: %w", name, exitErr.ExitCode(), msg, domain.ErrToolFailed)
	}
	return fmt.Errorf("%s: %v: %w", name, err, domain.ErrToolFailed)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
