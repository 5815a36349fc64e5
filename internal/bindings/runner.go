package bindings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one bound command line.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, argv []string) error

func (f RunnerFunc) Run(ctx context.Context, argv []string) error {
	return f(ctx, argv)
}

// ExecRunner runs argv as a child process and waits for it.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("run %s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
