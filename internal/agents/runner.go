// Package agents invokes an external decision agent and parses its verdict.
package agents

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
)

// Runner executes a decision agent with a prompt and returns its raw output.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// ExecRunner runs the agent as a subprocess with the prompt on stdin.
type ExecRunner struct {
	command string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// ExecConfig holds the subprocess settings.
type ExecConfig struct {
	Command string
	Args    []string
	// Timeout bounds a single run; zero means no bound beyond ctx.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewExecRunner creates a subprocess runner.
func NewExecRunner(cfg ExecConfig) *ExecRunner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{
		command: cfg.Command,
		args:    cfg.Args,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Run implements Runner. Non-zero exits and empty output map to
// domain.ErrAgentFailed.
func (r *ExecRunner) Run(ctx context.Context, prompt string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("agent run finished",
		zap.String("command", r.command),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: agent timed out: %v", domain.ErrAgentFailed, ctxErr)
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%w: %s", domain.ErrAgentFailed, detail)
	}

	output := stdout.String()
	if strings.TrimSpace(output) == "" {
		return "", fmt.Errorf("%w: agent produced no output", domain.ErrAgentFailed)
	}
	return output, nil
}
