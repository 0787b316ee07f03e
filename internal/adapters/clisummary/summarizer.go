// Package clisummary generates task titles by shelling out to an AI agent
// CLI in one-shot print mode.
package clisummary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/lberes/taskdock/internal/core/ports"
)

type Summarizer struct {
	command   string // e.g. "claude"
	printFlag string // e.g. "-p"
	timeout   time.Duration
}

var _ ports.Summarizer = (*Summarizer)(nil)

func New(command, printFlag string, timeout time.Duration) *Summarizer {
	return &Summarizer{command: command, printFlag: printFlag, timeout: timeout}
}

func summaryPrompt(taskSpec string) string {
	return fmt.Sprintf(`Generate exactly 5 words that summarize this task specification:

%s

Return only the 5-word title, nothing else.`, taskSpec)
}

// Summarize runs the CLI and returns its trimmed stdout. The response is
// not judged here; the caller decides whether it is an acceptable title.
func (s *Summarizer) Summarize(ctx context.Context, taskSpec string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, s.command, s.printFlag, summaryPrompt(taskSpec))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cctx.Err() != nil {
			return "", fmt.Errorf("summary generation timed out: %w", cctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("summary command exited with code %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run summary command: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("summary command returned no output")
	}
	return out, nil
}
