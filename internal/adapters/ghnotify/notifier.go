// Package ghnotify delivers progress notifications as GitHub PR comments
// via the gh CLI.
package ghnotify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lberes/taskdock/internal/core/ports"
)

const commentTimeout = 30 * time.Second

type Notifier struct {
	log      zerolog.Logger
	prNumber string
}

var _ ports.Notifier = (*Notifier)(nil)

// New returns a Notifier posting to the given PR. An empty prNumber
// degrades every notification to a local log line.
func New(log zerolog.Logger, prNumber string) *Notifier {
	return &Notifier{log: log, prNumber: strings.TrimSpace(prNumber)}
}

func (n *Notifier) NotifyProgress(ctx context.Context, message string) error {
	if n.prNumber == "" {
		n.log.Info().Str("message", message).Msg("no PR associated, progress notification logged only")
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, commentTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "gh", "pr", "comment", n.prNumber, "--body", message)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("post PR comment: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
