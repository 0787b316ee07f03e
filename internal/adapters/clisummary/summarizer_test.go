package clisummary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryPrompt(t *testing.T) {
	prompt := summaryPrompt("Fix the login bug")
	assert.Contains(t, prompt, "Fix the login bug")
	assert.Contains(t, prompt, "exactly 5 words")
}

func TestSummarize_MissingCommandFails(t *testing.T) {
	s := New("taskdock-no-such-binary", "-p", time.Second)
	_, err := s.Summarize(context.Background(), "anything")
	require.Error(t, err)
}

func TestSummarize_ReturnsTrimmedOutput(t *testing.T) {
	// echo stands in for the agent CLI; -n plays the print flag's role.
	s := New("echo", "-n", 2*time.Second)
	out, err := s.Summarize(context.Background(), "task")
	require.NoError(t, err)
	assert.Contains(t, out, "exactly 5 words")
}
