package fsstore

import (
	"encoding/json"
	"fmt"

	"github.com/lberes/taskdock/internal/core/domain"
)

// requiredKeys are the document keys that must be present and hold strings.
var requiredKeys = []string{
	"job_id",
	"status",
	"task_spec",
	"branch_name",
	"base_branch",
	"base_image",
	"created_at",
	"updated_at",
}

// decodeJob parses and validates a raw job document. The key-level checks
// run against the raw JSON first, because struct unmarshalling alone cannot
// distinguish a missing required key from a zero value.
func decodeJob(b []byte, wantID string) (*domain.Job, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	for _, key := range requiredKeys {
		v, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("missing required key %q", key)
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("key %q is not a string", key)
		}
	}

	if v, ok := raw["progress_log"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(v, &entries); err != nil {
			return nil, fmt.Errorf("progress_log is not a sequence")
		}
	}

	var job domain.Job
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if !job.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", job.Status)
	}
	if job.JobID != wantID {
		return nil, fmt.Errorf("document job_id %q does not match storage key %q", job.JobID, wantID)
	}
	return &job, nil
}
