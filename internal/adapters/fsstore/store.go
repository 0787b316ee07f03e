// Package fsstore persists job documents as one JSON file per job under a
// single directory. Writes are atomic (temp file + rename) and mutual
// exclusion is scoped per job id, never global.
package fsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lberes/taskdock/internal/core/domain"
	"github.com/lberes/taskdock/internal/core/ports"
)

// maxDocumentSize rejects oversized documents before parsing (DoS guard).
const maxDocumentSize = 1 << 20 // 1 MiB

type Store struct {
	dir string
	log zerolog.Logger

	// locks holds one *sync.Mutex per job id. The process is the only
	// writer of the jobs directory, so an in-process mutex is the
	// exclusion mechanism; the on-disk .lock file is a marker kept for
	// operator visibility and removed on release.
	locks sync.Map
}

var _ ports.JobStore = (*Store)(nil)

func New(dir string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("jobs dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create jobs dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) jobPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}

func (s *Store) lockPath(jobID string) string {
	return filepath.Join(s.dir, jobID+".lock")
}

// Write serializes the document and atomically replaces the target file.
// The temp file lives in the jobs directory so the rename cannot cross
// filesystems; it is removed on every failure path.
func (s *Store) Write(job *domain.Job) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	jobID := strings.TrimSpace(job.JobID)
	if jobID == "" {
		return fmt.Errorf("job_id is required")
	}

	b, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job document: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(s.dir, jobID+".json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.jobPath(jobID)); err != nil {
		return fmt.Errorf("rename job document: %w", err)
	}
	return nil
}

// Read loads and validates the document for jobID. Corruption of any kind
// reads as absent: the caller sees (nil, false) and the bad file is left in
// place rather than surfaced or repaired.
func (s *Store) Read(jobID string) (*domain.Job, bool) {
	path := s.jobPath(jobID)

	fi, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if fi.Size() > maxDocumentSize {
		s.log.Warn().Str("job_id", jobID).Int64("size", fi.Size()).
			Msg("job document exceeds size limit, treating as absent")
		return nil, false
	}

	b, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn().Str("job_id", jobID).Err(err).Msg("job document unreadable")
		return nil, false
	}

	job, err := decodeJob(b, jobID)
	if err != nil {
		s.log.Warn().Str("job_id", jobID).Err(err).Msg("invalid job document skipped")
		return nil, false
	}
	return job, true
}

// List enumerates all valid documents in the directory. Invalid or
// unreadable documents are silently skipped.
func (s *Store) List() []*domain.Job {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn().Str("dir", s.dir).Err(err).Msg("jobs dir unreadable")
		return nil
	}

	out := make([]*domain.Job, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		jobID := strings.TrimSuffix(name, ".json")
		if job, ok := s.Read(jobID); ok {
			out = append(out, job)
		}
	}
	return out
}

// Lock acquires the exclusive per-job lock. The returned release function
// must be called exactly once, normally via defer; it never leaves a stale
// lock file behind.
func (s *Store) Lock(jobID string) func() {
	v, _ := s.locks.LoadOrStore(jobID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	lockFile := s.lockPath(jobID)
	if err := os.WriteFile(lockFile, nil, 0o644); err != nil {
		s.log.Warn().Str("job_id", jobID).Err(err).Msg("lock marker not written")
	}

	return func() {
		_ = os.Remove(lockFile)
		mu.Unlock()
	}
}

func (s *Store) Exists(jobID string) bool {
	_, err := os.Stat(s.jobPath(jobID))
	return err == nil
}

func (s *Store) Remove(jobID string) error {
	if err := os.Remove(s.jobPath(jobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove job document: %w", err)
	}
	return nil
}
