// Package store persists the compatibility data as two whole-document JSON
// files: a curated read-only seed list and an append-friendly community
// submission log.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/armsx2/site-api/internal/compat"
)

const (
	seedFile        = "compatibility.base.json"
	submissionsFile = "compatibility-submissions.json"
)

type seedDoc struct {
	Games []json.RawMessage `json:"games"`
}

type submissionsDoc struct {
	Submissions []json.RawMessage `json:"submissions"`
}

// Store reads and writes the two JSON documents under a single data
// directory. Writes are whole-document and serialized behind a mutex, so two
// concurrent submissions cannot drop each other's append.
type Store struct {
	seedPath        string
	submissionsPath string
	logger          *slog.Logger

	mu sync.Mutex
}

func New(dataDir string, logger *slog.Logger) *Store {
	return &Store{
		seedPath:        filepath.Join(dataDir, seedFile),
		submissionsPath: filepath.Join(dataDir, submissionsFile),
		logger:          logger,
	}
}

// LoadSeed returns the curated seed records. A missing or unreadable seed
// file is an empty document, not an error.
func (s *Store) LoadSeed() []compat.RawSubmission {
	var doc seedDoc
	s.readDoc(s.seedPath, &doc)
	return parseAll(doc.Games)
}

// LoadSubmissions returns the community submission log, tolerating a missing
// or unreadable file the same way as LoadSeed.
func (s *Store) LoadSubmissions() []compat.RawSubmission {
	var doc submissionsDoc
	s.readDoc(s.submissionsPath, &doc)
	return parseAll(doc.Submissions)
}

// AppendSubmission appends one canonical submission to the log and persists
// the whole document. Existing entries are carried over byte-for-byte, so
// legacy record shapes survive rewrites. The append is durable only once
// this returns nil; on error the previous on-disk document is untouched.
func (s *Store) AppendSubmission(sub compat.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc submissionsDoc
	s.readDoc(s.submissionsPath, &doc)

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}
	doc.Submissions = append(doc.Submissions, data)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding submission log: %w", err)
	}

	if err := writeFileAtomic(s.submissionsPath, out); err != nil {
		return fmt.Errorf("writing submission log: %w", err)
	}
	return nil
}

// Check reports whether the data directory is usable, creating it if absent.
func (s *Store) Check(_ context.Context) error {
	return os.MkdirAll(filepath.Dir(s.submissionsPath), 0o755)
}

func (s *Store) readDoc(path string, dest any) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.Error("reading store document", "path", path, "error", err)
		return
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Error("parsing store document", "path", path, "error", err)
	}
}

func parseAll(records []json.RawMessage) []compat.RawSubmission {
	out := make([]compat.RawSubmission, 0, len(records))
	for _, rec := range records {
		out = append(out, compat.ParseRaw(rec))
	}
	return out
}

// writeFileAtomic writes via a temp file and rename so a failed write never
// clobbers the previous document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
