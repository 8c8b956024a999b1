// Package store persists reflections to a JSON document and indexes them in SQLite.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pbaille/journal/internal/domain"
)

var (
	// ErrNotFound is returned by Delete when no record carries the id
	ErrNotFound = errors.New("entry not found")

	// ErrNotObject is returned by Prepend for anything other than a JSON object
	ErrNotObject = errors.New("entry must be a JSON object")

	// ErrMalformed wraps parse failures of the backing file
	ErrMalformed = errors.New("malformed reflections file")
)

// DefaultIndent is the number of spaces used when writing the file
const DefaultIndent = 2

// JSONStore keeps every record in one JSON array on disk.
// Each mutation is a full read, modify, overwrite. The mutex only serialises
// callers inside this process; another process writing the same file can
// still overwrite a concurrent change.
type JSONStore struct {
	path   string
	indent int
	log    zerolog.Logger
	mu     sync.Mutex
}

// Option configures a JSONStore
type Option func(*JSONStore)

// WithIndent sets the indentation width; 0 writes compact JSON.
func WithIndent(n int) Option {
	return func(s *JSONStore) {
		if n >= 0 {
			s.indent = n
		}
	}
}

// WithLogger sets the logger used for swallowed and returned failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *JSONStore) {
		s.log = l
	}
}

// New creates a store backed by the file at path. The file is created on the first save.
func New(path string, opts ...Option) *JSONStore {
	s := &JSONStore{
		path:   path,
		indent: DefaultIndent,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path
func (s *JSONStore) Path() string {
	return s.path
}

// Read returns every stored record, newest first.
// A missing file is an empty store, not an error.
func (s *JSONStore) Read() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// Load is Read with a fallback: any failure is logged and reported as an
// empty store. Display paths use it so an unreadable file never aborts them.
func (s *JSONStore) Load() []json.RawMessage {
	records, err := s.Read()
	if err != nil {
		s.log.Error().Stack().Err(err).Str("path", s.path).Msg("loading reflections")
		return []json.RawMessage{}
	}
	return records
}

// ReadRaw returns the file contents untouched, or "[]" when the file does not exist.
func (s *JSONStore) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []byte("[]"), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save overwrites the file with records. Non-ASCII text and HTML characters
// are written as-is.
func (s *JSONStore) Save(records []json.RawMessage) error {
	if err := s.save(records); err != nil {
		s.log.Error().Stack().Err(err).Str("path", s.path).Msg("saving reflections")
		return err
	}
	return nil
}

func (s *JSONStore) save(records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", strings.Repeat(" ", s.indent))
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode reflections: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Prepend inserts record at the head of the store and returns the new total.
func (s *JSONStore) Prepend(record json.RawMessage) (int, error) {
	record = bytes.TrimSpace(record)
	if len(record) == 0 || record[0] != '{' || !json.Valid(record) {
		return 0, ErrNotObject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readForUpdate()
	if err != nil {
		return 0, err
	}

	records = append([]json.RawMessage{record}, records...)
	if err := s.Save(records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Delete removes every record whose id, compared as a string, equals id.
// It returns the number of records removed, or ErrNotFound without writing.
func (s *JSONStore) Delete(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readForUpdate()
	if err != nil {
		return 0, err
	}

	kept := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		if rid, ok := domain.RecordID(r); ok && rid == id {
			continue
		}
		kept = append(kept, r)
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, ErrNotFound
	}
	if err := s.Save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// readForUpdate treats a malformed file as empty so the next write replaces it.
// I/O failures are still returned.
func (s *JSONStore) readForUpdate() ([]json.RawMessage, error) {
	records, err := s.Read()
	if errors.Is(err, ErrMalformed) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("discarding unparseable reflections file")
		return []json.RawMessage{}, nil
	}
	return records, err
}
