package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Store persists one JSON document. Save must never fail the caller: write
// errors are logged and swallowed. Load reports whether a usable document
// was found; corrupt or invalid content counts as absent.
type Store interface {
	Load(out any) bool
	Save(value any)
}

// FileStore writes the document as a full-file overwrite, matching the
// best-effort durability contract: a failed write loses at most the delta of
// one operation and never corrupts the previous snapshot.
type FileStore struct {
	path     string
	logger   zerolog.Logger
	validate func([]byte) error
}

func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// WithValidator installs a validation pass applied to loaded documents.
func (s *FileStore) WithValidator(validate func([]byte) error) *FileStore {
	s.validate = validate
	return s
}

func (s *FileStore) Load(out any) bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("state file read failed")
		}
		return false
	}

	if s.validate != nil {
		if err := s.validate(raw); err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("state file failed validation, ignoring")
			return false
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("state file decode failed, ignoring")
		return false
	}
	return true
}

func (s *FileStore) Save(value any) {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("state encode failed")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("state directory create failed")
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("state file write failed")
	}
}

// MemoryStore keeps the serialized document in memory. Used in tests and as
// a null store when persistence is disabled.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(out any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.raw) == 0 {
		return false
	}
	return json.Unmarshal(s.raw, out) == nil
}

func (s *MemoryStore) Save(value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
}
