package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hamed0406/slotwatch/internal/domain"
	"github.com/hamed0406/slotwatch/internal/repo"
)

var _ repo.SendLogStore = (*Store)(nil)

// Store keeps the send-log as one JSON object in a file. It is not safe
// for concurrent runs against the same path: the last writer wins.
type Store struct {
	path string
}

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (domain.SendLog, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SendLog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read send-log: %w", err)
	}
	l := domain.SendLog{}
	if len(b) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("decode send-log %s: %w", s.path, err)
	}
	return l, nil
}

// Save writes to a temp file in the same directory and renames it over
// the old one so a crash never leaves a half-written log.
func (s *Store) Save(ctx context.Context, l domain.SendLog) error {
	if l == nil {
		l = domain.SendLog{}
	}
	b, err := json.MarshalIndent(l, "", "   ")
	if err != nil {
		return fmt.Errorf("encode send-log: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create send-log dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp send-log: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write send-log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close send-log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace send-log: %w", err)
	}
	return nil
}
