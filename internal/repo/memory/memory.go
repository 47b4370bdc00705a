package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/slotwatch/internal/domain"
	"github.com/hamed0406/slotwatch/internal/repo"
)

var _ repo.SendLogStore = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	log   domain.SendLog
	saves int
}

func New() *Store {
	return &Store{log: domain.SendLog{}}
}

func (m *Store) Load(ctx context.Context) (domain.SendLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log.Clone(), nil
}

func (m *Store) Save(ctx context.Context, l domain.SendLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = l.Clone()
	m.saves++
	return nil
}

// Saves counts Save calls.
func (m *Store) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
