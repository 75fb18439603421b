package storage

import (
	"context"
	"sync"

	"github.com/meltforce/liftlog/internal/models"
)

// Memory keeps the snapshot in process memory. It is used for tests and for
// throwaway sessions.
type Memory struct {
	mu   sync.Mutex
	snap *models.Snapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	c := m.snap.Clone()
	return &c, nil
}

func (m *Memory) Save(_ context.Context, snap models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := snap.Clone()
	m.snap = &c
	return nil
}

func (m *Memory) Close() error { return nil }
