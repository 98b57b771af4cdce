// Package memory keeps the rolling memory state in process memory. State is
// lost when the process exits; it backs tests and the HTTP server when no
// durable backend is configured.
package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	mu    sync.RWMutex
	state *model.MemoryState
}

var _ interfaces.MemoryStateRepository = &Memory{}

func New() *Memory {
	return &Memory{state: model.NewMemoryState()}
}

// Load returns a copy of the stored state
func (m *Memory) Load(ctx context.Context) (*model.MemoryState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Copy(), nil
}

// Save replaces the stored state with a copy of state
func (m *Memory) Save(ctx context.Context, state *model.MemoryState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if state == nil {
		m.state = model.NewMemoryState()
		return nil
	}
	m.state = state.Copy()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
