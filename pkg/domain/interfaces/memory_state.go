package interfaces

import (
	"context"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// MemoryStateRepository persists the rolling memory state. Load returns an
// empty state when nothing has been stored yet or the stored data is corrupt.
// Concurrent writers against the same backing store are not supported.
type MemoryStateRepository interface {
	Load(ctx context.Context) (*model.MemoryState, error)
	Save(ctx context.Context, state *model.MemoryState) error
	Close() error
}
