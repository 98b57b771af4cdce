package interfaces

import (
	"context"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// EmbeddingProvider converts a batch of texts into vectors of one dimension
type EmbeddingProvider interface {
	// Init prepares the provider and verifies it is usable. It is called at
	// most once by the embedding chain before the provider is selected.
	Init(ctx context.Context) error
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Kind() types.ProviderKind
}

// Embedder produces one vector per text, in input order, and never fails
type Embedder interface {
	Embed(ctx context.Context, texts []string) *model.EmbeddingBatch
}
