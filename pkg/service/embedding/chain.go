// Package embedding turns trajectory texts into vectors. Providers are tried
// in tier order once; the first one that initialises is used from then on,
// and the deterministic hashed provider backs up every call.
package embedding

import (
	"context"
	"io"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

// Chain selects one provider lazily and caches the choice
type Chain struct {
	providers []interfaces.EmbeddingProvider
	hashed    *HashedProvider

	mu       sync.Mutex
	selected interfaces.EmbeddingProvider
}

var _ interfaces.Embedder = (*Chain)(nil)

// NewChain builds a chain over providers in priority order. The hashed
// provider is always appended as the last tier.
func NewChain(providers ...interfaces.EmbeddingProvider) *Chain {
	hashed := NewHashedProvider()
	tiers := make([]interfaces.EmbeddingProvider, 0, len(providers)+1)
	for _, p := range providers {
		if p == nil || p.Kind() == types.ProviderHashed {
			continue
		}
		tiers = append(tiers, p)
	}
	tiers = append(tiers, hashed)

	return &Chain{
		providers: tiers,
		hashed:    hashed,
	}
}

// Selected returns the chosen provider kind, probing providers if no choice
// has been made yet. Repeated calls return the same kind.
func (c *Chain) Selected(ctx context.Context) types.ProviderKind {
	return c.selectProvider(ctx).Kind()
}

func (c *Chain) selectProvider(ctx context.Context) interfaces.EmbeddingProvider {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected != nil {
		return c.selected
	}

	logger := logging.From(ctx)
	for _, p := range c.providers {
		if err := p.Init(ctx); err != nil {
			logger.Info("embedding provider not usable", "provider", p.Kind(), "error", err)
			continue
		}
		logger.Info("embedding provider selected", "provider", p.Kind())
		c.selected = p
		return p
	}

	// unreachable: the hashed tier always initialises
	c.selected = c.hashed
	return c.hashed
}

// Embed returns one vector per text. If the selected provider fails or
// returns a malformed batch, the whole batch is embedded by the hashed
// provider so that all vectors share one dimension.
func (c *Chain) Embed(ctx context.Context, texts []string) *model.EmbeddingBatch {
	p := c.selectProvider(ctx)
	if len(texts) == 0 {
		return &model.EmbeddingBatch{Vectors: [][]float32{}, Provider: p.Kind()}
	}

	vectors, err := p.EmbedBatch(ctx, texts)
	if err == nil {
		err = validateBatch(vectors, len(texts))
	}
	if err != nil {
		logging.From(ctx).Warn("embedding failed, using hashed vectors for this batch",
			"provider", p.Kind(),
			"texts", len(texts),
			"error", err)
		return &model.EmbeddingBatch{
			Vectors:  c.hashed.embed(texts),
			Provider: types.ProviderHashed,
		}
	}

	return &model.EmbeddingBatch{Vectors: vectors, Provider: p.Kind()}
}

// Close releases providers that hold resources
func (c *Chain) Close() error {
	var firstErr error
	for _, p := range c.providers {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = goerr.Wrap(err, "failed to close embedding provider", goerr.V("provider", p.Kind()))
			}
		}
	}
	return firstErr
}

func validateBatch(vectors [][]float32, n int) error {
	if len(vectors) != n {
		return goerr.New("provider returned wrong number of vectors",
			goerr.V("expected", n),
			goerr.V("actual", len(vectors)))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return goerr.New("provider returned empty vector")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return goerr.New("provider returned vectors of different length",
				goerr.V("index", i),
				goerr.V("expected", dim),
				goerr.V("actual", len(v)))
		}
	}
	return nil
}
