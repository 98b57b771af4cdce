package embedding

import (
	"context"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// HashedDimension is the vector length of the hashed fallback
const HashedDimension = 64

// HashedProvider maps each text to a standard-normal vector seeded by its
// xxhash digest. It carries no semantics but is deterministic and always
// available, which keeps the pipeline running with no model at all.
type HashedProvider struct {
	dim int
}

var _ interfaces.EmbeddingProvider = (*HashedProvider)(nil)

// NewHashedProvider creates the fallback provider
func NewHashedProvider() *HashedProvider {
	return &HashedProvider{dim: HashedDimension}
}

// Init always succeeds
func (p *HashedProvider) Init(context.Context) error {
	return nil
}

// Kind returns types.ProviderHashed
func (p *HashedProvider) Kind() types.ProviderKind {
	return types.ProviderHashed
}

// EmbedBatch never fails
func (p *HashedProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return p.embed(texts), nil
}

func (p *HashedProvider) embed(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		seed := xxhash.Sum64String(text)
		rng := rand.New(rand.NewPCG(seed, seed>>1|1))
		vec := make([]float32, p.dim)
		for k := range vec {
			vec[k] = float32(rng.NormFloat64())
		}
		out[i] = vec
	}
	return out
}
