package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// DefaultGollemDimension is the embedding size requested from the LLM client
const DefaultGollemDimension = 256

// GollemProvider embeds through a gollem LLM client
type GollemProvider struct {
	client    gollem.LLMClient
	dimension int
}

var _ interfaces.EmbeddingProvider = (*GollemProvider)(nil)

// NewGollemProvider wraps client. dimension <= 0 uses DefaultGollemDimension.
func NewGollemProvider(client gollem.LLMClient, dimension int) *GollemProvider {
	if dimension <= 0 {
		dimension = DefaultGollemDimension
	}
	return &GollemProvider{client: client, dimension: dimension}
}

// Kind returns types.ProviderGollem
func (p *GollemProvider) Kind() types.ProviderKind {
	return types.ProviderGollem
}

// Init probes the client with a one-text batch
func (p *GollemProvider) Init(ctx context.Context) error {
	if p.client == nil {
		return goerr.New("LLM client is not configured")
	}
	_, err := p.EmbedBatch(ctx, []string{"test"})
	return err
}

// EmbedBatch embeds texts and narrows them to float32
func (p *GollemProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := p.client.GenerateEmbedding(ctx, p.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding", goerr.V("dimension", p.dimension))
	}

	out := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		vec := make([]float32, len(emb))
		for k, v := range emb {
			vec[k] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
