package embedding

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"google.golang.org/genai"
)

// DefaultGenAIModel is the Gemini embedding model
const DefaultGenAIModel = "gemini-embedding-001"

// GenAIProvider embeds with the Gemini API through an API key
type GenAIProvider struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

var _ interfaces.EmbeddingProvider = (*GenAIProvider)(nil)

// NewGenAIProvider creates a provider. The client is created in Init.
func NewGenAIProvider(apiKey, model string) *GenAIProvider {
	if model == "" {
		model = DefaultGenAIModel
	}
	return &GenAIProvider{apiKey: apiKey, model: model}
}

// Kind returns types.ProviderGenAI
func (p *GenAIProvider) Kind() types.ProviderKind {
	return types.ProviderGenAI
}

// Init creates the client and probes the model
func (p *GenAIProvider) Init(ctx context.Context) error {
	if p.apiKey == "" {
		return goerr.New("GenAI API key is required")
	}

	p.mu.Lock()
	if p.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			p.mu.Unlock()
			return goerr.Wrap(err, "failed to create GenAI client")
		}
		p.client = client
	}
	p.mu.Unlock()

	_, err := p.EmbedBatch(ctx, []string{"test"})
	return err
}

// EmbedBatch embeds texts in one request
func (p *GenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client == nil {
		return nil, goerr.New("GenAI provider is not initialized")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, goerr.Wrap(err, "GenAI embed failed", goerr.V("model", p.model))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}
