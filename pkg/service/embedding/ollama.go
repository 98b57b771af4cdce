package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	// DefaultOllamaModel is the embedding model requested from Ollama
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaProvider embeds through the Ollama /api/embed endpoint
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

var _ interfaces.EmbeddingProvider = (*OllamaProvider)(nil)

// NewOllamaProvider creates a provider. Empty arguments use the defaults.
func NewOllamaProvider(endpoint, model string) *OllamaProvider {
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Kind returns types.ProviderOllama
func (p *OllamaProvider) Kind() types.ProviderKind {
	return types.ProviderOllama
}

// Init probes the server with a one-text batch
func (p *OllamaProvider) Init(ctx context.Context) error {
	_, err := p.EmbedBatch(ctx, []string{"test"})
	return err
}

// EmbedBatch embeds texts in one request
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "ollama embed request failed", goerr.V("endpoint", p.endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("ollama embed returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)),
			goerr.V("model", p.model))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode embed response")
	}

	return result.Embeddings, nil
}
