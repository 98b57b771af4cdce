package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

// DefaultOllamaEndpoint is the address of a local Ollama server
const DefaultOllamaEndpoint = "http://localhost:11434"

// OllamaBackend calls the Ollama /api/generate endpoint without streaming
type OllamaBackend struct {
	endpoint string
	client   *http.Client
}

var _ interfaces.GenerationBackend = (*OllamaBackend)(nil)

// NewOllamaBackend creates a backend for the given server endpoint
func NewOllamaBackend(endpoint string) *OllamaBackend {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	return &OllamaBackend{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{},
	}
}

type ollamaGenerateRequest struct {
	Model   string               `json:"model"`
	Prompt  string               `json:"prompt"`
	Stream  bool                 `json:"stream"`
	Options ollamaGenerateOption `json:"options"`
}

type ollamaGenerateOption struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Name returns the backend name
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Generate returns the trimmed completion for prompt
func (b *OllamaBackend) Generate(ctx context.Context, prompt string, params model.GenerateParams) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  params.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaGenerateOption{
			Temperature: params.Temperature,
			NumPredict:  params.MaxTokens,
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", goerr.Wrap(ctxErr, "ollama request aborted", goerr.V("endpoint", b.endpoint))
		}
		return "", goerr.Wrap(ErrUnavailable, "ollama request failed",
			goerr.V("endpoint", b.endpoint),
			goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", goerr.Wrap(ErrExit, "ollama returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(raw)),
			goerr.V("model", params.Model))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", goerr.Wrap(err, "ollama response aborted")
		}
		return "", goerr.Wrap(err, "failed to decode ollama response")
	}
	if result.Error != "" {
		return "", goerr.Wrap(ErrExit, "ollama reported error", goerr.V("error", result.Error))
	}

	text := strings.TrimSpace(result.Response)
	if text == "" {
		return "", goerr.Wrap(ErrEmptyOutput, "ollama returned no text", goerr.V("model", params.Model))
	}
	return text, nil
}
