package generation

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// GollemBackend generates through a gollem LLM client. Each call opens a
// fresh session so samples stay independent. The model is fixed when the
// client is created; temperature and token limit are passed per call.
type GollemBackend struct {
	client gollem.LLMClient
	name   string
}

var _ interfaces.GenerationBackend = (*GollemBackend)(nil)

// NewGollemBackend wraps client. name is used in logs and error markers.
func NewGollemBackend(client gollem.LLMClient, name string) (*GollemBackend, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	if name == "" {
		name = "gollem"
	}
	return &GollemBackend{client: client, name: name}, nil
}

// Name returns the backend name
func (b *GollemBackend) Name() string {
	return b.name
}

// Generate sends prompt as a single user turn
func (b *GollemBackend) Generate(ctx context.Context, prompt string, params model.GenerateParams) (string, error) {
	session, err := b.client.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(ErrUnavailable, "failed to create LLM session", goerr.V("cause", err.Error()))
	}

	opts := []gollem.GenerateOption{gollem.WithTemperature(params.Temperature)}
	if params.MaxTokens > 0 {
		opts = append(opts, gollem.WithMaxTokens(params.MaxTokens))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)}, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", goerr.Wrap(ctxErr, "LLM generation aborted")
		}
		return "", goerr.Wrap(ErrExit, "failed to generate content", goerr.V("cause", err.Error()))
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, ""))
	if text == "" {
		return "", goerr.Wrap(ErrEmptyOutput, "LLM returned no text", goerr.V("backend", b.name))
	}
	return text, nil
}
