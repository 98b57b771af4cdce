package compressor

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// Semantic adapts SemanticCompressor to interfaces.Compressor. Each call
// returns only what the chunk added, since earlier chunks already live in
// earlier summary blocks.
type Semantic struct {
	engine *SemanticCompressor
}

var _ interfaces.Compressor = (*Semantic)(nil)

// NewSemantic wraps engine
func NewSemantic(engine *SemanticCompressor) *Semantic {
	return &Semantic{engine: engine}
}

// Compress never fails
func (s *Semantic) Compress(_ context.Context, text string) (string, error) {
	return s.engine.CompressDelta(text), nil
}

// compressionPrompt asks a small model for a dense factual summary
const compressionPrompt = "SYSTEM: Compress the following log into a concise, dense summary. " +
	"Keep facts, discard fluff. Output ONLY the summary.\n\nLOG:\n"

// LLM compresses through a generation backend
type LLM struct {
	backend interfaces.GenerationBackend
	params  model.GenerateParams
	timeout time.Duration
}

// LLMOption configures an LLM compressor
type LLMOption func(*LLM)

// WithCompressTimeout bounds each compression call. Zero means no bound.
func WithCompressTimeout(d time.Duration) LLMOption {
	return func(l *LLM) {
		l.timeout = d
	}
}

var _ interfaces.Compressor = (*LLM)(nil)

// NewLLM creates an LLM compressor that asks compressionModel for summaries
func NewLLM(backend interfaces.GenerationBackend, compressionModel string, opts ...LLMOption) (*LLM, error) {
	if backend == nil {
		return nil, goerr.New("generation backend is required")
	}
	l := &LLM{
		backend: backend,
		params: model.GenerateParams{
			Model:       compressionModel,
			Temperature: 0,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Compress returns the model's summary of text
func (l *LLM) Compress(ctx context.Context, text string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	out, err := l.backend.Generate(ctx, compressionPrompt+text, l.params)
	if err != nil {
		return "", goerr.Wrap(err, "compression backend failed",
			goerr.V("backend", l.backend.Name()),
			goerr.V("model", l.params.Model))
	}
	return strings.TrimSpace(out), nil
}
