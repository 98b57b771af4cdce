package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

// Fallback tries backends in order. It moves to the next backend only when
// the current one is unavailable; any other failure is returned as is.
type Fallback struct {
	backends []interfaces.GenerationBackend
}

var _ interfaces.GenerationBackend = (*Fallback)(nil)

// NewFallback chains backends. At least one backend is required.
func NewFallback(backends ...interfaces.GenerationBackend) (*Fallback, error) {
	if len(backends) == 0 {
		return nil, goerr.New("at least one generation backend is required")
	}
	return &Fallback{backends: backends}, nil
}

// Name joins the names of the chained backends
func (f *Fallback) Name() string {
	names := make([]string, len(f.backends))
	for i, b := range f.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, ">")
}

// Generate returns the first available backend's result
func (f *Fallback) Generate(ctx context.Context, prompt string, params model.GenerateParams) (string, error) {
	var lastErr error
	for _, b := range f.backends {
		text, err := b.Generate(ctx, prompt, params)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", err
		}
		logging.From(ctx).Debug("generation backend unavailable, trying next",
			"backend", b.Name(),
			"error", err)
		lastErr = err
	}
	return "", lastErr
}
