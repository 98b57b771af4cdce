package interfaces

import (
	"context"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// GenerationBackend calls an external text-completion service for one prompt.
// Implementations return an error on failure; the generation Adapter turns
// that error into an error-marker trajectory.
type GenerationBackend interface {
	Generate(ctx context.Context, prompt string, params model.GenerateParams) (string, error)
	Name() string
}
