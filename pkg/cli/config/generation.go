package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/service/generation"
	"github.com/urfave/cli/v3"
)

// Generation holds CLI flags for generation backends
type Generation struct {
	backends       []string
	ollamaEndpoint string
	command        string
}

// Flags returns CLI flags for generation backends
func (x *Generation) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "backend",
			Category:    "Generation",
			Usage:       "Generation backends in fallback order [ollama|command|gemini]",
			Value:       []string{string(types.BackendOllama), string(types.BackendCommand)},
			Sources:     cli.EnvVars("STORMFRONT_BACKEND"),
			Destination: &x.backends,
		},
		&cli.StringFlag{
			Name:        "ollama-endpoint",
			Category:    "Generation",
			Usage:       "Ollama server endpoint",
			Value:       generation.DefaultOllamaEndpoint,
			Sources:     cli.EnvVars("STORMFRONT_OLLAMA_ENDPOINT", "OLLAMA_HOST"),
			Destination: &x.ollamaEndpoint,
		},
		&cli.StringFlag{
			Name:        "ollama-command",
			Category:    "Generation",
			Usage:       "Binary invoked as '<command> run <model>' by the command backend",
			Value:       generation.DefaultCommand,
			Sources:     cli.EnvVars("STORMFRONT_OLLAMA_COMMAND"),
			Destination: &x.command,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Generation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("backends", x.backends),
		slog.String("ollama_endpoint", x.ollamaEndpoint),
		slog.String("command", x.command),
	)
}

// OllamaEndpoint returns the configured Ollama endpoint
func (x *Generation) OllamaEndpoint() string {
	return x.ollamaEndpoint
}

// Configure builds the backend chain. llm may be nil when Gemini is not
// configured; listing the gemini backend then fails.
func (x *Generation) Configure(_ context.Context, llm gollem.LLMClient) (interfaces.GenerationBackend, error) {
	if len(x.backends) == 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "at least one generation backend is required", goerr.V(FieldKey, "backend"))
	}

	backends := make([]interfaces.GenerationBackend, 0, len(x.backends))
	for _, name := range x.backends {
		kind, err := types.ParseBackendKind(name)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(FieldKey, "backend"), goerr.V(ValueKey, name))
		}

		switch kind {
		case types.BackendOllama:
			backends = append(backends, generation.NewOllamaBackend(x.ollamaEndpoint))
		case types.BackendCommand:
			backends = append(backends, generation.NewCommandBackend(x.command))
		case types.BackendGemini:
			if llm == nil {
				return nil, goerr.Wrap(ErrInvalidConfig, "gemini backend requires --gemini-project", goerr.V(FieldKey, "backend"))
			}
			b, err := generation.NewGollemBackend(llm, string(types.BackendGemini))
			if err != nil {
				return nil, err
			}
			backends = append(backends, b)
		}
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return generation.NewFallback(backends...)
}
