package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Embedding holds CLI flags for the embedding chain
type Embedding struct {
	providers       []string
	ollamaModel     string
	GenAIAPIKey     string `masq:"secret"`
	genaiModel      string
	gollemDimension int
	onnxRepo        string
	onnxModelPath   string
	onnxCacheDir    string
	onnxLibraryPath string
}

// Flags returns CLI flags for embeddings
func (x *Embedding) Flags() []cli.Flag {
	const category = "Embedding"
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "embedding-provider",
			Category:    category,
			Usage:       "Embedding tiers in priority order [gollem|genai|ollama|onnx]. The hashed tier is always last",
			Value:       []string{string(types.ProviderOllama), string(types.ProviderONNX)},
			Sources:     cli.EnvVars("STORMFRONT_EMBEDDING_PROVIDER"),
			Destination: &x.providers,
		},
		&cli.StringFlag{
			Name:        "embedding-ollama-model",
			Category:    category,
			Usage:       "Ollama embedding model",
			Value:       embedding.DefaultOllamaModel,
			Sources:     cli.EnvVars("STORMFRONT_EMBEDDING_OLLAMA_MODEL"),
			Destination: &x.ollamaModel,
		},
		&cli.StringFlag{
			Name:        "genai-api-key",
			Category:    category,
			Usage:       "Gemini API key for the genai tier",
			Sources:     cli.EnvVars("STORMFRONT_GENAI_API_KEY", "GEMINI_API_KEY"),
			Destination: &x.GenAIAPIKey,
		},
		&cli.StringFlag{
			Name:        "genai-model",
			Category:    category,
			Usage:       "Gemini embedding model for the genai tier",
			Value:       embedding.DefaultGenAIModel,
			Sources:     cli.EnvVars("STORMFRONT_GENAI_MODEL"),
			Destination: &x.genaiModel,
		},
		&cli.IntFlag{
			Name:        "gollem-embedding-dimension",
			Category:    category,
			Usage:       "Vector dimension requested from the gollem tier",
			Value:       embedding.DefaultGollemDimension,
			Sources:     cli.EnvVars("STORMFRONT_GOLLEM_EMBEDDING_DIMENSION"),
			Destination: &x.gollemDimension,
		},
		&cli.StringFlag{
			Name:        "onnx-repo",
			Category:    category,
			Usage:       "HuggingFace repository downloaded for the onnx tier",
			Value:       embedding.DefaultONNXRepo,
			Sources:     cli.EnvVars("STORMFRONT_ONNX_REPO"),
			Destination: &x.onnxRepo,
		},
		&cli.StringFlag{
			Name:        "onnx-model-path",
			Category:    category,
			Usage:       "Local model directory for the onnx tier (skips download)",
			Sources:     cli.EnvVars("STORMFRONT_ONNX_MODEL_PATH"),
			Destination: &x.onnxModelPath,
		},
		&cli.StringFlag{
			Name:        "onnx-cache-dir",
			Category:    category,
			Usage:       "Download directory for onnx models",
			Sources:     cli.EnvVars("STORMFRONT_ONNX_CACHE_DIR"),
			Destination: &x.onnxCacheDir,
		},
		&cli.StringFlag{
			Name:        "onnx-library-path",
			Category:    category,
			Usage:       "Path of the onnxruntime shared library",
			Sources:     cli.EnvVars("STORMFRONT_ONNX_LIBRARY_PATH", "ONNXRUNTIME_LIB_PATH"),
			Destination: &x.onnxLibraryPath,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Embedding) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("providers", x.providers),
		slog.String("ollama_model", x.ollamaModel),
		slog.Bool("genai_key", x.GenAIAPIKey != ""),
		slog.String("onnx_repo", x.onnxRepo),
	)
}

// Configure builds the chain. ollamaEndpoint is shared with the generation
// backend; llm may be nil when Gemini is not configured.
func (x *Embedding) Configure(_ context.Context, ollamaEndpoint string, llm gollem.LLMClient) (*embedding.Chain, error) {
	tiers := make([]interfaces.EmbeddingProvider, 0, len(x.providers))
	for _, name := range x.providers {
		kind, err := types.ParseProviderKind(name)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(FieldKey, "embedding-provider"), goerr.V(ValueKey, name))
		}

		switch kind {
		case types.ProviderGollem:
			if llm == nil {
				return nil, goerr.Wrap(ErrInvalidConfig, "gollem embeddings require --gemini-project", goerr.V(FieldKey, "embedding-provider"))
			}
			tiers = append(tiers, embedding.NewGollemProvider(llm, x.gollemDimension))
		case types.ProviderGenAI:
			if x.GenAIAPIKey == "" {
				return nil, goerr.Wrap(ErrInvalidConfig, "genai embeddings require --genai-api-key", goerr.V(FieldKey, "embedding-provider"))
			}
			tiers = append(tiers, embedding.NewGenAIProvider(x.GenAIAPIKey, x.genaiModel))
		case types.ProviderOllama:
			tiers = append(tiers, embedding.NewOllamaProvider(ollamaEndpoint, x.ollamaModel))
		case types.ProviderONNX:
			tiers = append(tiers, embedding.NewONNXProvider(embedding.ONNXConfig{
				Repo:        x.onnxRepo,
				ModelPath:   x.onnxModelPath,
				CacheDir:    x.onnxCacheDir,
				LibraryPath: x.onnxLibraryPath,
			}))
		case types.ProviderHashed:
			// always appended by the chain
		}
	}

	return embedding.NewChain(tiers...), nil
}
