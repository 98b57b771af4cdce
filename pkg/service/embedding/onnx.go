package embedding

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// DefaultONNXRepo is the HuggingFace repository of the local sentence model
const DefaultONNXRepo = "sentence-transformers/all-MiniLM-L6-v2"

// ONNXConfig configures ONNXProvider
type ONNXConfig struct {
	// Repo is the HuggingFace repository to download when ModelPath is empty
	Repo string
	// ModelPath points at an already downloaded model directory
	ModelPath string
	// CacheDir receives downloaded models
	CacheDir string
	// LibraryPath is the onnxruntime shared library, if not on the default path
	LibraryPath string
}

// ONNXProvider runs a sentence-embedding model locally through onnxruntime
type ONNXProvider struct {
	cfg ONNXConfig

	mu       sync.RWMutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

var _ interfaces.EmbeddingProvider = (*ONNXProvider)(nil)

// NewONNXProvider creates a provider. The model is loaded in Init.
func NewONNXProvider(cfg ONNXConfig) *ONNXProvider {
	if cfg.Repo == "" {
		cfg.Repo = DefaultONNXRepo
	}
	return &ONNXProvider{cfg: cfg}
}

// Kind returns types.ProviderONNX
func (p *ONNXProvider) Kind() types.ProviderKind {
	return types.ProviderONNX
}

// Init downloads the model when needed and builds the pipeline
func (p *ONNXProvider) Init(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pipeline != nil {
		return nil
	}

	modelPath, err := p.resolveModel()
	if err != nil {
		return err
	}

	sessionOpts := []options.WithOption{
		options.WithIntraOpNumThreads(runtime.NumCPU()),
	}
	if p.cfg.LibraryPath != "" {
		sessionOpts = append(sessionOpts, options.WithOnnxLibraryPath(p.cfg.LibraryPath))
	}

	session, err := hugot.NewORTSession(sessionOpts...)
	if err != nil {
		return goerr.Wrap(err, "failed to create ORT session")
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "stormfront-embedding",
	})
	if err != nil {
		session.Destroy()
		return goerr.Wrap(err, "failed to create feature extraction pipeline", goerr.V("model_path", modelPath))
	}

	p.session = session
	p.pipeline = pipeline
	return nil
}

func (p *ONNXProvider) resolveModel() (string, error) {
	if p.cfg.ModelPath != "" {
		if _, err := os.Stat(p.cfg.ModelPath); err != nil {
			return "", goerr.Wrap(err, "model path is not accessible", goerr.V("path", p.cfg.ModelPath))
		}
		return p.cfg.ModelPath, nil
	}

	cacheDir := p.cfg.CacheDir
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", goerr.Wrap(err, "failed to get home dir")
		}
		cacheDir = filepath.Join(home, ".stormfront", "models")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create model cache dir", goerr.V("dir", cacheDir))
	}

	modelPath, err := hugot.DownloadModel(p.cfg.Repo, cacheDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", goerr.Wrap(err, "failed to download model", goerr.V("repo", p.cfg.Repo))
	}
	return modelPath, nil
}

// EmbedBatch runs inference over texts
func (p *ONNXProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pipeline == nil {
		return nil, goerr.New("ONNX pipeline is not initialized")
	}

	output, err := p.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, goerr.Wrap(err, "ONNX inference failed")
	}
	return output.Embeddings, nil
}

// Close releases the onnxruntime session
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	p.pipeline = nil
	return nil
}
