package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/cli/config"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/service/audit"
	"github.com/secmon-lab/stormfront/pkg/service/compressor"
	"github.com/secmon-lab/stormfront/pkg/service/generation"
	"github.com/secmon-lab/stormfront/pkg/usecase"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// appConfig groups the configuration shared by every storm command
type appConfig struct {
	storm      config.Storm
	generation config.Generation
	embedding  config.Embedding
	gemini     config.Gemini
	repository config.Repository
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.storm.Flags()...)
	flags = append(flags, x.generation.Flags()...)
	flags = append(flags, x.embedding.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.repository.Flags()...)
	return flags
}

// application is the wired object graph of one command invocation
type application struct {
	settings *config.Settings
	uc       *usecase.UseCases
	closers  []func()
}

// Close releases resources in reverse order of acquisition
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (x *appConfig) build(ctx context.Context, c *cli.Command) (_ *application, err error) {
	settings, err := x.storm.Configure(c)
	if err != nil {
		return nil, err
	}

	app := &application{settings: settings}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()
	logger := logging.Default()

	llm, err := x.gemini.Configure(ctx, settings.Storm.Model)
	if err != nil {
		return nil, err
	}

	backend, err := x.generation.Configure(ctx, llm)
	if err != nil {
		return nil, err
	}
	adapter, err := generation.NewAdapter(backend, generation.WithTimeout(settings.Storm.Timeout))
	if err != nil {
		return nil, err
	}

	chain, err := x.embedding.Configure(ctx, x.generation.OllamaEndpoint(), llm)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if err := chain.Close(); err != nil {
			logger.Error("failed to close embedding providers", "error", err)
		}
	})

	var stormOpts []usecase.StormOption
	if path := settings.Logs.ShadowLogFile; path != "" {
		stormOpts = append(stormOpts, usecase.WithShadowLog(audit.NewShadowLog(path)))
	}
	store, closeStore, err := config.ArtifactStore(ctx, settings.Logs.ResultDir)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)
	if store != nil {
		stormOpts = append(stormOpts, usecase.WithArtifactStore(store))
	}

	storm, err := usecase.NewStorm(adapter, chain, settings.Storm, stormOpts...)
	if err != nil {
		return nil, err
	}

	repo, err := x.repository.Configure(ctx)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close memory state repository", "error", err)
		}
	})

	comp, err := newCompressor(settings, backend)
	if err != nil {
		return nil, err
	}
	mem, err := usecase.NewRollingMemory(repo, comp, settings.Memory)
	if err != nil {
		return nil, err
	}

	var ucOpts []usecase.Option
	if path := settings.Logs.CaptureFile; path != "" {
		ucOpts = append(ucOpts, usecase.WithCapture(audit.NewCaptureLog(path)))
	}
	if store != nil {
		ucOpts = append(ucOpts, usecase.WithArtifacts(store))
	}

	uc, err := usecase.New(storm, mem, ucOpts...)
	if err != nil {
		return nil, err
	}
	app.uc = uc

	logger.Debug("application configured",
		"settings", settings,
		"generation", x.generation,
		"embedding", x.embedding,
		"gemini", x.gemini,
		"repository", x.repository)

	return app, nil
}

func newCompressor(settings *config.Settings, backend interfaces.GenerationBackend) (interfaces.Compressor, error) {
	switch settings.Memory.Compressor {
	case "llm":
		return compressor.NewLLM(backend, settings.Memory.CompressionModel,
			compressor.WithCompressTimeout(settings.Storm.Timeout))
	default:
		engine := compressor.NewSemanticCompressor(compressor.WithRenderMode(settings.Memory.RenderMode))
		return compressor.NewSemantic(engine), nil
	}
}

// promptArg joins the positional arguments into one prompt
func promptArg(c *cli.Command) (string, error) {
	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" {
		return "", goerr.New("prompt is required")
	}
	return prompt, nil
}
