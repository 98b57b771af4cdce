package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/stormfront/pkg/domain/model/config"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func choices[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return "[" + strings.Join(names, "|") + "]"
}

// StormFile is the TOML layout of the storm configuration file
type StormFile struct {
	Model       string  `toml:"model"`
	NPaths      int     `toml:"n_paths"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`

	Temporal struct {
		Lambda float64 `toml:"lambda"`
	} `toml:"temporal"`

	Thresholds struct {
		FreezeThreshold float64 `toml:"freeze_threshold"`
		DCXThreshold    float64 `toml:"dcx_threshold"`
	} `toml:"thresholds"`

	Runtime struct {
		Workers  int    `toml:"workers"`
		Strategy string `toml:"strategy"`
		Timeout  string `toml:"timeout"`
	} `toml:"runtime"`

	Selection struct {
		Rule          string `toml:"rule"`
		FailurePolicy string `toml:"failure_policy"`
	} `toml:"selection"`

	Memory struct {
		ContextWindowMax      int    `toml:"context_window_max"`
		KeepRecent            int    `toml:"keep_recent"`
		Compressor            string `toml:"compressor"`
		CompressionModel      string `toml:"compression_model"`
		RenderMode            string `toml:"render_mode"`
		ContinuousContextFile string `toml:"continuous_context_file"`
	} `toml:"memory"`

	Logging struct {
		ShadowLogFile string `toml:"shadow_log_file"`
		CaptureFile   string `toml:"capture_file"`
		ResultDir     string `toml:"result_dir"`
	} `toml:"logging"`
}

// defaultStormFile mirrors the built-in domain defaults
func defaultStormFile() *StormFile {
	s := domainConfig.DefaultStorm()
	m := domainConfig.DefaultMemory()
	l := domainConfig.DefaultLogs()

	f := &StormFile{
		Model:       s.Model,
		NPaths:      s.Trajectories,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}
	f.Temporal.Lambda = s.Lambda
	f.Thresholds.FreezeThreshold = s.FreezeThreshold
	f.Thresholds.DCXThreshold = s.DCXThreshold
	f.Runtime.Workers = s.Workers
	f.Runtime.Strategy = s.Strategy.String()
	f.Runtime.Timeout = s.Timeout.String()
	f.Selection.Rule = s.Rule.String()
	f.Selection.FailurePolicy = s.FailurePolicy.String()
	f.Memory.ContextWindowMax = m.ContextWindowMax
	f.Memory.KeepRecent = m.KeepRecent
	f.Memory.Compressor = m.Compressor
	f.Memory.CompressionModel = m.CompressionModel
	f.Memory.RenderMode = string(m.RenderMode)
	f.Memory.ContinuousContextFile = m.ContinuousContextFile
	f.Logging.ShadowLogFile = l.ShadowLogFile
	f.Logging.CaptureFile = l.CaptureFile
	f.Logging.ResultDir = l.ResultDir
	return f
}

// LoadStormFile reads path over the built-in defaults. Keys missing from
// the file keep their default value.
func LoadStormFile(path string) (*StormFile, error) {
	f := defaultStormFile()
	if path == "" {
		return f, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "storm config not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	if err := toml.Unmarshal(data, f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}
	return f, nil
}

// Settings is the validated result of StormFile
type Settings struct {
	Storm  domainConfig.Storm
	Memory domainConfig.Memory
	Logs   domainConfig.Logs
}

func invalid(field string, value any, msg string) error {
	return goerr.Wrap(ErrInvalidConfig, msg, goerr.V(FieldKey, field), goerr.V(ValueKey, value))
}

// Validate converts the file into domain settings, rejecting bad values
func (f *StormFile) Validate() (*Settings, error) {
	if f.Model == "" {
		return nil, invalid("model", f.Model, "model is required")
	}
	if f.NPaths < 1 {
		return nil, invalid("n_paths", f.NPaths, "n_paths must be at least 1")
	}
	if f.Temperature < 0 {
		return nil, invalid("temperature", f.Temperature, "temperature must not be negative")
	}
	if f.MaxTokens < 1 {
		return nil, invalid("max_tokens", f.MaxTokens, "max_tokens must be at least 1")
	}
	if f.Temporal.Lambda < 0 {
		return nil, invalid("temporal.lambda", f.Temporal.Lambda, "lambda must not be negative")
	}
	if f.Thresholds.DCXThreshold < 0 || f.Thresholds.DCXThreshold > 1 {
		return nil, invalid("thresholds.dcx_threshold", f.Thresholds.DCXThreshold, "dcx_threshold must be within [0, 1]")
	}
	if f.Runtime.Workers < 0 {
		return nil, invalid("runtime.workers", f.Runtime.Workers, "workers must not be negative")
	}

	strategy, err := types.ParseGenerationStrategy(f.Runtime.Strategy)
	if err != nil {
		return nil, invalid("runtime.strategy", f.Runtime.Strategy, err.Error())
	}

	var timeout time.Duration
	if f.Runtime.Timeout != "" {
		timeout, err = time.ParseDuration(f.Runtime.Timeout)
		if err != nil || timeout < 0 {
			return nil, invalid("runtime.timeout", f.Runtime.Timeout, "timeout must be a non-negative duration")
		}
	}

	rule, err := types.ParseSelectionRule(f.Selection.Rule)
	if err != nil {
		return nil, invalid("selection.rule", f.Selection.Rule, err.Error())
	}
	policy, err := types.ParseFailurePolicy(f.Selection.FailurePolicy)
	if err != nil {
		return nil, invalid("selection.failure_policy", f.Selection.FailurePolicy, err.Error())
	}

	if f.Memory.ContextWindowMax < 1 {
		return nil, invalid("memory.context_window_max", f.Memory.ContextWindowMax, "context_window_max must be at least 1")
	}
	if f.Memory.KeepRecent < 0 {
		return nil, invalid("memory.keep_recent", f.Memory.KeepRecent, "keep_recent must not be negative")
	}
	switch f.Memory.Compressor {
	case "semantic", "llm":
	default:
		return nil, invalid("memory.compressor", f.Memory.Compressor, "compressor must be semantic or llm")
	}
	renderMode, err := types.ParseRenderMode(f.Memory.RenderMode)
	if err != nil {
		return nil, invalid("memory.render_mode", f.Memory.RenderMode, err.Error())
	}

	return &Settings{
		Storm: domainConfig.Storm{
			Model:           f.Model,
			Trajectories:    f.NPaths,
			Temperature:     f.Temperature,
			MaxTokens:       f.MaxTokens,
			Lambda:          f.Temporal.Lambda,
			FreezeThreshold: f.Thresholds.FreezeThreshold,
			DCXThreshold:    f.Thresholds.DCXThreshold,
			Workers:         f.Runtime.Workers,
			Strategy:        strategy,
			Timeout:         timeout,
			Rule:            rule,
			FailurePolicy:   policy,
		},
		Memory: domainConfig.Memory{
			ContextWindowMax:      f.Memory.ContextWindowMax,
			KeepRecent:            f.Memory.KeepRecent,
			Compressor:            f.Memory.Compressor,
			CompressionModel:      f.Memory.CompressionModel,
			RenderMode:            renderMode,
			ContinuousContextFile: f.Memory.ContinuousContextFile,
		},
		Logs: domainConfig.Logs{
			ShadowLogFile: f.Logging.ShadowLogFile,
			CaptureFile:   f.Logging.CaptureFile,
			ResultDir:     f.Logging.ResultDir,
		},
	}, nil
}

// Storm holds CLI flags for the storm configuration. Flags override values
// from the TOML file only when they are set explicitly.
type Storm struct {
	path string

	model            string
	nPaths           int
	temperature      float64
	maxTokens        int
	lambda           float64
	freezeThreshold  float64
	dcxThreshold     float64
	workers          int
	strategy         string
	timeout          time.Duration
	rule             string
	failurePolicy    string
	contextWindowMax int
	keepRecent       int
	compressor       string
	compressionModel string
	renderMode       string
	contextFile      string
	shadowLog        string
	captureFile      string
	resultDir        string
}

// Flags returns CLI flags for the storm configuration
func (x *Storm) Flags() []cli.Flag {
	const (
		catStorm  = "Storm"
		catMemory = "Memory"
		catAudit  = "Audit"
	)
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Category:    catStorm,
			Usage:       "Storm configuration file (TOML)",
			Sources:     cli.EnvVars("STORMFRONT_CONFIG"),
			Destination: &x.path,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Category:    catStorm,
			Usage:       "Generation model ID",
			Sources:     cli.EnvVars("STORMFRONT_MODEL"),
			Destination: &x.model,
		},
		&cli.IntFlag{
			Name:        "n-paths",
			Aliases:     []string{"n"},
			Category:    catStorm,
			Usage:       "Number of trajectories per run",
			Sources:     cli.EnvVars("STORMFRONT_N_PATHS"),
			Destination: &x.nPaths,
		},
		&cli.FloatFlag{
			Name:        "temperature",
			Category:    catStorm,
			Usage:       "Sampling temperature",
			Sources:     cli.EnvVars("STORMFRONT_TEMPERATURE"),
			Destination: &x.temperature,
		},
		&cli.IntFlag{
			Name:        "max-tokens",
			Category:    catStorm,
			Usage:       "Maximum tokens per trajectory",
			Sources:     cli.EnvVars("STORMFRONT_MAX_TOKENS"),
			Destination: &x.maxTokens,
		},
		&cli.FloatFlag{
			Name:        "lambda",
			Category:    catStorm,
			Usage:       "Temporal decay rate",
			Sources:     cli.EnvVars("STORMFRONT_LAMBDA"),
			Destination: &x.lambda,
		},
		&cli.FloatFlag{
			Name:        "freeze-threshold",
			Category:    catStorm,
			Usage:       "Freeze when the minimum row mean reaches this value",
			Sources:     cli.EnvVars("STORMFRONT_FREEZE_THRESHOLD"),
			Destination: &x.freezeThreshold,
		},
		&cli.FloatFlag{
			Name:        "dcx-threshold",
			Category:    catStorm,
			Usage:       "Minimum confidence for committing a turn to memory (0 disables)",
			Sources:     cli.EnvVars("STORMFRONT_DCX_THRESHOLD"),
			Destination: &x.dcxThreshold,
		},
		&cli.IntFlag{
			Name:        "workers",
			Category:    catStorm,
			Usage:       "Worker count for parallel generation",
			Sources:     cli.EnvVars("STORMFRONT_WORKERS"),
			Destination: &x.workers,
		},
		&cli.StringFlag{
			Name:        "strategy",
			Category:    catStorm,
			Usage:       "Generation strategy " + choices(types.AllGenerationStrategies()),
			Sources:     cli.EnvVars("STORMFRONT_STRATEGY"),
			Destination: &x.strategy,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Category:    catStorm,
			Usage:       "Per-call generation timeout",
			Sources:     cli.EnvVars("STORMFRONT_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.StringFlag{
			Name:        "rule",
			Category:    catStorm,
			Usage:       "Selection rule " + choices(types.AllSelectionRules()),
			Sources:     cli.EnvVars("STORMFRONT_RULE"),
			Destination: &x.rule,
		},
		&cli.StringFlag{
			Name:        "failure-policy",
			Category:    catStorm,
			Usage:       "Failed sample policy [exclude|include]",
			Sources:     cli.EnvVars("STORMFRONT_FAILURE_POLICY"),
			Destination: &x.failurePolicy,
		},
		&cli.IntFlag{
			Name:        "context-window-max",
			Category:    catMemory,
			Usage:       "Character budget of recent history",
			Sources:     cli.EnvVars("STORMFRONT_CONTEXT_WINDOW_MAX"),
			Destination: &x.contextWindowMax,
		},
		&cli.IntFlag{
			Name:        "keep-recent",
			Category:    catMemory,
			Usage:       "Turns kept after compression",
			Sources:     cli.EnvVars("STORMFRONT_KEEP_RECENT"),
			Destination: &x.keepRecent,
		},
		&cli.StringFlag{
			Name:        "compressor",
			Category:    catMemory,
			Usage:       "Memory compressor [semantic|llm]",
			Sources:     cli.EnvVars("STORMFRONT_COMPRESSOR"),
			Destination: &x.compressor,
		},
		&cli.StringFlag{
			Name:        "compression-model",
			Category:    catMemory,
			Usage:       "Model used by the llm compressor",
			Sources:     cli.EnvVars("STORMFRONT_COMPRESSION_MODEL"),
			Destination: &x.compressionModel,
		},
		&cli.StringFlag{
			Name:        "render-mode",
			Category:    catMemory,
			Usage:       "Semantic summary rendering [verbose|dense]",
			Sources:     cli.EnvVars("STORMFRONT_RENDER_MODE"),
			Destination: &x.renderMode,
		},
		&cli.StringFlag{
			Name:        "continuous-context-file",
			Category:    catMemory,
			Usage:       "Transcript file read by memory digest",
			Sources:     cli.EnvVars("STORMFRONT_CONTINUOUS_CONTEXT_FILE"),
			Destination: &x.contextFile,
		},
		&cli.StringFlag{
			Name:        "shadow-log",
			Category:    catAudit,
			Usage:       "Shadow log path (empty disables)",
			Sources:     cli.EnvVars("STORMFRONT_SHADOW_LOG"),
			Destination: &x.shadowLog,
		},
		&cli.StringFlag{
			Name:        "capture-file",
			Category:    catAudit,
			Usage:       "Capture log path (empty disables)",
			Sources:     cli.EnvVars("STORMFRONT_CAPTURE_FILE"),
			Destination: &x.captureFile,
		},
		&cli.StringFlag{
			Name:        "result-dir",
			Category:    catAudit,
			Usage:       "Directory or gs://bucket/prefix for per-run result files (empty disables)",
			Sources:     cli.EnvVars("STORMFRONT_RESULT_DIR"),
			Destination: &x.resultDir,
		},
	}
}

// Override applies explicitly set flags to f. isSet reports whether a flag
// was given on the command line or through its environment variable.
func (x *Storm) Override(f *StormFile, isSet func(name string) bool) {
	set := func(name string, apply func()) {
		if isSet(name) {
			apply()
		}
	}
	set("model", func() { f.Model = x.model })
	set("n-paths", func() { f.NPaths = x.nPaths })
	set("temperature", func() { f.Temperature = x.temperature })
	set("max-tokens", func() { f.MaxTokens = x.maxTokens })
	set("lambda", func() { f.Temporal.Lambda = x.lambda })
	set("freeze-threshold", func() { f.Thresholds.FreezeThreshold = x.freezeThreshold })
	set("dcx-threshold", func() { f.Thresholds.DCXThreshold = x.dcxThreshold })
	set("workers", func() { f.Runtime.Workers = x.workers })
	set("strategy", func() { f.Runtime.Strategy = x.strategy })
	set("timeout", func() { f.Runtime.Timeout = x.timeout.String() })
	set("rule", func() { f.Selection.Rule = x.rule })
	set("failure-policy", func() { f.Selection.FailurePolicy = x.failurePolicy })
	set("context-window-max", func() { f.Memory.ContextWindowMax = x.contextWindowMax })
	set("keep-recent", func() { f.Memory.KeepRecent = x.keepRecent })
	set("compressor", func() { f.Memory.Compressor = x.compressor })
	set("compression-model", func() { f.Memory.CompressionModel = x.compressionModel })
	set("render-mode", func() { f.Memory.RenderMode = x.renderMode })
	set("continuous-context-file", func() { f.Memory.ContinuousContextFile = x.contextFile })
	set("shadow-log", func() { f.Logging.ShadowLogFile = x.shadowLog })
	set("capture-file", func() { f.Logging.CaptureFile = x.captureFile })
	set("result-dir", func() { f.Logging.ResultDir = x.resultDir })
}

// Configure loads the config file, applies flag overrides and validates
func (x *Storm) Configure(c *cli.Command) (*Settings, error) {
	f, err := LoadStormFile(x.path)
	if err != nil {
		return nil, err
	}
	x.Override(f, c.IsSet)

	settings, err := f.Validate()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid storm configuration", goerr.V(ConfigPathKey, x.path))
	}
	return settings, nil
}

// LogValue implements slog.LogValuer
func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("model", s.Storm.Model),
		slog.Int("n_paths", s.Storm.Trajectories),
		slog.Float64("lambda", s.Storm.Lambda),
		slog.Float64("freeze_threshold", s.Storm.FreezeThreshold),
		slog.String("strategy", s.Storm.Strategy.String()),
		slog.String("rule", s.Storm.Rule.String()),
		slog.String("failure_policy", s.Storm.FailurePolicy.String()),
		slog.String("compressor", s.Memory.Compressor),
	)
}
