package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/cli/config"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

const sampleConfig = `
model = "qwen2.5:7b"
n_paths = 6
temperature = 0.7

[temporal]
lambda = 0.05

[thresholds]
freeze_threshold = 0.6
dcx_threshold = 0.3

[runtime]
workers = 4
strategy = "parallel"
timeout = "30s"

[selection]
rule = "most_distinctive"
failure_policy = "include"

[memory]
context_window_max = 2000
keep_recent = 3
compressor = "llm"
render_mode = "dense"

[logging]
result_dir = "gs://bucket/runs"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storm.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestLoadStormFile(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		f, err := config.LoadStormFile("")
		gt.NoError(t, err).Required()

		settings, err := f.Validate()
		gt.NoError(t, err).Required()
		gt.Value(t, settings.Storm.Trajectories).Equal(10)
		gt.Value(t, settings.Storm.Lambda).Equal(0.015)
		gt.Value(t, settings.Storm.FreezeThreshold).Equal(0.75)
		gt.Value(t, settings.Storm.Strategy).Equal(types.StrategySequential)
		gt.Value(t, settings.Storm.Timeout).Equal(120 * time.Second)
		gt.Value(t, settings.Storm.FailurePolicy).Equal(types.FailureExclude)
		gt.Value(t, settings.Memory.ContextWindowMax).Equal(4000)
		gt.Value(t, settings.Logs.ShadowLogFile).Equal("storm_shadow_log.ndjson")
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		f, err := config.LoadStormFile(writeConfig(t, sampleConfig))
		gt.NoError(t, err).Required()

		settings, err := f.Validate()
		gt.NoError(t, err).Required()
		gt.Value(t, settings.Storm.Model).Equal("qwen2.5:7b")
		gt.Value(t, settings.Storm.Trajectories).Equal(6)
		gt.Value(t, settings.Storm.MaxTokens).Equal(128)
		gt.Value(t, settings.Storm.Lambda).Equal(0.05)
		gt.Value(t, settings.Storm.DCXThreshold).Equal(0.3)
		gt.Value(t, settings.Storm.Workers).Equal(4)
		gt.Value(t, settings.Storm.Strategy).Equal(types.StrategyParallel)
		gt.Value(t, settings.Storm.Timeout).Equal(30 * time.Second)
		gt.Value(t, settings.Storm.Rule).Equal(types.SelectMostDistinctive)
		gt.Value(t, settings.Storm.FailurePolicy).Equal(types.FailureInclude)
		gt.Value(t, settings.Memory.KeepRecent).Equal(3)
		gt.Value(t, settings.Memory.Compressor).Equal("llm")
		gt.Value(t, settings.Memory.RenderMode).Equal(types.RenderDense)
		gt.Value(t, settings.Logs.ResultDir).Equal("gs://bucket/runs")
		gt.Value(t, settings.Logs.CaptureFile).Equal("captured.ndjson")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadStormFile(filepath.Join(t.TempDir(), "none.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.LoadStormFile(writeConfig(t, "model = "))
		gt.Value(t, err).NotNil()
	})
}

func TestStormFileValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(f *config.StormFile)
	}{
		{"empty model", func(f *config.StormFile) { f.Model = "" }},
		{"zero paths", func(f *config.StormFile) { f.NPaths = 0 }},
		{"negative temperature", func(f *config.StormFile) { f.Temperature = -0.1 }},
		{"zero max tokens", func(f *config.StormFile) { f.MaxTokens = 0 }},
		{"negative lambda", func(f *config.StormFile) { f.Temporal.Lambda = -1 }},
		{"dcx threshold above one", func(f *config.StormFile) { f.Thresholds.DCXThreshold = 1.5 }},
		{"negative workers", func(f *config.StormFile) { f.Runtime.Workers = -1 }},
		{"unknown strategy", func(f *config.StormFile) { f.Runtime.Strategy = "batch" }},
		{"bad timeout", func(f *config.StormFile) { f.Runtime.Timeout = "soon" }},
		{"unknown rule", func(f *config.StormFile) { f.Selection.Rule = "random" }},
		{"unknown failure policy", func(f *config.StormFile) { f.Selection.FailurePolicy = "retry" }},
		{"zero budget", func(f *config.StormFile) { f.Memory.ContextWindowMax = 0 }},
		{"negative keep", func(f *config.StormFile) { f.Memory.KeepRecent = -1 }},
		{"unknown compressor", func(f *config.StormFile) { f.Memory.Compressor = "zip" }},
		{"unknown render mode", func(f *config.StormFile) { f.Memory.RenderMode = "fancy" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := config.LoadStormFile("")
			gt.NoError(t, err).Required()
			tc.mutate(f)

			_, err = f.Validate()
			gt.Error(t, err).Is(config.ErrInvalidConfig)
		})
	}
}

func TestStormOverride(t *testing.T) {
	f, err := config.LoadStormFile(writeConfig(t, sampleConfig))
	gt.NoError(t, err).Required()

	x := config.NewStormForTest("", "llama3:70b", 3)
	x.Override(f, func(name string) bool { return name == "model" })

	gt.Value(t, f.Model).Equal("llama3:70b")
	// n-paths was not set explicitly
	gt.Value(t, f.NPaths).Equal(6)

	x.Override(f, func(name string) bool { return name == "n-paths" })
	gt.Value(t, f.NPaths).Equal(3)
}
