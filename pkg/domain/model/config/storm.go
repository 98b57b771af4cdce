package config

import (
	"time"

	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// Storm holds the parameters of one storm run
type Storm struct {
	Model        string
	Trajectories int
	Temperature  float64
	MaxTokens    int

	// Lambda is the temporal decay rate applied to |i-j|
	Lambda          float64
	FreezeThreshold float64
	// DCXThreshold is the minimum confidence a run needs to be committed to
	// memory. Zero disables the check.
	DCXThreshold float64

	Workers  int
	Strategy types.GenerationStrategy
	// Timeout bounds a single generation call. Zero means no bound.
	Timeout time.Duration

	Rule          types.SelectionRule
	FailurePolicy types.FailurePolicy
}

// DefaultStorm returns the built-in storm parameters
func DefaultStorm() Storm {
	return Storm{
		Model:           "llama3:8b",
		Trajectories:    10,
		Temperature:     0.9,
		MaxTokens:       128,
		Lambda:          0.015,
		FreezeThreshold: 0.75,
		Workers:         1,
		Strategy:        types.StrategySequential,
		Timeout:         120 * time.Second,
		Rule:            types.SelectMostConsistent,
		FailurePolicy:   types.FailureExclude,
	}
}

// Memory holds rolling context memory parameters
type Memory struct {
	// ContextWindowMax is the character budget of recent history
	ContextWindowMax int
	// KeepRecent is how many turns survive a compression
	KeepRecent            int
	Compressor            string
	CompressionModel      string
	RenderMode            types.RenderMode
	ContinuousContextFile string
}

// DefaultMemory returns the built-in memory parameters
func DefaultMemory() Memory {
	return Memory{
		ContextWindowMax:      4000,
		KeepRecent:            2,
		Compressor:            "semantic",
		CompressionModel:      "qwen2.5:0.5b",
		RenderMode:            types.RenderVerbose,
		ContinuousContextFile: "continuous.ndjson",
	}
}

// Logs holds audit destinations
type Logs struct {
	ShadowLogFile string
	CaptureFile   string
	ResultDir     string
}

// DefaultLogs returns the built-in audit destinations
func DefaultLogs() Logs {
	return Logs{
		ShadowLogFile: "storm_shadow_log.ndjson",
		CaptureFile:   "captured.ndjson",
	}
}
