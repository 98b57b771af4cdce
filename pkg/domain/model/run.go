package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// FrozenSentinel is the final text of a run that refused to answer
const FrozenSentinel = "FROZEN_HIGH_DIVERGENCE"

// RunID identifies a single storm run
type RunID string

// NewRunID generates a new UUID v4 RunID
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func (id RunID) String() string {
	return string(id)
}

// RunResult is the immutable outcome of one storm run
type RunResult struct {
	ID            RunID
	Timestamp     time.Time
	Model         string
	Prompt        string
	RowMeans      []float64
	DCXMin        float64
	Frozen        bool
	SelectedIndex *int
	Text          string
	Confidence    float64

	Requested    int
	Trajectories []Trajectory
	Provider     types.ProviderKind
	Strategy     types.GenerationStrategy
	Rule         types.SelectionRule
	Elapsed      time.Duration
}

// Meta returns the serialisable summary written to the shadow log and artifacts
func (r *RunResult) Meta() RunMeta {
	return RunMeta{
		RunID:          r.ID,
		Timestamp:      r.Timestamp,
		Model:          r.Model,
		NRequested:     r.Requested,
		NGenerated:     len(r.Trajectories),
		NFailed:        CountFailed(r.Trajectories),
		DCXMin:         r.DCXMin,
		RowMeans:       r.RowMeans,
		Frozen:         r.Frozen,
		SelectedIndex:  r.SelectedIndex,
		Confidence:     r.Confidence,
		CollapseTimeNS: r.Elapsed.Nanoseconds(),
		Provider:       r.Provider,
		Strategy:       r.Strategy,
		Rule:           r.Rule,
	}
}

// RunMeta is the metadata object persisted for a run
type RunMeta struct {
	RunID          RunID                    `json:"run_id"`
	Timestamp      time.Time                `json:"timestamp"`
	Model          string                   `json:"model"`
	NRequested     int                      `json:"n_requested"`
	NGenerated     int                      `json:"n_generated"`
	NFailed        int                      `json:"n_failed"`
	DCXMin         float64                  `json:"dcx_min"`
	RowMeans       []float64                `json:"row_means,omitempty"`
	Frozen         bool                     `json:"frozen"`
	SelectedIndex  *int                     `json:"selected_index"`
	Confidence     float64                  `json:"confidence_score"`
	CollapseTimeNS int64                    `json:"collapse_time_ns"`
	Provider       types.ProviderKind       `json:"provider,omitempty"`
	Strategy       types.GenerationStrategy `json:"strategy,omitempty"`
	Rule           types.SelectionRule      `json:"rule,omitempty"`
}

// ShadowRecord is one line of the append-only shadow log
type ShadowRecord struct {
	RunID              RunID     `json:"run_id"`
	Timestamp          time.Time `json:"timestamp"`
	Prompt             string    `json:"prompt"`
	Meta               RunMeta   `json:"meta"`
	TrajectoriesSample []string  `json:"trajectories_sample,omitempty"`
}

// shadowSampleSize bounds how many trajectory texts a shadow record keeps
const shadowSampleSize = 10

// NewShadowRecord builds the shadow log line for a run
func NewShadowRecord(r *RunResult) *ShadowRecord {
	texts := TrajectoryTexts(r.Trajectories)
	if len(texts) > shadowSampleSize {
		texts = texts[:shadowSampleSize]
	}
	return &ShadowRecord{
		RunID:              r.ID,
		Timestamp:          r.Timestamp,
		Prompt:             r.Prompt,
		Meta:               r.Meta(),
		TrajectoriesSample: texts,
	}
}

// ResultArtifact is the per-run file kept for offline inspection
type ResultArtifact struct {
	Meta         RunMeta  `json:"meta"`
	FinalOutput  string   `json:"final_output"`
	Trajectories []string `json:"trajectories,omitempty"`
}

// NewResultArtifact builds the artifact for a run
func NewResultArtifact(r *RunResult) *ResultArtifact {
	return &ResultArtifact{
		Meta:         r.Meta(),
		FinalOutput:  r.Text,
		Trajectories: TrajectoryTexts(r.Trajectories),
	}
}

// CaptureEntry is one audit record of a prompt and its final output
type CaptureEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
}
