package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/model/config"
	"github.com/secmon-lab/stormfront/pkg/service/dcx"
	"github.com/secmon-lab/stormfront/pkg/utils/errutil"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

// Storm runs generate, embed, DCX and decide for one prompt
type Storm struct {
	generator *TrajectoryGenerator
	embedder  interfaces.Embedder
	cfg       config.Storm

	shadow    interfaces.ShadowLog
	artifacts interfaces.ArtifactStore
	now       func() time.Time
}

// StormOption configures Storm
type StormOption func(*Storm)

// WithShadowLog records every run in log
func WithShadowLog(log interfaces.ShadowLog) StormOption {
	return func(s *Storm) {
		s.shadow = log
	}
}

// WithArtifactStore writes a result artifact per run
func WithArtifactStore(store interfaces.ArtifactStore) StormOption {
	return func(s *Storm) {
		s.artifacts = store
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) StormOption {
	return func(s *Storm) {
		s.now = now
	}
}

// NewStorm creates the orchestrator
func NewStorm(sampler Sampler, embedder interfaces.Embedder, cfg config.Storm, opts ...StormOption) (*Storm, error) {
	if sampler == nil {
		return nil, goerr.New("sampler is required")
	}
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}
	if cfg.Trajectories < 1 {
		return nil, goerr.New("at least one trajectory is required", goerr.V("trajectories", cfg.Trajectories))
	}

	s := &Storm{
		generator: NewTrajectoryGenerator(sampler, cfg),
		embedder:  embedder,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the storm parameters
func (s *Storm) Config() config.Storm {
	return s.cfg
}

// Run executes one storm. A frozen run is a normal result, not an error.
// Failures of the shadow log or artifact store are reported but do not fail
// the run.
func (s *Storm) Run(ctx context.Context, prompt string) (*model.RunResult, error) {
	runID := model.NewRunID()
	logger := logging.From(ctx).With("run_id", runID)
	ctx = logging.With(ctx, logger)

	started := s.now()
	n := s.cfg.Trajectories

	logger.Info("storm started",
		"model", s.cfg.Model,
		"trajectories", n,
		"strategy", s.generator.Strategy())

	trajectories := s.generator.Generate(ctx, prompt, n)
	batch := s.embedder.Embed(ctx, model.TrajectoryTexts(trajectories))

	matrix, err := dcx.Compute(batch.Vectors, s.cfg.Lambda)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute DCX", goerr.V("run_id", runID))
	}

	decision, err := dcx.Decide(matrix, trajectories, dcx.Policy{
		FreezeThreshold: s.cfg.FreezeThreshold,
		Rule:            s.cfg.Rule,
		FailurePolicy:   s.cfg.FailurePolicy,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decide", goerr.V("run_id", runID))
	}

	result := &model.RunResult{
		ID:           runID,
		Timestamp:    started.UTC(),
		Model:        s.cfg.Model,
		Prompt:       prompt,
		RowMeans:     matrix.RowMeans,
		DCXMin:       decision.DCXMin,
		Frozen:       decision.Frozen,
		Confidence:   decision.Confidence,
		Requested:    n,
		Trajectories: trajectories,
		Provider:     batch.Provider,
		Strategy:     s.generator.Strategy(),
		Rule:         decision.Rule,
	}
	if decision.Frozen {
		result.Text = model.FrozenSentinel
	} else {
		result.SelectedIndex = decision.SelectedIndex
		result.Text = trajectories[*decision.SelectedIndex].Text
	}
	result.Elapsed = s.now().Sub(started)

	logger.Info("storm finished",
		"frozen", result.Frozen,
		"dcx_min", result.DCXMin,
		"confidence", result.Confidence,
		"failed", model.CountFailed(trajectories),
		"provider", result.Provider,
		"elapsed", result.Elapsed)

	s.record(ctx, result)
	return result, nil
}

func (s *Storm) record(ctx context.Context, result *model.RunResult) {
	if s.shadow != nil {
		if err := s.shadow.AppendRun(ctx, model.NewShadowRecord(result)); err != nil {
			_ = errutil.Handle(ctx, err, "failed to write shadow log")
		}
	}
	if s.artifacts != nil {
		if err := s.artifacts.Put(ctx, model.NewResultArtifact(result)); err != nil {
			_ = errutil.Handle(ctx, err, "failed to write result artifact")
		}
	}
}
