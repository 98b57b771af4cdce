package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/service/audit"
)

type UseCases struct {
	Storm   *Storm
	Memory  *RollingMemory
	Session *Session

	capture   interfaces.CaptureLog
	artifacts interfaces.ArtifactStore
	policy    CommitPolicy
}

type Option func(*UseCases)

// WithCapture sets the capture log shared by Session and History
func WithCapture(log interfaces.CaptureLog) Option {
	return func(uc *UseCases) {
		uc.capture = log
	}
}

// WithArtifacts sets the artifact store read by Result and Results
func WithArtifacts(store interfaces.ArtifactStore) Option {
	return func(uc *UseCases) {
		uc.artifacts = store
	}
}

// WithPolicy overrides the session commit policy
func WithPolicy(policy CommitPolicy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

func New(storm *Storm, memory *RollingMemory, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		Storm:   storm,
		Memory:  memory,
		capture: audit.Nop{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	sessionOpts := []SessionOption{WithCaptureLog(uc.capture)}
	if uc.policy != nil {
		sessionOpts = append(sessionOpts, WithCommitPolicy(uc.policy))
	}
	session, err := NewSession(storm, memory, sessionOpts...)
	if err != nil {
		return nil, err
	}
	uc.Session = session

	return uc, nil
}

// History returns captured turns in file order
func (uc *UseCases) History(ctx context.Context) ([]*model.CaptureEntry, error) {
	entries, err := uc.capture.ReadCaptures(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read capture log")
	}
	return entries, nil
}

// Results lists run IDs with a stored artifact
func (uc *UseCases) Results(ctx context.Context) ([]model.RunID, error) {
	if uc.artifacts == nil {
		return nil, ErrArtifactsDisabled
	}
	ids, err := uc.artifacts.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list artifacts")
	}
	return ids, nil
}

// Result returns the artifact of runID
func (uc *UseCases) Result(ctx context.Context, runID model.RunID) (*model.ResultArtifact, error) {
	if uc.artifacts == nil {
		return nil, ErrArtifactsDisabled
	}
	a, err := uc.artifacts.Get(ctx, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get artifact", goerr.V(RunIDKey, runID))
	}
	return a, nil
}

// Ask runs one conversational turn through Session
func (uc *UseCases) Ask(ctx context.Context, prompt string) (*AskResult, error) {
	return uc.Session.Ask(ctx, prompt)
}

// MemoryContext returns the rendered rolling memory
func (uc *UseCases) MemoryContext(ctx context.Context) (string, error) {
	return uc.Memory.GetContext(ctx)
}

// WipeMemory clears the rolling memory
func (uc *UseCases) WipeMemory(ctx context.Context) error {
	return uc.Memory.Wipe(ctx)
}
