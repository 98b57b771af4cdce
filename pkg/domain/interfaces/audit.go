package interfaces

import (
	"context"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// ShadowLog is the append-only per-run log
type ShadowLog interface {
	AppendRun(ctx context.Context, record *model.ShadowRecord) error
	ReadRuns(ctx context.Context) ([]*model.ShadowRecord, error)
}

// CaptureLog is the append-only prompt/output audit trail. It is written for
// every turn regardless of whether the turn was committed to memory.
type CaptureLog interface {
	AppendCapture(ctx context.Context, entry *model.CaptureEntry) error
	ReadCaptures(ctx context.Context) ([]*model.CaptureEntry, error)
}

// ArtifactStore keeps one result artifact per run
type ArtifactStore interface {
	Put(ctx context.Context, artifact *model.ResultArtifact) error
	Get(ctx context.Context, runID model.RunID) (*model.ResultArtifact, error)
	List(ctx context.Context) ([]model.RunID, error)
}
