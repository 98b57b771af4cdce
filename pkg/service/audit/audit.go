package audit

import (
	"context"

	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// ShadowLog writes one ShadowRecord per run
type ShadowLog struct {
	f file[model.ShadowRecord]
}

var _ interfaces.ShadowLog = (*ShadowLog)(nil)

// NewShadowLog creates a shadow log at path
func NewShadowLog(path string) *ShadowLog {
	return &ShadowLog{f: file[model.ShadowRecord]{path: path}}
}

// AppendRun appends record
func (l *ShadowLog) AppendRun(ctx context.Context, record *model.ShadowRecord) error {
	return l.f.append(ctx, record)
}

// ReadRuns returns the well-formed records in file order
func (l *ShadowLog) ReadRuns(ctx context.Context) ([]*model.ShadowRecord, error) {
	return l.f.read(ctx)
}

// CaptureLog writes one CaptureEntry per turn
type CaptureLog struct {
	f file[model.CaptureEntry]
}

var _ interfaces.CaptureLog = (*CaptureLog)(nil)

// NewCaptureLog creates a capture log at path
func NewCaptureLog(path string) *CaptureLog {
	return &CaptureLog{f: file[model.CaptureEntry]{path: path}}
}

// AppendCapture appends entry
func (l *CaptureLog) AppendCapture(ctx context.Context, entry *model.CaptureEntry) error {
	return l.f.append(ctx, entry)
}

// ReadCaptures returns captured entries, dropping lines with neither a prompt nor an output
func (l *CaptureLog) ReadCaptures(ctx context.Context) ([]*model.CaptureEntry, error) {
	entries, err := l.f.read(ctx)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Prompt == "" && e.Output == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Nop discards everything
type Nop struct{}

var (
	_ interfaces.ShadowLog  = Nop{}
	_ interfaces.CaptureLog = Nop{}
)

func (Nop) AppendRun(context.Context, *model.ShadowRecord) error { return nil }

func (Nop) ReadRuns(context.Context) ([]*model.ShadowRecord, error) { return nil, nil }

func (Nop) AppendCapture(context.Context, *model.CaptureEntry) error { return nil }

func (Nop) ReadCaptures(context.Context) ([]*model.CaptureEntry, error) { return nil, nil }
