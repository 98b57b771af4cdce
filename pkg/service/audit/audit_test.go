package audit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/service/audit"
)

func TestShadowLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "shadow.ndjson")
	log := audit.NewShadowLog(path)

	records, err := log.ReadRuns(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(0)

	idx := 2
	result := &model.RunResult{
		ID:            model.NewRunID(),
		Timestamp:     time.Now().UTC().Truncate(time.Second),
		Model:         "llama3:8b",
		Prompt:        "What is 2+2?",
		SelectedIndex: &idx,
		Confidence:    0.9,
		Trajectories:  []model.Trajectory{{Index: 0, Text: "4"}},
	}
	gt.NoError(t, log.AppendRun(ctx, model.NewShadowRecord(result))).Required()

	// unrelated garbage must not break reading
	fd, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	gt.NoError(t, err).Required()
	_, err = fd.WriteString("not json at all\n\n{\"broken\":\n")
	gt.NoError(t, err).Required()
	gt.NoError(t, fd.Close()).Required()

	second := *result
	second.ID = model.NewRunID()
	second.Frozen = true
	second.SelectedIndex = nil
	gt.NoError(t, log.AppendRun(ctx, model.NewShadowRecord(&second))).Required()

	records, err = log.ReadRuns(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(2).Required()
	gt.Value(t, records[0].RunID).Equal(result.ID)
	gt.Value(t, records[0].Prompt).Equal("What is 2+2?")
	gt.Value(t, *records[0].Meta.SelectedIndex).Equal(2)
	gt.Value(t, records[0].Meta.Model).Equal("llama3:8b")
	gt.Bool(t, records[1].Meta.Frozen).True()
	gt.Value(t, records[1].Meta.SelectedIndex).Nil()
}

func TestCaptureLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "captured.ndjson")
	log := audit.NewCaptureLog(path)

	gt.NoError(t, log.AppendCapture(ctx, &model.CaptureEntry{Timestamp: time.Now(), Prompt: "hi", Output: "hello"})).Required()

	fd, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	gt.NoError(t, err).Required()
	_, err = fd.WriteString("{}\n[1,2]\n")
	gt.NoError(t, err).Required()
	gt.NoError(t, fd.Close()).Required()

	gt.NoError(t, log.AppendCapture(ctx, &model.CaptureEntry{Timestamp: time.Now(), Prompt: "bye", Output: "<FROZEN>"})).Required()

	entries, err := log.ReadCaptures(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(2).Required()
	gt.Value(t, entries[0].Prompt).Equal("hi")
	gt.Value(t, entries[1].Output).Equal("<FROZEN>")
}
