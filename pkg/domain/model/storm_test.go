package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

func TestNewRunID(t *testing.T) {
	id1 := model.NewRunID()
	id2 := model.NewRunID()

	gt.Value(t, id1.String()).NotEqual("")
	gt.Value(t, id1).NotEqual(id2)
}

func TestFailureMarker(t *testing.T) {
	tr := model.NewFailedTrajectory(3, types.FailureTimeout, "deadline exceeded")

	gt.Value(t, tr.Index).Equal(3)
	gt.Bool(t, tr.Failed()).True()
	gt.Value(t, tr.Text).Equal("<GENERATION_ERROR:timeout: deadline exceeded>")
	gt.Bool(t, model.IsFailureMarker(tr.Text)).True()
	gt.Bool(t, model.IsFailureMarker("4")).False()
	gt.Value(t, model.FailureMarker(types.FailureEmpty, "  ")).Equal("<GENERATION_ERROR:empty>")
}

func TestNewShadowRecord(t *testing.T) {
	trajectories := make([]model.Trajectory, 12)
	for i := range trajectories {
		trajectories[i] = model.Trajectory{Index: i, Text: "answer"}
	}
	trajectories[5] = model.NewFailedTrajectory(5, types.FailureExit, "exit status 1")

	sel := 2
	result := &model.RunResult{
		ID:            model.NewRunID(),
		Timestamp:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Model:         "llama3:8b",
		Prompt:        "What is 2+2?",
		SelectedIndex: &sel,
		Text:          "answer",
		Confidence:    0.9,
		Requested:     12,
		Trajectories:  trajectories,
		Elapsed:       1500 * time.Millisecond,
	}

	rec := model.NewShadowRecord(result)
	gt.Array(t, rec.TrajectoriesSample).Length(10)
	gt.Value(t, rec.Meta.NGenerated).Equal(12)
	gt.Value(t, rec.Meta.NFailed).Equal(1)
	gt.Value(t, rec.Meta.CollapseTimeNS).Equal(int64(1500 * time.Millisecond))

	data, err := json.Marshal(rec)
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.Contains(string(data), `"selected_index":2`)).True()
	gt.Bool(t, strings.Contains(string(data), `"confidence_score":0.9`)).True()
}

func TestSummaryState(t *testing.T) {
	s := model.NewSummaryState()

	gt.Bool(t, s.Add(types.BucketFacts, "The sky is blue.")).True()
	gt.Bool(t, s.Add(types.BucketFacts, "The sky is blue.")).False()
	gt.Bool(t, s.Add(types.BucketGoals, "The sky is blue.")).True()
	gt.Bool(t, s.Add(types.Bucket("unknown"), "x")).False()

	gt.Array(t, s.Items(types.BucketFacts)).Length(1)
	gt.Value(t, s.Len()).Equal(2)

	clone := s.Clone()
	clone.Add(types.BucketNotes, "only in clone")
	gt.Value(t, s.Len()).Equal(2)
	gt.Value(t, clone.Len()).Equal(3)
	gt.Array(t, s.Map()["facts"]).Length(1)
}

func TestMemoryStateCopy(t *testing.T) {
	s := &model.MemoryState{Summary: "s", RecentHistory: []string{"a"}}
	c := s.Copy()
	c.RecentHistory[0] = "b"

	gt.Value(t, s.RecentHistory[0]).Equal("a")
	gt.Bool(t, model.NewMemoryState().IsEmpty()).True()
	gt.Bool(t, s.IsEmpty()).False()
}
