package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

func TestParseGenerationStrategy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.GenerationStrategy
		wantErr bool
	}{
		{name: "sequential", input: "sequential", want: types.StrategySequential},
		{name: "parallel", input: "parallel", want: types.StrategyParallel},
		{name: "empty defaults to sequential", input: "", want: types.StrategySequential},
		{name: "unknown", input: "batch", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseGenerationStrategy(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestParseSelectionRule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.SelectionRule
		wantErr bool
	}{
		{name: "most consistent", input: "most_consistent", want: types.SelectMostConsistent},
		{name: "most distinctive", input: "most_distinctive", want: types.SelectMostDistinctive},
		{name: "empty defaults to most consistent", input: "", want: types.SelectMostConsistent},
		{name: "unknown", input: "argmax", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseSelectionRule(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestParseFailurePolicy(t *testing.T) {
	got, err := types.ParseFailurePolicy("")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(types.FailureExclude)

	got, err = types.ParseFailurePolicy("include")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(types.FailureInclude)

	_, err = types.ParseFailurePolicy("drop")
	gt.Value(t, err).NotNil()
}

func TestBuckets(t *testing.T) {
	buckets := types.AllBuckets()
	gt.Array(t, buckets).Length(5).Required()
	gt.Value(t, buckets[0]).Equal(types.BucketFacts)
	gt.Value(t, buckets[4]).Equal(types.BucketHistory)
	for _, b := range buckets {
		gt.Bool(t, b.IsValid()).True()
	}
	gt.Bool(t, types.Bucket("misc").IsValid()).False()
}

func TestParseRenderMode(t *testing.T) {
	mode, err := types.ParseRenderMode("")
	gt.NoError(t, err).Required()
	gt.Value(t, mode).Equal(types.RenderVerbose)

	mode, err = types.ParseRenderMode("dense")
	gt.NoError(t, err).Required()
	gt.Value(t, mode).Equal(types.RenderDense)

	_, err = types.ParseRenderMode("compact")
	gt.Value(t, err).NotNil()
}

func TestFailureCode(t *testing.T) {
	gt.Bool(t, types.FailureNone.IsFailure()).False()
	gt.Bool(t, types.FailureTimeout.IsFailure()).True()
}
