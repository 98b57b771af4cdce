package usecase_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/service/artifact"
	"github.com/secmon-lab/stormfront/pkg/service/audit"
	"github.com/secmon-lab/stormfront/pkg/service/embedding"
	"github.com/secmon-lab/stormfront/pkg/usecase"
)

func TestNewStorm(t *testing.T) {
	chain := embedding.NewChain()

	_, err := usecase.NewStorm(nil, chain, stormConfig(3, 1))
	gt.Value(t, err).NotNil()

	_, err = usecase.NewStorm(&scriptedSampler{texts: []string{"a"}}, nil, stormConfig(3, 1))
	gt.Value(t, err).NotNil()

	_, err = usecase.NewStorm(&scriptedSampler{texts: []string{"a"}}, chain, stormConfig(0, 1))
	gt.Value(t, err).NotNil()
}

func TestStormRun(t *testing.T) {
	ctx := context.Background()

	t.Run("near-identical answers select the majority", func(t *testing.T) {
		sampler := &scriptedSampler{texts: []string{"4", "4", "The answer is 4", "4", "4"}}
		storm, err := usecase.NewStorm(sampler, embedding.NewChain(), stormConfig(5, 1.0))
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "What is 2+2?")
		gt.NoError(t, err).Required()

		gt.Bool(t, result.Frozen).False()
		gt.Value(t, result.SelectedIndex).NotNil()
		gt.Value(t, result.Text).Equal("4")
		gt.Value(t, result.Prompt).Equal("What is 2+2?")
		gt.Array(t, result.RowMeans).Length(5)
		gt.Array(t, result.Trajectories).Length(5)
		gt.Value(t, result.Provider).Equal(types.ProviderHashed)
		gt.Value(t, result.Confidence).Equal(result.RowMeans[*result.SelectedIndex])
		gt.Value(t, result.ID).NotEqual(model.RunID(""))
	})

	t.Run("unrelated answers freeze", func(t *testing.T) {
		sampler := &scriptedSampler{texts: []string{
			"qzx vorpal wendigo",
			"lattice 9931 mirth",
			"ochre pendulum quay",
			"zygote ampersand fjord",
			"bramble kiln syzygy",
		}}
		storm, err := usecase.NewStorm(sampler, embedding.NewChain(), stormConfig(5, 0.15))
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "say something")
		gt.NoError(t, err).Required()

		gt.Bool(t, result.Frozen).True()
		gt.Value(t, result.Text).Equal(model.FrozenSentinel)
		gt.Value(t, result.SelectedIndex).Nil()
		gt.Bool(t, result.DCXMin >= 0.15).True()
	})

	t.Run("failed samples are excluded from selection", func(t *testing.T) {
		sampler := funcSampler(func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
			if index%2 == 0 {
				return model.NewFailedTrajectory(index, types.FailureTimeout, "")
			}
			return model.Trajectory{Index: index, Text: "yes"}
		})
		storm, err := usecase.NewStorm(sampler, embedding.NewChain(), stormConfig(5, 1.0))
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "ok?")
		gt.NoError(t, err).Required()

		gt.Bool(t, result.Frozen).False()
		gt.Value(t, result.Text).Equal("yes")
		gt.Value(t, *result.SelectedIndex%2).Equal(1)
		gt.Value(t, result.Meta().NFailed).Equal(3)
	})

	t.Run("all samples failing freezes", func(t *testing.T) {
		sampler := funcSampler(func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
			return model.NewFailedTrajectory(index, types.FailureUnavailable, "connection refused")
		})
		storm, err := usecase.NewStorm(sampler, embedding.NewChain(), stormConfig(3, 1.0))
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "hello")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Frozen).True()
		gt.Value(t, result.Text).Equal(model.FrozenSentinel)
	})

	t.Run("single trajectory", func(t *testing.T) {
		storm, err := usecase.NewStorm(&scriptedSampler{texts: []string{"only"}}, embedding.NewChain(), stormConfig(1, 1.5))
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "p")
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Frozen).False()
		gt.Value(t, *result.SelectedIndex).Equal(0)
		gt.Value(t, result.RowMeans[0]).Equal(1.0)
	})

	t.Run("records shadow log and artifact", func(t *testing.T) {
		dir := t.TempDir()
		shadow := audit.NewShadowLog(filepath.Join(dir, "shadow.ndjson"))
		store := artifact.NewLocalStore(filepath.Join(dir, "results"))
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		storm, err := usecase.NewStorm(
			&scriptedSampler{texts: []string{"a", "a", "a"}},
			embedding.NewChain(),
			stormConfig(3, 1.0),
			usecase.WithShadowLog(shadow),
			usecase.WithArtifactStore(store),
			usecase.WithClock(func() time.Time { return fixed }),
		)
		gt.NoError(t, err).Required()

		result, err := storm.Run(ctx, "prompt")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Timestamp).Equal(fixed)

		runs, err := shadow.ReadRuns(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, runs).Length(1).Required()
		gt.Value(t, runs[0].RunID).Equal(result.ID)
		gt.Value(t, runs[0].Prompt).Equal("prompt")
		gt.Value(t, runs[0].Meta.NRequested).Equal(3)

		a, err := store.Get(ctx, result.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, a.FinalOutput).Equal(result.Text)
		gt.Array(t, a.Trajectories).Length(3)
	})

	t.Run("broken shadow log does not fail the run", func(t *testing.T) {
		dir := t.TempDir()
		// a directory cannot be opened for appending
		shadow := audit.NewShadowLog(dir)

		storm, err := usecase.NewStorm(&scriptedSampler{texts: []string{"a"}}, embedding.NewChain(), stormConfig(2, 1.0),
			usecase.WithShadowLog(shadow))
		gt.NoError(t, err).Required()

		_, err = storm.Run(ctx, "prompt")
		gt.NoError(t, err)
	})

	t.Run("invalid lambda fails", func(t *testing.T) {
		cfg := stormConfig(2, 1.0)
		cfg.Lambda = -1
		storm, err := usecase.NewStorm(&scriptedSampler{texts: []string{"a"}}, embedding.NewChain(), cfg)
		gt.NoError(t, err).Required()

		_, err = storm.Run(ctx, "prompt")
		gt.Value(t, err).NotNil()
	})
}
