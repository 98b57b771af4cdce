package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/usecase"
	"go.uber.org/goleak"
)

func TestTrajectoryGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("sequential keeps order and count", func(t *testing.T) {
		g := usecase.NewTrajectoryGenerator(&scriptedSampler{texts: []string{"a", "b", "c"}}, stormConfig(7, 1))
		gt.Value(t, g.Strategy()).Equal(types.StrategySequential)

		out := g.Generate(ctx, "p", 7)
		gt.Array(t, out).Length(7)
		for i, traj := range out {
			gt.Value(t, traj.Index).Equal(i)
		}
		gt.Value(t, out[4].Text).Equal("b")
	})

	t.Run("parallel keeps submission order", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		sampler := funcSampler(func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
			// later samples finish first
			time.Sleep(time.Duration(10-index) * time.Millisecond)
			return model.Trajectory{Index: index, Text: fmt.Sprintf("t%d", index)}
		})
		g := usecase.NewTrajectoryGenerator(sampler, parallelConfig(10, 4))

		out := g.Generate(ctx, "p", 10)
		gt.Array(t, out).Length(10)
		for i, traj := range out {
			gt.Value(t, traj.Text).Equal(fmt.Sprintf("t%d", i))
		}
	})

	t.Run("parallel passes parameters to every sample", func(t *testing.T) {
		cfg := parallelConfig(5, 2)
		cfg.Model = "tiny"
		cfg.Temperature = 0.3
		cfg.MaxTokens = 7

		var bad atomic.Int32
		sampler := funcSampler(func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
			if params.Model != "tiny" || params.Temperature != 0.3 || params.MaxTokens != 7 || prompt != "q" {
				bad.Add(1)
			}
			return model.Trajectory{Index: index, Text: "x"}
		})
		usecase.NewTrajectoryGenerator(sampler, cfg).Generate(ctx, "q", 5)
		gt.Value(t, bad.Load()).Equal(int32(0))
	})

	t.Run("panicking sample becomes a crash marker", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		sampler := funcSampler(func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
			if index == 2 {
				panic("worker died")
			}
			return model.Trajectory{Index: index, Text: "ok"}
		})
		out := usecase.NewTrajectoryGenerator(sampler, parallelConfig(4, 2)).Generate(ctx, "p", 4)

		gt.Array(t, out).Length(4)
		gt.Value(t, out[2].Failure).Equal(types.FailureCrash)
		gt.Value(t, out[2].Index).Equal(2)
		gt.Value(t, out[3].Text).Equal("ok")
	})

	t.Run("pool size bounds", func(t *testing.T) {
		g := usecase.NewTrajectoryGenerator(&scriptedSampler{texts: []string{"a"}}, parallelConfig(40, 100))
		gt.Bool(t, g.PoolSize(40) <= 16).True()
		gt.Bool(t, g.PoolSize(40) >= 1).True()
		gt.Value(t, g.PoolSize(1)).Equal(1)

		one := usecase.NewTrajectoryGenerator(&scriptedSampler{texts: []string{"a"}}, parallelConfig(40, 1))
		gt.Value(t, one.PoolSize(40)).Equal(1)
	})

	t.Run("zero samples", func(t *testing.T) {
		g := usecase.NewTrajectoryGenerator(&scriptedSampler{texts: []string{"a"}}, stormConfig(1, 1))
		gt.Array(t, g.Generate(ctx, "p", 0)).Length(0)
	})
}
