package usecase

import (
	"context"
	"fmt"
	"runtime"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/model/config"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/utils/async"
)

// maxWorkers caps the parallel generation pool
const maxWorkers = 16

// Sampler produces one trajectory and never fails. generation.Adapter
// implements it.
type Sampler interface {
	Generate(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory
}

// TrajectoryGenerator produces a batch of trajectories for one prompt. The
// result always has exactly n entries in submission order.
type TrajectoryGenerator struct {
	sampler  Sampler
	strategy types.GenerationStrategy
	workers  int
	params   model.GenerateParams
}

// NewTrajectoryGenerator creates a generator from the storm parameters
func NewTrajectoryGenerator(sampler Sampler, cfg config.Storm) *TrajectoryGenerator {
	return &TrajectoryGenerator{
		sampler:  sampler,
		strategy: cfg.Strategy.Normalize(),
		workers:  cfg.Workers,
		params: model.GenerateParams{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}
}

// Strategy returns the effective generation strategy
func (g *TrajectoryGenerator) Strategy() types.GenerationStrategy {
	return g.strategy
}

// PoolSize returns the number of workers used for n samples in parallel mode
func (g *TrajectoryGenerator) PoolSize(n int) int {
	size := runtime.NumCPU() - 1
	if size < 1 {
		size = 1
	}
	if g.workers > 0 && g.workers < size {
		size = g.workers
	}
	if size > maxWorkers {
		size = maxWorkers
	}
	if n > 0 && size > n {
		size = n
	}
	return size
}

// Generate returns n trajectories. Failed samples are kept as error-marker
// trajectories in their slot.
func (g *TrajectoryGenerator) Generate(ctx context.Context, prompt string, n int) []model.Trajectory {
	if n <= 0 {
		return []model.Trajectory{}
	}

	sample := func(ctx context.Context, i int) model.Trajectory {
		return g.sampler.Generate(ctx, i, prompt, g.params)
	}

	if g.strategy == types.StrategyParallel {
		return async.Ordered(ctx, n, g.PoolSize(n), sample, func(i int, r any) model.Trajectory {
			return model.NewFailedTrajectory(i, types.FailureCrash, fmt.Sprint(r))
		})
	}

	out := make([]model.Trajectory, n)
	for i := 0; i < n; i++ {
		out[i] = sample(ctx, i)
	}
	return out
}
