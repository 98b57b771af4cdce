package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/model/config"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// scriptedSampler returns texts[i % len(texts)] for sample i
type scriptedSampler struct {
	texts []string

	mu      sync.Mutex
	prompts []string
}

func (s *scriptedSampler) Generate(_ context.Context, index int, prompt string, _ model.GenerateParams) model.Trajectory {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return model.Trajectory{Index: index, Text: s.texts[index%len(s.texts)]}
}

func (s *scriptedSampler) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

type funcSampler func(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory

func (f funcSampler) Generate(ctx context.Context, index int, prompt string, params model.GenerateParams) model.Trajectory {
	return f(ctx, index, prompt, params)
}

func stormConfig(n int, freeze float64) config.Storm {
	cfg := config.DefaultStorm()
	cfg.Trajectories = n
	cfg.FreezeThreshold = freeze
	cfg.Timeout = time.Second
	return cfg
}

func parallelConfig(n, workers int) config.Storm {
	cfg := stormConfig(n, 1)
	cfg.Strategy = types.StrategyParallel
	cfg.Workers = workers
	return cfg
}

var errTestCompressor = errors.New("model offline")

type failingCompressor struct{}

func (failingCompressor) Compress(context.Context, string) (string, error) {
	return "", errTestCompressor
}

type recordingCompressor struct {
	inputs []string
}

func (c *recordingCompressor) Compress(_ context.Context, text string) (string, error) {
	c.inputs = append(c.inputs, text)
	return "compressed", nil
}

var errDiskFull = errors.New("disk full")

// failingSaveRepository loads an empty state and refuses every save
type failingSaveRepository struct{}

func (failingSaveRepository) Load(context.Context) (*model.MemoryState, error) {
	return model.NewMemoryState(), nil
}

func (failingSaveRepository) Save(context.Context, *model.MemoryState) error {
	return errDiskFull
}

func (failingSaveRepository) Close() error { return nil }
