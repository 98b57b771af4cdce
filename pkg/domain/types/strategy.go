package types

import "fmt"

// GenerationStrategy selects how a trajectory batch is produced
type GenerationStrategy string

const (
	StrategySequential GenerationStrategy = "sequential"
	StrategyParallel   GenerationStrategy = "parallel"
)

// AllGenerationStrategies returns all valid generation strategies
func AllGenerationStrategies() []GenerationStrategy {
	return []GenerationStrategy{
		StrategySequential,
		StrategyParallel,
	}
}

// IsValid checks if the strategy is valid
func (s GenerationStrategy) IsValid() bool {
	switch s {
	case StrategySequential, StrategyParallel:
		return true
	default:
		return false
	}
}

// Normalize treats empty as StrategySequential
func (s GenerationStrategy) Normalize() GenerationStrategy {
	if s == "" {
		return StrategySequential
	}
	return s
}

func (s GenerationStrategy) String() string {
	return string(s)
}

// ParseGenerationStrategy parses a string into a GenerationStrategy
func ParseGenerationStrategy(s string) (GenerationStrategy, error) {
	strategy := GenerationStrategy(s).Normalize()
	if !strategy.IsValid() {
		return "", fmt.Errorf("invalid generation strategy: %s", s)
	}
	return strategy, nil
}
