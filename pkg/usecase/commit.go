package usecase

import "github.com/secmon-lab/stormfront/pkg/domain/model"

// CommitPolicy decides whether a finished run is written to rolling memory.
// Runs that are not committed are still captured in the audit trail.
type CommitPolicy interface {
	ShouldCommit(result *model.RunResult) bool
}

// CommitPolicyFunc adapts a function to CommitPolicy
type CommitPolicyFunc func(result *model.RunResult) bool

// ShouldCommit calls f
func (f CommitPolicyFunc) ShouldCommit(result *model.RunResult) bool {
	return f(result)
}

// DefaultCommitPolicy rejects frozen runs and, when minConfidence > 0, runs
// whose confidence is below it.
func DefaultCommitPolicy(minConfidence float64) CommitPolicy {
	return CommitPolicyFunc(func(result *model.RunResult) bool {
		if result == nil || result.Frozen {
			return false
		}
		if minConfidence > 0 && result.Confidence < minConfidence {
			return false
		}
		return true
	})
}
