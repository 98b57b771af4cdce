package types

import "fmt"

// SelectionRule decides which trajectory represents a non-frozen run.
//
// Two rules exist because earlier pipeline variants disagreed: some picked the
// lowest row mean, one picked the highest. The rule is now always explicit.
type SelectionRule string

const (
	// SelectMostConsistent picks the trajectory with the highest decayed row
	// mean, i.e. the one the rest of the ensemble agrees with most.
	SelectMostConsistent SelectionRule = "most_consistent"
	// SelectMostDistinctive picks the trajectory with the lowest row mean.
	SelectMostDistinctive SelectionRule = "most_distinctive"
)

// AllSelectionRules returns all valid selection rules
func AllSelectionRules() []SelectionRule {
	return []SelectionRule{
		SelectMostConsistent,
		SelectMostDistinctive,
	}
}

// IsValid checks if the rule is valid
func (r SelectionRule) IsValid() bool {
	switch r {
	case SelectMostConsistent, SelectMostDistinctive:
		return true
	default:
		return false
	}
}

// Normalize treats empty as SelectMostConsistent
func (r SelectionRule) Normalize() SelectionRule {
	if r == "" {
		return SelectMostConsistent
	}
	return r
}

func (r SelectionRule) String() string {
	return string(r)
}

// ParseSelectionRule parses a string into a SelectionRule
func ParseSelectionRule(s string) (SelectionRule, error) {
	rule := SelectionRule(s).Normalize()
	if !rule.IsValid() {
		return "", fmt.Errorf("invalid selection rule: %s", s)
	}
	return rule, nil
}

// FailurePolicy controls whether failed samples may be selected
type FailurePolicy string

const (
	// FailureInclude treats failed samples like any other trajectory.
	FailureInclude FailurePolicy = "include"
	// FailureExclude keeps failed samples in the matrix but never selects them
	// and leaves them out of the freeze minimum.
	FailureExclude FailurePolicy = "exclude"
)

// IsValid checks if the policy is valid
func (p FailurePolicy) IsValid() bool {
	switch p {
	case FailureInclude, FailureExclude:
		return true
	default:
		return false
	}
}

// Normalize treats empty as FailureExclude
func (p FailurePolicy) Normalize() FailurePolicy {
	if p == "" {
		return FailureExclude
	}
	return p
}

func (p FailurePolicy) String() string {
	return string(p)
}

// ParseFailurePolicy parses a string into a FailurePolicy
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	policy := FailurePolicy(s).Normalize()
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid failure policy: %s", s)
	}
	return policy, nil
}
