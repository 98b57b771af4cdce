package dcx

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// ErrLengthMismatch means the matrix and trajectory batch disagree in size
var ErrLengthMismatch = goerr.New("matrix and trajectories differ in length")

// Policy configures Decide
type Policy struct {
	FreezeThreshold float64
	Rule            types.SelectionRule
	FailurePolicy   types.FailurePolicy
}

// Decide applies the freeze rule and then the selection rule.
//
// The run freezes when the minimum row mean over eligible trajectories is at
// least FreezeThreshold, or when no trajectory is eligible. Otherwise exactly
// one eligible trajectory is selected; ties go to the lowest index.
func Decide(m *model.DivergenceMatrix, trajectories []model.Trajectory, p Policy) (*model.Decision, error) {
	if m == nil || m.Size() == 0 {
		return nil, goerr.Wrap(ErrEmptyBatch, "cannot decide on empty matrix")
	}
	if len(trajectories) != m.Size() {
		return nil, goerr.Wrap(ErrLengthMismatch, "cannot decide",
			goerr.V("matrix", m.Size()),
			goerr.V("trajectories", len(trajectories)))
	}

	rule := p.Rule.Normalize()
	if !rule.IsValid() {
		return nil, goerr.New("invalid selection rule", goerr.V("rule", p.Rule))
	}
	failurePolicy := p.FailurePolicy.Normalize()

	eligible := make([]int, 0, len(trajectories))
	for i, t := range trajectories {
		if failurePolicy == types.FailureExclude && t.Failed() {
			continue
		}
		eligible = append(eligible, i)
	}

	decision := &model.Decision{
		Eligible: len(eligible),
		Rule:     rule,
	}

	if len(eligible) == 0 {
		decision.Frozen = true
		return decision, nil
	}

	minimum := m.RowMeans[eligible[0]]
	for _, i := range eligible[1:] {
		if m.RowMeans[i] < minimum {
			minimum = m.RowMeans[i]
		}
	}
	decision.DCXMin = minimum

	if minimum >= p.FreezeThreshold {
		decision.Frozen = true
		return decision, nil
	}

	selected := eligible[0]
	for _, i := range eligible[1:] {
		switch rule {
		case types.SelectMostConsistent:
			if m.RowMeans[i] > m.RowMeans[selected] {
				selected = i
			}
		case types.SelectMostDistinctive:
			if m.RowMeans[i] < m.RowMeans[selected] {
				selected = i
			}
		}
	}

	decision.SelectedIndex = &selected
	switch rule {
	case types.SelectMostConsistent:
		decision.Confidence = m.RowMeans[selected]
	case types.SelectMostDistinctive:
		decision.Confidence = 1 - m.RowMeans[selected]
	}

	return decision, nil
}
