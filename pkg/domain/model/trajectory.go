package model

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// failureMarkerPrefix starts every error-marker text produced for a failed sample
const failureMarkerPrefix = "<GENERATION_ERROR:"

// Trajectory is one candidate completion for a prompt. Index is the
// submission order inside its batch, which temporal decay depends on.
type Trajectory struct {
	Index   int
	Text    string
	Failure types.FailureCode
}

// Failed reports whether the trajectory carries a failure tag
func (t Trajectory) Failed() bool {
	return t.Failure.IsFailure()
}

// FailureMarker renders the text stored in place of model output for a failed sample
func FailureMarker(code types.FailureCode, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return fmt.Sprintf("%s%s>", failureMarkerPrefix, code)
	}
	return fmt.Sprintf("%s%s: %s>", failureMarkerPrefix, code, detail)
}

// IsFailureMarker reports whether text is an error marker produced by FailureMarker
func IsFailureMarker(text string) bool {
	return strings.HasPrefix(text, failureMarkerPrefix)
}

// NewFailedTrajectory builds a trajectory whose text is the error marker
func NewFailedTrajectory(index int, code types.FailureCode, detail string) Trajectory {
	return Trajectory{
		Index:   index,
		Text:    FailureMarker(code, detail),
		Failure: code,
	}
}

// TrajectoryTexts returns the texts of trajectories in order
func TrajectoryTexts(trajectories []Trajectory) []string {
	texts := make([]string, len(trajectories))
	for i, t := range trajectories {
		texts[i] = t.Text
	}
	return texts
}

// CountFailed returns the number of failed trajectories
func CountFailed(trajectories []Trajectory) int {
	n := 0
	for _, t := range trajectories {
		if t.Failed() {
			n++
		}
	}
	return n
}

// GenerateParams are the per-call generation settings
type GenerateParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}
