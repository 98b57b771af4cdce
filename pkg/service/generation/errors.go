package generation

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

var (
	// ErrUnavailable means the backend could not be reached at all. Fallback
	// moves on to the next backend only for this error.
	ErrUnavailable = goerr.New("generation backend unavailable")
	// ErrExit means the backend process or server reported a failure
	ErrExit = goerr.New("generation backend exited with failure")
	// ErrEmptyOutput means the backend succeeded but returned no text
	ErrEmptyOutput = goerr.New("generation backend returned empty output")
)

// Classify maps a backend error to the failure code recorded on the trajectory
func Classify(err error) types.FailureCode {
	switch {
	case err == nil:
		return types.FailureNone
	case errors.Is(err, context.DeadlineExceeded):
		return types.FailureTimeout
	case errors.Is(err, ErrUnavailable):
		return types.FailureUnavailable
	case errors.Is(err, ErrExit):
		return types.FailureExit
	case errors.Is(err, ErrEmptyOutput):
		return types.FailureEmpty
	default:
		return types.FailureCrash
	}
}
