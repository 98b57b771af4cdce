// Package generation wraps text-completion backends so that a single sample
// never fails: every error becomes an error-marker trajectory.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

// Adapter produces one trajectory per call and never returns an error
type Adapter struct {
	backend interfaces.GenerationBackend
	timeout time.Duration
}

// AdapterOption configures Adapter
type AdapterOption func(*Adapter)

// WithTimeout bounds each generation call. Zero disables the bound.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter creates an Adapter over backend
func NewAdapter(backend interfaces.GenerationBackend, opts ...AdapterOption) (*Adapter, error) {
	if backend == nil {
		return nil, goerr.New("generation backend is required")
	}
	a := &Adapter{backend: backend}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate produces the trajectory at index. Backend errors, timeouts and
// panics are all converted to a failed trajectory carrying an error marker.
func (a *Adapter) Generate(ctx context.Context, index int, prompt string, params model.GenerateParams) (traj model.Trajectory) {
	logger := logging.From(ctx).With("index", index, "backend", a.backend.Name())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("generation panicked", "panic", r)
			traj = model.NewFailedTrajectory(index, types.FailureCrash, fmt.Sprint(r))
		}
	}()

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.backend.Generate(callCtx, prompt, params)
	elapsed := time.Since(start)

	if err != nil {
		code := Classify(err)
		detail := failureDetail(code, err, a.timeout)
		logger.Warn("generation failed",
			"failure_code", code,
			"elapsed", elapsed,
			"error", err)
		return model.NewFailedTrajectory(index, code, detail)
	}

	logger.Debug("generation done", "elapsed", elapsed, "length", len(text))
	return model.Trajectory{Index: index, Text: text}
}

func failureDetail(code types.FailureCode, err error, timeout time.Duration) string {
	switch code {
	case types.FailureTimeout:
		if timeout > 0 {
			return fmt.Sprintf("no response within %s", timeout)
		}
		return "deadline exceeded"
	case types.FailureEmpty:
		return ""
	}

	var gErr *goerr.Error
	if errors.As(err, &gErr) {
		if cause, found := gErr.Values()["cause"]; found {
			return fmt.Sprintf("%s: %v", gErr.Error(), cause)
		}
	}
	return err.Error()
}
