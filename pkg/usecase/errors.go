package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrArtifactsDisabled = errors.New("result artifacts are not configured")
)

// Context keys for error values
const (
	RunIDKey = "run_id"
)
