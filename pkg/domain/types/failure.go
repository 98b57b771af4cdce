package types

// FailureCode tags a generation sample that did not produce model output
type FailureCode string

const (
	FailureNone        FailureCode = ""
	FailureUnavailable FailureCode = "unavailable"
	FailureTimeout     FailureCode = "timeout"
	FailureExit        FailureCode = "exit"
	FailureCrash       FailureCode = "crash"
	FailureEmpty       FailureCode = "empty"
)

// IsFailure reports whether the code marks a failed sample
func (c FailureCode) IsFailure() bool {
	return c != FailureNone
}

func (c FailureCode) String() string {
	return string(c)
}
