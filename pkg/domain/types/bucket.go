package types

import "fmt"

// Bucket is a semantic summary category
type Bucket string

const (
	BucketFacts       Bucket = "facts"
	BucketGoals       Bucket = "goals"
	BucketConstraints Bucket = "constraints"
	BucketNotes       Bucket = "notes"
	BucketHistory     Bucket = "history"
)

// AllBuckets returns buckets in rendering order
func AllBuckets() []Bucket {
	return []Bucket{
		BucketFacts,
		BucketGoals,
		BucketConstraints,
		BucketNotes,
		BucketHistory,
	}
}

// IsValid checks if the bucket is valid
func (b Bucket) IsValid() bool {
	switch b {
	case BucketFacts, BucketGoals, BucketConstraints, BucketNotes, BucketHistory:
		return true
	default:
		return false
	}
}

func (b Bucket) String() string {
	return string(b)
}

// RenderMode selects the textual form of a rendered summary
type RenderMode string

const (
	// RenderDense renders each bucket on one line with pipe separators
	RenderDense RenderMode = "dense"
	// RenderVerbose renders one bullet per line
	RenderVerbose RenderMode = "verbose"
)

// IsValid checks if the render mode is valid
func (m RenderMode) IsValid() bool {
	switch m {
	case RenderDense, RenderVerbose:
		return true
	default:
		return false
	}
}

// Normalize treats empty as RenderVerbose
func (m RenderMode) Normalize() RenderMode {
	if m == "" {
		return RenderVerbose
	}
	return m
}

// ParseRenderMode parses a string into a RenderMode
func ParseRenderMode(s string) (RenderMode, error) {
	mode := RenderMode(s).Normalize()
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid render mode: %s", s)
	}
	return mode, nil
}
