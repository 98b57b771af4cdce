// Package compressor condenses conversation turns into summary text, either
// locally with SemanticCompressor or through a generation backend.
package compressor

import (
	"strings"
	"sync"

	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// SemanticCompressor extracts sentences into buckets and keeps a persistent,
// only-growing state across calls. It is safe for concurrent use.
type SemanticCompressor struct {
	classifier Classifier
	mode       types.RenderMode

	mu    sync.Mutex
	state *model.SummaryState
}

// SemanticOption configures SemanticCompressor
type SemanticOption func(*SemanticCompressor)

// WithClassifier replaces KeywordClassifier
func WithClassifier(c Classifier) SemanticOption {
	return func(s *SemanticCompressor) {
		s.classifier = c
	}
}

// WithRenderMode sets the mode used by Compress
func WithRenderMode(mode types.RenderMode) SemanticOption {
	return func(s *SemanticCompressor) {
		s.mode = mode.Normalize()
	}
}

// NewSemanticCompressor creates a compressor with an empty state
func NewSemanticCompressor(opts ...SemanticOption) *SemanticCompressor {
	s := &SemanticCompressor{
		classifier: KeywordClassifier,
		mode:       types.RenderVerbose,
		state:      model.NewSummaryState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compress merges text into the state and renders the whole state. The
// returned state is a snapshot.
func (s *SemanticCompressor) Compress(text string) (string, *model.SummaryState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.merge(text)
	return Render(s.state, s.mode), s.state.Clone()
}

// CompressDelta merges text into the state and renders only the sentences
// this call added.
func (s *SemanticCompressor) CompressDelta(text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Render(s.merge(text), s.mode)
}

// State returns a snapshot of the persistent state
func (s *SemanticCompressor) State() *model.SummaryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// merge returns the sentences newly added to the state
func (s *SemanticCompressor) merge(text string) *model.SummaryState {
	added := model.NewSummaryState()
	for _, sentence := range SplitSentences(Normalize(text)) {
		bucket := s.classifier.Classify(sentence)
		if !bucket.IsValid() {
			bucket = types.BucketNotes
		}
		if s.state.Add(bucket, sentence) {
			added.Add(bucket, sentence)
		}
	}
	return added
}

// Render formats every non-empty bucket in fixed order. Dense mode puts each
// bucket on one line as "label:a | b"; verbose mode lists one bullet per line.
func Render(state *model.SummaryState, mode types.RenderMode) string {
	var parts []string
	for _, b := range types.AllBuckets() {
		items := state.Items(b)
		if len(items) == 0 {
			continue
		}
		switch mode.Normalize() {
		case types.RenderDense:
			parts = append(parts, b.String()+":"+strings.Join(items, " | "))
		default:
			parts = append(parts, b.String()+":\n  - "+strings.Join(items, "\n  - "))
		}
	}
	return strings.Join(parts, "\n")
}
