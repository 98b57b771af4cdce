package model

import "github.com/secmon-lab/stormfront/pkg/domain/types"

// SummaryState holds the five semantic buckets. Each bucket is an ordered set:
// insertion order is kept and a sentence is stored at most once.
type SummaryState struct {
	items map[types.Bucket][]string
	seen  map[types.Bucket]map[string]struct{}
}

// NewSummaryState returns an empty state with all buckets present
func NewSummaryState() *SummaryState {
	s := &SummaryState{
		items: make(map[types.Bucket][]string),
		seen:  make(map[types.Bucket]map[string]struct{}),
	}
	for _, b := range types.AllBuckets() {
		s.items[b] = []string{}
		s.seen[b] = make(map[string]struct{})
	}
	return s
}

// Add appends sentence to bucket unless already present. It returns true when added.
func (s *SummaryState) Add(bucket types.Bucket, sentence string) bool {
	seen, ok := s.seen[bucket]
	if !ok {
		return false
	}
	if _, exists := seen[sentence]; exists {
		return false
	}
	seen[sentence] = struct{}{}
	s.items[bucket] = append(s.items[bucket], sentence)
	return true
}

// Items returns a copy of the bucket contents in insertion order
func (s *SummaryState) Items(bucket types.Bucket) []string {
	src := s.items[bucket]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Len returns the number of sentences across all buckets
func (s *SummaryState) Len() int {
	n := 0
	for _, items := range s.items {
		n += len(items)
	}
	return n
}

// Clone returns a deep copy
func (s *SummaryState) Clone() *SummaryState {
	c := NewSummaryState()
	for _, b := range types.AllBuckets() {
		for _, sentence := range s.items[b] {
			c.Add(b, sentence)
		}
	}
	return c
}

// Map returns the buckets as a plain map, for serialisation
func (s *SummaryState) Map() map[string][]string {
	out := make(map[string][]string, len(s.items))
	for _, b := range types.AllBuckets() {
		out[b.String()] = s.Items(b)
	}
	return out
}
