package model

// MemoryState is the persisted rolling memory: an append-only summary and a
// bounded list of recent turns.
type MemoryState struct {
	Summary       string   `json:"summary" firestore:"summary"`
	RecentHistory []string `json:"recent_history" firestore:"recent_history"`
}

// NewMemoryState returns an empty state
func NewMemoryState() *MemoryState {
	return &MemoryState{RecentHistory: []string{}}
}

// Copy returns a deep copy of the state
func (s *MemoryState) Copy() *MemoryState {
	history := make([]string, len(s.RecentHistory))
	copy(history, s.RecentHistory)
	return &MemoryState{
		Summary:       s.Summary,
		RecentHistory: history,
	}
}

// IsEmpty reports whether both fields are empty
func (s *MemoryState) IsEmpty() bool {
	return s.Summary == "" && len(s.RecentHistory) == 0
}
