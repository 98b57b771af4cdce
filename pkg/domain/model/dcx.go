package model

import "github.com/secmon-lab/stormfront/pkg/domain/types"

// EmbeddingBatch is the ordered output of one embed call. Vectors[i] belongs
// to the i-th input text.
type EmbeddingBatch struct {
	Vectors  [][]float32
	Provider types.ProviderKind
}

// DivergenceMatrix is the decayed pairwise |cosine| matrix over a trajectory batch
type DivergenceMatrix struct {
	Values   [][]float64
	RowMeans []float64
	Lambda   float64
}

// Size returns the number of trajectories the matrix covers
func (m *DivergenceMatrix) Size() int {
	return len(m.Values)
}

// At returns entry [i][j]
func (m *DivergenceMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Decision is the outcome of applying freeze and selection to a matrix
type Decision struct {
	Frozen        bool
	SelectedIndex *int
	Confidence    float64
	// DCXMin is the freeze statistic: the minimum row mean over eligible rows
	DCXMin   float64
	Eligible int
	Rule     types.SelectionRule
}
