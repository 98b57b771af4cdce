// Package dcx computes the divergence-consistency matrix over a trajectory
// batch and turns it into a freeze or selection decision.
package dcx

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyBatch        = goerr.New("empty vector batch")
	ErrDimensionMismatch = goerr.New("vector dimension mismatch")
	ErrInvalidLambda     = goerr.New("decay rate must be a non-negative number")
)

// Decay returns the temporal weight between positions that are distance apart
func Decay(lambda float64, distance int) float64 {
	if distance < 0 {
		distance = -distance
	}
	return math.Exp(-lambda * float64(distance))
}

// Compute builds the DCX matrix: entry [i][j] is |cos(v_i, v_j)| scaled by
// exp(-lambda*|i-j|). Zero vectors keep norm 1. The matrix is symmetric with
// a unit diagonal and every entry lies in [0, 1].
func Compute(vectors [][]float32, lambda float64) (*model.DivergenceMatrix, error) {
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda < 0 {
		return nil, goerr.Wrap(ErrInvalidLambda, "invalid lambda", goerr.V("lambda", lambda))
	}

	n := len(vectors)
	if n == 0 {
		return nil, goerr.Wrap(ErrEmptyBatch, "cannot compute DCX")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, goerr.Wrap(ErrDimensionMismatch, "zero-length vector", goerr.V("index", 0))
	}

	data := make([]float64, n*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, goerr.Wrap(ErrDimensionMismatch, "vectors differ in length",
				goerr.V("index", i),
				goerr.V("expected", dim),
				goerr.V("actual", len(v)))
		}
		row := data[i*dim : (i+1)*dim]
		for k, x := range v {
			row[k] = float64(x)
		}
		norm := floats.Norm(row, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, row)
	}

	normalized := mat.NewDense(n, dim, data)
	var sim mat.Dense
	sim.Mul(normalized, normalized.T())

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := math.Abs(sim.At(i, j))
			if s > 1 {
				s = 1
			}
			v := s * Decay(lambda, j-i)
			values[i][j] = v
			values[j][i] = v
		}
	}

	means := make([]float64, n)
	for i, row := range values {
		means[i] = floats.Sum(row) / float64(n)
	}

	return &model.DivergenceMatrix{
		Values:   values,
		RowMeans: means,
		Lambda:   lambda,
	}, nil
}
