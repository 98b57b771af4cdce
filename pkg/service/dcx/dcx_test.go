package dcx_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/types"
	"github.com/secmon-lab/stormfront/pkg/service/dcx"
)

const eps = 1e-6

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestDecay(t *testing.T) {
	gt.Value(t, dcx.Decay(0.5, 0)).Equal(1.0)
	gt.Value(t, dcx.Decay(0, 17)).Equal(1.0)
	gt.Value(t, dcx.Decay(0.1, 3)).Equal(dcx.Decay(0.1, -3))

	prev := dcx.Decay(0.015, 0)
	for d := 1; d < 50; d++ {
		cur := dcx.Decay(0.015, d)
		gt.Bool(t, cur <= prev).True()
		prev = cur
	}
}

func TestCompute(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.8, 0.6, 0},
		{-1, 0, 0},
		{0, 0, 2},
	}

	t.Run("symmetric with unit diagonal and bounded entries", func(t *testing.T) {
		m, err := dcx.Compute(vectors, 0.2)
		gt.NoError(t, err).Required()
		gt.Value(t, m.Size()).Equal(4)
		gt.Array(t, m.RowMeans).Length(4)

		for i := 0; i < m.Size(); i++ {
			gt.Value(t, m.At(i, i)).Equal(1.0)
			for j := 0; j < m.Size(); j++ {
				gt.Value(t, m.At(i, j)).Equal(m.At(j, i))
				gt.Bool(t, m.At(i, j) >= 0 && m.At(i, j) <= 1).True()
			}
		}
	})

	t.Run("lambda zero is plain absolute cosine", func(t *testing.T) {
		m, err := dcx.Compute(vectors, 0)
		gt.NoError(t, err).Required()

		gt.Bool(t, near(m.At(0, 1), 0.8)).True()
		// opposite directions count as fully consistent
		gt.Bool(t, near(m.At(0, 2), 1)).True()
		gt.Bool(t, near(m.At(0, 3), 0)).True()
	})

	t.Run("decay scales off-diagonal entries", func(t *testing.T) {
		plain, err := dcx.Compute(vectors, 0)
		gt.NoError(t, err).Required()
		decayed, err := dcx.Compute(vectors, 0.3)
		gt.NoError(t, err).Required()

		gt.Bool(t, near(decayed.At(0, 2), plain.At(0, 2)*math.Exp(-0.6))).True()
		gt.Bool(t, near(decayed.At(1, 2), plain.At(1, 2)*math.Exp(-0.3))).True()
		gt.Value(t, decayed.Lambda).Equal(0.3)
	})

	t.Run("row mean includes the diagonal", func(t *testing.T) {
		m, err := dcx.Compute(vectors, 0)
		gt.NoError(t, err).Required()

		var sum float64
		for j := 0; j < m.Size(); j++ {
			sum += m.At(0, j)
		}
		gt.Bool(t, near(m.RowMeans[0], sum/4)).True()
	})

	t.Run("zero vector does not produce NaN", func(t *testing.T) {
		m, err := dcx.Compute([][]float32{{0, 0}, {1, 1}}, 0)
		gt.NoError(t, err).Required()
		gt.Value(t, m.At(0, 1)).Equal(0.0)
		gt.Value(t, m.At(0, 0)).Equal(1.0)
		gt.Bool(t, math.IsNaN(m.RowMeans[0])).False()
	})

	t.Run("single trajectory", func(t *testing.T) {
		m, err := dcx.Compute([][]float32{{3, 4}}, 0.015)
		gt.NoError(t, err).Required()
		gt.Value(t, m.RowMeans).Equal([]float64{1})
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := dcx.Compute(nil, 0.015)
		gt.Error(t, err).Is(dcx.ErrEmptyBatch)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := dcx.Compute([][]float32{{1, 0}, {1, 0, 0}}, 0.015)
		gt.Error(t, err).Is(dcx.ErrDimensionMismatch)
	})

	t.Run("negative lambda", func(t *testing.T) {
		_, err := dcx.Compute(vectors, -0.1)
		gt.Error(t, err).Is(dcx.ErrInvalidLambda)
	})
}

func matrix(means ...float64) *model.DivergenceMatrix {
	values := make([][]float64, len(means))
	for i := range values {
		values[i] = make([]float64, len(means))
		values[i][i] = 1
	}
	return &model.DivergenceMatrix{Values: values, RowMeans: means}
}

func trajectories(n int, failed ...int) []model.Trajectory {
	out := make([]model.Trajectory, n)
	for i := range out {
		out[i] = model.Trajectory{Index: i, Text: "answer"}
	}
	for _, i := range failed {
		out[i] = model.NewFailedTrajectory(i, types.FailureTimeout, "")
	}
	return out
}

func TestDecide(t *testing.T) {
	t.Run("freeze when minimum row mean reaches threshold", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.8, 0.9, 0.75), trajectories(3), dcx.Policy{FreezeThreshold: 0.75})
		gt.NoError(t, err).Required()
		gt.Bool(t, d.Frozen).True()
		gt.Value(t, d.SelectedIndex).Nil()
		gt.Value(t, d.DCXMin).Equal(0.75)
	})

	t.Run("most consistent picks highest row mean", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.3, 0.6, 0.5), trajectories(3), dcx.Policy{
			FreezeThreshold: 0.75,
			Rule:            types.SelectMostConsistent,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, d.Frozen).False()
		gt.Value(t, d.SelectedIndex).NotNil()
		gt.Value(t, *d.SelectedIndex).Equal(1)
		gt.Value(t, d.Confidence).Equal(0.6)
		gt.Value(t, d.DCXMin).Equal(0.3)
	})

	t.Run("most distinctive picks lowest row mean", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.3, 0.6, 0.5), trajectories(3), dcx.Policy{
			FreezeThreshold: 0.75,
			Rule:            types.SelectMostDistinctive,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *d.SelectedIndex).Equal(0)
		gt.Bool(t, near(d.Confidence, 0.7)).True()
	})

	t.Run("ties go to the lowest index", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.5, 0.5, 0.5), trajectories(3), dcx.Policy{FreezeThreshold: 0.9})
		gt.NoError(t, err).Required()
		gt.Value(t, *d.SelectedIndex).Equal(0)
	})

	t.Run("empty rule defaults to most consistent", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.2, 0.4), trajectories(2), dcx.Policy{FreezeThreshold: 0.9})
		gt.NoError(t, err).Required()
		gt.Value(t, d.Rule).Equal(types.SelectMostConsistent)
		gt.Value(t, *d.SelectedIndex).Equal(1)
	})

	t.Run("excluded failures are never selected", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.3, 0.7, 0.5), trajectories(3, 1), dcx.Policy{
			FreezeThreshold: 0.9,
			FailurePolicy:   types.FailureExclude,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *d.SelectedIndex).Equal(2)
		gt.Value(t, d.Eligible).Equal(2)
	})

	t.Run("excluded failures do not count toward the freeze minimum", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.1, 0.8, 0.85), trajectories(3, 0), dcx.Policy{
			FreezeThreshold: 0.75,
			FailurePolicy:   types.FailureExclude,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, d.Frozen).True()
		gt.Value(t, d.DCXMin).Equal(0.8)
	})

	t.Run("included failures may be selected", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.3, 0.7, 0.5), trajectories(3, 1), dcx.Policy{
			FreezeThreshold: 0.9,
			FailurePolicy:   types.FailureInclude,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *d.SelectedIndex).Equal(1)
	})

	t.Run("all failed freezes", func(t *testing.T) {
		d, err := dcx.Decide(matrix(0.1, 0.2), trajectories(2, 0, 1), dcx.Policy{FreezeThreshold: 0.9})
		gt.NoError(t, err).Required()
		gt.Bool(t, d.Frozen).True()
		gt.Value(t, d.Eligible).Equal(0)
		gt.Value(t, d.SelectedIndex).Nil()
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := dcx.Decide(matrix(0.1, 0.2), trajectories(3), dcx.Policy{})
		gt.Error(t, err).Is(dcx.ErrLengthMismatch)
	})

	t.Run("invalid rule", func(t *testing.T) {
		_, err := dcx.Decide(matrix(0.1), trajectories(1), dcx.Policy{Rule: "random"})
		gt.Error(t, err)
	})
}
