package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChiSquarePerfectFit(t *testing.T) {
	stat, df, err := ChiSquare([]int{30, 40, 30}, []float64{0.3, 0.4, 0.3})
	require.NoError(t, err)
	assert.Equal(t, 2, df)
	assert.InDelta(t, 0, stat, 1e-12)
	assert.Equal(t, 1.0, ChiSquarePValue(stat, df))
}

func TestChiSquareKnownValue(t *testing.T) {
	// (60-50)^2/50 + (40-50)^2/50 = 4
	stat, df, err := ChiSquare([]int{60, 40}, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, df)
	assert.InDelta(t, 4.0, stat, 1e-12)
	assert.InDelta(t, 0.0455, ChiSquarePValue(stat, df), 1e-4)
}

func TestChiSquareSkipsImpossibleCategories(t *testing.T) {
	stat, df, err := ChiSquare([]int{50, 50, 0}, []float64{0.5, 0.5, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, df)
	assert.Zero(t, stat)

	_, _, err = ChiSquare([]int{50, 49, 1}, []float64{0.5, 0.5, 0})
	assert.Error(t, err)
}

func TestChiSquareErrors(t *testing.T) {
	_, _, err := ChiSquare([]int{1, 2}, []float64{1})
	assert.Error(t, err)
	_, _, err = ChiSquare([]int{0, 0}, []float64{0.5, 0.5})
	assert.Error(t, err)
	_, _, err = ChiSquare([]int{1, 1}, []float64{0.5, 0.6})
	assert.Error(t, err)
	_, _, err = ChiSquare([]int{5}, []float64{1})
	assert.Error(t, err)
}

func TestChiSquarePValueCriticalValues(t *testing.T) {
	tests := []struct {
		df    int
		stat  float64
		alpha float64
	}{
		{1, 3.841, 0.05},
		{1, 6.635, 0.01},
		{2, 5.991, 0.05},
		{2, 13.816, 0.001},
		{3, 7.815, 0.05},
		{4, 9.488, 0.05},
		{5, 11.070, 0.05},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.alpha, ChiSquarePValue(tt.stat, tt.df), tt.alpha*0.01, "df=%d", tt.df)
	}

	assert.True(t, math.IsNaN(ChiSquarePValue(1, 0)))
	assert.Equal(t, 1.0, ChiSquarePValue(0, 3))
}

func TestChiSquareExplorationSplitSample(t *testing.T) {
	stat, df, err := ChiSquare([]int{29810, 30120, 40070}, []float64{0.3, 0.3, 0.4})
	require.NoError(t, err)
	assert.Equal(t, 2, df)
	assert.InDelta(t, 1.8058333333, stat, 1e-9)
	// two degrees of freedom: P(X >= x) = exp(-x/2)
	assert.InDelta(t, math.Exp(-stat/2), ChiSquarePValue(stat, df), 1e-10)
}

func TestChiSquarePValueClosedForms(t *testing.T) {
	const x = 3.5
	assert.InDelta(t, math.Erfc(math.Sqrt(x/2)), ChiSquarePValue(x, 1), 1e-10)
	assert.InDelta(t, 0.1737739435, ChiSquarePValue(x, 2), 1e-10)
	assert.InDelta(t, math.Exp(-x/2)*(1+x/2), ChiSquarePValue(x, 4), 1e-10)
}
