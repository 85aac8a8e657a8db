package statistics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare returns Pearson's goodness-of-fit statistic for observed counts
// against expected probabilities, and its degrees of freedom.
// Categories with zero expected probability must have zero observations
// and do not count towards the degrees of freedom.
func ChiSquare(observed []int, probs []float64) (float64, int, error) {
	if len(observed) != len(probs) {
		return 0, 0, fmt.Errorf("observed has %d categories, expected %d", len(observed), len(probs))
	}

	total := 0
	psum := 0.0
	for i, o := range observed {
		if o < 0 {
			return 0, 0, fmt.Errorf("negative count %d in category %d", o, i)
		}
		if probs[i] < 0 {
			return 0, 0, fmt.Errorf("negative probability %v in category %d", probs[i], i)
		}
		total += o
		psum += probs[i]
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("no observations")
	}
	if math.Abs(psum-1) > 1e-9 {
		return 0, 0, fmt.Errorf("probabilities sum to %v, not 1", psum)
	}

	obs := make([]float64, 0, len(observed))
	exp := make([]float64, 0, len(observed))
	for i, o := range observed {
		if probs[i] == 0 {
			if o != 0 {
				return math.Inf(1), 0, fmt.Errorf("category %d observed %d times with zero probability", i, o)
			}
			continue
		}
		obs = append(obs, float64(o))
		exp = append(exp, probs[i]*float64(total))
	}
	if len(obs) < 2 {
		return 0, 0, fmt.Errorf("need at least two categories, got %d", len(obs))
	}
	return stat.ChiSquare(obs, exp), len(obs) - 1, nil
}

// ChiSquarePValue returns P(X >= x) for a chi-square variable with df
// degrees of freedom, or NaN when df < 1.
func ChiSquarePValue(x float64, df int) float64 {
	if df < 1 {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return distuv.ChiSquared{K: float64(df)}.Survival(x)
}
