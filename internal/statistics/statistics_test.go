package statistics

import (
	"math"
	"testing"

	"github.com/lox/congestion/internal/route"
)

func TestSummary_Empty(t *testing.T) {
	s := &Summary{}

	if s.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty summary, got %f", s.Mean())
	}
	if s.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty summary, got %f", s.Variance())
	}
	if s.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty summary, got %f", s.StdError())
	}
	if s.Median() != 0 {
		t.Errorf("Expected median of 0 for empty summary, got %f", s.Median())
	}
}

func TestSummary_MultipleValues(t *testing.T) {
	s := &Summary{}
	for _, v := range []float64{1, -2, 3, 0, -1} {
		s.Add(v)
	}

	if math.Abs(s.Mean()-0.2) > 1e-9 {
		t.Errorf("Expected mean of 0.2, got %f", s.Mean())
	}
	// sample variance of {1,-2,3,0,-1}
	if math.Abs(s.Variance()-3.7) > 1e-9 {
		t.Errorf("Expected variance of 3.7, got %f", s.Variance())
	}
	if s.Median() != 0 {
		t.Errorf("Expected median of 0, got %f", s.Median())
	}
	if s.Percentile(0) != -2 || s.Percentile(1) != 3 {
		t.Errorf("Expected extremes -2 and 3, got %f and %f", s.Percentile(0), s.Percentile(1))
	}

	low, high := s.ConfidenceInterval95()
	if !(low < s.Mean() && s.Mean() < high) {
		t.Errorf("Mean %f outside interval [%f, %f]", s.Mean(), low, high)
	}
}

func TestSummary_ConstantValuesHaveZeroVariance(t *testing.T) {
	s := &Summary{}
	for range 1000 {
		s.Add(25.02)
	}
	if s.Variance() != 0 && s.Variance() > 1e-9 {
		t.Errorf("Expected ~0 variance, got %g", s.Variance())
	}
	if s.Variance() < 0 {
		t.Errorf("Variance must not be negative, got %g", s.Variance())
	}
}

func TestRouteFrequency(t *testing.T) {
	var f RouteFrequency
	if f.Frequency(route.Up) != 0 {
		t.Errorf("Expected 0 frequency when empty")
	}

	f.Add(route.Up)
	f.Merge(route.Counts{route.Up: 1, route.Down: 2})

	if f.Total != 4 {
		t.Fatalf("Expected total 4, got %d", f.Total)
	}
	if f.Frequency(route.Up) != 0.5 {
		t.Errorf("Expected uu frequency 0.5, got %f", f.Frequency(route.Up))
	}
	if f.Frequency(route.Down) != 0.5 {
		t.Errorf("Expected dd frequency 0.5, got %f", f.Frequency(route.Down))
	}
}

func TestStatistics_AddAndValidate(t *testing.T) {
	s := New(route.Highway)
	s.Add(TrialResult{Agents: 10, Rounds: 100, Preferred: route.Counts{route.Up: 3, route.Down: 3, route.Cross: 4}, MeanRoundPayoff: 200, FinalRoundPayoff: 210})
	s.Add(TrialResult{Agents: 10, Rounds: 100, Preferred: route.Counts{route.Up: 5, route.Down: 5}, MeanRoundPayoff: 220, FinalRoundPayoff: 230})

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if s.Trials != 2 || s.Agents != 20 || s.Rounds != 200 {
		t.Errorf("Unexpected totals: trials=%d agents=%d rounds=%d", s.Trials, s.Agents, s.Rounds)
	}
	if s.Frequency(route.Cross) != 0.2 {
		t.Errorf("Expected ud frequency 0.2, got %f", s.Frequency(route.Cross))
	}
	if s.MeanRoundPayoff.Mean() != 210 {
		t.Errorf("Expected mean round payoff 210, got %f", s.MeanRoundPayoff.Mean())
	}

	sum := 0.0
	for _, r := range route.Highway.Routes() {
		sum += s.Frequency(r)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Frequencies sum to %f", sum)
	}
}

func TestStatistics_ValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Statistics
	}{
		{"empty", func() *Statistics { return New(route.Simple) }},
		{"agent mismatch", func() *Statistics {
			s := New(route.Simple)
			s.Add(TrialResult{Agents: 3, Preferred: route.Counts{route.Up: 1}})
			return s
		}},
		{"cross on simple network", func() *Statistics {
			s := New(route.Simple)
			s.Add(TrialResult{Agents: 1, Preferred: route.Counts{route.Cross: 1}})
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build().Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSummary_ConfidenceIntervalUsesStudentsT(t *testing.T) {
	s := &Summary{}
	for v := 1; v <= 10; v++ {
		s.Add(float64(v))
	}

	// sd = 3.02765, se = 0.95743, t(9, 0.975) = 2.26216
	low, high := s.ConfidenceInterval95()
	if math.Abs((high-low)/2-2.16585) > 1e-4 {
		t.Errorf("Expected half-width 2.16585, got %f", (high-low)/2)
	}
	if math.Abs((low+high)/2-5.5) > 1e-9 {
		t.Errorf("Interval not centred on mean: [%f, %f]", low, high)
	}

	one := &Summary{}
	one.Add(7)
	low, high = one.ConfidenceInterval95()
	if low != 7 || high != 7 {
		t.Errorf("Expected degenerate interval at 7, got [%f, %f]", low, high)
	}
}

func TestSummary_PercentileClampsOutOfRange(t *testing.T) {
	s := &Summary{}
	for _, v := range []float64{4, 1, 3} {
		s.Add(v)
	}
	if got := s.Percentile(-0.5); got != 1 {
		t.Errorf("Expected minimum 1 for p<0, got %f", got)
	}
	if got := s.Percentile(1.5); got != 4 {
		t.Errorf("Expected maximum 4 for p>1, got %f", got)
	}
	if got := s.Percentile(math.NaN()); got != 0 {
		t.Errorf("Expected 0 for NaN p, got %f", got)
	}
}
