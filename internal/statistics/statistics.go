package statistics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/congestion/internal/route"
)

// TrialResult is the outcome of one game played to its iteration budget.
type TrialResult struct {
	Trial            int          `json:"trial"`
	ID               string       `json:"id"`
	Seed             int64        `json:"seed"`
	Agents           int          `json:"agents"`
	Rounds           int          `json:"rounds"`
	Preferred        route.Counts `json:"preferred"`          // Agents whose final argmin belief is each route
	MeanRoundPayoff  float64      `json:"mean_round_payoff"`  // Round total averaged over all rounds
	FinalRoundPayoff float64      `json:"final_round_payoff"` // Round total of the last round

	MeanBeliefs map[string]float64 `json:"mean_beliefs,omitempty"` // Final beliefs averaged over agents, by route label
}

// Summary is the mean, spread and interval of a series of observations.
type Summary struct {
	N      int
	Sum    float64
	SumSq  float64 // Sum of squares for variance calculation
	Values []float64
}

// Add records one observation.
func (s *Summary) Add(v float64) {
	s.N++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)
}

// Mean returns the arithmetic mean, or 0 with no observations.
func (s *Summary) Mean() float64 {
	if s.N == 0 {
		return 0
	}
	return s.Sum / float64(s.N)
}

// Variance returns the sample variance.
func (s *Summary) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumSq - float64(s.N)*mean*mean) / float64(s.N-1)
	if v < 0 {
		// cancellation when all values are equal
		return 0
	}
	return v
}

func (s *Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Summary) StdError() float64 {
	if s.N == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.N))
}

// ConfidenceInterval95 returns the two-sided 95% interval for the mean
// using Student's t with N-1 degrees of freedom. With fewer than two
// observations the interval collapses to the mean.
func (s *Summary) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	if s.N < 2 {
		return mean, mean
	}
	tDist := distuv.StudentsT{
		Nu:    float64(s.N - 1),
		Mu:    0,
		Sigma: 1,
	}
	margin := tDist.Quantile(0.975) * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median observation.
func (s *Summary) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated value at p, clamped to [0,1].
func (s *Summary) Percentile(p float64) float64 {
	if len(s.Values) == 0 || math.IsNaN(p) {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// RouteFrequency counts how often each route was observed.
type RouteFrequency struct {
	Counts route.Counts
	Total  int
}

// Add records one observation of r.
func (f *RouteFrequency) Add(r route.Route) {
	f.Counts[r]++
	f.Total++
}

// Merge adds a batch of per-route counts.
func (f *RouteFrequency) Merge(c route.Counts) {
	for r := range c {
		f.Counts[r] += c[r]
		f.Total += c[r]
	}
}

// Frequency returns the share of observations that were r.
func (f *RouteFrequency) Frequency(r route.Route) float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Counts[r]) / float64(f.Total)
}

// Statistics aggregates trial results for one run configuration.
type Statistics struct {
	Topology route.Topology

	Trials    int
	Agents    int // total agents across all trials
	Rounds    int // total rounds across all trials
	Preferred RouteFrequency

	MeanRoundPayoff  Summary // one observation per trial
	FinalRoundPayoff Summary // one observation per trial
}

// New returns empty statistics for the given topology.
func New(topology route.Topology) *Statistics {
	return &Statistics{Topology: topology}
}

// Add incorporates one trial.
func (s *Statistics) Add(result TrialResult) {
	s.Trials++
	s.Agents += result.Agents
	s.Rounds += result.Rounds
	s.Preferred.Merge(result.Preferred)
	s.MeanRoundPayoff.Add(result.MeanRoundPayoff)
	s.FinalRoundPayoff.Add(result.FinalRoundPayoff)
}

// Frequency returns the share of agents whose final preferred route is r.
func (s *Statistics) Frequency(r route.Route) float64 {
	return s.Preferred.Frequency(r)
}

// Validate checks that the aggregated counts are consistent.
func (s *Statistics) Validate() error {
	if s.Trials <= 0 {
		return fmt.Errorf("invalid trial count: %d", s.Trials)
	}
	if s.Preferred.Total != s.Agents {
		return fmt.Errorf("preferred route total (%d) does not match agent count (%d)",
			s.Preferred.Total, s.Agents)
	}
	if got := s.Preferred.Counts.Total(); got != s.Preferred.Total {
		return fmt.Errorf("preferred route counts sum to %d, expected %d", got, s.Preferred.Total)
	}
	if !s.Topology.IsHighway() && s.Preferred.Counts[route.Cross] != 0 {
		return fmt.Errorf("cross route preferred %d times on a simple network", s.Preferred.Counts[route.Cross])
	}
	if s.MeanRoundPayoff.N != s.Trials || s.FinalRoundPayoff.N != s.Trials {
		return fmt.Errorf("payoff observations (%d, %d) do not match trial count (%d)",
			s.MeanRoundPayoff.N, s.FinalRoundPayoff.N, s.Trials)
	}
	return nil
}
