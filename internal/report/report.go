// Package report renders simulation results as a styled terminal summary
// or as JSON.
package report

import (
	"fmt"

	"github.com/lox/congestion/internal/route"
	"github.com/lox/congestion/internal/simulator"
	"github.com/lox/congestion/internal/statistics"
)

// Report is the serialisable outcome of a simulation run
type Report struct {
	Config     RunConfig                `json:"configuration"`
	Metadata   Metadata                 `json:"metadata"`
	Routes     []RouteResult            `json:"routes"`
	Payoffs    PayoffResults            `json:"payoffs"`
	TrialStats []statistics.TrialResult `json:"trial_results,omitempty"`
}

// RunConfig echoes the settings the run was played with
type RunConfig struct {
	Agents              int             `json:"agents"`
	Topology            string          `json:"topology"`
	ExplorationRate     float64         `json:"exploration_rate"`
	MaxIterations       int             `json:"max_iterations"`
	CompleteInformation bool            `json:"complete_information"`
	PathCosts           route.PathCosts `json:"path_costs"`
	Trials              int             `json:"trials"`
	Seed                int64           `json:"seed"`
	Parallelism         int             `json:"parallelism"`
}

// Metadata contains execution details
type Metadata struct {
	DurationSeconds float64 `json:"duration_seconds"`
	TotalAgents     int     `json:"total_agents"`
	TotalRounds     int     `json:"total_rounds"`
	RoundsPerSecond float64 `json:"rounds_per_second"`
}

// RouteResult is how often agents ended the game preferring a route
type RouteResult struct {
	Route     route.Route `json:"route"`
	Agents    int         `json:"agents"`
	Frequency float64     `json:"frequency"`
}

// PayoffResults summarises per-trial payoff totals
type PayoffResults struct {
	MeanRound  PayoffSummary `json:"mean_round"`
	FinalRound PayoffSummary `json:"final_round"`
}

// PayoffSummary describes one payoff series across trials
type PayoffSummary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	CI95Low  float64 `json:"ci_95_low"`
	CI95High float64 `json:"ci_95_high"`
	Median   float64 `json:"median"`
}

func summarise(s *statistics.Summary) PayoffSummary {
	low, high := s.ConfidenceInterval95()
	return PayoffSummary{
		Mean:     s.Mean(),
		StdDev:   s.StdDev(),
		CI95Low:  low,
		CI95High: high,
		Median:   s.Median(),
	}
}

// Build assembles a report from the configuration a simulation ran with
// and its result. includeTrials controls whether per-trial results are
// embedded.
func Build(cfg simulator.Config, result *simulator.Result, includeTrials bool) (*Report, error) {
	if result == nil || result.Statistics == nil {
		return nil, fmt.Errorf("no simulation result to report")
	}
	stats := result.Statistics

	rep := &Report{
		Config: RunConfig{
			Agents:              cfg.Game.Agents,
			Topology:            cfg.Game.Topology.String(),
			ExplorationRate:     cfg.Game.ExplorationRate,
			MaxIterations:       cfg.Game.MaxIterations,
			CompleteInformation: cfg.Game.CompleteInformation,
			PathCosts:           cfg.Game.PathCosts,
			Trials:              stats.Trials,
			Seed:                result.Seed,
			Parallelism:         cfg.Parallelism,
		},
		Metadata: Metadata{
			DurationSeconds: result.Duration.Seconds(),
			TotalAgents:     stats.Agents,
			TotalRounds:     stats.Rounds,
			RoundsPerSecond: result.RoundsPerSecond(),
		},
		Payoffs: PayoffResults{
			MeanRound:  summarise(&stats.MeanRoundPayoff),
			FinalRound: summarise(&stats.FinalRoundPayoff),
		},
	}

	for _, r := range stats.Topology.Routes() {
		rep.Routes = append(rep.Routes, RouteResult{
			Route:     r,
			Agents:    stats.Preferred.Counts[r],
			Frequency: stats.Frequency(r),
		})
	}

	if includeTrials {
		rep.TrialStats = result.Trials
	}
	return rep, nil
}
