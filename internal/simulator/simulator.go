package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/congestion/internal/game"
	"github.com/lox/congestion/internal/randutil"
	"github.com/lox/congestion/internal/runid"
	"github.com/lox/congestion/internal/statistics"
)

// Config holds configuration for running a batch of independent trials
type Config struct {
	Trials      int
	Game        game.Config // Template for every trial; Seed and Logger are set per trial
	Seed        int64       // Master seed; trial i plays with randutil.Derive(Seed, i)
	Parallelism int         // Maximum concurrent trials, 0 for GOMAXPROCS
	Logger      *log.Logger
	Clock       quartz.Clock

	// OnTrialComplete is called as each trial finishes. Trials finish in
	// any order and the callback may be invoked concurrently.
	OnTrialComplete func(statistics.TrialResult)
}

// Result is the outcome of a simulation run
type Result struct {
	Seed       int64
	Trials     []statistics.TrialResult // Indexed by trial number
	Statistics *statistics.Statistics
	Duration   time.Duration
}

// RoundsPerSecond reports simulation throughput across all trials.
func (r *Result) RoundsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Statistics.Rounds) / r.Duration.Seconds()
}

// Simulator runs congestion game trials
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Parallelism <= 0 {
		config.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &Simulator{config: config}
}

// Validate checks the trial count and the game template.
func (s *Simulator) Validate() error {
	if s.config.Trials < 1 {
		return fmt.Errorf("%w: trial count must be at least 1, got %d", game.ErrInvalidConfiguration, s.config.Trials)
	}
	return s.config.Game.Validate()
}

// Run plays every trial and aggregates the results. Trials already running
// when ctx is cancelled play to completion; no new trials are started.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := s.config
	start := cfg.Clock.Now()
	results := make([]statistics.TrialResult, cfg.Trials)

	cfg.Logger.Info("Starting simulation",
		"trials", cfg.Trials,
		"agents", cfg.Game.Agents,
		"topology", cfg.Game.Topology,
		"epsilon", cfg.Game.ExplorationRate,
		"iterations", cfg.Game.MaxIterations,
		"complete_info", cfg.Game.CompleteInformation,
		"seed", cfg.Seed,
		"parallelism", cfg.Parallelism)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)

	for i := range cfg.Trials {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.playTrial(i)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i] = result
			if cfg.OnTrialComplete != nil {
				cfg.OnTrialComplete(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Wait returns nil if cancellation happened before any trial failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := statistics.New(cfg.Game.Topology)
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	duration := cfg.Clock.Since(start)
	cfg.Logger.Info("Simulation complete", "trials", cfg.Trials, "duration", duration.Round(time.Millisecond))

	return &Result{
		Seed:       cfg.Seed,
		Trials:     results,
		Statistics: stats,
		Duration:   duration,
	}, nil
}

// playTrial builds and plays trial i to completion
func (s *Simulator) playTrial(i int) (statistics.TrialResult, error) {
	id := runid.ForTrial(s.config.Seed, i)

	gameCfg := s.config.Game
	gameCfg.Seed = randutil.Derive(s.config.Seed, i)
	gameCfg.Logger = s.config.Logger.With("trial", i, "id", id)

	g, err := game.New(gameCfg)
	if err != nil {
		return statistics.TrialResult{}, err
	}
	g.PlayGame()

	history := g.PayoffHistory()
	sum := 0.0
	for _, total := range history {
		sum += total
	}

	result := statistics.TrialResult{
		Trial:            i,
		ID:               id,
		Seed:             gameCfg.Seed,
		Agents:           gameCfg.Agents,
		Rounds:           g.RoundsCompleted(),
		Preferred:        g.PreferredRoutes(),
		MeanRoundPayoff:  sum / float64(len(history)),
		FinalRoundPayoff: history[len(history)-1],
		MeanBeliefs:      g.MeanBeliefs().Map(gameCfg.Topology),
	}

	s.config.Logger.Debug("Trial complete",
		"trial", i,
		"id", id,
		"mean_round_payoff", result.MeanRoundPayoff,
		"final_round_payoff", result.FinalRoundPayoff)

	return result, nil
}

// RunSimulation is a convenience function for running trials with a fixed
// game template and seed
func RunSimulation(ctx context.Context, trials int, gameCfg game.Config, seed int64, logger *log.Logger) (*Result, error) {
	return New(Config{
		Trials: trials,
		Game:   gameCfg,
		Seed:   seed,
		Logger: logger,
	}).Run(ctx)
}
