// Package game runs one trial of the repeated congestion game.
//
// A Game owns a fixed population of agents. Each round every agent picks a
// route, the game counts how many agents use each segment, prices every
// route from those loads, and hands each agent either its own realized
// cost (partial information) or the cost of every route (complete
// information). Rounds are a strict barrier: all choices are collected
// before any payoff is computed, and all beliefs are updated before the
// next round starts.
//
// # Deterministic Play
//
// Agent i draws from its own stream derived from Config.Seed, so two games
// built from the same Config produce identical payoff histories:
//
//	g, err := game.New(game.Config{
//	    Agents:          100,
//	    Topology:        route.Highway,
//	    ExplorationRate: 0.1,
//	    PathCosts:       route.DefaultPathCosts,
//	    MaxIterations:   1000,
//	    Seed:            42,
//	})
//	if err != nil {
//	    return err
//	}
//	g.PlayGame()
package game

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/congestion/internal/agent"
	"github.com/lox/congestion/internal/randutil"
	"github.com/lox/congestion/internal/route"
)

// ErrInvalidConfiguration is returned by New when a Config violates the
// game's preconditions.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config describes one trial.
type Config struct {
	Agents              int
	Topology            route.Topology
	ExplorationRate     float64
	PathCosts           route.PathCosts
	MaxIterations       int
	CompleteInformation bool
	Seed                int64
	Logger              *log.Logger
}

// Validate checks the preconditions New relies on.
func (c Config) Validate() error {
	if c.Agents < 1 {
		return fmt.Errorf("%w: agent count must be at least 1, got %d", ErrInvalidConfiguration, c.Agents)
	}
	if c.Topology != route.Simple && c.Topology != route.Highway {
		return fmt.Errorf("%w: unknown topology %s", ErrInvalidConfiguration, c.Topology)
	}
	if !(c.ExplorationRate >= 0 && c.ExplorationRate <= 1) {
		return fmt.Errorf("%w: exploration rate must be in [0,1], got %v", ErrInvalidConfiguration, c.ExplorationRate)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidConfiguration, c.MaxIterations)
	}
	if err := c.PathCosts.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

// RoundResult describes one completed round.
type RoundResult struct {
	Round   int // 1-based
	Counts  route.Counts
	Loads   route.SegmentLoads
	Payoffs route.Payoffs
	Total   float64 // realized payoffs summed across agents
}

// Game is a single trial. It is not safe for concurrent use.
type Game struct {
	config Config
	logger *log.Logger

	agents          []*agent.Agent
	roundsCompleted int
	payoffHistory   []float64
}

// New validates cfg and creates a game with a fresh population.
func New(cfg Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	agents := make([]*agent.Agent, cfg.Agents)
	for i := range agents {
		agents[i] = agent.New(cfg.Topology, cfg.ExplorationRate, randutil.Stream(cfg.Seed, i))
	}

	return &Game{
		config:        cfg,
		logger:        logger,
		agents:        agents,
		payoffHistory: make([]float64, 0, cfg.MaxIterations),
	}, nil
}

// Iterate plays exactly one round.
func (g *Game) Iterate() RoundResult {
	topo := g.config.Topology

	var counts route.Counts
	for _, a := range g.agents {
		counts[a.ChoosePath()]++
	}

	loads := topo.Loads(counts)
	payoffs := topo.Payoffs(g.config.PathCosts, loads)

	total := 0.0
	for _, a := range g.agents {
		choice, _ := a.LastChoice()
		realized := payoffs[choice]
		total += realized

		if g.config.CompleteInformation {
			a.UpdateBeliefs(payoffs)
		} else {
			a.UpdateBelief(realized, choice)
		}
	}

	g.payoffHistory = append(g.payoffHistory, total)
	g.roundsCompleted++

	result := RoundResult{
		Round:   g.roundsCompleted,
		Counts:  counts,
		Loads:   loads,
		Payoffs: payoffs,
		Total:   total,
	}
	if g.logger.GetLevel() <= log.DebugLevel {
		g.logRound(result)
	}
	return result
}

func (g *Game) logRound(r RoundResult) {
	kv := []any{"round", r.Round, "total", r.Total}
	for _, rt := range g.config.Topology.Routes() {
		kv = append(kv, rt.String(), r.Counts[rt], rt.String()+"_cost", r.Payoffs[rt])
	}
	g.logger.Debug("Round complete", kv...)
}

// PlayGame iterates until the iteration budget is spent. Calling it on a
// finished game does nothing.
func (g *Game) PlayGame() {
	for g.roundsCompleted < g.config.MaxIterations {
		g.Iterate()
	}
	g.logger.Debug("Game complete", "rounds", g.roundsCompleted, "agents", len(g.agents))
}

// Agents returns the population. The agents remain owned by the game.
func (g *Game) Agents() []*agent.Agent {
	return g.agents
}

// PayoffHistory returns a copy of the per-round payoff totals.
func (g *Game) PayoffHistory() []float64 {
	out := make([]float64, len(g.payoffHistory))
	copy(out, g.payoffHistory)
	return out
}

// PreferredRoutes counts each agent's current lowest-belief route.
func (g *Game) PreferredRoutes() route.Counts {
	var counts route.Counts
	for _, a := range g.agents {
		counts[a.PreferredRoute()]++
	}
	return counts
}

// MeanBeliefs averages every agent's current beliefs.
func (g *Game) MeanBeliefs() route.Beliefs {
	var mean route.Beliefs
	for _, a := range g.agents {
		b := a.Beliefs()
		for _, r := range g.config.Topology.Routes() {
			mean[r] += b[r]
		}
	}
	for _, r := range g.config.Topology.Routes() {
		mean[r] /= float64(len(g.agents))
	}
	return mean
}

func (g *Game) RoundsCompleted() int { return g.roundsCompleted }
func (g *Game) MaxIterations() int   { return g.config.MaxIterations }
func (g *Game) Done() bool           { return g.roundsCompleted >= g.config.MaxIterations }
