// Package agent implements a self-interested commuter in the routing game.
//
// An Agent keeps a running-mean estimate of each route's cost and picks a
// route with an epsilon-greedy rule: with probability epsilon it samples
// the topology's fixed exploration split, otherwise it takes the route it
// believes is cheapest.
//
// Each round the caller must call ChoosePath exactly once and then exactly
// one of UpdateBelief (partial information) or UpdateBeliefs (complete
// information). The running mean divides by the number of rounds played,
// which ChoosePath has already advanced.
package agent

import (
	rand "math/rand/v2"

	"github.com/lox/congestion/internal/randutil"
	"github.com/lox/congestion/internal/route"
)

// Agent is one decision-maker. It is not safe for concurrent use.
type Agent struct {
	topology        route.Topology
	explorationRate float64
	rng             *rand.Rand

	beliefs      route.Beliefs
	history      []route.Route
	roundsPlayed int
}

// New creates an agent with zero beliefs for every route. A nil rng is
// replaced with a stream seeded from 0.
func New(topology route.Topology, explorationRate float64, rng *rand.Rand) *Agent {
	return NewWithBeliefs(topology, explorationRate, rng, route.Beliefs{})
}

// NewWithBeliefs creates an agent whose beliefs start at the given values.
func NewWithBeliefs(topology route.Topology, explorationRate float64, rng *rand.Rand, beliefs route.Beliefs) *Agent {
	if rng == nil {
		rng = randutil.New(0)
	}
	if !topology.IsHighway() {
		beliefs[route.Cross] = 0
	}
	return &Agent{
		topology:        topology,
		explorationRate: explorationRate,
		rng:             rng,
		beliefs:         beliefs,
	}
}

// ChoosePath picks this round's route and records it in the history.
func (a *Agent) ChoosePath() route.Route {
	var choice route.Route
	if a.explorationRate > 0 && a.rng.Float64() < a.explorationRate {
		choice = a.topology.ExploreRoute(a.rng.Float64())
	} else {
		choice = a.exploit()
	}

	a.history = append(a.history, choice)
	a.roundsPlayed++
	return choice
}

// exploit compares the straight routes first, then lets the cross route
// challenge the provisional winner. Strict less-than throughout, so ties
// between uu and dd go to dd and ties against ud go to the straight route.
// This cascade is not a three-way minimum and must stay in this order.
func (a *Agent) exploit() route.Route {
	b := &a.beliefs
	if b[route.Up] < b[route.Down] {
		if a.topology.IsHighway() && b[route.Cross] < b[route.Up] {
			return route.Cross
		}
		return route.Up
	}
	if a.topology.IsHighway() && b[route.Cross] < b[route.Down] {
		return route.Cross
	}
	return route.Down
}

// UpdateBelief folds the realized payoff of choice into its running mean.
// It returns a copy of the updated beliefs.
func (a *Agent) UpdateBelief(payoff float64, choice route.Route) route.Beliefs {
	a.mustHavePlayed()
	if !a.topology.Has(choice) {
		panic("agent: route " + choice.String() + " is not available on the " + a.topology.String() + " network")
	}
	a.fold(choice, payoff)
	return a.beliefs
}

// UpdateBeliefs folds the payoff of every available route into its running
// mean. It returns a copy of the updated beliefs.
func (a *Agent) UpdateBeliefs(payoffs route.Payoffs) route.Beliefs {
	a.mustHavePlayed()
	for _, r := range a.topology.Routes() {
		a.fold(r, payoffs[r])
	}
	return a.beliefs
}

func (a *Agent) fold(r route.Route, payoff float64) {
	n := float64(a.roundsPlayed)
	a.beliefs[r] = (a.beliefs[r]*(n-1) + payoff) / n
}

func (a *Agent) mustHavePlayed() {
	if a.roundsPlayed == 0 {
		panic("agent: beliefs updated before ChoosePath")
	}
}

// Beliefs returns a copy of the current cost estimates.
func (a *Agent) Beliefs() route.Beliefs {
	return a.beliefs
}

// PreferredRoute is the route with the lowest belief, ties going to the
// first route in enumeration order.
func (a *Agent) PreferredRoute() route.Route {
	return a.beliefs.Argmin(a.topology)
}

// LastChoice returns the most recent choice, or false before the first round.
func (a *Agent) LastChoice() (route.Route, bool) {
	if len(a.history) == 0 {
		return 0, false
	}
	return a.history[len(a.history)-1], true
}

// History returns a copy of every choice made so far.
func (a *Agent) History() []route.Route {
	out := make([]route.Route, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) RoundsPlayed() int        { return a.roundsPlayed }
func (a *Agent) ExplorationRate() float64 { return a.explorationRate }
func (a *Agent) Topology() route.Topology { return a.topology }
