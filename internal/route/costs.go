package route

import (
	"fmt"
	"math"
)

// PathCosts holds the cost-function coefficients for each segment.
// U1 and D2 are per-unit-load (congestion) coefficients, U2 and D1 are flat.
type PathCosts struct {
	U1 float64 `json:"u1" yaml:"u1"`
	U2 float64 `json:"u2" yaml:"u2"`
	D1 float64 `json:"d1" yaml:"d1"`
	D2 float64 `json:"d2" yaml:"d2"`
}

// DefaultPathCosts is the classic Braess-style network: two congestible
// segments costing one hundredth per agent and two flat segments of 25.
var DefaultPathCosts = PathCosts{U1: 0.01, U2: 25, D1: 25, D2: 0.01}

// Validate rejects NaN and infinite coefficients.
func (c PathCosts) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"u1", c.U1}, {"u2", c.U2}, {"d1", c.D1}, {"d2", c.D2}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("path cost %s must be finite, got %v", v.name, v.value)
		}
	}
	return nil
}

// Counts is the number of agents choosing each route in one round.
type Counts [NumRoutes]int

// Total returns the number of choices counted.
func (c Counts) Total() int {
	return c[Up] + c[Down] + c[Cross]
}

// SegmentLoads is the number of agents travelling each segment.
type SegmentLoads struct {
	U1, U2, D1, D2 int
}

// Loads derives segment loads from route counts. On the highway the cross
// route loads u1 and d2 in addition to the straight routes.
func (t Topology) Loads(c Counts) SegmentLoads {
	loads := SegmentLoads{
		U1: c[Up],
		U2: c[Up],
		D1: c[Down],
		D2: c[Down],
	}
	if t == Highway {
		loads.U1 += c[Cross]
		loads.D2 += c[Cross]
	}
	return loads
}

// Payoffs is the realized cost of every route in one round. Entries for
// routes outside the topology are zero.
type Payoffs [NumRoutes]float64

// Payoffs computes the cost of every available route for the given loads.
//
//	uu = u1*load(u1) + u2
//	dd = d1 + d2*load(d2)
//	ud = u1*load(u1) + d2*load(d2)   (highway only)
//
// The flat coefficients u2 and d1 are not scaled by load.
func (t Topology) Payoffs(costs PathCosts, loads SegmentLoads) Payoffs {
	var p Payoffs
	p[Up] = costs.U1*float64(loads.U1) + costs.U2
	p[Down] = costs.D1 + costs.D2*float64(loads.D2)
	if t == Highway {
		p[Cross] = costs.U1*float64(loads.U1) + costs.D2*float64(loads.D2)
	}
	return p
}

// Beliefs is an agent's estimated cost for every route.
type Beliefs [NumRoutes]float64

// Argmin returns the route with the lowest belief among the topology's
// routes. Ties go to the first route in enumeration order (uu, dd, ud).
func (b Beliefs) Argmin(t Topology) Route {
	routes := t.Routes()
	best := routes[0]
	for _, r := range routes[1:] {
		if b[r] < b[best] {
			best = r
		}
	}
	return best
}

// Map returns the beliefs for the topology's routes keyed by label.
func (b Beliefs) Map(t Topology) map[string]float64 {
	m := make(map[string]float64, len(t.Routes()))
	for _, r := range t.Routes() {
		m[r.String()] = b[r]
	}
	return m
}
