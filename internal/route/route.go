// Package route models the routing network agents compete over.
//
// There are two topologies. The simple network offers the straight routes
// "uu" and "dd". The highway network adds the cross route "ud", which shares
// the first segment of "uu" (u1) and the second segment of "dd" (d2):
//
//	    u1         u2
//	S ------> U ------> T
//	|         |         ^
//	|         | (ud)    |
//	v         v         |
//	+-------> D --------+
//	    d1         d2
//
// Beliefs, counts and payoffs are fixed arrays indexed by Route.
package route

import (
	"fmt"
)

// Route is one of the path choices available to an agent each round.
type Route uint8

const (
	Up    Route = iota // "uu": u1 then u2
	Down               // "dd": d1 then d2
	Cross              // "ud": u1 then d2, highway only

	// NumRoutes is the size of the route enumeration.
	NumRoutes = 3
)

var routeNames = [NumRoutes]string{"uu", "dd", "ud"}

// String returns the two-letter route label.
func (r Route) String() string {
	if int(r) < NumRoutes {
		return routeNames[r]
	}
	return fmt.Sprintf("Route(%d)", r)
}

// MarshalText implements encoding.TextMarshaler so routes serialize as labels.
func (r Route) MarshalText() ([]byte, error) {
	if int(r) >= NumRoutes {
		return nil, fmt.Errorf("invalid route %d", r)
	}
	return []byte(routeNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Route) UnmarshalText(text []byte) error {
	parsed, err := ParseRoute(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRoute converts a route label ("uu", "dd", "ud") into a Route.
func ParseRoute(s string) (Route, error) {
	for i, name := range routeNames {
		if name == s {
			return Route(i), nil
		}
	}
	return 0, fmt.Errorf("unknown route %q", s)
}

// Topology is the fixed set of routes and how their segment loads combine.
type Topology uint8

const (
	Simple  Topology = iota // uu, dd
	Highway                 // uu, dd, ud
)

var (
	simpleRoutes  = []Route{Up, Down}
	highwayRoutes = []Route{Up, Down, Cross}
)

// TopologyFor maps the highway flag used by the command line onto a Topology.
func TopologyFor(highway bool) Topology {
	if highway {
		return Highway
	}
	return Simple
}

// String returns "simple" or "highway".
func (t Topology) String() string {
	switch t {
	case Simple:
		return "simple"
	case Highway:
		return "highway"
	default:
		return fmt.Sprintf("Topology(%d)", t)
	}
}

// IsHighway reports whether the cross route exists.
func (t Topology) IsHighway() bool {
	return t == Highway
}

// Routes returns the available routes in enumeration order (uu, dd, ud).
// Callers must not modify the returned slice.
func (t Topology) Routes() []Route {
	if t == Highway {
		return highwayRoutes
	}
	return simpleRoutes
}

// Has reports whether r is available in this topology.
func (t Topology) Has(r Route) bool {
	switch r {
	case Up, Down:
		return true
	case Cross:
		return t == Highway
	default:
		return false
	}
}

// ExplorationSplit returns the probability of each route being drawn when an
// agent explores. The highway split is 30/30/40 for uu/ud/dd, not uniform.
func (t Topology) ExplorationSplit() [NumRoutes]float64 {
	if t == Highway {
		return [NumRoutes]float64{Up: 0.3, Down: 0.4, Cross: 0.3}
	}
	return [NumRoutes]float64{Up: 0.5, Down: 0.5}
}

// Order in which the exploration split is laid out over [0,1).
var (
	simpleExploreOrder  = []Route{Up, Down}
	highwayExploreOrder = []Route{Up, Cross, Down}
)

// ExploreRoute maps a uniform draw in [0,1) onto the exploration split.
// The thresholds are cumulative in the order uu, ud, dd.
func (t Topology) ExploreRoute(u float64) Route {
	order := simpleExploreOrder
	if t == Highway {
		order = highwayExploreOrder
	}
	split := t.ExplorationSplit()
	cumulative := 0.0
	for _, r := range order[:len(order)-1] {
		cumulative += split[r]
		if u < cumulative {
			return r
		}
	}
	return order[len(order)-1]
}
