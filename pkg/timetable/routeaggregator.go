package timetable

import "github.com/travigo/timetablegraph/pkg/timetable/graph"

// routeT is the aggregator state for one physical stop sequence: a
// parallel array of per-section light-connection vectors, one column per
// packed time pattern (§4.5 C5, §3 route_t). Every section's vector
// always has the same length; column k across every section belongs to
// one trip instance (invariant P2/P3).
type routeT struct {
	sections [][]graph.LightConnection
}

func compareLightConnections(a, b graph.LightConnection) int {
	switch {
	case a.Departure != b.Departure:
		if a.Departure < b.Departure {
			return -1
		}
		return 1
	case a.Arrival != b.Arrival:
		if a.Arrival < b.Arrival {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// addService attempts to insert one service's section-aligned light
// connections into r, preserving sortedness on every section
// simultaneously. It returns false without mutating r if no single
// insertion index satisfies every section, in which case the caller
// starts (or tries the next) alternate route.
func (r *routeT) addService(lcons []graph.LightConnection) bool {
	if r.sections == nil {
		r.sections = make([][]graph.LightConnection, len(lcons))
	}

	j := sortedInsertIndex(r.sections[0], lcons[0])
	for i := range r.sections {
		if !canInsertAt(r.sections[i], lcons[i], j) {
			return false
		}
	}

	for i := range r.sections {
		r.sections[i] = insertAt(r.sections[i], lcons[i], j)
	}
	return true
}

func sortedInsertIndex(vec []graph.LightConnection, lc graph.LightConnection) int {
	for i, v := range vec {
		if compareLightConnections(lc, v) < 0 {
			return i
		}
	}
	return len(vec)
}

func canInsertAt(vec []graph.LightConnection, lc graph.LightConnection, j int) bool {
	if j > 0 && compareLightConnections(vec[j-1], lc) > 0 {
		return false
	}
	if j < len(vec) && compareLightConnections(lc, vec[j]) > 0 {
		return false
	}
	return true
}

func insertAt(vec []graph.LightConnection, lc graph.LightConnection, j int) []graph.LightConnection {
	vec = append(vec, graph.LightConnection{})
	copy(vec[j+1:], vec[j:])
	vec[j] = lc
	return vec
}

// addToRoutes tries every existing alternate route in order before
// starting a new one, matching add_to_routes' linear scan — stable
// service order within a route group (guaranteed by addServices'
// first-seen grouping, §5) makes this deterministic.
func addToRoutes(altRoutes []*routeT, lcons []graph.LightConnection) []*routeT {
	for _, r := range altRoutes {
		if r.addService(lcons) {
			return altRoutes
		}
	}
	r := &routeT{}
	r.addService(lcons)
	return append(altRoutes, r)
}
