package timetable

import "github.com/travigo/timetablegraph/pkg/timetable/graph"

// stationsEquivalent reports whether b represents the same physical
// location as a, originating from a different feed (§9 Design Notes,
// "cyclic equivalent-station graph" — modeled as a plain slice walk
// rather than a graph traversal since equivalence is never transitive
// beyond one hop in the input contract).
func stationsEquivalent(a, b *graph.StationNode) bool {
	if a == b || a.Feed == b.Feed {
		return false
	}
	for _, eq := range a.Equivalent {
		if eq == b {
			return true
		}
	}
	return false
}

// hasDuplicate checks whether a service's about-to-be-added light
// connections duplicate a trip already built from a different feed, by
// walking the first station's equivalent stations and every route edge
// leaving them (§4.6 C6).
func hasDuplicate(g *graph.Graph, stations []*graph.StationNode, lcons []graph.LightConnection) bool {
	first := stations[0]
	for _, eq := range first.Equivalent {
		if eq.Feed == first.Feed {
			continue
		}
		for _, rn := range eq.RouteNodes {
			for _, edge := range rn.Edges {
				for _, lc := range edge.Connections {
					for _, trp := range g.MergedTrips[lc.MergedTripsIdx] {
						if areDuplicates(stations, lcons, trp) {
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// areDuplicates implements the stop-by-stop comparison of §4.6: same stop
// count, matching last arrival and equivalent last station, and for every
// intermediate stop matching arrival/departure minutes and an equivalent
// station.
func areDuplicates(stations []*graph.StationNode, lcons []graph.LightConnection, trp *graph.TripInfo) bool {
	stopCountB := len(trp.Edges) + 1
	if len(stations) != stopCountB {
		return false
	}

	lastEdge := trp.Edges[len(trp.Edges)-1].Edge
	lastConn := lastEdge.Connections[trp.LconIdx]
	if lcons[len(lcons)-1].Arrival != lastConn.Arrival {
		return false
	}
	if !stationsEquivalent(stations[len(stations)-1], lastEdge.To.Station) {
		return false
	}

	for i := 1; i < len(stations)-1; i++ {
		prevEdge := trp.Edges[i-1].Edge
		currEdge := trp.Edges[i].Edge
		prevConn := prevEdge.Connections[trp.LconIdx]
		currConn := currEdge.Connections[trp.LconIdx]

		if lcons[i-1].Arrival != prevConn.Arrival {
			return false
		}
		if lcons[i].Departure != currConn.Departure {
			return false
		}
		if !stationsEquivalent(stations[i], currEdge.From.Station) {
			return false
		}
	}

	return true
}
