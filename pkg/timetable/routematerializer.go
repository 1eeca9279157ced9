package timetable

import (
	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// createRoute materializes one packed routeT into route nodes and route
// edges, assigning it the next monotone route index (§4.7 C7).
func (b *builder) createRoute(
	stations []*graph.StationNode, inAllowed, outAllowed []bool, r *routeT,
) []*graph.RouteEdge {
	routeIdx := b.nextRouteIndex
	b.nextRouteIndex++

	nodes := make([]*graph.RouteNode, len(stations))
	for i, st := range stations {
		nodes[i] = &graph.RouteNode{
			Route:      routeIdx,
			Station:    st,
			InAllowed:  inAllowed[i],
			OutAllowed: outAllowed[i],
		}
		st.RouteNodes = append(st.RouteNodes, nodes[i])
	}

	edges := make([]*graph.RouteEdge, len(r.sections))
	for i := range r.sections {
		conns := r.sections[i]
		edge := &graph.RouteEdge{
			From:        nodes[i],
			To:          nodes[i+1],
			Connections: conns,
		}
		nodes[i].Edges = append(nodes[i].Edges, edge)
		edges[i] = edge

		if inAllowed[i] {
			b.attachPlatformEdge(nodes[i], &nodes[i].EnterEdges, conns[0].FullConnection.DepTrack)
		}
		if outAllowed[i+1] {
			b.attachPlatformEdge(nodes[i+1], &nodes[i+1].ExitEdges, conns[0].FullConnection.ArrTrack)
		}
	}

	b.g.RouteCount++
	for len(b.g.FirstRouteNode) <= routeIdx {
		b.g.FirstRouteNode = append(b.g.FirstRouteNode, nil)
	}
	b.g.FirstRouteNode[routeIdx] = nodes[0]

	return edges
}

// attachPlatformEdge resolves the single platform the section's first
// connection's departure/arrival track maps to and attaches one
// enter/exit edge for it, weighted by the station's platform transfer
// time (§4.7 step 2, the original's add_route_section resolving
// get_platform(connections[0].full_con_->d_track_/a_track_)). A section
// with no per-day platform assignment (trackIdx -1) or a track whose
// name doesn't match any platform the station exposes attaches nothing.
func (b *builder) attachPlatformEdge(rn *graph.RouteNode, into *[]*graph.PlatformEdge, trackIdx int) {
	st := rn.Station
	pf := b.resolvePlatform(st, trackIdx)
	if pf == nil {
		return
	}
	*into = append(*into, &graph.PlatformEdge{
		To:       st,
		Platform: pf,
		Duration: st.PlatformTransferTime,
	})
}

// resolvePlatform looks up the platform a track-table index names on the
// given station. A track table can list more than one candidate name
// across different traffic-day groupings (§12.5); the first entry's name
// is the one the section's own light connection was built against
// (getOrCreateTrack's track-option ordering follows the feed's own
// candidate order), so that is the one resolved here.
func (b *builder) resolvePlatform(st *graph.StationNode, trackIdx int) *schedule.Platform {
	if trackIdx < 0 || trackIdx >= len(b.g.Tracks) {
		return nil
	}
	entries := b.g.Tracks[trackIdx].Entries
	if len(entries) == 0 {
		return nil
	}
	name := entries[0].Name
	for _, pf := range st.Platforms {
		if pf.Name == name {
			return pf
		}
	}
	return nil
}

// writeTripEdges backfills every trip riding route r with its edge
// sequence and column index, the step §4.8 describes as running "after
// route materialization": register_service only knows a trip's
// FullTripID and day offsets; it has no edges until its route exists.
func (b *builder) writeTripEdges(edges []*graph.RouteEdge) {
	if len(edges) == 0 {
		return
	}
	first := edges[0]
	for k, lc := range first.Connections {
		for _, trp := range b.g.MergedTrips[lc.MergedTripsIdx] {
			trp.Edges = make([]graph.RouteEdgeRef, len(edges))
			for i, e := range edges {
				trp.Edges[i] = graph.RouteEdgeRef{Edge: e}
			}
			trp.LconIdx = k
		}
	}
}
