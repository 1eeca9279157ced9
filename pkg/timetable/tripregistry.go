package timetable

import (
	"github.com/rs/zerolog/log"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// foldToMinuteOfDay decomposes an absolute relative-UTC minute value into
// its minute-of-day component, discarding the day offset.
func foldToMinuteOfDay(relUTC int) uint16 {
	return uint16(relUTC - floorDiv(relUTC, MinutesADay)*MinutesADay)
}

// fullTripID builds the primary/secondary id pair for the trip starting
// at section sectionIdx (graph_builder.cc get_full_trip_id). sectionIdx
// is 0 for a trip's own registration and > 0 for a train-number-change
// alias (§4.8, §12.1).
func fullTripID(svc *schedule.Service, stations []*graph.StationNode, pat *pattern, sectionIdx int) graph.FullTripID {
	firstStation := stations[sectionIdx].ID
	lastStation := stations[len(stations)-1].ID
	trainNr := svc.Sections[sectionIdx].TrainNr
	lineID := svc.Sections[0].LineID

	return graph.FullTripID{
		Primary: graph.PrimaryTripID{
			FirstStation:   firstStation,
			TrainNr:        trainNr,
			FirstDeparture: foldToMinuteOfDay(pat.relUTC[sectionIdx*2]),
		},
		Secondary: graph.SecondaryTripID{
			LastStation: lastStation,
			LastArrival: foldToMinuteOfDay(pat.relUTC[len(pat.relUTC)-1]),
			Line:        lineID,
		},
	}
}

// registerService builds the trip_info for one service occurrence on one
// time pattern and inserts its primary-id bindings, including the
// train-number-change and initial_train_nr aliases (§4.8 C8, §12.1).
func (b *builder) registerService(svc *schedule.Service, stations []*graph.StationNode, pat *pattern) *graph.TripInfo {
	id := fullTripID(svc, stations, pat, 0)

	var debug schedule.DebugInfo
	if svc.Debug != nil {
		debug = *svc.Debug
	}

	trip := &graph.TripInfo{
		ID:         id,
		DayOffsets: dayOffsets(pat.relUTC),
		Debug:      debug,
	}

	b.g.Trips.ByPrimary = append(b.g.Trips.ByPrimary, graph.TripBinding{Primary: id.Primary, Trip: trip})

	if svc.TripID != "" {
		if b.g.Trips.ByStringID == nil {
			b.g.Trips.ByStringID = make(map[string]*graph.TripInfo)
		}
		if _, exists := b.g.Trips.ByStringID[svc.TripID]; exists {
			log.Warn().Str("trip_id", svc.TripID).Msg("duplicate trip id, keeping first registration")
		} else {
			b.g.Trips.ByStringID[svc.TripID] = trip
		}
	}

	for i := 1; i < len(svc.Sections); i++ {
		if svc.Sections[i].TrainNr != svc.Sections[i-1].TrainNr {
			aliasID := fullTripID(svc, stations, pat, i)
			b.g.Trips.ByPrimary = append(b.g.Trips.ByPrimary, graph.TripBinding{Primary: aliasID.Primary, Trip: trip})
		}
	}

	if svc.InitialTrainNr != id.Primary.TrainNr {
		alias := id.Primary
		alias.TrainNr = svc.InitialTrainNr
		b.g.Trips.ByPrimary = append(b.g.Trips.ByPrimary, graph.TripBinding{Primary: alias, Trip: trip})
	}

	return trip
}

// createMergedTrips wraps a freshly registered trip in its own
// single-element merged-trips group and returns the index light
// connections reference (create_merged_trips; a rule-service merge is the
// only case that ever grows a group past one element, and that merge is
// an external collaborator, §1 Out of scope).
func (b *builder) createMergedTrips(trp *graph.TripInfo) int {
	b.g.MergedTrips = append(b.g.MergedTrips, []*graph.TripInfo{trp})
	return len(b.g.MergedTrips) - 1
}

// addExpandedTrips materializes the §6/§12 expand_trips secondary index
// for one freshly materialized route: walk the route's first edge and,
// for every column, resolve the single trip riding it (add_expanded_trips).
// A column whose light connection was produced by a rule-service merge
// carries more than one trip in Graph.MergedTrips and is skipped —
// expansion only has a meaning for one concrete trip per column. The
// route's trips are recorded as one group in Graph.ExpandedTrips,
// mirroring the source's finish_key() boundary.
//
// checkTrip only runs here when Options.CheckTrips is set — the source's
// own add_expanded_trips call to check_trip is independent of any
// separate consistency-check option (check_trip is dead code there), but
// this port's checkTrip has real BrokenTripError accounting, and
// Options.CheckTrips is its one documented gate (§12.3, options.go). A
// trip excluded here by checkTripOnce is also skipped by finalize's
// runCheckTrips so BrokenTrips is never double-counted for it.
func (b *builder) addExpandedTrips(edges []*graph.RouteEdge) {
	if len(edges) == 0 {
		return
	}
	first := edges[0]

	var group []*graph.TripInfo
	for _, lc := range first.Connections {
		merged := b.g.MergedTrips[lc.MergedTripsIdx]
		if len(merged) != 1 {
			continue
		}
		trp := merged[0]
		if b.opts.CheckTrips && !b.checkTripOnce(trp) {
			continue
		}
		group = append(group, trp)
	}

	if len(group) > 0 {
		b.g.ExpandedTrips = append(b.g.ExpandedTrips, group)
	}
}

// checkTripOnce runs checkTrip at most once per trip_info, recording that
// the trip has been evaluated so finalize's runCheckTrips — which walks
// every trip in Graph.MergedTrips, including ones addExpandedTrips has
// already seen — does not increment BrokenTrips a second time for it.
func (b *builder) checkTripOnce(trp *graph.TripInfo) bool {
	if b.checkedTrips == nil {
		b.checkedTrips = make(map[*graph.TripInfo]bool)
	}
	b.checkedTrips[trp] = true

	if err := checkTrip(trp); err != nil {
		b.g.BrokenTrips++
		log.Warn().Err(err).Msg("broken trip excluded from expanded trips")
		return false
	}
	return true
}

// checkTrip is the dormant consistency check of §12.3: wired but never
// called on the default Build path. A caller that enables
// Options.CheckTrips gets BrokenTripError accounting instead of silent
// acceptance.
func checkTrip(trp *graph.TripInfo) error {
	lastArrival := -1
	for _, ref := range trp.Edges {
		lc := ref.Edge.Connections[trp.LconIdx]
		if int(lc.Departure) > int(lc.Arrival) {
			return &BrokenTripError{TripID: trp.ID.Primary.FirstStation, Reason: "departure after arrival"}
		}
		if lastArrival > int(lc.Departure) {
			return &BrokenTripError{TripID: trp.ID.Primary.FirstStation, Reason: "non-monotonic across sections"}
		}
		lastArrival = int(lc.Arrival)
	}
	return nil
}
