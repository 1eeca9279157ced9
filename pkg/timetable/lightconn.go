package timetable

import (
	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// sectionToConnection builds one light_connection for section sectionIdx
// of svc under time pattern pat (§4.4 C4). mergedTripsIdx indexes
// Graph.MergedTrips for the trip this connection belongs to.
func (b *builder) sectionToConnection(
	svc *schedule.Service, sectionIdx int, pat *pattern, mergedTripsIdx int,
) (graph.LightConnection, error) {
	dep := pat.relUTC[sectionIdx*2]
	arr := pat.relUTC[sectionIdx*2+1]

	dayOffset := floorDiv(dep, MinutesADay)
	utcMamDep := dep - dayOffset*MinutesADay
	utcMamArr := utcMamDep + (arr - dep)

	if utcMamDep > utcMamArr {
		return graph.LightConnection{}, &FatalInputError{
			Feed:   svc.TripID,
			Reason: "departure must be before arrival",
		}
	}

	section := svc.Sections[sectionIdx]
	fromStation := svc.Route.Stations[sectionIdx]
	toStation := svc.Route.Stations[sectionIdx+1]

	class := classForCategory(section.Category.Name)
	price := int(distanceKm(fromStation, toStation) * float64(pricePerKm(class)))

	depTrackIdx, arrTrackIdx := -1, -1
	if svc.Tracks != nil {
		trackBase := max(0, b.firstDay-b.opts.ScheduleOffsetDays)
		depOffset := trackBase + svc.Times[sectionIdx*2+1]/MinutesADay
		arrOffset := trackBase + svc.Times[sectionIdx*2+2]/MinutesADay
		depTrackIdx = b.getOrCreateTrack(svc.Tracks[sectionIdx].DepTracks, depOffset)
		arrTrackIdx = b.getOrCreateTrack(svc.Tracks[sectionIdx+1].ArrTracks, arrOffset)
	}

	connInfo := b.pools.getOrCreateConnectionInfo(section, nil, b.bitfields)
	fullConn := b.pools.getOrCreateFullConnection(class, price, depTrackIdx, arrTrackIdx, connInfo)

	shifted := pat.motisDays.Shift(dayOffset)
	bfIdx := b.bitfields.GetOrCreate(shifted)

	return graph.LightConnection{
		Departure:      uint16(utcMamDep),
		Arrival:        uint16(utcMamArr),
		FullConnection: fullConn,
		TrafficDays:    b.bitfields.At(bfIdx),
		MergedTripsIdx: mergedTripsIdx,
	}, nil
}

// getOrCreateTrack builds a track table for the candidate platforms a
// section's stop offers, keyed by the bitfield index each candidate
// applies on. Every call appends a new table; a table built earlier from
// the same tracks and offset is not reused. Returns -1 when tracks is
// empty, matching the
// source's track index 0 sentinel (graph_builder.cc get_or_create_track) —
// this port uses -1 rather than a reserved index 0 since Graph.Tracks has
// no implicit empty-table slot.
func (b *builder) getOrCreateTrack(tracks []*schedule.TrackOption, offset int) int {
	if len(tracks) == 0 {
		return -1
	}
	entries := make([]graph.TrackTableEntry, 0, len(tracks))
	for _, t := range tracks {
		bfIdx := b.bitfields.GetOrCreate(t.TrafficDays.Shift(offset))
		entries = append(entries, graph.TrackTableEntry{BitfieldIdx: bfIdx, Name: t.Name})
	}
	b.g.Tracks = append(b.g.Tracks, &graph.TrackTable{Entries: entries})
	return len(b.g.Tracks) - 1
}
