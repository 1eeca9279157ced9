package timetable

import (
	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// builder carries the scratch state a Build call accumulates across every
// input schedule (§5 Resource ownership: scratch state is released once
// construction ends — in this port that just means letting the builder
// value fall out of scope after Build returns the sealed *graph.Graph).
type builder struct {
	opts     *Options
	progress ProgressObserver

	g         *graph.Graph
	pools     *pools
	bitfields *graph.BitfieldStore

	stationBuilder    StationBuilder
	footpathBuilder   FootpathBuilder
	ruleMerger        RuleServiceMerger
	waitingTimeLoader WaitingTimeRuleLoader
	lowerBoundBuilder LowerBoundBuilder
	waitsForComputer  WaitsForComputer

	// stationByRef maps a *schedule.Station to the graph.StationNode built
	// for it, scoped to the feed currently being processed.
	stationByRef map[*schedule.Station]*graph.StationNode

	nextRouteIndex int

	// firstDay/lastDay bound the current schedule's interval in absolute
	// day indices relative to the build's global anchor (the earliest
	// Begin across every input schedule).
	firstDay, lastDay int

	diagInvalidDays []graph.InvalidDay

	// checkedTrips records every trip_info checkTrip has already run
	// against, so addExpandedTrips and finalize's runCheckTrips never
	// double-count the same broken trip into Graph.BrokenTrips.
	checkedTrips map[*graph.TripInfo]bool
}

func newBuilder(opts *Options, progress ProgressObserver, collab Collaborators) *builder {
	return &builder{
		opts:              opts,
		progress:          progressObserverOrNoop(progress),
		g:                 &graph.Graph{},
		pools:             newPools(),
		bitfields:         graph.NewBitfieldStore(),
		stationBuilder:    collab.Stations,
		footpathBuilder:   collab.Footpaths,
		ruleMerger:        collab.RuleServices,
		waitingTimeLoader: collab.WaitingTimeRules,
		lowerBoundBuilder: collab.LowerBounds,
		waitsForComputer:  collab.WaitsFor,
		stationByRef:      make(map[*schedule.Station]*graph.StationNode),
	}
}

// Collaborators groups the external collaborators Build calls around
// the core algorithm (§1 Out of scope). Every field except Stations may
// be left nil; the corresponding stage is then a no-op. A nil Stations
// makes Build fail with a FatalInputError.
type Collaborators struct {
	Stations         StationBuilder
	Footpaths        FootpathBuilder
	RuleServices     RuleServiceMerger
	WaitingTimeRules WaitingTimeRuleLoader
	LowerBounds      LowerBoundBuilder
	WaitsFor         WaitsForComputer
}
