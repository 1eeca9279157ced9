package timetable

import (
	"hash/fnv"
	"sort"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// finalize runs the §4.9 C9 pass once every feed has been absorbed:
// reverse adjacency, bitfield dedup, trip sort, content hash, and the
// final structural validation.
func (b *builder) finalize(schedules []*schedule.Schedule, datasetPrefixes []string) error {
	b.progress.Stage("Connect Reverse")
	connectReverse(b.g)

	b.progress.Stage("Sort Bitfields")
	b.dedupBitfields()

	b.progress.Stage("Sort Trips")
	sortTrips(b.g)

	if b.opts.CheckTrips {
		b.runCheckTrips()
	}

	b.g.Hash = contentHash(schedules, datasetPrefixes)

	if b.lowerBoundBuilder != nil {
		b.progress.Stage("Lower Bounds")
		if err := b.lowerBoundBuilder.BuildLowerBounds(b.g); err != nil {
			return err
		}
	}

	if b.waitingTimeLoader != nil {
		if err := b.waitingTimeLoader.LoadWaitingTimeRules(b.g, b.opts.WzrClassesPath, b.opts.WzrMatrixPath); err != nil {
			return err
		}
	}

	if b.waitsForComputer != nil {
		b.progress.Stage("Waits For")
		if err := b.waitsForComputer.ComputeWaitsFor(b.g, b.opts.PlannedTransferDelta); err != nil {
			return err
		}
	}

	b.g.ConnectionInfos = b.pools.connInfos
	b.g.FullConnections = b.pools.fullConns
	b.g.Categories = b.pools.categories
	b.g.Providers = b.pools.providers
	b.g.Attributes = b.pools.attributes
	b.g.Bitfields = b.bitfields

	if b.opts.Debug {
		log.Debug().Msg(pretty.Sprint(debugSummary{
			Stations:        len(b.g.Stations),
			Routes:          b.g.RouteCount,
			Trips:           len(b.g.Trips.ByPrimary),
			ConnectionInfos: len(b.g.ConnectionInfos),
			FullConnections: len(b.g.FullConnections),
			Bitfields:       b.bitfields.Len(),
			BrokenTrips:     b.g.BrokenTrips,
		}))
	}

	return validateGraph(b.g)
}

// debugSummary is the shape kr/pretty dumps under Options.Debug — the
// graph itself routinely holds tens of thousands of nodes, so the dump
// is a digest rather than the full structure.
type debugSummary struct {
	Stations        int
	Routes          int
	Trips           int
	ConnectionInfos int
	FullConnections int
	Bitfields       int
	BrokenTrips     int
}

// connectReverse pushes every forward edge onto its target's incoming
// adjacency (§4.9 step 1).
func connectReverse(g *graph.Graph) {
	for _, st := range g.Stations {
		for _, rn := range st.RouteNodes {
			for _, edge := range rn.Edges {
				edge.To.IncomingEdges = append(edge.To.IncomingEdges, graph.Edge{From: rn, To: edge.To, Kind: graph.EdgeKindRoute})
			}
			for _, pe := range rn.EnterEdges {
				pe.To.IncomingEdges = append(pe.To.IncomingEdges, graph.Edge{From: rn, To: pe.To, Kind: graph.EdgeKindPlatformEnter})
			}
			for _, pe := range rn.ExitEdges {
				pe.To.IncomingEdges = append(pe.To.IncomingEdges, graph.Edge{From: rn, To: pe.To, Kind: graph.EdgeKindPlatformExit})
			}
		}
		for _, fe := range st.FootEdges {
			fe.To.IncomingEdges = append(fe.To.IncomingEdges, graph.Edge{From: st, To: fe.To, Kind: graph.EdgeKindFoot})
		}
	}
}

// dedupBitfields runs the bulk bitfield-dedup pointer/index rewrite over
// every outstanding reference (§4.9 step 2, §4.2 C2 bulk dedup).
func (b *builder) dedupBitfields() {
	var ptrRefs []**schedule.Bitfield
	for _, st := range b.g.Stations {
		for _, rn := range st.RouteNodes {
			for _, edge := range rn.Edges {
				for i := range edge.Connections {
					ptrRefs = append(ptrRefs, &edge.Connections[i].TrafficDays)
				}
			}
		}
	}

	newIdxOf := b.bitfields.Dedup(ptrRefs)

	for _, tt := range b.g.Tracks {
		for i := range tt.Entries {
			tt.Entries[i].BitfieldIdx = newIdxOf[tt.Entries[i].BitfieldIdx]
		}
	}
	for _, ci := range b.pools.connInfos {
		for i := range ci.Attributes {
			ci.Attributes[i].BitfieldIdx = newIdxOf[ci.Attributes[i].BitfieldIdx]
		}
	}
}

// sortTrips orders the primary-id trip index (§4.9 step 3).
func sortTrips(g *graph.Graph) {
	sort.Slice(g.Trips.ByPrimary, func(i, j int) bool {
		a, b := g.Trips.ByPrimary[i].Primary, g.Trips.ByPrimary[j].Primary
		if a.FirstStation != b.FirstStation {
			return a.FirstStation < b.FirstStation
		}
		if a.TrainNr != b.TrainNr {
			return a.TrainNr < b.TrainNr
		}
		return a.FirstDeparture < b.FirstDeparture
	})
}

// runCheckTrips activates the dormant §12.3 consistency check over every
// trip not already evaluated by addExpandedTrips: every broken trip
// increments Graph.BrokenTrips and is excluded from ExpandedTrips, rather
// than the source's accidental always-pass behavior. Trips addExpandedTrips
// already ran checkTrip against (tracked in b.checkedTrips) are skipped
// here so a broken trip is never counted twice.
func (b *builder) runCheckTrips() {
	for _, trips := range b.g.MergedTrips {
		for _, trp := range trips {
			if b.checkedTrips[trp] {
				continue
			}
			b.checkTripOnce(trp)
		}
	}
}

// contentHash folds every input schedule's content hash with the dataset
// prefixes (§4.9 step 4). It is deliberately order-sensitive: two builds
// fed the same schedules in a different order are not expected to
// collide, matching the source's sequential cista::hash_combine.
func contentHash(schedules []*schedule.Schedule, datasetPrefixes []string) uint64 {
	h := fnv.New64a()
	for _, s := range schedules {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(s.ContentHash >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, p := range datasetPrefixes {
		h.Write([]byte(p))
	}
	return h.Sum64()
}

// validateGraph asserts every registered trip has been backfilled with
// edges (§4.9 step 6).
func validateGraph(g *graph.Graph) error {
	for _, trips := range g.MergedTrips {
		for _, trp := range trips {
			if trp.Edges == nil {
				return &FatalInputError{Reason: "trip registered with no route edges: " + trp.ID.Primary.FirstStation}
			}
		}
	}
	return nil
}
