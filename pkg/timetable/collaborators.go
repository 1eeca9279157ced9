package timetable

import (
	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// The following interfaces bound the construction pipeline Build runs
// (§1 Out of scope, §9 Design Notes): station construction, footpath
// construction, rule-service merging and waiting-time-rule loading are
// invoked around the core graph_builder algorithm but are not themselves
// specified by it. For each feed Build adds stations, then services, then
// rule services; footpaths are built once, after every feed. Every
// collaborator except StationBuilder may be nil, in which case the
// corresponding stage is a no-op; a nil StationBuilder makes Build fail
// with a FatalInputError.

// StationBuilder turns one feed's stations into graph.StationNodes and
// registers them (and any cross-feed Equivalent links) on the in-progress
// Graph. usePlatforms is Options.UsePlatforms, passed through unchanged
// (§6 use_platforms).
type StationBuilder interface {
	BuildStations(g *graph.Graph, stations []*schedule.Station, usePlatforms bool) ([]*graph.StationNode, error)
}

// FootpathBuilder attaches walking edges between already-built
// StationNodes. It runs after every feed's stations and services have
// been added (§4.2 Per-feed order).
type FootpathBuilder interface {
	BuildFootpaths(g *graph.Graph) error
}

// RuleServiceMerger consumes schedule.Service values whose RuleParticipant
// flag is set (when Options.ApplyRules is true) together with the
// schedule.RuleService definitions that reference them, and is
// responsible for producing whatever shared connection-info merging the
// rule implies. Build calls it once per feed, after that feed's ordinary
// services have been added.
type RuleServiceMerger interface {
	MergeRuleServices(g *graph.Graph, rules []*schedule.RuleService) error
}

// WaitingTimeRuleLoader loads the transfer waiting-time-rule matrices
// (§3 Data model: wzr_classes_path / wzr_matrix_path, passed through
// Options unchanged) and attaches whatever representation it produces to
// the sealed Graph. Build calls it once, during finalize, after the
// lower-bound tables have been built and before WaitsForComputer runs.
type WaitingTimeRuleLoader interface {
	LoadWaitingTimeRules(g *graph.Graph, classesPath, matrixPath string) error
}

// WaitsForComputer computes the §6 "waits-for" relationship between a
// connection and the next trip departing a stop, using plannedTransferDelta
// (Options.PlannedTransferDelta, §6 planned_transfer_delta) as the grace
// period a transfer must still clear to count as waited-for. Build calls
// it once, immediately after the waiting-time-rule matrices have loaded,
// mirroring the source's load_waiting_time_rules-then-calc_waits_for
// ordering.
type WaitsForComputer interface {
	ComputeWaitsFor(g *graph.Graph, plannedTransferDelta int) error
}

// LowerBoundBuilder computes the interchange-graph and station-graph
// travel-time lower-bound tables a routing layer's search heuristic uses,
// in both directions (§4.9 step 5: "delegate to external collaborators —
// interchange graph, station graph — in both directions"). Build calls it
// once, during finalize, after the content hash has been folded and
// before the final structural validation; the tables themselves, like the
// waiting-time-rule matrices, are an external collaborator's concern.
type LowerBoundBuilder interface {
	BuildLowerBounds(g *graph.Graph) error
}
