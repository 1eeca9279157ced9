package timetable

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// collectStations gathers the distinct *schedule.Station values a
// schedule's services reference, in first-seen order, since the input
// contract has no separate top-level station list (§6 External
// interfaces: stations are reached through service.route.stations).
func collectStations(s *schedule.Schedule) []*schedule.Station {
	seen := make(map[*schedule.Station]bool)
	var out []*schedule.Station
	for _, svc := range s.Services {
		for _, st := range svc.Route.Stations {
			if !seen[st] {
				seen[st] = true
				out = append(out, st)
			}
		}
	}
	return out
}

func (b *builder) resolveStations(stations []*schedule.Station) []*graph.StationNode {
	out := make([]*graph.StationNode, len(stations))
	for i, st := range stations {
		out[i] = b.stationByRef[st]
	}
	return out
}

func (b *builder) skipRoute(route *schedule.Route) bool {
	if !b.opts.NoLocalTransport {
		return false
	}
	for _, st := range route.Stations {
		if st.Local {
			return true
		}
	}
	return false
}

// addServices groups a feed's services by physical route identity and
// hands each group to addRouteServices in first-seen order — a
// deterministic substitute for the source's stable-sort-by-route-pointer
// (pointer ordering isn't stable across runs in Go; first-seen order is,
// and preserves the same per-group relative ordering the aggregator
// relies on, see DESIGN.md).
func (b *builder) addServices(services []*schedule.Service) error {
	var order []*schedule.Route
	seen := make(map[*schedule.Route]bool)
	groups := make(map[*schedule.Route][]*schedule.Service)

	for _, svc := range services {
		if b.opts.ApplyRules && svc.RuleParticipant {
			continue
		}
		if !seen[svc.Route] {
			seen[svc.Route] = true
			order = append(order, svc.Route)
		}
		groups[svc.Route] = append(groups[svc.Route], svc)
	}

	for _, route := range order {
		if b.skipRoute(route) {
			continue
		}
		if err := b.addRouteServices(groups[route]); err != nil {
			return err
		}
	}
	return nil
}

// addRouteServices packs every service sharing one physical stop
// sequence into one or more alternate routes, then materializes each
// (§4.5–§4.8, C5→C6→C7→C8 per route group).
func (b *builder) addRouteServices(group []*schedule.Service) error {
	var altRoutes []*routeT

	for _, svc := range group {
		stations := b.resolveStations(svc.Route.Stations)
		patterns, ok, diags := b.serviceTimesToUTC(svc, stations)
		if !ok {
			continue
		}
		for _, d := range diags {
			b.diagInvalidDays = append(b.diagInvalidDays, graph.InvalidDay{DayIdx: d.DayIdx})
		}

		// Map iteration order is unspecified in Go; sort the pattern keys
		// so which alternate route a given pattern lands on (and the
		// route indices createRoute hands out) is reproducible run to run.
		keys := maps.Keys(patterns)
		sort.Strings(keys)
		for _, key := range keys {
			pat := patterns[key]
			if pat.relUTC == nil {
				continue // empty-vector diagnostic key, §4.3 step 3
			}

			lcons := make([]graph.LightConnection, len(svc.Sections))
			for i := range svc.Sections {
				lc, err := b.sectionToConnection(svc, i, pat, -1)
				if err != nil {
					return err
				}
				lcons[i] = lc
			}

			if hasDuplicate(b.g, stations, lcons) {
				continue
			}

			mergedIdx := b.createMergedTrips(b.registerService(svc, stations, pat))
			for i := range lcons {
				lcons[i].MergedTripsIdx = mergedIdx
			}

			altRoutes = addToRoutes(altRoutes, lcons)
		}
	}

	ref := group[0]
	stations := b.resolveStations(ref.Route.Stations)
	for _, r := range altRoutes {
		if len(r.sections) == 0 || len(r.sections[0]) == 0 {
			continue
		}
		edges := b.createRoute(stations, ref.Route.InAllowed, ref.Route.OutAllowed, r)
		b.writeTripEdges(edges)
		if b.opts.ExpandTrips {
			b.addExpandedTrips(edges)
		}
	}
	return nil
}
