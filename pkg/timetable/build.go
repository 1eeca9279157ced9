// Package timetable builds a compact, query-ready journey graph from one
// or more normalized public-transport schedules: station nodes, route
// nodes, and route edges carrying compressed light connections keyed by
// time-of-day and a deduplicated traffic-day bitfield.
package timetable

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// Build runs the full construction pipeline (§4.2 C10 orchestrator) over
// one or more schedules and returns the sealed graph. datasetPrefixes
// must have the same length as schedules; when there is exactly one
// schedule an empty prefix is allowed (§4.9/§6 "single-feed exemption").
func Build(
	schedules []*schedule.Schedule,
	datasetPrefixes []string,
	opts *Options,
	progress ProgressObserver,
	collab Collaborators,
) (*graph.Graph, error) {
	if len(schedules) == 0 {
		return nil, &FatalInputError{Reason: "no schedule supplied"}
	}
	if len(datasetPrefixes) != len(schedules) {
		return nil, &FatalInputError{Reason: "dataset_prefix count must match schedule count"}
	}
	if err := checkDatasetPrefixes(datasetPrefixes); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	for i, s := range schedules {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("schedule %d (%s): %w", i, datasetPrefixes[i], err)
		}
	}

	b := newBuilder(opts, progress, collab)

	anchor := earliestBegin(schedules)
	horizonEnd := latestEnd(schedules)

	for i, s := range schedules {
		prefix := datasetPrefixes[i]
		log.Info().Str("dataset_prefix", prefix).Int("services", len(s.Services)).Msg("adding schedule")

		b.firstDay = daysBetween(anchor, s.Begin)
		b.lastDay = daysBetween(anchor, s.End)

		b.progress.Stage(fmt.Sprintf("Add Stations %s", prefix))
		if err := b.addStations(s); err != nil {
			return nil, err
		}

		b.progress.Stage(fmt.Sprintf("Add Services %s", prefix))
		if err := b.addServices(s.Services); err != nil {
			return nil, err
		}

		if opts.ApplyRules && b.ruleMerger != nil {
			b.progress.Stage(fmt.Sprintf("Rule Services %s", prefix))
			if err := b.ruleMerger.MergeRuleServices(b.g, s.RuleServices); err != nil {
				return nil, err
			}
		}
	}

	b.progress.Stage("Footpaths")
	if b.footpathBuilder != nil {
		if err := b.footpathBuilder.BuildFootpaths(b.g); err != nil {
			return nil, err
		}
	}

	if err := b.finalize(schedules, datasetPrefixes); err != nil {
		return nil, err
	}

	// ScheduleBegin/ScheduleEnd record the horizon §6 names — motis-minutes
	// relative to the anchor's own offset-padded origin (constants.go,
	// computeDayPattern's shift math). schedule_begin always lands exactly
	// on ScheduleOffsetDays*MinutesADay in this coordinate system, and
	// subtracting SCHEDULE_OFFSET_MINUTES to get ScheduleBegin cancels that
	// back to 0, matching the source's schedule_begin_ -= offset step.
	b.g.ScheduleBegin = 0
	b.g.ScheduleEnd = (opts.ScheduleOffsetDays + daysBetween(anchor, horizonEnd)) * MinutesADay

	b.g.InvalidDays = b.diagInvalidDays
	return b.g, nil
}

func latestEnd(schedules []*schedule.Schedule) time.Time {
	end := schedules[0].End
	for _, s := range schedules[1:] {
		if s.End.After(end) {
			end = s.End
		}
	}
	return end
}

func (b *builder) addStations(s *schedule.Schedule) error {
	stations := collectStations(s)
	if b.stationBuilder == nil {
		return &FatalInputError{Feed: s.Name, Reason: "no station builder collaborator supplied"}
	}
	nodes, err := b.stationBuilder.BuildStations(b.g, stations, b.opts.UsePlatforms)
	if err != nil {
		return err
	}
	if len(nodes) != len(stations) {
		return &FatalInputError{Feed: s.Name, Reason: "station builder returned a mismatched node count"}
	}
	for i, st := range stations {
		b.stationByRef[st] = nodes[i]
	}
	b.g.Stations = append(b.g.Stations, nodes...)
	return nil
}

// checkDatasetPrefixes enforces §6 dataset_prefix[] uniqueness, exempting
// the single-feed case with an empty prefix.
func checkDatasetPrefixes(prefixes []string) error {
	if len(prefixes) == 1 && prefixes[0] == "" {
		return nil
	}
	seen := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			return &FatalInputError{Reason: "dataset_prefix required when multiple feeds are present"}
		}
		if seen[p] {
			return &FatalInputError{Reason: "dataset_prefix " + p + " is not unique"}
		}
		seen[p] = true
	}
	return nil
}

func earliestBegin(schedules []*schedule.Schedule) time.Time {
	anchor := schedules[0].Begin
	for _, s := range schedules[1:] {
		if s.Begin.Before(anchor) {
			anchor = s.Begin
		}
	}
	return anchor
}

// daysBetween truncates to whole days, matching the day-indexed horizon
// the normalizer operates over (§4.3, §6 Constants).
func daysBetween(anchor, t time.Time) int {
	return int(t.Sub(anchor).Hours() / 24)
}
