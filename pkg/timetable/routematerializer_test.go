package timetable

import (
	"testing"
	"time"

	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// Platform edges (§4.7 step 2): a section's departure/arrival track should
// resolve to exactly one platform on each station, not every platform the
// station exposes.
func TestBuildAttachesSinglePlatformEdgePerTrack(t *testing.T) {
	a := &schedule.Station{ID: "A", Feed: "f1", Platforms: []*schedule.Platform{{Name: "1"}, {Name: "2"}}}
	b := &schedule.Station{ID: "B", Feed: "f1", Platforms: []*schedule.Platform{{Name: "3"}, {Name: "4"}}}
	route := &schedule.Route{
		Stations:   []*schedule.Station{a, b},
		InAllowed:  []bool{true, true},
		OutAllowed: []bool{true, true},
	}
	section := &schedule.Section{Category: &schedule.Category{Name: "RE"}}
	svc := &schedule.Service{
		Route:    route,
		Sections: []*schedule.Section{section},
		Times:    []int{0, 600, 660, 0},
		Tracks: []*schedule.TrackAssignment{
			{DepTracks: []*schedule.TrackOption{{Name: "1", TrafficDays: bitDay(0)}}},
			{ArrTracks: []*schedule.TrackOption{{Name: "4", TrafficDays: bitDay(0)}}},
		},
		TrafficDays: bitDay(0),
	}

	begin := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	sched := &schedule.Schedule{
		Name: "f1", Begin: begin, End: begin.AddDate(0, 0, 10),
		Services: []*schedule.Service{svc},
	}

	opts := DefaultOptions()
	opts.UsePlatforms = true
	g, err := Build([]*schedule.Schedule{sched}, []string{""}, opts, nil,
		Collaborators{Stations: &stubStationBuilder{}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	first := g.FirstRouteNode[0]
	if len(first.EnterEdges) != 1 {
		t.Fatalf("first route node has %d enter edges, want 1", len(first.EnterEdges))
	}
	if got := first.EnterEdges[0].Platform.Name; got != "1" {
		t.Errorf("enter edge platform = %q, want %q", got, "1")
	}

	last := first.Edges[0].To
	if len(last.ExitEdges) != 1 {
		t.Fatalf("last route node has %d exit edges, want 1", len(last.ExitEdges))
	}
	if got := last.ExitEdges[0].Platform.Name; got != "4" {
		t.Errorf("exit edge platform = %q, want %q", got, "4")
	}
}

// A section with no track assignment at all attaches no platform edges.
func TestBuildAttachesNoPlatformEdgeWithoutTracks(t *testing.T) {
	sched, _, _ := threeStopSchedule("f1", []int{0, 600, 660, 720, 780, 0}, bitDay(0))

	g, err := Build([]*schedule.Schedule{sched}, []string{""}, DefaultOptions(), nil,
		Collaborators{Stations: &stubStationBuilder{}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	first := g.FirstRouteNode[0]
	if len(first.EnterEdges) != 0 {
		t.Errorf("first route node has %d enter edges, want 0 (no track assignment)", len(first.EnterEdges))
	}
	if len(first.Edges[0].To.ExitEdges) != 0 {
		t.Errorf("middle route node has %d exit edges, want 0 (no track assignment)", len(first.Edges[0].To.ExitEdges))
	}
}

// A track name with no matching platform on the station attaches nothing.
func TestBuildAttachesNoPlatformEdgeWhenTrackNameUnmatched(t *testing.T) {
	a := &schedule.Station{ID: "A", Feed: "f1", Platforms: []*schedule.Platform{{Name: "1"}}}
	b := &schedule.Station{ID: "B", Feed: "f1", Platforms: []*schedule.Platform{{Name: "3"}}}
	route := &schedule.Route{
		Stations:   []*schedule.Station{a, b},
		InAllowed:  []bool{true, true},
		OutAllowed: []bool{true, true},
	}
	section := &schedule.Section{Category: &schedule.Category{Name: "RE"}}
	svc := &schedule.Service{
		Route:    route,
		Sections: []*schedule.Section{section},
		Times:    []int{0, 600, 660, 0},
		Tracks: []*schedule.TrackAssignment{
			{DepTracks: []*schedule.TrackOption{{Name: "unknown", TrafficDays: bitDay(0)}}},
			{ArrTracks: nil},
		},
		TrafficDays: bitDay(0),
	}

	begin := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	sched := &schedule.Schedule{
		Name: "f1", Begin: begin, End: begin.AddDate(0, 0, 10),
		Services: []*schedule.Service{svc},
	}

	opts := DefaultOptions()
	opts.UsePlatforms = true
	g, err := Build([]*schedule.Schedule{sched}, []string{""}, opts, nil,
		Collaborators{Stations: &stubStationBuilder{}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	first := g.FirstRouteNode[0]
	if len(first.EnterEdges) != 0 {
		t.Errorf("first route node has %d enter edges, want 0 (track name matches no platform)", len(first.EnterEdges))
	}
	if len(first.Edges[0].To.ExitEdges) != 0 {
		t.Errorf("last route node has %d exit edges, want 0 (no arrival track assignment)", len(first.Edges[0].To.ExitEdges))
	}
}
