package timetable

import (
	"testing"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

func TestFloorDivAndFloorMod(t *testing.T) {
	cases := []struct {
		a, b, wantDiv, wantMod int
	}{
		{1430, 1440, 0, 1430},
		{1440, 1440, 1, 0},
		{-10, 1440, -1, 1430},
		{-1440, 1440, -1, 0},
		{2900, 1440, 2, 20},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.wantDiv {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.wantDiv)
		}
		if got := floorMod(c.a, c.b); got != c.wantMod {
			t.Errorf("floorMod(%d, %d) = %d, want %d", c.a, c.b, got, c.wantMod)
		}
	}
}

func TestResolveTimezoneOffsetNilTimezone(t *testing.T) {
	isSeason, offset, seasonBegin := resolveTimezoneOffset(nil, 5, 600)
	if isSeason || offset != 0 || seasonBegin != 0 {
		t.Errorf("resolveTimezoneOffset(nil, ...) = (%v, %d, %d), want (false, 0, 0)", isSeason, offset, seasonBegin)
	}
}

func TestResolveTimezoneOffsetNoSeason(t *testing.T) {
	tz := &schedule.Timezone{GeneralOffset: 60}
	isSeason, offset, _ := resolveTimezoneOffset(tz, 5, 600)
	if isSeason {
		t.Error("a timezone with no Season should never report isSeason")
	}
	if offset != 60 {
		t.Errorf("offset = %d, want 60", offset)
	}
}

func TestResolveTimezoneOffsetInAndOutOfSeason(t *testing.T) {
	tz := &schedule.Timezone{
		GeneralOffset: 60,
		Season:        &schedule.DSTSeason{Begin: 10 * MinutesADay, End: 20 * MinutesADay, Offset: 120},
	}

	isSeason, offset, seasonBegin := resolveTimezoneOffset(tz, 15, 0)
	if !isSeason || offset != 120 {
		t.Errorf("day 15 should be in season with offset 120, got isSeason=%v offset=%d", isSeason, offset)
	}
	if seasonBegin != tz.Season.Begin {
		t.Errorf("seasonBegin = %d, want %d", seasonBegin, tz.Season.Begin)
	}

	isSeason, offset, _ = resolveTimezoneOffset(tz, 5, 0)
	if isSeason || offset != 60 {
		t.Errorf("day 5 should be before the season with general offset, got isSeason=%v offset=%d", isSeason, offset)
	}

	isSeason, offset, _ = resolveTimezoneOffset(tz, 25, 0)
	if isSeason || offset != 60 {
		t.Errorf("day 25 should be after the season with general offset, got isSeason=%v offset=%d", isSeason, offset)
	}
}

func TestDayOffsets(t *testing.T) {
	// Two sections: first entirely within day 0, second departing on day 0
	// and arriving on day 1. The offset is read from each departure, so the
	// arrival crossing midnight does not change it.
	relUTC := []int{600, 660, 1430, 1440 + 30}
	offsets := dayOffsets(relUTC)
	want := []int{0, 0}
	if len(offsets) != len(want) {
		t.Fatalf("dayOffsets returned %d entries, want %d", len(offsets), len(want))
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("dayOffsets[%d] = %d, want %d", i, offsets[i], want[i])
		}
	}
}

func TestPatternKeyDistinguishesVectors(t *testing.T) {
	k1 := patternKey([]int{600, 660, 720, 780})
	k2 := patternKey([]int{600, 660, 720, 780})
	k3 := patternKey([]int{601, 660, 720, 780})

	if k1 != k2 {
		t.Error("patternKey should be equal for equal vectors")
	}
	if k1 == k3 {
		t.Error("patternKey should differ for different vectors")
	}
}

func TestComputeDayPatternNoTimezoneIsIdentity(t *testing.T) {
	a := &graph.StationNode{ID: "A"}
	b := &graph.StationNode{ID: "B"}
	c := &graph.StationNode{ID: "C"}
	route := &schedule.Route{
		Stations:   []*schedule.Station{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		InAllowed:  []bool{true, true, true},
		OutAllowed: []bool{true, true, true},
	}
	svc := &schedule.Service{
		Route: route,
		Times: []int{0, 600, 660, 720, 780, 0},
	}

	b2 := &builder{opts: DefaultOptions(), firstDay: 0}
	relUTC, initialMotisDay, initialShift, ok := b2.computeDayPattern(svc, []*graph.StationNode{a, b, c}, 0)
	if !ok {
		t.Fatal("computeDayPattern should succeed for a simple monotonic no-timezone service")
	}
	if initialShift != b2.opts.ScheduleOffsetDays {
		t.Errorf("initialShift = %d, want %d", initialShift, b2.opts.ScheduleOffsetDays)
	}
	if initialMotisDay != b2.opts.ScheduleOffsetDays {
		t.Errorf("initialMotisDay = %d, want %d", initialMotisDay, b2.opts.ScheduleOffsetDays)
	}
	want := []int{600, 660, 720, 780}
	if len(relUTC) != len(want) {
		t.Fatalf("relUTC = %v, want length %d", relUTC, len(want))
	}
	for i := range want {
		if relUTC[i] != want[i] {
			t.Errorf("relUTC[%d] = %d, want %d", i, relUTC[i], want[i])
		}
	}
}

func TestComputeDayPatternRejectsNonMonotonicLocalTimes(t *testing.T) {
	a := &graph.StationNode{ID: "A"}
	b := &graph.StationNode{ID: "B"}
	svc := &schedule.Service{
		Route: &schedule.Route{Stations: []*schedule.Station{{ID: "A"}, {ID: "B"}}},
		// Arrival before departure, and no uniform minute shift across the
		// full retry budget can restore monotonicity since both times sit
		// far from a day boundary.
		Times: []int{0, 800, 100, 0},
	}

	b2 := &builder{opts: DefaultOptions(), firstDay: 0}
	_, _, _, ok := b2.computeDayPattern(svc, []*graph.StationNode{a, b}, 0)
	if ok {
		t.Error("computeDayPattern should fail to find a monotonic fold for a genuinely reversed service")
	}
}
