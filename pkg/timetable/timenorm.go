package timetable

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// pattern is one distinct relative-UTC time vector a service produces
// across its operating days (§4.3 C3), together with the days that
// produced it.
type pattern struct {
	relUTC    []int
	shift     int
	localDays schedule.Bitfield
	motisDays schedule.Bitfield
}

func patternKey(relUTC []int) string {
	var sb strings.Builder
	for i, v := range relUTC {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// serviceTimesToUTC folds a service's local times through each stop
// station's timezone into relative-UTC time patterns, one per distinct
// resulting time vector, grouping the operating days that produce each
// pattern. It returns (nil, false) if the service never runs within
// [firstDay, lastDay] (graph_builder.cc service_times_to_utc).
//
// A day whose local sequence can't be made monotonic even after
// MaxFixOffsetRetries is handled per Options.SkipInvalid: dropped
// silently, or recorded under the empty-pattern key and reported via
// diag. This restarts the whole day from stop 1 on every retry — the
// behavior spec.md documents, not the source's narrower single-index
// retry (see DESIGN.md).
func (b *builder) serviceTimesToUTC(
	svc *schedule.Service, stations []*graph.StationNode,
) (map[string]*pattern, bool, []invalidDayReport) {
	numTimes := len(svc.Times)
	dayOffset := svc.Times[numTimes-2] / MinutesADay
	startIdx := max(0, b.firstDay-dayOffset)
	endIdx := min(b.opts.MaxDays, b.lastDay)

	if !svc.TrafficDays.AnySetWithin(startIdx, endIdx) {
		return nil, false, nil
	}

	patterns := make(map[string]*pattern)
	var diags []invalidDayReport

	for dayIdx := startIdx; dayIdx <= endIdx; dayIdx++ {
		if !svc.TrafficDays.Test(dayIdx) {
			continue
		}

		relUTC, initialMotisDay, initialShift, ok := b.computeDayPattern(svc, stations, dayIdx)
		if !ok {
			if b.opts.SkipInvalid {
				continue
			}
			log.Warn().Int("day", dayIdx).Str("trip_id", svc.TripID).
				Msg("invalid service time, day recorded under the empty pattern key")
			diags = append(diags, invalidDayReport{DayIdx: dayIdx, TripID: svc.TripID})
			key := patternKey(nil)
			p := patterns[key]
			if p == nil {
				p = &pattern{}
				patterns[key] = p
			}
			p.localDays.Set(dayIdx)
			continue
		}

		key := patternKey(relUTC)
		p := patterns[key]
		if p == nil {
			p = &pattern{relUTC: relUTC, shift: initialShift}
			patterns[key] = p
		}
		p.localDays.Set(dayIdx)
		p.motisDays.Set(initialMotisDay)
	}

	if len(patterns) == 0 {
		return nil, false, diags
	}
	return patterns, true, diags
}

type invalidDayReport struct {
	DayIdx int
	TripID string
}

// computeDayPattern runs the per-day fold for one operating day, retrying
// with an incrementing fixOffset whenever the resulting local sequence is
// non-monotonic or a DST-season event precedes the season's start.
func (b *builder) computeDayPattern(
	svc *schedule.Service, stations []*graph.StationNode, dayIdx int,
) (relUTC []int, initialMotisDay, initialShift int, ok bool) {
	numTimes := len(svc.Times)
	relUTC = make([]int, numTimes-2)

	for retry := 0; retry <= MaxFixOffsetRetries; retry++ {
		fixOffset := retry * fixOffsetStep
		initialMotisDay, initialShift = 0, 0
		valid := true

		for i := 1; i < numTimes-1; i++ {
			station := stations[i/2]

			timeWithFix := svc.Times[i] + fixOffset
			localMinute := floorMod(timeWithFix, MinutesADay)
			dOffset := floorDiv(timeWithFix, MinutesADay)
			shift := dOffset - b.firstDay + b.opts.ScheduleOffsetDays
			adjDay := dayIdx + shift

			isSeason, offset, seasonBegin := resolveTimezoneOffset(station.Timezone, adjDay, localMinute)

			preUTC := localMinute - offset
			if preUTC < 0 {
				preUTC += MinutesADay
				adjDay--
				shift--
			}

			if i == 1 {
				initialShift = shift
				initialMotisDay = adjDay
			}

			absUTC := adjDay*MinutesADay + preUTC
			relUTCVal := absUTC - initialMotisDay*MinutesADay

			sortOK := i == 1 || relUTC[i-2] <= relUTCVal
			impossibleTime := isSeason && absUTC < seasonBegin

			if !sortOK || impossibleTime {
				valid = false
				break
			}
			relUTC[i-1] = relUTCVal
		}

		if valid {
			return relUTC, initialMotisDay, initialShift, true
		}
	}
	return nil, 0, 0, false
}

// resolveTimezoneOffset reports whether (adjDay, localMinute) falls in the
// station's DST season, the offset to apply, and the season's absolute
// start minute (used for the impossible-time check).
func resolveTimezoneOffset(tz *schedule.Timezone, adjDay, localMinute int) (inSeason bool, offset, seasonBeginAbs int) {
	if tz == nil {
		return false, 0, 0
	}
	if tz.Season == nil {
		return false, tz.GeneralOffset, 0
	}
	abs := adjDay*MinutesADay + localMinute
	if abs >= tz.Season.Begin && abs < tz.Season.End {
		return true, tz.Season.Offset, tz.Season.Begin
	}
	return false, tz.GeneralOffset, tz.Season.Begin
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// dayOffsets extracts the per-section day component of a relative-UTC
// time vector, one entry per section (day_offsets in graph_builder.cc).
func dayOffsets(relUTC []int) []int {
	offsets := make([]int, len(relUTC)/2)
	for i := 0; i < len(relUTC); i += 2 {
		offsets[i/2] = floorDiv(relUTC[i], MinutesADay)
	}
	return offsets
}
