package schedule

import (
	"fmt"
	"time"

	// Embeds the full IANA timezone database so DST-season resolution
	// below works the same on a minimal container image as it does on a
	// host with a system tzdata install.
	_ "time/tzdata"
)

// ResolveTimezone builds a Timezone for an IANA zone name (e.g.
// "Europe/Berlin") by sampling its UTC offset across [begin, begin+days),
// expressed in motis-minutes relative to begin (§6 Constants). Feed
// adapters that only carry IANA names rather than pre-split general/DST
// offsets (GTFS's agency_timezone/stop_timezone) call this once per
// distinct zone rather than teaching the builder about IANA data itself.
//
// At most one contiguous season of a differing offset is detected within
// the horizon; a zone with more than one transition in range (e.g. a
// horizon spanning two DST switches) keeps only the first.
func ResolveTimezone(ianaName string, begin time.Time, days int) (*Timezone, error) {
	if ianaName == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(ianaName)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", ianaName, err)
	}

	offsetAt := func(day int) int {
		t := time.Date(begin.Year(), begin.Month(), begin.Day(), 12, 0, 0, 0, loc).AddDate(0, 0, day)
		_, offsetSeconds := t.Zone()
		return offsetSeconds / 60
	}

	general := offsetAt(0)

	seasonBegin, seasonEnd, seasonOffset := -1, -1, 0
	for d := 0; d < days; d++ {
		off := offsetAt(d)
		switch {
		case off != general && seasonBegin < 0:
			seasonBegin = d
			seasonOffset = off
		case off == general && seasonBegin >= 0 && seasonEnd < 0:
			seasonEnd = d
		}
	}
	if seasonBegin >= 0 && seasonEnd < 0 {
		seasonEnd = days
	}

	tz := &Timezone{GeneralOffset: general}
	if seasonBegin >= 0 {
		tz.Season = &DSTSeason{
			Begin:  seasonBegin * 1440,
			End:    seasonEnd * 1440,
			Offset: seasonOffset,
		}
	}
	return tz, nil
}
