package gtfsfeed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
	"github.com/travigo/timetablegraph/pkg/util"
)

// gtfsRouteTypeToCategory maps the GTFS route_type enumeration onto the
// short category tokens the builder's category-to-service-class table
// (pkg/timetable/price.go) already understands, so a converted feed gets
// realistic service classes and per-km pricing for free.
var gtfsRouteTypeToCategory = map[int]string{
	0:  "STR", // tram/streetcar
	1:  "U",   // subway/metro
	2:  "RE",  // rail
	3:  "Bus",
	4:  "FER", // ferry
	5:  "STR", // cable tram
	6:  "Other",
	7:  "Other",
	11: "Bus", // trolleybus
	12: "S",   // monorail
}

// ConvertOptions configures one GTFS-to-schedule.Schedule conversion.
type ConvertOptions struct {
	Name string

	// HorizonDays bounds how many days past the earliest calendar start
	// date the converter materializes traffic-day bitfields for. Feeds
	// with calendars spanning more than this are truncated.
	HorizonDays int
}

// Convert builds a normalized schedule.Schedule from a parsed GTFS feed
// (models.go's structs, adapted from the demo GTFS importer).
// Trips with fewer than two stop_times are dropped silently; trips
// referencing a stop_id with no matching stops.txt row, or with
// unparseable times, are dropped and logged rather than failing the
// whole conversion — a malformed row in one trip shouldn't sink an
// otherwise-valid feed.
func Convert(feed *Feed, opts ConvertOptions) (*schedule.Schedule, error) {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 370
	}

	begin, end := calendarHorizon(feed, opts.HorizonDays)

	agencyByID := make(map[string]Agency, len(feed.Agencies))
	for _, a := range feed.Agencies {
		agencyByID[a.ID] = a
	}
	routeByID := make(map[string]Route, len(feed.Routes))
	for _, r := range feed.Routes {
		routeByID[r.ID] = r
	}

	var defaultTZName string
	for _, a := range feed.Agencies {
		if a.Timezone != "" {
			defaultTZName = a.Timezone
			break
		}
	}
	tzCache := make(map[string]*schedule.Timezone)
	resolveTZ := func(name string) *schedule.Timezone {
		if name == "" {
			return nil
		}
		if tz, ok := tzCache[name]; ok {
			return tz
		}
		tz, err := schedule.ResolveTimezone(name, begin, opts.HorizonDays)
		if err != nil {
			log.Warn().Str("timezone", name).Err(err).Msg("could not resolve gtfs timezone, treating stop as UTC")
			tz = nil
		}
		tzCache[name] = tz
		return tz
	}

	// childPlatformCodes groups the platform codes of child stops (any
	// stop with a parent_station, whatever its location_type) by the
	// parent_station they belong to, so the parent station
	// (the one stop_times actually reference once a hierarchy is in use)
	// ends up with every platform grouped under it, not just its own
	// stops.txt row.
	childPlatformCodes := make(map[string][]string)
	for _, s := range feed.Stops {
		if s.Parent != "" && s.PlatformCode != "" {
			childPlatformCodes[s.Parent] = append(childPlatformCodes[s.Parent], s.PlatformCode)
		}
	}

	stationByStopID := make(map[string]*schedule.Station, len(feed.Stops))
	for _, s := range feed.Stops {
		tzName := s.Timezone
		if tzName == "" {
			tzName = defaultTZName
		}
		station := stopToStation(s, opts.Name, resolveTZ(tzName))

		if codes := childPlatformCodes[s.ID]; len(codes) > 0 {
			var own []string
			if len(station.Platforms) > 0 {
				own = []string{station.Platforms[0].Name}
			}
			names := util.RemoveDuplicateStrings(append(own, codes...), nil)
			platforms := make([]*schedule.Platform, len(names))
			for i, name := range names {
				platforms[i] = &schedule.Platform{Name: name}
			}
			station.Platforms = platforms
		}

		stationByStopID[s.ID] = station
	}
	calendarByServiceID := make(map[string]Calendar, len(feed.Calendars))
	for _, c := range feed.Calendars {
		calendarByServiceID[c.ServiceID] = c
	}
	exceptionsByServiceID := make(map[string][]CalendarDate)
	for _, cd := range feed.CalendarDates {
		exceptionsByServiceID[cd.ServiceID] = append(exceptionsByServiceID[cd.ServiceID], cd)
	}

	stopTimesByTrip := make(map[string][]StopTime)
	for _, st := range feed.StopTimes {
		stopTimesByTrip[st.TripID] = append(stopTimesByTrip[st.TripID], st)
	}
	for tripID, times := range stopTimesByTrip {
		sort.Slice(times, func(i, j int) bool { return times[i].StopSequence < times[j].StopSequence })
		stopTimesByTrip[tripID] = times
	}

	trips := feed.Trips
	util.InPlaceFilter(&trips, func(t Trip) bool {
		return len(stopTimesByTrip[t.ID]) >= 2
	})

	routesByKey := make(map[string]*schedule.Route)
	var services []*schedule.Service
	var warnedUnknownStops []string

	for _, trip := range trips {
		stopTimes := stopTimesByTrip[trip.ID]

		stations := make([]*schedule.Station, len(stopTimes))
		ok := true
		for i, st := range stopTimes {
			station := stationByStopID[st.StopID]
			if station == nil {
				if !util.ContainsString(warnedUnknownStops, st.StopID) {
					log.Warn().Str("stop", st.StopID).Msg("gtfs feed references an unknown stop, dropping every trip through it")
					warnedUnknownStops = append(warnedUnknownStops, st.StopID)
				}
				ok = false
				break
			}
			stations[i] = station
		}
		if !ok {
			continue
		}

		route := resolveSharedRoute(routesByKey, stations, stopTimes)

		times, err := tripTimes(stopTimes)
		if err != nil {
			log.Warn().Str("trip", trip.ID).Err(err).Msg("gtfs trip has unparseable times, skipping trip")
			continue
		}

		gtfsRoute := routeByID[trip.RouteID]
		section := &schedule.Section{
			LineID:    firstNonEmpty(gtfsRoute.ShortName, gtfsRoute.ID),
			Category:  categoryFor(gtfsRoute.Type),
			Direction: directionFor(trip.Headsign),
			Provider:  providerFor(agencyByID[gtfsRoute.AgencyID]),
		}
		sections := make([]*schedule.Section, len(stations)-1)
		for i := range sections {
			sections[i] = section
		}

		trafficDays := buildTrafficDays(
			calendarByServiceID[trip.ServiceID],
			exceptionsByServiceID[trip.ServiceID],
			begin, opts.HorizonDays,
		)
		if !trafficDays.AnySetWithin(0, opts.HorizonDays-1) {
			continue
		}

		services = append(services, &schedule.Service{
			Route:       route,
			Sections:    sections,
			Times:       times,
			TrafficDays: trafficDays,
			TripID:      trip.ID,
		})
	}

	return &schedule.Schedule{
		Name:     opts.Name,
		Begin:    begin,
		End:      end,
		Services: services,
	}, nil
}

// resolveSharedRoute interns one *schedule.Route per distinct stop
// sequence (station identity plus pickup/drop-off pattern), so trips
// sharing a physical path share the same Route pointer — the identity
// the builder's addServices groups by for route aggregation.
func resolveSharedRoute(byKey map[string]*schedule.Route, stations []*schedule.Station, stopTimes []StopTime) *schedule.Route {
	var key strings.Builder
	inAllowed := make([]bool, len(stations))
	outAllowed := make([]bool, len(stations))
	for i, st := range stopTimes {
		key.WriteString(stations[i].ID)
		key.WriteByte(':')
		key.WriteString(st.PickupType)
		key.WriteByte(':')
		key.WriteString(st.DropOffType)
		key.WriteByte('|')

		inAllowed[i] = st.PickupType != "1"
		outAllowed[i] = st.DropOffType != "1"
	}

	if r, ok := byKey[key.String()]; ok {
		return r
	}
	r := &schedule.Route{
		Stations:   stations,
		InAllowed:  inAllowed,
		OutAllowed: outAllowed,
	}
	byKey[key.String()] = r
	return r
}

// tripTimes builds the 2*n phantom-padded local-minute vector
// schedule.Service.Times expects from a trip's sorted stop_times.
func tripTimes(stopTimes []StopTime) ([]int, error) {
	n := len(stopTimes)
	times := make([]int, 2*n)
	for i, st := range stopTimes {
		if i > 0 {
			arr, err := parseGTFSTime(st.ArrivalTime)
			if err != nil {
				return nil, fmt.Errorf("stop %d arrival: %w", i, err)
			}
			times[2*i] = arr
		}
		if i < n-1 {
			dep, err := parseGTFSTime(st.DepartureTime)
			if err != nil {
				return nil, fmt.Errorf("stop %d departure: %w", i, err)
			}
			times[2*i+1] = dep
		}
	}
	return times, nil
}

// parseGTFSTime parses a GTFS HH:MM:SS time-of-day, where HH may exceed
// 23 for service continuing past midnight, into whole minutes.
func parseGTFSTime(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("malformed time %q", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return hh*60 + mm, nil
}

func stopToStation(s Stop, feedName string, tz *schedule.Timezone) *schedule.Station {
	var platforms []*schedule.Platform
	if s.PlatformCode != "" {
		platforms = []*schedule.Platform{{Name: s.PlatformCode}}
	}
	return &schedule.Station{
		ID:        s.ID,
		Feed:      feedName,
		Name:      s.Name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  tz,
		Platforms: platforms,
	}
}

func categoryFor(routeType int) *schedule.Category {
	name, ok := gtfsRouteTypeToCategory[routeType]
	if !ok {
		name = "Other"
	}
	return &schedule.Category{Name: name}
}

// maxHeadsignLength caps the free-text trip_headsign field some feeds
// populate with an entire route description rather than a short display
// string.
const maxHeadsignLength = 64

func directionFor(headsign string) *schedule.Direction {
	if headsign == "" {
		return nil
	}
	return &schedule.Direction{Text: util.TrimString(headsign, maxHeadsignLength)}
}

func providerFor(a Agency) *schedule.Provider {
	if a.ID == "" && a.Name == "" {
		return nil
	}
	return &schedule.Provider{ShortName: a.ID, LongName: a.Name, FullName: a.Name}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// calendarHorizon derives the [begin, end) window a converted schedule's
// bitfields are defined over: begin is the earliest start_date or
// exception date in calendar.txt/calendar_dates.txt (today's UTC date if
// none parses), and end is always begin plus horizonDays; the calendars'
// end dates are not consulted.
func calendarHorizon(feed *Feed, horizonDays int) (time.Time, time.Time) {
	var begin time.Time
	for _, c := range feed.Calendars {
		if t, err := parseGTFSDate(c.Start); err == nil {
			if begin.IsZero() || t.Before(begin) {
				begin = t
			}
		}
	}
	for _, cd := range feed.CalendarDates {
		if t, err := parseGTFSDate(cd.Date); err == nil {
			if begin.IsZero() || t.Before(begin) {
				begin = t
			}
		}
	}
	if begin.IsZero() {
		begin = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return begin, begin.AddDate(0, 0, horizonDays)
}

func parseGTFSDate(s string) (time.Time, error) {
	return time.Parse("20060102", s)
}

// buildTrafficDays materializes one day-indexed bitfield from a
// calendar.txt weekday pattern plus calendar_dates.txt add/remove
// exceptions (exception_type 1 adds service, 2 removes it), the GTFS
// equivalent of the raw traffic-day bitmap other feed formats hand the
// builder directly.
func buildTrafficDays(cal Calendar, exceptions []CalendarDate, begin time.Time, horizonDays int) schedule.Bitfield {
	bf := schedule.NewBitfield(horizonDays)

	calStart, startErr := parseGTFSDate(cal.Start)
	calEnd, endErr := parseGTFSDate(cal.End)
	haveCalendar := startErr == nil && endErr == nil

	for d := 0; d < horizonDays; d++ {
		date := begin.AddDate(0, 0, d)
		operating := false
		if haveCalendar && !date.Before(calStart) && !date.After(calEnd) {
			operating = cal.runsOnWeekday(int(date.Weekday()))
		}
		for _, cd := range exceptions {
			excDate, err := parseGTFSDate(cd.Date)
			if err != nil || !excDate.Equal(date) {
				continue
			}
			operating = cd.ExceptionType == 1
		}
		if operating {
			bf.Set(d)
		}
	}
	return bf
}
