package timetable

import "fmt"

// FatalInputError aborts construction entirely: the input is structurally
// broken in a way no per-service policy can route around (§7).
type FatalInputError struct {
	Feed   string
	Reason string
}

func (e *FatalInputError) Error() string {
	return fmt.Sprintf("fatal input in feed %q: %s", e.Feed, e.Reason)
}

// InvalidServiceTimeError describes a service whose local time sequence
// could not be repaired even after MaxFixOffsetRetries. Build never
// returns it: under Options.SkipInvalid (the default) the offending day is
// skipped; otherwise the day is recorded as a graph.InvalidDay in
// Graph.InvalidDays — build_graph in the source never aborts because of
// this case either.
type InvalidServiceTimeError struct {
	Debug  string
	DayIdx int
	TripID string
}

func (e *InvalidServiceTimeError) Error() string {
	return fmt.Sprintf("invalid service time at %s (day %d, trip %q): local time sequence not monotonic after retries", e.Debug, e.DayIdx, e.TripID)
}

// DuplicateTripIDError describes two services carrying the same
// feed-native trip id (Service.TripID). It is never returned from Build:
// registerService logs a warning and keeps the first trip in
// Graph.Trips.ByStringID; the later trip keeps its primary-id bindings
// (§7, §12.2).
type DuplicateTripIDError struct {
	ID string
}

func (e *DuplicateTripIDError) Error() string {
	return fmt.Sprintf("duplicate trip id %q: keeping first registration", e.ID)
}

// BrokenTripError marks a trip that failed checkTrip's consistency check.
// checkTrip is wired but not called on the default build path (§12.3); a
// caller that does invoke it increments Graph.BrokenTrips rather than
// aborting the build.
type BrokenTripError struct {
	TripID string
	Reason string
}

func (e *BrokenTripError) Error() string {
	return fmt.Sprintf("broken trip %q: %s", e.TripID, e.Reason)
}
