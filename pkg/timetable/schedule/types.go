// Package schedule describes the normalized public-transport schedule that
// feeds the timetable graph builder. Every type here is a plain input
// contract: feed adapters (GTFS, HRD, TransXChange, ...) are responsible for
// populating these values, and nothing in this package mutates them once
// handed to the builder.
package schedule

import "time"

// Schedule is one feed's worth of normalized timetable data.
type Schedule struct {
	Name string `validate:"required"`

	// Begin and End bound the traffic-day horizon this feed's services and
	// bitfields are defined over.
	Begin time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Begin"`

	Services     []*Service
	RuleServices []*RuleService

	// ContentHash identifies the feed's content for the builder's combined
	// hash (§4.9 Finalization, content hash).
	ContentHash uint64
}

// Station is one stop/station as seen by a single feed. Two Stations
// originating from different feeds at the same physical location are linked
// via Equivalent so the duplicate detector (C6) can recognize them.
type Station struct {
	ID   string `validate:"required"`
	Feed string `validate:"required"`
	Name string

	Latitude  float64
	Longitude float64

	TransferTime         time.Duration
	PlatformTransferTime time.Duration

	// Timezone is nil for stations whose local clock is always UTC-offset
	// zero (or whose feed does not carry timezone information).
	Timezone *Timezone

	Platforms []*Platform

	// Local marks a station that no_local_transport should exclude.
	Local bool

	// Equivalent lists other Station values (always from a different feed,
	// per invariant 5) that represent the same real-world location.
	Equivalent []*Station
}

// Platform is a physical platform/track at a Station.
type Platform struct {
	Name string
}

// Timezone carries the general UTC offset for a station plus an optional
// daylight-savings season during which a different offset applies.
type Timezone struct {
	// GeneralOffset is in minutes, e.g. 60 for UTC+1.
	GeneralOffset int
	Season        *DSTSeason
}

// DSTSeason describes one recurring daylight-savings window. Begin and End
// are motis-time minutes (minutes since schedule_begin, see §6 Constants)
// bounding the season within the schedule horizon; a service event that
// falls after Begin and before End uses Offset instead of GeneralOffset.
type DSTSeason struct {
	Begin  int
	End    int
	Offset int
}

// Route is the physical stop sequence a Service runs along, together with
// per-stop enter/exit permissions.
type Route struct {
	Stations   []*Station `validate:"required,min=2"`
	InAllowed  []bool     `validate:"required"`
	OutAllowed []bool     `validate:"required"`
}

// Section is one inter-stop leg of a Service's Route.
type Section struct {
	TrainNr   int
	LineID    string
	Category  *Category
	Direction *Direction
	Provider  *Provider

	Attributes []*Attribute
}

// Category is a service category (e.g. "ICE", "RE", "Bus").
type Category struct {
	Name       string `validate:"required"`
	OutputRule uint8
}

// Direction is either a reference to a station (the direction is "towards
// station X") or free text; exactly one of Station or Text is set.
type Direction struct {
	Station *Station
	Text    string
}

// Provider identifies the operating company.
type Provider struct {
	ShortName string
	LongName  string
	FullName  string
}

// Attribute is a traffic-day-scoped remark attached to a section (e.g.
// "bicycle carriage", "reservation required").
type Attribute struct {
	Info        *AttributeInfo `validate:"required"`
	TrafficDays Bitfield       `validate:"required"`
}

// AttributeInfo is the interned text/code pair an Attribute refers to.
type AttributeInfo struct {
	Code string
	Text string
}

// TrackAssignment gives the per-day candidate platforms for one stop
// position of a Service: the tracks a departure from this stop might use,
// and the tracks an arrival at this stop might use.
type TrackAssignment struct {
	DepTracks []*TrackOption
	ArrTracks []*TrackOption
}

// TrackOption is one candidate platform, valid on the days TrafficDays
// marks.
type TrackOption struct {
	Name        string
	TrafficDays Bitfield
}

// DebugInfo traces a Service back to the line(s) of its source feed file,
// for diagnostics.
type DebugInfo struct {
	File     string
	LineFrom int
	LineTo   int
}

// Service is one published trip pattern: a stop sequence, local clock
// times at every stop, and the days it operates.
type Service struct {
	Route    *Route     `validate:"required"`
	Sections []*Section `validate:"required,min=1"`

	// Times holds 2*len(Route.Stations) local minutes: arrival then
	// departure at every stop, with the first arrival and the last
	// departure unused (phantom values mirroring the source format). Index
	// 2*i is the arrival at stop i, 2*i+1 is the departure at stop i.
	Times []int `validate:"required"`

	// Tracks has one entry per stop position, or is nil if the feed does
	// not provide per-day platform assignments.
	Tracks []*TrackAssignment

	TrafficDays Bitfield `validate:"required"`

	// TripID is an optional feed-native string trip identifier (e.g. a
	// GTFS trip_id), used only for the diagnostic side map of §12.2.
	TripID string

	Debug *DebugInfo

	SeqNumbers []uint32

	// InitialTrainNr is the train number the feed reports before any
	// mid-trip renumbering; it seeds the alias primary id of §12.1.
	InitialTrainNr int

	// RuleParticipant marks a service that a rule-service merge will
	// consume; when Options.ApplyRules is set the builder skips these and
	// leaves them for the external rule-service collaborator.
	RuleParticipant bool
}

// RuleService is the tagged-variant "polymorphic participant" of §9 Design
// Notes: a merge rule naming two or more services (by route-and-train-
// number reference) that should be combined into shared connection info.
// Rule-service merging itself is an external collaborator (§1 Out of
// scope); this type only carries the reference so graph_builder-shaped
// callers can route rule participants elsewhere.
type RuleService struct {
	Name         string
	Participants []RuleParticipant
}

// RuleParticipant is either a loose reference to a Service section or a
// reference to an already-built graph route node — the tagged variant from
// §9 Design Notes ("Polymorphic participant"). Exactly one of Service or
// RouteNodeRef is non-nil.
type RuleParticipant struct {
	Service     *Service
	SectionIdx  int
	RouteNodeRef any
}
