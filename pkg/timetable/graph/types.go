// Package graph holds the sealed, immutable output of the timetable graph
// builder: station nodes, route nodes, route edges of light connections,
// and the trip index that lets a caller walk from a primary trip id to the
// route edges carrying it. Nothing in this package mutates a Graph once
// the timetable package's Build has returned it; all growth happens
// through the builder's scratch state instead.
package graph

import (
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// ServiceClass is the travel class a full connection belongs to, used for
// price calculation (§4.4).
type ServiceClass uint8

const (
	ClassAir ServiceClass = iota
	ClassHighSpeed
	ClassLongDistance
	ClassNight
	ClassRegionalFast
	ClassRegional
	ClassMetro
	ClassSubway
	ClassTram
	ClassBus
	ClassShip
	ClassOther
)

// StationNode is the graph vertex for one physical station. It owns the
// route nodes that sit at this station and the foot edges leaving it.
type StationNode struct {
	ID   string
	Feed string

	TransferTime         int // minutes
	PlatformTransferTime int // minutes

	Timezone  *schedule.Timezone
	Platforms []*schedule.Platform

	// Equivalent lists other StationNodes (always a different Feed, per
	// invariant 5) representing the same physical location.
	Equivalent []*StationNode

	// Local mirrors schedule.Station.Local (§4.7, P5); no_local_transport
	// filtering reads the schedule.Station field, not this one.
	Local bool

	RouteNodes []*RouteNode

	FootEdges     []*FootEdge
	IncomingEdges []Edge
}

// FootEdge is a walking connection from one station to another (built by
// the external footpath collaborator, §1 Out of scope; the builder only
// attaches reverse adjacency to edges it's handed).
type FootEdge struct {
	To       *StationNode
	Duration int // minutes
}

// PlatformEdge connects a route node to the platform it enters or exits
// through (§4.7 step 2).
type PlatformEdge struct {
	To       *StationNode
	Platform *schedule.Platform
	Duration int // minutes
}

// RouteNode is a route's presence at one station.
type RouteNode struct {
	Route      int
	Station    *StationNode
	InAllowed  bool
	OutAllowed bool

	Edges         []*RouteEdge
	EnterEdges    []*PlatformEdge
	ExitEdges     []*PlatformEdge
	IncomingEdges []Edge
}

// Edge is the minimal directed-edge view needed for reverse adjacency
// (§4.9 step 1): every forward edge — route, platform, or foot — is pushed
// onto its target's IncomingEdges as one of these.
type Edge struct {
	From any
	To   any
	Kind EdgeKind
}

type EdgeKind uint8

const (
	EdgeKindRoute EdgeKind = iota
	EdgeKindPlatformEnter
	EdgeKindPlatformExit
	EdgeKindFoot
)

// RouteEdge is the directed edge between two RouteNodes of the same route.
// Connections is sorted by (departure, arrival) — invariant P1 — and, for
// two adjacent edges of a route, column k always refers to the same trip
// instance (invariant P2/P3), enforced by the route aggregator (C5) before
// the edge is ever built.
type RouteEdge struct {
	From, To    *RouteNode
	Connections []LightConnection
}

// LightConnection is the compact per-section record stored on a route
// edge. Departure/Arrival are minute-of-day values in UTC; the operating
// day is carried entirely by TrafficDays (§3 Data model, light_connection).
type LightConnection struct {
	Departure uint16
	Arrival   uint16

	FullConnection *FullConnection
	TrafficDays    *schedule.Bitfield

	// MergedTripsIdx indexes into Graph.MergedTrips: almost always a
	// single-element slice, but multiple trips can share one light
	// connection when a rule-service merge combines them (§9 Design
	// Notes).
	MergedTripsIdx int
}

// FullConnection is the interned metadata shared by many light
// connections.
type FullConnection struct {
	Class ServiceClass
	Price int

	// DepTrack/ArrTrack index into Graph.Tracks, or -1 if the feed
	// provided no per-day platform assignment for this section (§4.4).
	DepTrack int
	ArrTrack int

	Info *ConnectionInfo
}

// ConnectionInfo is the interned line/category/provider/attribute record a
// FullConnection points to. MergedWith chains sibling infos together when
// a multi-section trip changes train number mid-way (§4.4).
type ConnectionInfo struct {
	LineID      string
	TrainNr     int
	CategoryIdx int
	Direction   *string
	Provider    *Provider

	MergedWith *ConnectionInfo

	Attributes []TrafficDayAttribute
}

// TrafficDayAttribute pairs an interned AttributeInfo with the bitfield-
// store index of the days it applies.
type TrafficDayAttribute struct {
	BitfieldIdx int
	Info        *AttributeInfo
}

// AttributeInfo, Provider and Category are the graph's interned copies of
// the corresponding schedule input types: structurally-equal inputs from
// any number of services collapse onto one of these (invariant P6).
type AttributeInfo struct {
	Code string
	Text string
}

type Provider struct {
	ShortName string
	LongName  string
	FullName  string
}

type Category struct {
	Name       string
	OutputRule uint8
}

// TrackTable is one get_or_create_track result: a table of candidate
// platform names keyed by the bitfield index they apply on (§12.5).
type TrackTable struct {
	Entries []TrackTableEntry
}

type TrackTableEntry struct {
	BitfieldIdx int
	Name        string
}

// FullTripID identifies a trip the way a routing/serving layer looks it up
// by: a primary id (first station, train number, first departure) and a
// secondary id (last station, last arrival, line) that disambiguates
// trips sharing a primary.
type FullTripID struct {
	Primary   PrimaryTripID
	Secondary SecondaryTripID
}

type PrimaryTripID struct {
	FirstStation   string
	TrainNr        int
	FirstDeparture uint16
}

type SecondaryTripID struct {
	LastStation string
	LastArrival uint16
	Line        string
}

// RouteEdgeRef is one entry of a trip's backfilled edge sequence: the
// route edges, in stop order, that this trip rides.
type RouteEdgeRef struct {
	Edge *RouteEdge
}

// TripInfo is one concrete scheduled journey (§GLOSSARY Trip). Edges and
// LconIdx are nil/zero until the route materializer backfills them after
// the owning route is sealed (§4.8 "After route materialization,
// backfill").
type TripInfo struct {
	ID         FullTripID
	Edges      []RouteEdgeRef
	LconIdx    int
	DayOffsets []int
	Debug      schedule.DebugInfo
}

// TripIndex is the global (primary id -> trip) lookup, plus the optional
// GTFS-style string-id side map of §12.2.
type TripIndex struct {
	ByPrimary  []TripBinding
	ByStringID map[string]*TripInfo
}

// TripBinding is one (primary id -> trip) entry. A single TripInfo can
// have more than one TripBinding when a train number changes mid-trip or
// when InitialTrainNr differs from the first section's (§12.1).
type TripBinding struct {
	Primary PrimaryTripID
	Trip    *TripInfo
}

// Graph is the sealed timetable graph: the complete output of the builder.
type Graph struct {
	Stations       []*StationNode
	RouteCount     int
	FirstRouteNode []*RouteNode // indexed by route index

	Trips         TripIndex
	ExpandedTrips [][]*TripInfo

	Bitfields *BitfieldStore
	Tracks    []*TrackTable

	ConnectionInfos []*ConnectionInfo
	FullConnections []*FullConnection
	Categories      []*Category
	Providers       []*Provider
	Attributes      []*AttributeInfo

	MergedTrips [][]*TripInfo

	ScheduleBegin, ScheduleEnd int // motis-minutes, see constants.go

	// Hash is the combined content hash of every input schedule plus the
	// dataset prefixes (§4.9 step 4).
	Hash uint64

	// BrokenTrips counts trips that failed checkTrip's consistency check;
	// the check itself is dormant in the default build path (§12.3).
	BrokenTrips int

	// InvalidDays records the diagnostic empty-vector-key groupings of
	// §4.3 step 3, populated only when SkipInvalid is false.
	InvalidDays []InvalidDay

	LightConnectionCount int
}

// InvalidDay is one diagnostic record of a service-day whose local time
// sequence could not be repaired (§7 InvalidServiceTime, non-fatal path).
type InvalidDay struct {
	Debug  schedule.DebugInfo
	DayIdx int
}
