package timetable

import (
	"math"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// earthRadiusKm is used by distanceKm's haversine formula.
const earthRadiusKm = 6371.0

// distanceKm computes the great-circle distance between two stations'
// coordinates (graph_builder.cc's get_distance, §4.4). Unlike the flat
// point-to-segment distance travigo's ctdf.Location uses for map
// rendering, two timetabled stations are routinely hundreds of
// kilometers apart, so this distance needs the sphere, not the plane.
func distanceKm(from, to *schedule.Station) float64 {
	lat1, lon1 := deg2rad(from.Latitude), deg2rad(from.Longitude)
	lat2, lon2 := deg2rad(to.Latitude), deg2rad(to.Longitude)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

// classByCategoryName maps a category name to its travel class; unknown
// categories map to ClassOther (§4.4).
var classByCategoryName = map[string]graph.ServiceClass{
	"ICE": graph.ClassHighSpeed,
	"IC":  graph.ClassLongDistance,
	"EC":  graph.ClassLongDistance,
	"NJ":  graph.ClassNight,
	"RE":  graph.ClassRegionalFast,
	"RB":  graph.ClassRegional,
	"S":   graph.ClassMetro,
	"U":   graph.ClassSubway,
	"STR": graph.ClassTram,
	"Bus": graph.ClassBus,
	"AIR": graph.ClassAir,
	"FER": graph.ClassShip,
}

func classForCategory(name string) graph.ServiceClass {
	if c, ok := classByCategoryName[name]; ok {
		return c
	}
	return graph.ClassOther
}

// pricePerKm gives the price-per-kilometer multiplier for a travel class.
// Air and high-speed classes command a premium; local/metro classes are
// cheapest per kilometer, matching the fare structure motis_wsp's price
// table sketches.
var pricePerKmByClass = map[graph.ServiceClass]int{
	graph.ClassAir:          30,
	graph.ClassHighSpeed:    24,
	graph.ClassLongDistance: 18,
	graph.ClassNight:        16,
	graph.ClassRegionalFast: 12,
	graph.ClassRegional:     10,
	graph.ClassMetro:        8,
	graph.ClassSubway:       8,
	graph.ClassTram:         6,
	graph.ClassBus:          6,
	graph.ClassShip:         14,
	graph.ClassOther:        10,
}

func pricePerKm(class graph.ServiceClass) int {
	return pricePerKmByClass[class]
}
