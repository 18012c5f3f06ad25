package query

import (
	"math"
	"sort"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle (haversine) distance in kilometres.
func Distance(a, b GeoPoint) float64 {
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(haversine(a, b))))
}

func haversine(a, b GeoPoint) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	s1 := math.Sin(dLat / 2)
	s2 := math.Sin(dLon / 2)
	return s1*s1 + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*s2*s2
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// NearestFirstSQL returns an ORDER BY expression that sorts rows with
// latitude/longitude columns by great-circle distance from p. The
// expression is the haversine term, which grows monotonically with the
// distance, so no ASIN is needed. Args must be bound in order.
func NearestFirstSQL(p GeoPoint) (string, []any) {
	const expr = "(POWER(SIN(RADIANS(latitude - ?) / 2), 2)" +
		" + COS(RADIANS(?)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - ?) / 2), 2)) ASC"
	return expr, []any{p.Lat, p.Lat, p.Lon}
}

// SortCatalogByDistance orders entries nearest first. Entries without
// coordinates must have been filtered out already; any left over sort last.
func SortCatalogByDistance(entries []model.CatalogEntry, p GeoPoint) {
	dist := func(e model.CatalogEntry) float64 {
		if e.Latitude == nil || e.Longitude == nil {
			return math.Inf(1)
		}
		return Distance(p, GeoPoint{Lat: *e.Latitude, Lon: *e.Longitude})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return dist(entries[i]) < dist(entries[j])
	})
}
