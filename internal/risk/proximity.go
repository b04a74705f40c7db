// proximity.go: classifies a location's accessibility context from mapped
// geographic features. The category feeds the risk multiplier chain.
package risk

import (
	"math"

	"github.com/wildguard/wildguard-go/internal/conf"
)

// Proximity categories ordered by risk. Border areas see the most
// trafficking pressure, remote interior the least.
const (
	ProximityVillage = "village"
	ProximityRoad    = "road"
	ProximityBorder  = "border"
	ProximityRemote  = "remote"
)

// categoryRank orders categories so distance ties resolve toward the
// higher-risk classification.
var categoryRank = map[string]int{
	ProximityVillage: 1,
	ProximityRoad:    2,
	ProximityBorder:  3,
}

// ProximityClassifier resolves a coordinate to a proximity category.
type ProximityClassifier interface {
	Classify(lat, lng float64) string
}

// GeofenceClassifier classifies locations against a configured list of
// mapped features (villages, roads, border posts) with coverage radii.
// Locations outside every feature radius are remote.
type GeofenceClassifier struct {
	features []conf.GeoFeature
}

// NewGeofenceClassifier creates a classifier over the given feature list.
func NewGeofenceClassifier(features []conf.GeoFeature) *GeofenceClassifier {
	valid := make([]conf.GeoFeature, 0, len(features))
	for _, f := range features {
		if _, known := categoryRank[f.Type]; known && f.RadiusKm > 0 {
			valid = append(valid, f)
		}
	}
	return &GeofenceClassifier{features: valid}
}

// Classify returns the category of the nearest feature whose radius covers
// the coordinate, ties broken toward the higher-risk category. When no
// feature covers the coordinate the location is remote.
func (g *GeofenceClassifier) Classify(lat, lng float64) string {
	best := ProximityRemote
	bestDist := math.MaxFloat64

	for i := range g.features {
		f := &g.features[i]
		dist := HaversineKm(lat, lng, f.Latitude, f.Longitude)
		if dist > f.RadiusKm {
			continue
		}
		if dist < bestDist || (dist == bestDist && categoryRank[f.Type] > categoryRank[best]) {
			best = f.Type
			bestDist = dist
		}
	}

	return best
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
