// Package geo holds the pure geographic helpers used by discovery: great-circle
// distance, unit conversion and address normalisation.
package geo

import (
	"math"
	"strconv"

	"github.com/octobees/catering-leads/internal/entity"
)

const (
	// EarthRadiusMiles is the mean Earth radius used by DistanceMiles.
	EarthRadiusMiles = 3959.0
	// MetersPerMile converts search radii for the Places API.
	MetersPerMile = 1609.34
)

// DistanceMiles returns the haversine great-circle distance between a and b.
func DistanceMiles(a, b entity.Coordinate) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

// MilesToMeters converts a radius in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// RoundTenth rounds to one decimal place.
func RoundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}

// FormatMiles renders a distance like "2.5 miles" using the shortest representation.
func FormatMiles(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + " miles"
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
