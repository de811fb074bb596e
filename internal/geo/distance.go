// Package geo holds the great-circle helpers used for recipient distance and ETA.
package geo

import (
	"fmt"
	"math"
)

const (
	EarthRadiusKm      = 6371.0
	DefaultAvgSpeedKmh = 40.0
)

// HaversineDistanceKm returns the great-circle distance between two points in kilometres.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push a slightly past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ETAMinutes is a naive travel estimate: distance over a constant speed, rounded to whole minutes.
func ETAMinutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultAvgSpeedKmh
	}
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return 0
	}
	return int(math.Round(distanceKm / avgSpeedKmh * 60))
}

func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// FormatCoordinates is the address used when reverse geocoding is unavailable.
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// FormatDistance renders metres below 1 km and kilometres above.
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%d m", int(math.Round(distanceKm*1000)))
	}
	return fmt.Sprintf("%.1f km", distanceKm)
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
