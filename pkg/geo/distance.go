package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great circle distance in km.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// HaversineDistanceMeters is CalculateHaversineDistance in meters.
func HaversineDistanceMeters(latOne, longOne, latTwo, longTwo float64) float64 {
	return CalculateHaversineDistance(latOne, longOne, latTwo, longTwo) * 1000
}

// GetDestinationPoint returns the point reached from (lat, lon) after distKm along bearing.
func GetDestinationPoint(lat, lon, bearing, distKm float64) (float64, float64) {
	p := orbgeo.PointAtBearingAndDistance(orb.Point{lon, lat}, bearing, distKm*1000)
	return p.Lat(), p.Lon()
}
