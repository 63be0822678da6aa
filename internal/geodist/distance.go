// Package geodist computes the spatiotemporal distance between photos and the
// pairwise distance matrix fed to the clustering stage.
package geodist

import (
	"math"

	"eventsort/internal/photo"
)

// EarthRadiusKm is the mean radius of the spherical earth model.
const EarthRadiusKm = 6371.009

const secondsPerHour = 3600

// GreatCircleKm returns the great-circle distance in kilometres between two
// positions given in decimal degrees. The haversine terms are each symmetric
// in a and b, so swapping the arguments yields the identical float.
func GreatCircleKm(a, b photo.Coordinates) float64 {
	const rad = math.Pi / 180
	sinDLat := math.Sin((b.Lat - a.Lat) * rad / 2)
	sinDLon := math.Sin((b.Lon - a.Lon) * rad / 2)
	h := sinDLat*sinDLat + math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*sinDLon*sinDLon
	h = min(max(h, 0), 1)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Distance combines kilometres apart and hours apart into one unweighted
// score. Records without coordinates or timestamps contribute zero for the
// missing component.
func Distance(a, b photo.Record) float64 {
	var d float64
	ca, okA := a.Coordinates()
	cb, okB := b.Coordinates()
	if okA && okB {
		d = GreatCircleKm(ca, cb)
	}
	ta, okA := a.Timestamp()
	tb, okB := b.Timestamp()
	if okA && okB {
		dt := ta - tb
		if dt < 0 {
			dt = -dt
		}
		d += float64(dt) / secondsPerHour
	}
	return d
}
