// Geometry and risk primitives for the simulation engine. Pure functions;
// anything random takes an explicit *rand.Rand so callers control seeding.
package geo

import (
	"math"
	"math/rand"

	"fusionops-sim/internal/model"
)

// Operating region boundaries (a rough "Europe-ish" box). Every asset and
// waypoint position is clamped into this region.
const (
	LatMin = 35.0
	LatMax = 60.0
	LonMin = -10.0
	LonMax = 30.0
)

// Waypoint hop bounds for route generation.
const (
	routeHopLat = 1.2
	routeHopLon = 1.8
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampLat limits a latitude to the operating region.
func ClampLat(lat float64) float64 { return Clamp(lat, LatMin, LatMax) }

// ClampLon limits a longitude to the operating region.
func ClampLon(lon float64) float64 { return Clamp(lon, LonMin, LonMax) }

// BuildRoute creates a short coherent route of n waypoints starting at
// (lat, lon). Each hop offsets the previous waypoint by a bounded random
// delta and clamps back into the region. Planar interpolation only, not
// geodesics.
func BuildRoute(r *rand.Rand, lat, lon float64, n int) []model.Waypoint {
	route := []model.Waypoint{{lat, lon}}
	curLat, curLon := lat, lon
	for i := 0; i < max(1, n-1); i++ {
		curLat = ClampLat(curLat + (r.Float64()*2-1)*routeHopLat)
		curLon = ClampLon(curLon + (r.Float64()*2-1)*routeHopLon)
		route = append(route, model.Waypoint{curLat, curLon})
	}
	return route
}

// StepToward moves (aLat, aLon) toward (bLat, bLon) by at most stepDeg along
// the straight-line direction. arrived is true when the remaining distance
// is within stepDeg; zero distance counts as arrival.
func StepToward(aLat, aLon, bLat, bLon, stepDeg float64) (lat, lon float64, arrived bool) {
	dLat := bLat - aLat
	dLon := bLon - aLon
	dist := math.Hypot(dLat, dLon)
	if dist <= stepDeg {
		return bLat, bLon, true
	}
	return aLat + dLat/dist*stepDeg, aLon + dLon/dist*stepDeg, false
}

// RiskOf scores an asset's current risk from its status. Base 0.20, raised
// for degraded or offline, clamped to [0,1].
func RiskOf(status string) float64 {
	base := 0.20
	switch status {
	case model.StatusDegraded:
		base += 0.30
	case model.StatusOffline:
		base += 0.55
	}
	return Clamp(base, 0, 1)
}

// SeverityOf maps a risk score to a severity band. Lower bounds are
// inclusive: 0.80 is already critical.
func SeverityOf(risk float64) string {
	switch {
	case risk >= 0.80:
		return model.SeverityCritical
	case risk >= 0.60:
		return model.SeverityHigh
	case risk >= 0.35:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// PriorityOf maps an event severity to an alert priority. Medium and low
// produce no alert; ok is false in that case.
func PriorityOf(severity string) (priority string, ok bool) {
	switch severity {
	case model.SeverityCritical:
		return model.PriorityP1, true
	case model.SeverityHigh:
		return model.PriorityP2, true
	default:
		return "", false
	}
}
