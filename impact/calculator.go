// Package impact computes the environmental/social benefit attributed to
// resolving a civic issue. The calculator is a pure function of the issue
// category and the elapsed time between report and closure.
package impact

import (
	"math"
	"time"

	"civicworks-be/models"
)

// Per-category constants for the benefit formulas.
const (
	waterLitersPerMinute = 15.0
	garbageAvgWeightKg   = 25.0
	garbageCO2PerKg      = 0.8
	potholeCO2PerHour    = 10.0
	signalFuelPerHour    = 0.3
	streetlightSafety    = 10.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate maps (category, elapsed hours) to an impact vector. Unknown
// categories yield the zero vector. Negative elapsed hours are treated as
// zero; callers are expected to clamp and flag upstream timestamp anomalies.
func Calculate(category models.IssueCategory, elapsedHours float64) models.ImpactVector {
	if elapsedHours < 0 {
		elapsedHours = 0
	}

	var v models.ImpactVector

	switch category {
	case models.WaterLeakage:
		v.WaterSaved = round2(waterLitersPerMinute * 60 * elapsedHours)
	case models.GarbageDump:
		v.WasteRemoved = garbageAvgWeightKg
		v.CO2Reduced = round2(garbageAvgWeightKg * garbageCO2PerKg)
	case models.Pothole:
		// emission-reduction proxy
		v.CO2Reduced = round2(potholeCO2PerHour * elapsedHours)
	case models.TrafficSignalFailure:
		v.FuelSaved = round2(signalFuelPerHour * elapsedHours)
	case models.BrokenStreetlight:
		v.SafetyScore = streetlightSafety
	}

	return v
}

// ElapsedHours derives the duration between report and closure. A zero
// report time yields zero. A closure before the report time also yields
// zero and reports the anomaly to the caller.
func ElapsedHours(reportedAt, closedAt time.Time) (hours float64, anomaly bool) {
	if reportedAt.IsZero() {
		return 0, false
	}
	h := closedAt.Sub(reportedAt).Hours()
	if h < 0 {
		return 0, true
	}
	return h, false
}
