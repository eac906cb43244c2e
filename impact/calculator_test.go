package impact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"civicworks-be/models"
)

func TestCalculateWaterLeakage(t *testing.T) {
	v := Calculate(models.WaterLeakage, 2)

	assert.Equal(t, 1800.00, v.WaterSaved)
	assert.Zero(t, v.CO2Reduced)
	assert.Zero(t, v.WasteRemoved)
	assert.Zero(t, v.FuelSaved)
	assert.Zero(t, v.SafetyScore)
}

func TestCalculateGarbageDump(t *testing.T) {
	for _, hours := range []float64{0, 1, 48, 1000} {
		v := Calculate(models.GarbageDump, hours)
		assert.Equal(t, 25.0, v.WasteRemoved)
		assert.Equal(t, 20.0, v.CO2Reduced)
		assert.Zero(t, v.WaterSaved)
	}
}

func TestCalculatePothole(t *testing.T) {
	v := Calculate(models.Pothole, 3.333)
	assert.Equal(t, 33.33, v.CO2Reduced)
}

func TestCalculateTrafficSignalFailure(t *testing.T) {
	v := Calculate(models.TrafficSignalFailure, 10)
	assert.Equal(t, 3.0, v.FuelSaved)
}

func TestCalculateBrokenStreetlight(t *testing.T) {
	v := Calculate(models.BrokenStreetlight, 5)
	assert.Equal(t, 10.0, v.SafetyScore)
	assert.Zero(t, v.CO2Reduced)
}

func TestCalculateUnknownCategory(t *testing.T) {
	for _, category := range []models.IssueCategory{models.OtherCategory, "Unknown", ""} {
		v := Calculate(category, 12)
		assert.Equal(t, models.ImpactVector{}, v)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	first := Calculate(models.WaterLeakage, 7.25)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Calculate(models.WaterLeakage, 7.25))
	}
}

func TestCalculateNegativeElapsedClamps(t *testing.T) {
	v := Calculate(models.WaterLeakage, -5)
	assert.Zero(t, v.WaterSaved)

	v = Calculate(models.Pothole, -1)
	assert.Zero(t, v.CO2Reduced)
}

func TestElapsedHours(t *testing.T) {
	reported := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	hours, anomaly := ElapsedHours(reported, reported.Add(90*time.Minute))
	assert.Equal(t, 1.5, hours)
	assert.False(t, anomaly)

	hours, anomaly = ElapsedHours(time.Time{}, reported)
	assert.Zero(t, hours)
	assert.False(t, anomaly)

	// closure before report is a data anomaly, clamped to zero
	hours, anomaly = ElapsedHours(reported, reported.Add(-time.Hour))
	assert.Zero(t, hours)
	assert.True(t, anomaly)
}
