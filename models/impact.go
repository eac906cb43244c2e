package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImpactVector is the environmental/social benefit attributed to resolving
// one issue. Computed once at closure and persisted verbatim.
type ImpactVector struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID      primitive.ObjectID `bson:"issueId" json:"issueId"`
	WaterSaved   float64            `bson:"waterSaved" json:"waterSaved"`
	CO2Reduced   float64            `bson:"co2Reduced" json:"co2Reduced"`
	WasteRemoved float64            `bson:"wasteRemoved" json:"wasteRemoved"`
	FuelSaved    float64            `bson:"fuelSaved" json:"fuelSaved"`
	SafetyScore  float64            `bson:"safetyScore" json:"safetyScore"`
}

// GlobalAggregate is the singleton running sum of every persisted
// ImpactVector. Mutated by atomic additive merge only.
type GlobalAggregate struct {
	TotalWaterSaved     float64 `bson:"totalWaterSaved" json:"totalWaterSaved"`
	TotalCO2Reduced     float64 `bson:"totalCo2Reduced" json:"totalCo2Reduced"`
	TotalWasteRemoved   float64 `bson:"totalWasteRemoved" json:"totalWasteRemoved"`
	TotalFuelSaved      float64 `bson:"totalFuelSaved" json:"totalFuelSaved"`
	TotalIssuesResolved int64   `bson:"totalIssuesResolved" json:"totalIssuesResolved"`
}

// Add folds one impact vector into the aggregate
func (g *GlobalAggregate) Add(v ImpactVector) {
	g.TotalWaterSaved += v.WaterSaved
	g.TotalCO2Reduced += v.CO2Reduced
	g.TotalWasteRemoved += v.WasteRemoved
	g.TotalFuelSaved += v.FuelSaved
	g.TotalIssuesResolved++
}
