package controllers

import (
	"context"
	"net/http"
	"time"

	"civicworks-be/config"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetGlobalImpact returns the running sum of every persisted impact vector
func GetGlobalImpact(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	agg, err := dataStore.GetAggregate(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read aggregate"})
		return
	}

	c.JSON(http.StatusOK, agg)
}

// GetUserImpact sums the impact vectors of the authenticated user's issues
// alongside their points
func GetUserImpact(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")
	cursor, err := issueCollection.Find(ctx, bson.M{"reportedBy": actor.ID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var ids []bson.M
	if err := cursor.All(ctx, &ids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	issueIDs := make([]interface{}, 0, len(ids))
	for _, doc := range ids {
		issueIDs = append(issueIDs, doc["_id"])
	}

	totals := gin.H{
		"waterSaved":   0.0,
		"co2Reduced":   0.0,
		"wasteRemoved": 0.0,
		"fuelSaved":    0.0,
		"safetyScore":  0.0,
	}

	if len(issueIDs) > 0 {
		impactCollection := config.GetCollection("impact_metrics")
		metricCursor, err := impactCollection.Find(ctx, bson.M{"issueId": bson.M{"$in": issueIDs}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve impact metrics"})
			return
		}
		defer metricCursor.Close(ctx)

		var metrics []models.ImpactVector
		if err := metricCursor.All(ctx, &metrics); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode impact metrics"})
			return
		}

		var water, co2, waste, fuel, safety float64
		for _, m := range metrics {
			water += m.WaterSaved
			co2 += m.CO2Reduced
			waste += m.WasteRemoved
			fuel += m.FuelSaved
			safety += m.SafetyScore
		}
		totals = gin.H{
			"waterSaved":   water,
			"co2Reduced":   co2,
			"wasteRemoved": waste,
			"fuelSaved":    fuel,
			"safetyScore":  safety,
		}
	}

	var user models.User
	userCollection := config.GetCollection("users")
	if err := userCollection.FindOne(ctx, bson.M{"_id": actor.ID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals": totals,
		"points": user.Points,
		"level":  user.Level(),
	})
}

// GetLeaderboard returns the top users by points
func GetLeaderboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCollection := config.GetCollection("users")
	findOptions := options.Find().
		SetProjection(bson.M{"name": 1, "points": 1, "role": 1}).
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(20)

	cursor, err := userCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode leaderboard"})
		return
	}

	rows := make([]gin.H, 0, len(users))
	for _, u := range users {
		rows = append(rows, gin.H{
			"id":     u.ID,
			"name":   u.Name,
			"role":   u.Role,
			"points": u.Points,
			"level":  u.Level(),
		})
	}

	c.JSON(http.StatusOK, rows)
}
