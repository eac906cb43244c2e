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

// GetUsers lists every user for the admin dashboard
func GetUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCollection := config.GetCollection("users")
	findOptions := options.Find().SetProjection(bson.M{"password": 0})

	cursor, err := userCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetWorkers lists the workers available for assignment
func GetWorkers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCollection := config.GetCollection("users")
	findOptions := options.Find().SetProjection(bson.M{"name": 1})

	cursor, err := userCollection.Find(ctx, bson.M{"role": models.RoleWorker}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workers"})
		return
	}
	defer cursor.Close(ctx)

	var workers []models.User
	if err := cursor.All(ctx, &workers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode workers"})
		return
	}

	rows := make([]gin.H, 0, len(workers))
	for _, w := range workers {
		rows = append(rows, gin.H{"id": w.ID, "name": w.Name})
	}

	c.JSON(http.StatusOK, rows)
}

// GetUserStats returns user counts by role
func GetUserStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCollection := config.GetCollection("users")

	total, err := userCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	counts := gin.H{"total": total}
	for _, role := range []models.Role{models.RoleCitizen, models.RoleWorker, models.RoleAdmin} {
		count, err := userCollection.CountDocuments(ctx, bson.M{"role": role})
		if err != nil {
			count = 0
		}
		counts[string(role)+"s"] = count
	}

	c.JSON(http.StatusOK, counts)
}
