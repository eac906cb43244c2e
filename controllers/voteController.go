package controllers

import (
	"context"
	"net/http"
	"time"

	"civicworks-be/config"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UpvoteIssue records the user's upvote on an issue. The unique
// (issueId, userId) index rejects duplicates.
func UpvoteIssue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")
	count, err := issueCollection.CountDocuments(ctx, bson.M{"_id": issueID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	voteCollection := config.GetCollection("votes")
	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		IssueID:   issueID,
		UserID:    actor.ID,
		CreatedAt: time.Now(),
	}

	if _, err := voteCollection.InsertOne(ctx, vote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already voted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
		return
	}

	voteCount, err := voteCollection.CountDocuments(ctx, bson.M{"issueId": issueID})
	if err != nil {
		voteCount = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Vote recorded",
		"voteCount": voteCount,
	})
}

// RemoveUpvote removes the user's upvote from an issue
func RemoveUpvote(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	voteCollection := config.GetCollection("votes")
	res, err := voteCollection.DeleteOne(ctx, bson.M{"issueId": issueID, "userId": actor.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vote not found"})
		return
	}

	voteCount, err := voteCollection.CountDocuments(ctx, bson.M{"issueId": issueID})
	if err != nil {
		voteCount = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Vote removed",
		"voteCount": voteCount,
	})
}

// GetVoteCount returns an issue's vote count and the caller's vote status
func GetVoteCount(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	voteCollection := config.GetCollection("votes")
	voteCount, err := voteCollection.CountDocuments(ctx, bson.M{"issueId": issueID})
	if err != nil {
		voteCount = 0
	}

	userVoted := false
	if userIDStr, exists := c.Get("user_id"); exists {
		if userID, err := primitive.ObjectIDFromHex(userIDStr.(string)); err == nil {
			count, err := voteCollection.CountDocuments(ctx, bson.M{"issueId": issueID, "userId": userID})
			if err == nil && count > 0 {
				userVoted = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"voteCount": voteCount,
		"userVoted": userVoted,
	})
}
