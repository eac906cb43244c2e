package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicworks-be/config"
	"civicworks-be/lifecycle"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIssue reports a new issue on behalf of the authenticated citizen
func CreateIssue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"required,max=200"`
		Description string  `json:"description" binding:"required,max=1000"`
		Category    string  `json:"category" binding:"required"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		ImageURL    *string `json:"imageUrl,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := engine.Report(ctx, actor, lifecycle.ReportInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    models.Location{Lat: input.Lat, Lng: input.Lng},
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetAllIssues lists every issue for the admin dashboard with filtering
// and pagination
func GetAllIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	category := c.Query("category")
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{}
	if category != "" && category != "all" {
		filter["category"] = category
	}
	if status != "" && status != "all" {
		filter["status"] = status
	}

	issueCollection := config.GetCollection("issues")

	totalCount, err := issueCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count issues"})
		return
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := issueCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": totalCount,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetPublicIssues returns a map-friendly subset of issues without PII.
// No authentication required.
func GetPublicIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	projection := bson.M{
		"title":       1,
		"description": 1,
		"category":    1,
		"location":    1,
		"status":      1,
		"imageUrl":    1,
		"createdAt":   1,
	}

	issueCollection := config.GetCollection("issues")
	cursor, err := issueCollection.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	type publicIssue struct {
		ID          primitive.ObjectID `bson:"_id" json:"id"`
		Title       string             `bson:"title" json:"title"`
		Description string             `bson:"description" json:"description"`
		Category    string             `bson:"category" json:"category"`
		Location    models.Location    `bson:"location" json:"location"`
		Status      string             `bson:"status" json:"status"`
		ImageURL    *string            `bson:"imageUrl" json:"imageUrl,omitempty"`
		CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	}

	var issues []publicIssue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	c.JSON(http.StatusOK, issues)
}

// GetMyIssues lists the authenticated user's reported issues
func GetMyIssues(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := issueCollection.Find(ctx, bson.M{"reportedBy": actor.ID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	c.JSON(http.StatusOK, issues)
}

// GetIssue returns one issue together with its audit timeline
func GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := dataStore.GetIssue(ctx, issueID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	timeline, err := engine.Timeline(ctx, issueID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":    issue,
		"timeline": timeline,
	})
}

// VerifyIssue moves a reported issue to VERIFIED (admin)
func VerifyIssue(c *gin.Context) {
	transitionHandler(c, func(ctx context.Context, actor lifecycle.Actor, issueID primitive.ObjectID) error {
		return engine.Verify(ctx, actor, issueID)
	}, models.Verified)
}

// AssignIssue assigns a worker to an issue (admin)
func AssignIssue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input struct {
		IssueID  string `json:"issueId" binding:"required"`
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(input.IssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}
	workerID, err := primitive.ObjectIDFromHex(input.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid worker ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := engine.Assign(ctx, actor, issueID, workerID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": models.Assigned})
}

// UpdateIssueStatus is the generic status transition endpoint. Role gates
// and the transition table still apply.
func UpdateIssueStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input struct {
		IssueID string `json:"issueId" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(input.IssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := engine.UpdateStatus(ctx, actor, issueID, models.IssueStatus(input.Status)); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": input.Status})
}

// CloseIssue moves a resolved issue to CLOSED and settles impact
// accounting (admin)
func CloseIssue(c *gin.Context) {
	transitionHandler(c, func(ctx context.Context, actor lifecycle.Actor, issueID primitive.ObjectID) error {
		return engine.Close(ctx, actor, issueID)
	}, models.Closed)
}

// PurgeIssue hard-deletes an issue and everything referencing it (admin)
func PurgeIssue(c *gin.Context) {
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

	if err := engine.Purge(ctx, actor, issueID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue purged"})
}

// transitionHandler shares the issueId-payload plumbing of the single-step
// transition endpoints.
func transitionHandler(c *gin.Context, op func(context.Context, lifecycle.Actor, primitive.ObjectID) error, target models.IssueStatus) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input struct {
		IssueID string `json:"issueId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(input.IssueID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := op(ctx, actor, issueID); err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": target})
}
