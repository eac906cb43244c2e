package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/lifecycle"
	"civicworks-be/models"
	"civicworks-be/store"
)

var (
	engine    *lifecycle.Service
	dataStore *store.Mongo
)

// Init wires the handlers to the lifecycle engine and its store.
func Init(svc *lifecycle.Service, st *store.Mongo) {
	engine = svc
	dataStore = st
}

// currentActor reads the authenticated identity and role set by the auth
// middleware. Returns false after writing the response when absent.
func currentActor(c *gin.Context) (lifecycle.Actor, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return lifecycle.Actor{}, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDVal.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return lifecycle.Actor{}, false
	}

	role := ""
	if roleVal, exists := c.Get("role"); exists {
		role, _ = roleVal.(string)
	}

	return lifecycle.Actor{ID: userID, Role: models.Role(role)}, true
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	var (
		validation *lifecycle.ValidationError
		notFound   *lifecycle.NotFoundError
		conflict   *lifecycle.StateConflictError
		raced      *lifecycle.ConcurrentModificationError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Msg})
	case errors.As(err, &raced):
		c.JSON(http.StatusConflict, gin.H{"error": raced.Msg, "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
