package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authUtils "civicworks-be/utils"
)

func optionalAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", OptionalAuthMiddleware(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("role")
		c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
	})
	return r
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := optionalAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":null`)
}

func TestOptionalAuthSetsIdentityFromBearerToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := optionalAuthRouter()

	token, err := authUtils.GenerateAndSetToken("64b7f3a1e4b0c2d3f4a5b6c7", "citizen")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"64b7f3a1e4b0c2d3f4a5b6c7"`)
	assert.Contains(t, w.Body.String(), `"role":"citizen"`)
}

func TestOptionalAuthIgnoresInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := optionalAuthRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":null`)
}
