package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicworks-be/models"
)

// RequireRoles rejects requests whose token role is not in the allowed set.
// Must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No role in token"})
			c.Abort()
			return
		}

		role, ok := roleVal.(string)
		if !ok || !allowed[models.Role(role)] {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}
