package routes

import (
	"civicworks-be/controllers"
	"civicworks-be/middlewares"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin dashboard routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin",
		middlewares.AuthMiddleware(),
		middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", controllers.GetUsers)
		admin.GET("/workers", controllers.GetWorkers)
		admin.GET("/user-stats", controllers.GetUserStats)
	}
}
