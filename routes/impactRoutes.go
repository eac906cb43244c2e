package routes

import (
	"civicworks-be/controllers"
	"civicworks-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ImpactRoutes sets up the impact and leaderboard routes
func ImpactRoutes(r *gin.Engine) {
	impact := r.Group("/api/impact")
	{
		impact.GET("/global", controllers.GetGlobalImpact)
		impact.GET("/leaderboard", controllers.GetLeaderboard)
		impact.GET("/user", middlewares.AuthMiddleware(), controllers.GetUserImpact)
	}
}
