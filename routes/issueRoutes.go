package routes

import (
	"civicworks-be/controllers"
	"civicworks-be/middlewares"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue lifecycle and vote routes
func IssueRoutes(r *gin.Engine) {
	issue := r.Group("/api/issue")
	{
		issue.GET("/public", controllers.GetPublicIssues)

		issue.POST("/create",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleCitizen),
			middlewares.IssueRateLimiter(5),
			controllers.CreateIssue)

		issue.GET("/all",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleAdmin),
			controllers.GetAllIssues)

		issue.GET("/my", middlewares.AuthMiddleware(), controllers.GetMyIssues)
		issue.GET("/:id", middlewares.AuthMiddleware(), controllers.GetIssue)

		issue.PUT("/verify",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleAdmin),
			controllers.VerifyIssue)

		issue.PUT("/assign",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleAdmin),
			controllers.AssignIssue)

		issue.PUT("/update-status", middlewares.AuthMiddleware(), controllers.UpdateIssueStatus)

		issue.PUT("/close",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleAdmin),
			controllers.CloseIssue)

		issue.DELETE("/:id",
			middlewares.AuthMiddleware(),
			middlewares.RequireRoles(models.RoleAdmin),
			controllers.PurgeIssue)

		issue.POST("/:id/upvote", middlewares.AuthMiddleware(), controllers.UpvoteIssue)
		issue.DELETE("/:id/upvote", middlewares.AuthMiddleware(), controllers.RemoveUpvote)
		issue.GET("/:id/votes", middlewares.OptionalAuthMiddleware(), controllers.GetVoteCount)
	}
}
