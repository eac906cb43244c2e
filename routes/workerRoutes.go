package routes

import (
	"civicworks-be/controllers"
	"civicworks-be/middlewares"
	"civicworks-be/models"

	"github.com/gin-gonic/gin"
)

// WorkerRoutes sets up the worker task routes
func WorkerRoutes(r *gin.Engine) {
	worker := r.Group("/api/worker",
		middlewares.AuthMiddleware(),
		middlewares.RequireRoles(models.RoleWorker))
	{
		worker.GET("/tasks", controllers.GetTasks)
		worker.PUT("/update-progress", controllers.UpdateProgress)
		worker.PUT("/resolve", controllers.ResolveIssue)
	}
}
