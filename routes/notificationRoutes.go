package routes

import (
	"civicworks-be/controllers"
	"civicworks-be/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the notification inbox routes
func NotificationRoutes(r *gin.Engine) {
	notifications := r.Group("/api/notifications", middlewares.AuthMiddleware())
	{
		notifications.GET("/", controllers.GetNotifications)
		notifications.PUT("/:id/read", controllers.MarkNotificationRead)
		notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
	}
}
