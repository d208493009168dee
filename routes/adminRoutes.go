package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

func AdminRoutes(r *gin.Engine, gate *middlewares.AuthGate, ac *controllers.AdminController) {
	admin := r.Group("/api/admin", gate.AuthMiddleware(), middlewares.RequireAdmin())
	{
		admin.GET("/stats", ac.GetStats)
	}
}
