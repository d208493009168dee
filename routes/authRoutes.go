package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, gate *middlewares.AuthGate) {
	auth := r.Group("/api/auth")
	{
		auth.GET("/me", gate.AuthMiddleware(), controllers.GetMe)
	}
}
