package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// ComplaintRoutes sets up the complaint routes. createLimit guards complaint creation.
func ComplaintRoutes(r *gin.Engine, gate *middlewares.AuthGate, createLimit gin.HandlerFunc, cc *controllers.ComplaintController) {
	complaints := r.Group("/api/complaints", gate.AuthMiddleware())
	{
		complaints.POST("", createLimit, cc.CreateComplaint)
		complaints.GET("/my", cc.GetMyComplaints)
		complaints.GET("", middlewares.RequireAdmin(), cc.GetAllComplaints)
		complaints.GET("/trends", middlewares.RequireAdmin(), cc.GetComplaintTrends)
		complaints.PATCH("/:id", middlewares.RequireAdmin(), cc.UpdateComplaintStatus)
		complaints.DELETE("/:id", cc.DeleteComplaint)
	}
}
