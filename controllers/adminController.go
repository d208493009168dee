package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/services"
)

type AdminController struct {
	service *services.ComplaintService
}

func NewAdminController(service *services.ComplaintService) *AdminController {
	return &AdminController{service: service}
}

// GetStats returns dashboard totals.
func (ac *AdminController) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	stats, err := ac.service.Stats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
