package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"civicfix-be/apperrors"
	"civicfix-be/middlewares"
	"civicfix-be/services"
)

const requestTimeout = 10 * time.Second

type ComplaintController struct {
	service *services.ComplaintService
}

func NewComplaintController(service *services.ComplaintService) *ComplaintController {
	return &ComplaintController{service: service}
}

// CreateComplaint files a complaint for the caller.
func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	var input services.CreateComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.NewHTTPError(http.StatusBadRequest, "Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	complaint, err := cc.service.Create(ctx, input, middlewares.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// GetAllComplaints lists every complaint with its owner, newest first.
func (cc *ComplaintController) GetAllComplaints(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	complaints, err := cc.service.ListAll(ctx, middlewares.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// GetMyComplaints lists the caller's own complaints.
func (cc *ComplaintController) GetMyComplaints(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	complaints, err := cc.service.ListMine(ctx, middlewares.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// UpdateComplaintStatus records an admin status change and notifies the owner.
// The context is not tied to the request so a disconnecting client cannot
// interrupt a write or a notification already in progress.
func (cc *ComplaintController) UpdateComplaintStatus(c *gin.Context) {
	id, err := complaintIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input services.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.NewHTTPError(http.StatusBadRequest, "Invalid request body"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := cc.service.UpdateStatus(ctx, id, input, middlewares.CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (cc *ComplaintController) DeleteComplaint(c *gin.Context) {
	id, err := complaintIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := cc.service.Delete(ctx, id, middlewares.CurrentPrincipal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
}

// GetComplaintTrends returns daily complaint counts. ?days overrides the default window.
func (cc *ComplaintController) GetComplaintTrends(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			respondError(c, apperrors.NewHTTPError(http.StatusBadRequest, "days must be between 1 and 90"))
			return
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	trends, err := cc.service.Trends(ctx, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}
