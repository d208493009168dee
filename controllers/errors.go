package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/apperrors"
)

// respondError writes the mapped error body. Internal details go to the log only.
func respondError(c *gin.Context, err error) {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		log.Printf("Error in %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func complaintIDParam(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperrors.NewHTTPError(http.StatusBadRequest, "Invalid complaint ID")
	}
	return id, nil
}
