package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/apperrors"
	"civicfix-be/middlewares"
)

// GetMe returns the principal resolved from the caller's token.
func GetMe(c *gin.Context) {
	principal := middlewares.CurrentPrincipal(c)
	if principal == nil {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, principal)
}
