package middlewares

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/apperrors"
)

// Recovery turns panics into a JSON 500 and logs them to out.
func Recovery(out io.Writer) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(out, func(c *gin.Context, recovered any) {
		log.Printf("Panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.ErrorResponse{Message: "Server error"})
	})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, apperrors.ErrorResponse{Message: "Route not found"})
}
