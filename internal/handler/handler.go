// Package handler is the HTTP edge: request binding, auth context, and the
// mapping from service errors to status codes. No business rules live here.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses the :id route parameter. A zero return means the response
// has already been written.
func pathID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0
	}
	return id
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
