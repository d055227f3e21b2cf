package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryLimit reads the "limit" query parameter. Missing or invalid values
// yield 0, which the services replace with their default; they also apply
// the upper bound.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return 0
	}
	return limit
}
