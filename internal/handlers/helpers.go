package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errInvalidID = errors.New("id must be a positive integer")

// parseID parses a path segment as a row ID. IDs start at 1.
func parseID(param string) (uint, error) {
	parsed, err := strconv.ParseUint(param, 10, strconv.IntSize)
	if err != nil {
		return 0, err
	}
	if parsed == 0 {
		return 0, errInvalidID
	}
	return uint(parsed), nil
}

// idParam reads the named path parameter as an ID. On failure it writes a
// 400 naming the resource and aborts.
func idParam(c *gin.Context, name, resource string) (uint, bool) {
	id, err := parseID(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + resource + " ID"})
		return 0, false
	}
	return id, true
}
