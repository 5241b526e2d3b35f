// Package controllers holds the gin handlers. Each controller wraps one
// service and only deals with binding, the caller and the response.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medicare-backend/models"
	"medicare-backend/shared/security"
)

// currentUser returns the authenticated caller or answers 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := security.CurrentUser(c)
	if !ok {
		security.SendError(c, http.StatusUnauthorized, security.CodeUserNotAuthenticated, "User not authenticated",
			"User authentication is required to access this resource", nil)
		return nil, false
	}
	return user, true
}

// pathID parses the :id parameter. Non-numeric ids answer 404.
func pathID(c *gin.Context, resource string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		security.SendError(c, http.StatusNotFound, security.CodeResourceNotFound, "Resource not found",
			"The requested "+resource+" was not found", nil)
		return 0, false
	}
	return id, true
}

// pagination reads limit and offset query parameters.
func pagination(c *gin.Context) (limit, offset uint64, ok bool) {
	fields := map[string]string{}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fields["limit"] = "A valid non-negative integer is required."
		}
		limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fields["offset"] = "A valid non-negative integer is required."
		}
		offset = n
	}
	if len(fields) > 0 {
		security.SendValidationError(c, "Invalid query parameters", fields)
		return 0, 0, false
	}
	return limit, offset, true
}
