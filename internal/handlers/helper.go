package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
	"github.com/SAP-F-2025/toeic-session-service/internal/repositories"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseUintParam returns 0 after answering 400 when the parameter is not a positive integer.
func ParseUintParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return defaultValue
	}
	return value
}

func parseTimeQuery(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// parseSessionFilters reads page/size plus the optional status, mode and date range.
func parseSessionFilters(c *gin.Context) repositories.SessionFilters {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}

	filters := repositories.SessionFilters{
		Mode:     c.Query("mode"),
		DateFrom: parseTimeQuery(c, "from"),
		DateTo:   parseTimeQuery(c, "to"),
		Limit:    size,
		Offset:   (page - 1) * size,
	}
	if status := c.Query("status"); status != "" {
		s := models.SessionStatus(status)
		filters.Status = &s
	}
	return filters
}
