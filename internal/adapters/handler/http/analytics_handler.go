package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/cadence-engine/internal/core/domain"
	"github.com/comitanigiacomo/cadence-engine/internal/core/services"
)

const maxRangeDays = 366 // one year, leap-safe

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics/summary", h.GetSummary)
	router.GET("/habits/:id/streak", h.GetStreak)
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	endDateStr := c.Query("end_date")
	startDateStr := c.Query("start_date")

	var endDate, startDate domain.Date
	var err error

	if endDateStr == "" {
		endDate = domain.DateOf(time.Now().UTC())
	} else {
		endDate, err = domain.ParseDate(endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return
		}
	}

	if startDateStr == "" {
		startDate = endDate.AddDays(-29)
	} else {
		startDate, err = domain.ParseDate(startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
	}

	if startDate.After(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return
	}

	if startDate.DaysUntil(endDate) > maxRangeDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return
	}

	query := domain.AnalyticsQuery{
		StartDate:       startDate,
		EndDate:         endDate,
		IncludeArchived: c.Query("include_archived") == "true",
		HabitID:         c.Query("habit_id"),
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case errors.Is(err, domain.ErrDuplicateCompletion):
			c.JSON(http.StatusConflict, gin.H{"error": "completion history contains duplicate dates"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
		}
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetStreak(c *gin.Context) {
	data, err := h.svc.GetStreak(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHabitNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
		case errors.Is(err, domain.ErrDuplicateCompletion):
			c.JSON(http.StatusConflict, gin.H{"error": "completion history contains duplicate dates"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute streak"})
		}
		return
	}

	c.JSON(http.StatusOK, data)
}
