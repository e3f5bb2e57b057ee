package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentaheal/dentaheal-api/internal/middleware"
)

// GetAppointments lists the calling dentist's appointments, optionally
// filtered to one date (e.g. /api/appointments?date=2025-01-15).
func (h *Handler) GetAppointments(c *gin.Context) {
	appointments, err := h.Appointments.ListForDentist(
		c.Request.Context(), middleware.AccountFromContext(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// GetAnalyticsSummary returns the calling dentist's appointment counts
// by status for the analytics dashboard.
func (h *Handler) GetAnalyticsSummary(c *gin.Context) {
	summary, err := h.Appointments.StatusSummary(c.Request.Context(), middleware.AccountFromContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
