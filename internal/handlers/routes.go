package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dentaheal/dentaheal-api/internal/middleware"
)

// RegisterRoutes wires the API onto the router. Everything under /api
// sits behind session authentication; role checks happen in the
// services.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/signup", h.Signup)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.RequireAuth(h.Accounts))
	{
		apiRoutes.GET("/me", h.Me)
		apiRoutes.PUT("/me", h.UpdateMe)

		// Patient directory (dentist only)
		apiRoutes.GET("/patients", h.ListPatients)
		apiRoutes.POST("/patients", h.CreatePatient)
		apiRoutes.PUT("/patients/:id", h.UpdatePatient)

		// Appointment queries (dentist only)
		apiRoutes.GET("/appointments", h.GetAppointments)
		apiRoutes.GET("/analytics/summary", h.GetAnalyticsSummary)
	}
}
