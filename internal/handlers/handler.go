package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dentaheal/dentaheal-api/internal/services"
	"github.com/dentaheal/dentaheal-api/internal/stores"
)

type Handler struct {
	Accounts     *services.AccountService
	Patients     *services.PatientDirectoryService
	Appointments *services.AppointmentQueryService

	SessionTTL time.Duration
	Log        zerolog.Logger
}

func NewHandler(
	accounts *services.AccountService,
	patients *services.PatientDirectoryService,
	appointments *services.AppointmentQueryService,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Accounts:     accounts,
		Patients:     patients,
		Appointments: appointments,
		SessionTTL:   sessionTTL,
		Log:          log,
	}
}

// respondError maps a service error onto a status code and a safe
// message. Anything unrecognized is a dependency failure: logged with
// its cause, surfaced without it.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotAPatient), errors.Is(err, stores.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, stores.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, stores.ErrExtensionExists):
		c.JSON(http.StatusConflict, gin.H{"error": "A record for this account already exists"})
	default:
		h.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}
