package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentaheal/dentaheal-api/internal/middleware"
	"github.com/dentaheal/dentaheal-api/internal/services"
)

// ListPatients returns the full patient directory. Dentists only.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Patients.List(c.Request.Context(), middleware.AccountFromContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

// CreatePatient registers a patient on behalf of the dentist.
func (h *Handler) CreatePatient(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	patient, err := h.Patients.Create(c.Request.Context(), middleware.AccountFromContext(c), services.CreatePatientInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"patient": patient})
}

// UpdatePatient applies a partial update to one patient. Absent fields
// are left untouched.
func (h *Handler) UpdatePatient(c *gin.Context) {
	var req struct {
		Email    *string `json:"email,omitempty"`
		Password *string `json:"password,omitempty"`
		FullName *string `json:"fullName,omitempty"`
		Phone    *string `json:"phone,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.Patients.Update(c.Request.Context(), middleware.AccountFromContext(c), c.Param("id"), services.UpdatePatientInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}
