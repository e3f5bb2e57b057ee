package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentaheal/dentaheal-api/internal/middleware"
	"github.com/dentaheal/dentaheal-api/internal/services"
)

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
}

// Signup registers a new patient or dentist account. Required-field
// validation lives in the service so the rules hold no matter which
// entry point creates the account.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, err := h.Accounts.Signup(c.Request.Context(), services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Role:      req.Role,
		Phone:     req.Phone,
		Specialty: req.Specialty,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": view})
}

// Login checks credentials, opens a session and hands the token back
// both in the body and as an httpOnly cookie.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, token, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookie, token, int(h.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": view})
}

// Logout closes the session. It succeeds even when the token is already
// invalid or gone.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Accounts.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated caller's own profile.
func (h *Handler) Me(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	view, err := h.Accounts.WhoAmI(c.Request.Context(), account)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": view})
}

// UpdateMe lets the caller change their own name and role field.
func (h *Handler) UpdateMe(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req struct {
		FullName  string `json:"fullName"`
		Phone     string `json:"phone"`
		Specialty string `json:"specialty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.Accounts.UpdateSelf(c.Request.Context(), account, services.UpdateSelfInput{
		FullName:  req.FullName,
		Phone:     req.Phone,
		Specialty: req.Specialty,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
