package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// Signup - POST /api/auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Auth.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyEmail - GET /api/auth/verify-email?token=
func (h *Handlers) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.services.Auth.VerifyEmail(c.Request.Context(), token); err != nil {
		respondError(c, err, "Failed to verify email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// AdminLogin - POST /api/admin/auth/login
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Auth.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile - GET /api/client/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	clientID, _ := middleware.ClientID(c)

	client, err := h.services.Auth.Profile(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to get profile")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateProfile - PUT /api/client/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	clientID, _ := middleware.ClientID(c)
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.services.Auth.UpdateProfile(c.Request.Context(), clientID, &req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, client)
}
