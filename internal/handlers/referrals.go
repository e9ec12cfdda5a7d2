package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// ValidateReferral - POST /api/referrals/validate
func (h *Handlers) ValidateReferral(c *gin.Context) {
	var req models.ValidateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Referrals.Validate(c.Request.Context(), req.Code, middleware.ClientIDPtr(c))
	if err != nil {
		respondError(c, err, "Failed to validate referral code")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MyReferral - GET /api/client/referral
func (h *Handlers) MyReferral(c *gin.Context) {
	clientID, _ := middleware.ClientID(c)

	code, err := h.services.Referrals.GetOrCreateOwn(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to get referral code")
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *Handlers) AdminListReferrals(c *gin.Context) {
	list, err := h.services.Referrals.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list referral codes")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminCreateReferral(c *gin.Context) {
	var req models.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	code, err := h.services.Referrals.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create referral code")
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handlers) AdminDeactivateReferral(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Referrals.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to deactivate referral code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Referral code deactivated"})
}

func (h *Handlers) AdminReferralUsages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.services.Referrals.Usages(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list referral usages")
		return
	}
	c.JSON(http.StatusOK, list)
}
