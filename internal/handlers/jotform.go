package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// GetWaiverForm - GET /api/jotform/form
// ?format=html returns the form markup with the JotForm branding removed.
func (h *Handlers) GetWaiverForm(c *gin.Context) {
	if c.Query("format") == "html" {
		html, err := h.services.JotForm.FormHTML(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load form")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	form, err := h.services.JotForm.Form(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load form")
		return
	}
	c.JSON(http.StatusOK, form)
}

// SubmitWaiver - POST /api/jotform/submissions
func (h *Handlers) SubmitWaiver(c *gin.Context) {
	var req models.JotFormSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.services.JotForm.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to store submission")
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// GetSubmission - GET /api/jotform/submission/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	sub, err := h.services.JotForm.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// AdminLinkSubmission - PATCH /api/admin/jotform/submission/:id/link
func (h *Handlers) AdminLinkSubmission(c *gin.Context) {
	var req models.LinkSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.services.JotForm.Link(c.Request.Context(), c.Param("id"), req.ReservationID)
	if err != nil {
		respondError(c, err, "Failed to link submission")
		return
	}
	c.JSON(http.StatusOK, sub)
}
