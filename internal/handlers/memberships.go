package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// ListMemberships - GET /api/memberships?lang=
func (h *Handlers) ListMemberships(c *gin.Context) {
	list, err := h.services.Memberships.List(c.Request.Context(), language(c))
	if err != nil {
		respondError(c, err, "Failed to list memberships")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminListMemberships(c *gin.Context) {
	list, err := h.services.Memberships.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list memberships")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminCreateMembership(c *gin.Context) {
	var req models.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.services.Memberships.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create membership")
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handlers) AdminUpdateMembership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.services.Memberships.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update membership")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handlers) AdminDeleteMembership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Memberships.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete membership")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) AdminListMembershipTranslations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.services.Memberships.ListTranslations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list translations")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminUpsertMembershipTranslation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.services.Memberships.UpsertTranslation(c.Request.Context(), id, c.Param("lang"), &req)
	if err != nil {
		respondError(c, err, "Failed to save translation")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handlers) AdminDeleteMembershipTranslation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Memberships.DeleteTranslation(c.Request.Context(), id, c.Param("lang")); err != nil {
		respondError(c, err, "Failed to delete translation")
		return
	}
	c.Status(http.StatusNoContent)
}
