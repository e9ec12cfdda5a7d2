package handlers

import (
	"net/http"
	"strconv"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// AdminListClients - GET /api/admin/clients?search=&actif=&page=&pageSize=
func (h *Handlers) AdminListClients(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	filter := models.ClientFilter{Search: c.Query("search"), Page: page, PageSize: pageSize}
	if raw := c.Query("actif"); raw != "" {
		actif, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actif"})
			return
		}
		filter.Actif = &actif
	}

	result, err := h.services.Clients.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list clients")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) AdminGetClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.services.Clients.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handlers) AdminUpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.services.Clients.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handlers) AdminDeactivateClient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Clients.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to deactivate client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deactivated"})
}
