package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminStats - GET /api/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.services.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}
