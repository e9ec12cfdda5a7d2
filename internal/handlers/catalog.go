package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// ListServices - GET /api/services?lang=&categorie_id=
func (h *Handlers) ListServices(c *gin.Context) {
	categoryID, ok := optionalID(c, "categorie_id")
	if !ok {
		return
	}

	list, err := h.services.Catalog.ListServices(c.Request.Context(), language(c), categoryID)
	if err != nil {
		respondError(c, err, "Failed to list services")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetService - GET /api/services/:id?lang=
func (h *Handlers) GetService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc, err := h.services.Catalog.GetService(c.Request.Context(), id, language(c))
	if err != nil {
		respondError(c, err, "Failed to get service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListServiceCategories - GET /api/services/categories
func (h *Handlers) ListServiceCategories(c *gin.Context) {
	list, err := h.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminListServices(c *gin.Context) {
	list, err := h.services.Catalog.ListAllServices(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list services")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminCreateService(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.Catalog.CreateService(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *Handlers) AdminUpdateService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.Catalog.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update service")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handlers) AdminDeleteService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteService(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete service")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) AdminListServiceTranslations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.services.Catalog.ListTranslations(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list translations")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminUpsertServiceTranslation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.services.Catalog.UpsertTranslation(c.Request.Context(), id, c.Param("lang"), &req)
	if err != nil {
		respondError(c, err, "Failed to save translation")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handlers) AdminDeleteServiceTranslation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteTranslation(c.Request.Context(), id, c.Param("lang")); err != nil {
		respondError(c, err, "Failed to delete translation")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) AdminListCategories(c *gin.Context) {
	list, err := h.services.Catalog.ListAllCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminCreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cat, err := h.services.Catalog.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handlers) AdminUpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cat, err := h.services.Catalog.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handlers) AdminDeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}
