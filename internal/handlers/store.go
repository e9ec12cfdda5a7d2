package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// ListProducts - GET /api/store/products?q=&categorie_id=&page=&pageSize=
func (h *Handlers) ListProducts(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}
	categoryID, ok := optionalID(c, "categorie_id")
	if !ok {
		return
	}

	result, err := h.services.Store.ListProducts(c.Request.Context(), models.ProductFilter{
		Query:       c.Query("q"),
		CategorieID: categoryID,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct - GET /api/store/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.services.Store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProductCategories - GET /api/store/categories
func (h *Handlers) ListProductCategories(c *gin.Context) {
	list, err := h.services.Store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, list)
}

// PlaceOrder - POST /api/store/orders
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.services.Store.PlaceOrder(c.Request.Context(), &req, middleware.ClientIDPtr(c))
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// MyOrders - GET /api/store/orders/me
func (h *Handlers) MyOrders(c *gin.Context) {
	clientID, _ := middleware.ClientID(c)

	list, err := h.services.Store.ListClientOrders(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminListProducts(c *gin.Context) {
	list, err := h.services.Store.ListAllProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) AdminCreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.services.Store.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handlers) AdminUpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.services.Store.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handlers) AdminDeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Store.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) AdminCreateProductCategory(c *gin.Context) {
	var req models.ProductCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cat, err := h.services.Store.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// AdminListOrders - GET /api/admin/store/orders?statut=&page=&pageSize=
func (h *Handlers) AdminListOrders(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	result, err := h.services.Store.ListOrders(c.Request.Context(), models.OrderFilter{
		Statut:   c.Query("statut"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.services.Store.UpdateOrderStatus(c.Request.Context(), id, req.Statut)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdminReindexProducts - POST /api/admin/store/reindex
func (h *Handlers) AdminReindexProducts(c *gin.Context) {
	n, err := h.services.Store.Reindex(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reindex products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": n})
}
