package handlers

import (
	"net/http"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/middleware"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

// CheckAvailability - POST /api/reservations/check-availability
func (h *Handlers) CheckAvailability(c *gin.Context) {
	var req models.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.services.Reservations.CheckAvailability(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to check availability")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateReservation - POST /api/reservations
// Guests and logged-in clients can book.
func (h *Handlers) CreateReservation(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.services.Reservations.Create(c.Request.Context(), &req, middleware.ClientIDPtr(c))
	if err != nil {
		respondError(c, err, "Failed to create reservation")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// reservationAccess collects what the caller presents for a reservation:
// the client token, or for guest bookings the X-Session-ID header
// (?session_id=) or ?email=.
func reservationAccess(c *gin.Context) models.ReservationAccess {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		sessionID = c.Query("session_id")
	}
	return models.ReservationAccess{
		ClientID:  middleware.ClientIDPtr(c),
		SessionID: sessionID,
		Email:     c.Query("email"),
	}
}

// GetReservation - GET /api/reservations/:id
func (h *Handlers) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.services.Reservations.Get(c.Request.Context(), id, reservationAccess(c))
	if err != nil {
		respondError(c, err, "Failed to get reservation")
		return
	}
	c.JSON(http.StatusOK, res)
}

// AddReservationService - POST /api/reservations/:id/services
func (h *Handlers) AddReservationService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AddServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.services.Reservations.AddService(c.Request.Context(), id, reservationAccess(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add service")
		return
	}
	c.JSON(http.StatusOK, res)
}

// RemoveReservationService - DELETE /api/reservations/:id/services/:serviceId
func (h *Handlers) RemoveReservationService(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := pathID(c, "serviceId")
	if !ok {
		return
	}

	res, err := h.services.Reservations.RemoveService(c.Request.Context(), id, serviceID, reservationAccess(c))
	if err != nil {
		respondError(c, err, "Failed to remove service")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ClientReservations - GET /api/client/reservations
func (h *Handlers) ClientReservations(c *gin.Context) {
	clientID, _ := middleware.ClientID(c)

	list, err := h.services.Reservations.ListForClient(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err, "Failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CancelReservation - PATCH /api/client/reservations/:id/cancel
func (h *Handlers) CancelReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	clientID, _ := middleware.ClientID(c)

	res, err := h.services.Reservations.Cancel(c.Request.Context(), id, clientID)
	if err != nil {
		respondError(c, err, "Failed to cancel reservation")
		return
	}
	c.JSON(http.StatusOK, res)
}

// AdminListReservations - GET /api/admin/reservations?date=&statut=&client_id=&page=&pageSize=
func (h *Handlers) AdminListReservations(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}
	clientID, ok := optionalID(c, "client_id")
	if !ok {
		return
	}

	result, err := h.services.Reservations.List(c.Request.Context(), models.ReservationFilter{
		Date:     c.Query("date"),
		Statut:   c.Query("statut"),
		ClientID: clientID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err, "Failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminUpdateReservationStatus - PATCH /api/admin/reservations/:id/status
func (h *Handlers) AdminUpdateReservationStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.services.Reservations.UpdateStatus(c.Request.Context(), id, req.Statut)
	if err != nil {
		respondError(c, err, "Failed to update reservation status")
		return
	}
	c.JSON(http.StatusOK, res)
}
