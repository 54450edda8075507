package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"equipment-booking-backend/internal/engine"
	"equipment-booking-backend/internal/model"
)

type createReservationRequest struct {
	DeviceID    string    `json:"device_id" binding:"required"`
	RequesterID string    `json:"requester_id" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Purpose     string    `json:"purpose"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.engine.CreateReservation(c.Request.Context(),
		req.DeviceID, req.RequesterID, req.StartDate.UTC(), req.EndDate.UTC(), req.Purpose)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

type decideReservationRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Decision   string `json:"decision" binding:"required,oneof=approve reject"`
	Reason     string `json:"reason"`
}

// DecideReservation handles POST /api/reservations/:id/decision.
func (h *Handler) DecideReservation(c *gin.Context) {
	var req decideReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.engine.DecideReservation(c.Request.Context(),
		c.Param("id"), req.ApproverID, engine.Decision(req.Decision), req.Reason)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

type cancelReservationRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	var req cancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.engine.CancelReservation(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// ListReservations handles GET /api/reservations with optional device_id,
// user_id and status filters.
func (h *Handler) ListReservations(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).
		Preload("Device").Preload("User").
		Order("start_date DESC")

	if deviceID := c.Query("device_id"); deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	if userID := c.Query("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reservations []model.Reservation
	if err := q.Limit(200).Find(&reservations).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservations"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
