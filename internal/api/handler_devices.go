package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-booking-backend/internal/engine"
	"equipment-booking-backend/internal/model"
)

type deviceRequest struct {
	ActorID      string  `json:"actor_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	SerialNumber string  `json:"serial_number"`
	CategoryID   *string `json:"category_id"`
	LocationID   *string `json:"location_id"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
}

func (r *deviceRequest) input() engine.DeviceInput {
	return engine.DeviceInput{
		Name:         r.Name,
		SerialNumber: r.SerialNumber,
		CategoryID:   r.CategoryID,
		LocationID:   r.LocationID,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
	}
}

// CreateDevice handles POST /api/devices.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.engine.CreateDevice(c.Request.Context(), req.ActorID, req.input())
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// UpdateDevice handles PUT /api/devices/:id. Status is deliberately absent
// from the payload; it changes only through the status endpoint.
func (h *Handler) UpdateDevice(c *gin.Context) {
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.engine.UpdateDevice(c.Request.Context(), req.ActorID, c.Param("id"), req.input())
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

type setDeviceStatusRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=available in_use maintenance unavailable"`
}

// SetDeviceStatus handles POST /api/devices/:id/status.
func (h *Handler) SetDeviceStatus(c *gin.Context) {
	var req setDeviceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.engine.SetDeviceStatus(c.Request.Context(),
		c.Param("id"), req.ActorID, model.DeviceStatus(req.Status))
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// ListDevices handles GET /api/devices with optional category_id, location_id
// and status filters.
func (h *Handler) ListDevices(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).
		Preload("Category").Preload("Location").
		Order("name ASC")

	if categoryID := c.Query("category_id"); categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if locationID := c.Query("location_id"); locationID != "" {
		q = q.Where("location_id = ?", locationID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var devices []model.Device
	if err := q.Find(&devices).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}
