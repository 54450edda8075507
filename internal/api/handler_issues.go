package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-booking-backend/internal/model"
)

type reportIssueRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	ReporterID  string `json:"reporter_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
}

// ReportIssue handles POST /api/issues.
func (h *Handler) ReportIssue(c *gin.Context) {
	var req reportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.engine.ReportIssue(c.Request.Context(),
		req.DeviceID, req.ReporterID, req.Title, req.Description, model.IssuePriority(req.Priority))
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

type updateIssueStatusRequest struct {
	ActorID    string  `json:"actor_id" binding:"required"`
	Status     string  `json:"status" binding:"required,oneof=reported in_progress resolved closed"`
	Resolution string  `json:"resolution"`
	AssignedTo *string `json:"assigned_to"`
}

// UpdateIssueStatus handles POST /api/issues/:id/status.
func (h *Handler) UpdateIssueStatus(c *gin.Context) {
	var req updateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.engine.UpdateIssueStatus(c.Request.Context(),
		c.Param("id"), req.ActorID, model.IssueStatus(req.Status), req.Resolution, req.AssignedTo)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// ListIssues handles GET /api/issues with optional device_id, status and
// priority filters.
func (h *Handler) ListIssues(c *gin.Context) {
	q := h.store.DB().WithContext(c.Request.Context()).
		Preload("Device").Preload("Reporter").
		Order("created_at DESC")

	if deviceID := c.Query("device_id"); deviceID != "" {
		q = q.Where("device_id = ?", deviceID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		q = q.Where("priority = ?", priority)
	}

	var issues []model.Issue
	if err := q.Limit(200).Find(&issues).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	c.JSON(http.StatusOK, issues)
}
