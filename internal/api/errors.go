package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"equipment-booking-backend/internal/engine"
)

// abortWithEngineError translates the engine's error taxonomy onto HTTP
// status codes.
func abortWithEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidInterval):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrSchedulingConflict):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
