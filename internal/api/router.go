package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"equipment-booking-backend/internal/engine"
	"equipment-booking-backend/internal/mw"
	"equipment-booking-backend/internal/obs"
	"equipment-booking-backend/internal/store"
)

// RouterConfig carries the tunables the router needs.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s *store.Store, eng *engine.Engine, webpushOptions *webpush.Options, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, eng, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	r.GET("/metrics", gin.WrapH(obs.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Catalog reads; device list is cached, lifecycle reads are not.
		api.GET("/devices", caching, handler.ListDevices)
		api.GET("/reservations", handler.ListReservations)
		api.GET("/issues", handler.ListIssues)
		api.GET("/audit", handler.ListAuditLogs)

		// Lifecycle operations.
		api.POST("/reservations", handler.CreateReservation)
		api.POST("/reservations/:id/decision", handler.DecideReservation)
		api.POST("/reservations/:id/cancel", handler.CancelReservation)
		api.POST("/issues", handler.ReportIssue)
		api.POST("/issues/:id/status", handler.UpdateIssueStatus)
		api.POST("/devices", handler.CreateDevice)
		api.PUT("/devices/:id", handler.UpdateDevice)
		api.POST("/devices/:id/status", handler.SetDeviceStatus)
		api.POST("/users/:id/role", handler.AssignRole)

		// Push subscription management.
		api.GET("/subscriptions", handler.GetSubscriptions)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
