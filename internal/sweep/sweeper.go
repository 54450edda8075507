package sweep

import (
	"context"
	"log"
	"time"

	"equipment-booking-backend/config"
	"equipment-booking-backend/internal/engine"
)

// Service periodically completes approved reservations whose window has
// elapsed. The sweep is idempotent, so overlapping or repeated runs are
// harmless.
type Service struct {
	cfg    *config.Config
	engine *engine.Engine
}

// NewService creates a sweeper.
func NewService(cfg *config.Config, eng *engine.Engine) *Service {
	return &Service{cfg: cfg, engine: eng}
}

// Run executes the sweep on the configured interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweeper.Enabled {
		log.Println("reservation sweeper is disabled")
		return
	}

	log.Printf("reservation sweeper running every %s", s.cfg.Sweeper.Interval)
	ticker := time.NewTicker(s.cfg.Sweeper.Interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			log.Println("reservation sweeper stopped")
			return
		}
	}
}

// SweepOnce runs a single sweep as of now.
func (s *Service) SweepOnce(ctx context.Context) {
	completed, err := s.engine.CompleteExpiredReservations(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("reservation sweep failed: %v", err)
		return
	}
	if completed > 0 {
		log.Printf("reservation sweep completed %d reservation(s)", completed)
	}
}
