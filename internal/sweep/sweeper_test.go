package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipment-booking-backend/config"
	"equipment-booking-backend/internal/db"
	"equipment-booking-backend/internal/engine"
	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/store"
)

func TestSweepOnce(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	now := time.Now().UTC()
	reservations := []model.Reservation{
		{ID: "r-done", DeviceID: "d-1", UserID: "u-1",
			StartDate: now.Add(-3 * time.Hour), EndDate: now.Add(-time.Hour),
			Status: model.ReservationApproved},
		{ID: "r-live", DeviceID: "d-1", UserID: "u-1",
			StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour),
			Status: model.ReservationApproved},
	}
	require.NoError(t, testDB.Create(&reservations).Error)

	cfg := &config.Config{}
	cfg.Sweeper.Enabled = true
	svc := NewService(cfg, engine.New(store.NewStore(testDB), nil))

	svc.SweepOnce(context.Background())

	var done, live model.Reservation
	require.NoError(t, testDB.First(&done, "id = ?", "r-done").Error)
	require.NoError(t, testDB.First(&live, "id = ?", "r-live").Error)
	assert.Equal(t, model.ReservationCompleted, done.Status)
	assert.Equal(t, model.ReservationApproved, live.Status)
}

func TestRun_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sweeper.Enabled = false
	cfg.Sweeper.Interval = time.Hour
	svc := NewService(cfg, nil)

	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when the sweeper is disabled")
	}
}
