package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"equipment-booking-backend/config"
	"equipment-booking-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.ApplyIndexDDL {
		log.Println("Applying postgres-specific index DDL...")
		if err := applyIndexDDL(db); err != nil {
			return nil, err
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs the schema migration for every entity table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Profile{},
		&model.UserRole{},
		&model.DeviceCategory{},
		&model.Location{},
		&model.Device{},
		&model.Reservation{},
		&model.Issue{},
		&model.AuditLog{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// applyIndexDDL creates the indexes backing the audit query contract and the
// per-device overlap scan. Postgres only; AutoMigrate covers the basics on
// other dialects.
func applyIndexDDL(db *gorm.DB) error {
	ddls := []string{
		// Audit queries filter by actor, action and entity type, ordered by
		// created_at descending.
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at_desc ON audit_logs (created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_actor_created ON audit_logs (user_id, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_entity_created ON audit_logs (entity_type, created_at DESC);",

		// Overlap scans read the active reservations of one device.
		"CREATE INDEX IF NOT EXISTS idx_reservations_device_window ON reservations (device_id, status, start_date, end_date);",

		// The sweeper claims approved reservations whose window has passed.
		"CREATE INDEX IF NOT EXISTS idx_reservations_status_end ON reservations (status, end_date);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
