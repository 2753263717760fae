package db

import (
	"fmt"

	"signage_server/internal/models"
	"signage_server/pkg/colors"

	"gorm.io/gorm"
)

// Models lists every table in dependency order
var Models = []interface{}{
	&models.User{},
	&models.Device{},
	&models.Media{},
	&models.Playlist{},
	&models.PlaylistItem{},
	&models.Schedule{},
	&models.DeviceLog{},
}

// RunMigrations creates or updates every table
func RunMigrations(db *gorm.DB) error {
	colors.PrintSubHeader("Running Database Migrations")

	for _, model := range Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("%T migration failed: %w", model, err)
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err == nil {
			colors.PrintSuccess("%s table ready", stmt.Schema.Table)
		}
	}

	if err := addScheduleWindowCheck(db); err != nil {
		return fmt.Errorf("failed to add schedule window check: %w", err)
	}

	if err := addDeviceLogDetailsDefault(db); err != nil {
		return fmt.Errorf("failed to set device log details default: %w", err)
	}

	colors.PrintHeader("DATABASE MIGRATIONS COMPLETED SUCCESSFULLY")
	return nil
}

// addScheduleWindowCheck rejects rows whose end_time precedes start_time
func addScheduleWindowCheck(db *gorm.DB) error {
	var exists int64
	err := db.Raw(`
		SELECT COUNT(*)
		FROM pg_constraint
		WHERE conname = 'chk_schedules_window'
	`).Scan(&exists).Error
	if err != nil {
		return fmt.Errorf("failed to look up schedule window check: %w", err)
	}

	if exists > 0 {
		colors.PrintInfo("Schedule window check already exists")
		return nil
	}

	if err := db.Exec("ALTER TABLE schedules ADD CONSTRAINT chk_schedules_window CHECK (end_time >= start_time)").Error; err != nil {
		return err
	}
	colors.PrintSuccess("Added schedule window check")
	return nil
}

func addDeviceLogDetailsDefault(db *gorm.DB) error {
	return db.Exec("ALTER TABLE device_logs ALTER COLUMN details SET DEFAULT '{}'::jsonb").Error
}
