package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// One regular reservation per user and event. Force reservations are exempt.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_reservations_user_event
		ON reservations (user_id, event_id)
		WHERE is_force = false;
	`).Error
}
