package database

import (
	"gorm.io/gorm"

	"eventpass/internal/attendance"
	"eventpass/internal/auth"
	"eventpass/internal/events"
	"eventpass/internal/reservations"
	"eventpass/internal/tickets"
	"eventpass/internal/users"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.User{},
		&auth.Permission{},
		&events.Event{},
		&tickets.TicketType{},
		&tickets.Ticket{},
		&reservations.Reservation{},
		&attendance.Room{},
		&attendance.TicketLocation{},
		&attendance.TrackEntry{},
		&attendance.Wristband{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
