package attendance

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrWristbandNotFound = errors.New("wristband not found")
)

type Repository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)

	// MoveTicket locks the ticket's location, calls apply with the previous
	// room ("" when never tracked), then stores the new location and a track
	// entry. An error from apply rolls the whole move back.
	MoveTicket(ctx context.Context, m Movement, apply func(from string) error) (string, error)
	GetTrack(ctx context.Context, ticketID string) ([]TrackEntry, error)

	// BindWristband returns false when the band is already bound
	BindWristband(ctx context.Context, w *Wristband) (bool, error)
	GetWristband(ctx context.Context, id string) (*Wristband, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *repository) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) MoveTicket(ctx context.Context, m Movement, apply func(from string) error) (string, error) {
	var from string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Make sure a row exists so the first movement can be locked too
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&TicketLocation{TicketID: m.TicketID}).Error; err != nil {
			return fmt.Errorf("failed to init ticket location: %w", err)
		}

		var location TicketLocation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_id = ?", m.TicketID).
			Take(&location).Error; err != nil {
			return fmt.Errorf("failed to lock ticket location: %w", err)
		}
		if location.RoomID != nil {
			from = *location.RoomID
		}

		if err := apply(from); err != nil {
			return err
		}

		if err := tx.Model(&TicketLocation{}).
			Where("ticket_id = ?", m.TicketID).
			Update("room_id", m.ToRoom).Error; err != nil {
			return fmt.Errorf("failed to update ticket location: %w", err)
		}

		entry := &TrackEntry{
			TicketID:      m.TicketID,
			Operation:     m.Operation,
			FromRoom:      from,
			ToRoom:        m.ToRoom,
			ReservationID: m.ReservationID,
		}
		if entry.FromRoom == "" {
			entry.FromRoom = NoRoom
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record track entry: %w", err)
		}
		return nil
	})
	return from, err
}

func (r *repository) GetTrack(ctx context.Context, ticketID string) ([]TrackEntry, error) {
	var entries []TrackEntry
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) BindWristband(ctx context.Context, w *Wristband) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(w)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) GetWristband(ctx context.Context, id string) (*Wristband, error) {
	var w Wristband
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWristbandNotFound
		}
		return nil, err
	}
	return &w, nil
}
