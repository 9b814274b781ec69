package events

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CapacityStore
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetAll(ctx context.Context) ([]Event, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).Order("date_start ASC").Find(&events).Error
	return events, err
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateTakenCapacity locks the event row for the whole read-compute-write
func (r *repository) UpdateTakenCapacity(ctx context.Context, eventID string, fn func(taken int, capacity *int) (int, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "capacity", "taken_capacity").
			Where("id = ?", eventID).
			Take(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		next, err := fn(event.TakenCapacity, event.Capacity)
		if err != nil {
			return err
		}
		if next == event.TakenCapacity {
			return nil
		}

		result := tx.Model(&Event{}).Where("id = ?", eventID).Update("taken_capacity", next)
		if result.Error != nil {
			return fmt.Errorf("failed to update taken capacity: %w", result.Error)
		}
		return nil
	})
}
