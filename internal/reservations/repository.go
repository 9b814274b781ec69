package reservations

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrDuplicateReservation = errors.New("duplicate reservation")
	ErrReservationConflict  = errors.New("reservation changed concurrently")
)

type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	Get(ctx context.Context, userID, id string) (*Reservation, error)
	Exists(ctx context.Context, userID, id string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)

	// UpdateTickets and Delete only apply while the stored ticket list still
	// equals expected. A lost race reports ErrReservationConflict, a missing
	// row ErrReservationNotFound.
	UpdateTickets(ctx context.Context, userID, id string, expected, ticketIDs []string) error
	Delete(ctx context.Context, userID, id string, expected []string) error

	// ExpectedHeadcountByEvent sums headcount of tickets referenced by stored reservations
	ExpectedHeadcountByEvent(ctx context.Context) (map[string]int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create relies on the (user_id, event_id) partial unique index for the
// one-reservation-per-event rule under concurrency
func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	err := r.db.WithContext(ctx).Create(reservation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReservation
	}
	return err
}

func (r *repository) Get(ctx context.Context, userID, id string) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Exists(ctx context.Context, userID, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("user_id = ? AND id = ?", userID, id).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) UpdateTickets(ctx context.Context, userID, id string, expected, ticketIDs []string) error {
	current, err := json.Marshal(expected)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("user_id = ? AND id = ? AND ticket_ids = CAST(? AS jsonb)", userID, id, string(current)).
		Select("ticket_ids").
		Updates(Reservation{TicketIDs: ticketIDs})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, userID, id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id string, expected []string) error {
	current, err := json.Marshal(expected)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ? AND ticket_ids = CAST(? AS jsonb)", userID, id, string(current)).
		Delete(&Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, userID, id)
	}
	return nil
}

func (r *repository) missOrConflict(ctx context.Context, userID, id string) error {
	exists, err := r.Exists(ctx, userID, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrReservationConflict
	}
	return ErrReservationNotFound
}

func (r *repository) ExpectedHeadcountByEvent(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		EventID string
		Total   int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.event_id AS event_id, COALESCE(SUM(t.headcount), 0) AS total
		FROM reservations r
		JOIN tickets t
		  ON t.id IN (SELECT jsonb_array_elements_text(r.ticket_ids))
		GROUP BY r.event_id
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Total
	}
	return out, nil
}
