package tickets

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
)

type Repository interface {
	CreateTicket(ctx context.Context, ticket *Ticket) error
	TicketExists(ctx context.Context, id string) (bool, error)
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	GetTickets(ctx context.Context, ids []string) ([]Ticket, error)
	DeleteTickets(ctx context.Context, ids []string) error

	CreateTicketType(ctx context.Context, ticketType *TicketType) error
	GetTicketType(ctx context.Context, id string) (*TicketType, error)
	GetTicketTypes(ctx context.Context, ids []string) ([]TicketType, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTicket(ctx context.Context, ticket *Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) TicketExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Ticket{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetTickets(ctx context.Context, ids []string) ([]Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tickets []Ticket
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tickets).Error
	return tickets, err
}

func (r *repository) DeleteTickets(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Ticket{}).Error
}

func (r *repository) CreateTicketType(ctx context.Context, ticketType *TicketType) error {
	return r.db.WithContext(ctx).Create(ticketType).Error
}

func (r *repository) GetTicketType(ctx context.Context, id string) (*TicketType, error) {
	var ticketType TicketType
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&ticketType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &ticketType, nil
}

func (r *repository) GetTicketTypes(ctx context.Context, ids []string) ([]TicketType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ticketTypes []TicketType
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ticketTypes).Error
	return ticketTypes, err
}
