package reservations

// TicketRequest asks for one ticket of a type. Guests may be omitted when the
// ticket type accepts a single group.
type TicketRequest struct {
	TicketTypeID string   `json:"ticket_type" binding:"required,max=128"`
	Guests       []string `json:"guests" binding:"omitempty,max=32"`
}

type ReserveRequest struct {
	ReservationID string          `json:"reservation_id" binding:"omitempty,max=128"`
	EventID       string          `json:"event_id" binding:"required,max=128"`
	Tickets       []TicketRequest `json:"tickets" binding:"max=64,dive"`
	TwoFactorKey  string          `json:"two_factor_key" binding:"omitempty,max=255"`
}

type ForceReserveRequest struct {
	ReservationID string          `json:"reservation_id" binding:"omitempty,max=128"`
	EventID       string          `json:"event_id" binding:"required,max=128"`
	Tickets       []TicketRequest `json:"tickets" binding:"max=64,dive"`
	Note          string          `json:"note" binding:"max=2000"`
}

type ModifyRequest struct {
	Tickets      []TicketRequest `json:"tickets" binding:"max=64,dive"`
	TwoFactorKey string          `json:"two_factor_key" binding:"omitempty,max=255"`
}
