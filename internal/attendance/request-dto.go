package attendance

type TrackRequest struct {
	Operation string `json:"operation" binding:"required,oneof=enter exit ENTER EXIT Enter Exit"`
	TicketID  string `json:"ticket_id" binding:"required,max=64"`
}

type BindWristbandRequest struct {
	WristbandID string `json:"wristband_id" binding:"required,max=128"`
	ReserverID  string `json:"reserver_id" binding:"required,max=128"`
	TicketID    string `json:"ticket_id" binding:"required,max=64"`
}
