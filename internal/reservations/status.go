package reservations

import (
	"net/http"

	"eventpass/internal/events"
)

// ReserveStatus is the closed set of Create outcomes
type ReserveStatus string

const (
	ReserveReserved                 ReserveStatus = "RESERVED"
	ReserveNotAvailable             ReserveStatus = "NOT_AVAILABLE"
	ReserveInvalidGroup             ReserveStatus = "INVALID_GROUP"
	ReserveInvalidTicketType        ReserveStatus = "INVALID_TICKET_TYPE"
	ReserveInvalidTwoFactorKey      ReserveStatus = "INVALID_TWO_FACTOR_KEY"
	ReserveAlreadyReserved          ReserveStatus = "ALREADY_RESERVED"
	ReserveNotReservedRequiredEvent ReserveStatus = "NOT_RESERVED_REQUIRED_EVENT"
	ReserveExceedsUserLimit         ReserveStatus = "EXCEEDS_USER_LIMIT"
	ReserveCapacityOver             ReserveStatus = "CAPACITY_OVER"
	ReserveEventNotFound            ReserveStatus = "EVENT_NOT_FOUND"
	ReserveTransactionFailed        ReserveStatus = "TRANSACTION_FAILED"
)

// IsValid checks if the reserve status is valid
func (s ReserveStatus) IsValid() bool {
	switch s {
	case ReserveReserved, ReserveNotAvailable, ReserveInvalidGroup, ReserveInvalidTicketType,
		ReserveInvalidTwoFactorKey, ReserveAlreadyReserved, ReserveNotReservedRequiredEvent,
		ReserveExceedsUserLimit, ReserveCapacityOver, ReserveEventNotFound, ReserveTransactionFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ReserveStatus) String() string {
	return string(s)
}

// HTTPStatus maps the status to a response code
func (s ReserveStatus) HTTPStatus() int {
	switch s {
	case ReserveReserved:
		return http.StatusCreated
	case ReserveEventNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Message is the user-facing text for the status
func (s ReserveStatus) Message() string {
	switch s {
	case ReserveReserved:
		return "Reservation completed."
	case ReserveNotAvailable:
		return "This event is not open for reservations."
	case ReserveInvalidGroup:
		return "The requested guests do not form a valid group."
	case ReserveInvalidTicketType:
		return "A requested ticket type is not available for this event."
	case ReserveInvalidTwoFactorKey:
		return "The two-factor key is incorrect."
	case ReserveAlreadyReserved:
		return "You already hold a reservation for this event."
	case ReserveNotReservedRequiredEvent:
		return "This event requires a reservation for another event first."
	case ReserveExceedsUserLimit:
		return "Too many tickets requested for this event."
	case ReserveCapacityOver:
		return "The event is fully booked."
	case ReserveEventNotFound:
		return "The event does not exist."
	case ReserveTransactionFailed:
		return "The reservation could not be completed. Please try again."
	}
	return "Unknown reservation status."
}

func reserveStatusFromCapacity(s events.CapacityStatus) ReserveStatus {
	switch s {
	case events.CapacityReserved:
		return ReserveReserved
	case events.CapacityOver:
		return ReserveCapacityOver
	case events.CapacityEventNotFound:
		return ReserveEventNotFound
	default:
		return ReserveTransactionFailed
	}
}

// ModifyStatus is the closed set of Modify and Cancel outcomes
type ModifyStatus string

const (
	ModifyModified               ModifyStatus = "MODIFIED"
	ModifyCancelled              ModifyStatus = "CANCELLED"
	ModifyTransactionFailed      ModifyStatus = "TRANSACTION_FAILED"
	ModifyCapacityOver           ModifyStatus = "CAPACITY_OVER"
	ModifyInvalidReservationData ModifyStatus = "INVALID_RESERVATION_DATA"
	ModifyReservationNotFound    ModifyStatus = "RESERVATION_NOT_FOUND"
	ModifyInvalidModifyData      ModifyStatus = "INVALID_MODIFY_DATA"
	ModifyEventAlreadyStarted    ModifyStatus = "EVENT_ALREADY_STARTED"
	ModifyInvalidTwoFactorKey    ModifyStatus = "INVALID_TWO_FACTOR_KEY"
	ModifyInvalidTicketType      ModifyStatus = "INVALID_TICKET_TYPE"
	ModifyInvalidGroup           ModifyStatus = "INVALID_GROUP"
	ModifyExceedsUserLimit       ModifyStatus = "EXCEEDS_USER_LIMIT"
	ModifyEventNotFound          ModifyStatus = "EVENT_NOT_FOUND"
)

// IsValid checks if the modify status is valid
func (s ModifyStatus) IsValid() bool {
	switch s {
	case ModifyModified, ModifyCancelled, ModifyTransactionFailed, ModifyCapacityOver,
		ModifyInvalidReservationData, ModifyReservationNotFound, ModifyInvalidModifyData,
		ModifyEventAlreadyStarted, ModifyInvalidTwoFactorKey, ModifyInvalidTicketType,
		ModifyInvalidGroup, ModifyExceedsUserLimit, ModifyEventNotFound:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ModifyStatus) String() string {
	return string(s)
}

// HTTPStatus maps the status to a response code
func (s ModifyStatus) HTTPStatus() int {
	switch s {
	case ModifyModified, ModifyCancelled:
		return http.StatusOK
	case ModifyReservationNotFound, ModifyEventNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Message is the user-facing text for the status
func (s ModifyStatus) Message() string {
	switch s {
	case ModifyModified:
		return "Reservation updated."
	case ModifyCancelled:
		return "Reservation cancelled."
	case ModifyTransactionFailed:
		return "The change could not be completed. Please try again."
	case ModifyCapacityOver:
		return "The event does not have room for this change."
	case ModifyInvalidReservationData:
		return "This reservation cannot be processed."
	case ModifyReservationNotFound:
		return "The reservation does not exist."
	case ModifyInvalidModifyData:
		return "A change must keep at least one guest. Cancel the reservation instead."
	case ModifyEventAlreadyStarted:
		return "The event has already started."
	case ModifyInvalidTwoFactorKey:
		return "The two-factor key is incorrect."
	case ModifyInvalidTicketType:
		return "A requested ticket type is not available for this event."
	case ModifyInvalidGroup:
		return "The requested guests do not form a valid group."
	case ModifyExceedsUserLimit:
		return "Too many tickets requested for this event."
	case ModifyEventNotFound:
		return "The event does not exist."
	}
	return "Unknown modification status."
}

func modifyStatusFromCapacity(s events.CapacityStatus) ModifyStatus {
	switch s {
	case events.CapacityOver:
		return ModifyCapacityOver
	case events.CapacityEventNotFound:
		return ModifyEventNotFound
	default:
		return ModifyTransactionFailed
	}
}

func modifyStatusFromPlan(s ReserveStatus) ModifyStatus {
	switch s {
	case ReserveInvalidTicketType:
		return ModifyInvalidTicketType
	case ReserveExceedsUserLimit:
		return ModifyExceedsUserLimit
	default:
		return ModifyInvalidGroup
	}
}
