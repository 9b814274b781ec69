package events

import "net/http"

// CapacityStatus is the outcome of a ledger adjustment
type CapacityStatus string

const (
	CapacityReserved          CapacityStatus = "RESERVED"
	CapacityOver              CapacityStatus = "CAPACITY_OVER"
	CapacityEventNotFound     CapacityStatus = "EVENT_NOT_FOUND"
	CapacityTransactionFailed CapacityStatus = "TRANSACTION_FAILED"
)

// IsValid checks if the capacity status is valid
func (s CapacityStatus) IsValid() bool {
	switch s {
	case CapacityReserved, CapacityOver, CapacityEventNotFound, CapacityTransactionFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s CapacityStatus) String() string {
	return string(s)
}

// OK reports whether the adjustment was applied
func (s CapacityStatus) OK() bool {
	return s == CapacityReserved
}

// HTTPStatus maps the status to a response code
func (s CapacityStatus) HTTPStatus() int {
	switch s {
	case CapacityReserved:
		return http.StatusOK
	case CapacityEventNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Message is the user-facing text for the status
func (s CapacityStatus) Message() string {
	switch s {
	case CapacityReserved:
		return "Capacity reserved."
	case CapacityOver:
		return "The event is fully booked."
	case CapacityEventNotFound:
		return "The event does not exist."
	case CapacityTransactionFailed:
		return "The reservation could not be completed. Please try again."
	}
	return "Unknown capacity status."
}
