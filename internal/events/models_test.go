package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIsOpenForReservation(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"open, no availability window", Event{DateStart: later}, true},
		{"not yet available", Event{DateStart: later.Add(time.Hour), AvailableAt: &later}, false},
		{"available now", Event{DateStart: later, AvailableAt: &earlier}, true},
		{"already started", Event{DateStart: earlier}, false},
		{"starts exactly now", Event{DateStart: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsOpenForReservation(now))
		})
	}
}

func TestVerifyTwoFactorKey(t *testing.T) {
	plain := Event{TwoFactorSecret: "ABC"}
	assert.True(t, plain.VerifyTwoFactorKey("ABC"))
	assert.False(t, plain.VerifyTwoFactorKey("XYZ"))
	assert.False(t, plain.VerifyTwoFactorKey(""))

	hash, err := bcrypt.GenerateFromPassword([]byte("ABC"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := Event{TwoFactorSecret: string(hash)}
	assert.True(t, hashed.VerifyTwoFactorKey("ABC"))
	assert.False(t, hashed.VerifyTwoFactorKey("XYZ"))

	unset := Event{}
	assert.False(t, unset.VerifyTwoFactorKey(""))
}

func TestRemaining(t *testing.T) {
	assert.Nil(t, (&Event{TakenCapacity: 4}).Remaining())

	remaining := (&Event{Capacity: intPtr(5), TakenCapacity: 3}).Remaining()
	require.NotNil(t, remaining)
	assert.Equal(t, 2, *remaining)
}

func TestAllowsTicketType(t *testing.T) {
	event := Event{TicketTypeIDs: []string{"adult", "family"}}
	assert.True(t, event.AllowsTicketType("family"))
	assert.False(t, event.AllowsTicketType("staff"))
}
