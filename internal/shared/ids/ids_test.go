package ids

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUniqueReturnsUUID(t *testing.T) {
	id, err := NewUnique(context.Background(), 3, func(context.Context, string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestNewUniqueWithRetriesOnCollision(t *testing.T) {
	candidates := []string{"taken-1", "taken-2", "free"}
	next := 0
	gen := func() string {
		id := candidates[next]
		next++
		return id
	}
	taken := map[string]bool{"taken-1": true, "taken-2": true}

	id, err := NewUniqueWith(context.Background(), gen, 5, func(_ context.Context, id string) (bool, error) {
		return taken[id], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "free", id)
	assert.Equal(t, 3, next)
}

func TestNewUniqueWithFailsPastBound(t *testing.T) {
	calls := 0
	_, err := NewUniqueWith(context.Background(), func() string { return "same" }, 4, func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 4, calls)
}

func TestNewUniqueWithPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("store down")
	_, err := NewUnique(context.Background(), 2, func(context.Context, string) (bool, error) {
		return false, storeErr
	})
	assert.ErrorIs(t, err, storeErr)
}

func TestNewUniqueWithHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewUnique(ctx, 2, func(context.Context, string) (bool, error) {
		t.Fatal("exists must not be called after cancellation")
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
