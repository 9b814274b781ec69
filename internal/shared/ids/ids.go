package ids

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultAttempts is used when a caller passes a non-positive bound
const DefaultAttempts = 8

// ErrIDSpaceExhausted is returned when every generated candidate already exists
var ErrIDSpaceExhausted = errors.New("could not generate an unused id")

// ExistsFunc reports whether id is already taken in the backing store
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Generator produces candidate ids
type Generator func() string

// NewUUID returns a random UUIDv4 string
func NewUUID() string {
	return uuid.NewString()
}

// NewUnique draws UUIDv4 candidates until exists reports one as free
func NewUnique(ctx context.Context, maxAttempts int, exists ExistsFunc) (string, error) {
	return NewUniqueWith(ctx, NewUUID, maxAttempts, exists)
}

// NewUniqueWith is NewUnique with a caller-supplied generator
func NewUniqueWith(ctx context.Context, gen Generator, maxAttempts int, exists ExistsFunc) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := gen()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check id %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, maxAttempts)
}
