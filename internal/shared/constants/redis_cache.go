package constants

import (
	"fmt"
	"time"
)

// Redis key layout
// Pattern: eventpass:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_REALTIME_SHORT = 30 * time.Second // event listings carry taken capacity
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "eventpass"
)

// ================== EVENTS MODULE ==================

// Event Cache Keys. Display only, never read for capacity decisions.
const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:" // + event-id
	CACHE_KEY_EVENTS_ALL   = CACHE_PREFIX + ":events:*"       // invalidation pattern
)

// Event Cache TTLs
const (
	TTL_EVENT_LIST   = TTL_REALTIME_SHORT
	TTL_EVENT_DETAIL = TTL_REALTIME_SHORT
)

// ================== ATTENDANCE MODULE ==================

// Live guest counters. Owned by INCRBY/DECRBY, never cached.
const (
	KEY_GUEST_COUNT = CACHE_PREFIX + ":guest_count:" // + room-id
)

// ================== RATE LIMIT MODULE ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":rate_limit"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventDetailKey creates the cache key for one event
func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

// BuildGuestCountKey creates the counter key for a room
func BuildGuestCountKey(roomID string) string {
	return KEY_GUEST_COUNT + roomID
}

// BuildRateLimitKey creates the sliding window key for a client and endpoint class
func BuildRateLimitKey(limitType, clientID string) string {
	return fmt.Sprintf("%s:%s:%s", KEY_RATE_LIMIT, limitType, clientID)
}
