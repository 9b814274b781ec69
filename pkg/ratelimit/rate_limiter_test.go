package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpass/internal/shared/config"
	"eventpass/internal/shared/constants"
)

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:             true,
		WindowDuration:      time.Minute,
		DefaultRequests:     60,
		PublicRequests:      100,
		ReservationRequests: 2,
		TrackRequests:       600,
		HealthRequests:      300,
		WhitelistedIPs:      []string{"10.0.0.9"},
	}
}

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, cfg)
	rl.now = func() time.Time { return fixedNow }
	return rl, mock
}

func expectWindow(mock redismock.ClientMock, key string, limit int) *redismock.ExpectedCmd {
	return mock.ExpectEval(slidingWindowScript, []string{key},
		fixedNow.Add(-time.Minute).UnixMilli(),
		fixedNow.UnixMilli(),
		limit,
		60,
		strconv.FormatInt(fixedNow.UnixNano(), 10),
	)
}

func TestIsAllowedCountsWithinWindow(t *testing.T) {
	rl, mock := newTestLimiter(t, testConfig())
	key := constants.BuildRateLimitKey("reservation", "1.2.3.4")

	expectWindow(mock, key, 2).SetVal([]interface{}{int64(1), int64(1)})
	result, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeReservation)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)

	expectWindow(mock, key, 2).SetVal([]interface{}{int64(3), int64(0)})
	result, err = rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeReservation)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowedSkipsRedis(t *testing.T) {
	disabled := testConfig()
	disabled.Enabled = false

	tests := []struct {
		name     string
		cfg      config.RateLimitConfig
		clientID string
	}{
		{"disabled", disabled, "1.2.3.4"},
		{"whitelisted", testConfig(), "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, mock := newTestLimiter(t, tt.cfg)

			result, err := rl.IsAllowed(context.Background(), tt.clientID, RateLimitTypePublic)
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 100, result.Limit)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, mock := newTestLimiter(t, testConfig())
	key := constants.BuildRateLimitKey("reservation", "1.2.3.4")

	r := gin.New()
	r.POST("/reservations", Middleware(rl, RateLimitTypeReservation, nil), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	expectWindow(mock, key, 2).SetVal([]interface{}{int64(2), int64(0)})
	w := send()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	expectWindow(mock, key, 2).SetVal([]interface{}{int64(3), int64(0)})
	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"exception":"RATE_LIMITED","display_string":"Too many requests. Please slow down."}`, w.Body.String())

	expectWindow(mock, key, 2).SetErr(errors.New("connection refused"))
	w = send()
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForPath(t *testing.T) {
	assert.Equal(t, RateLimitTypeHealth, ForPath("/health"))
	assert.Equal(t, RateLimitTypePublic, ForPath("/api/v1/events/:id"))
	assert.Equal(t, RateLimitTypePublic, ForPath("/api/v1/ticket-types/:id"))
	assert.Equal(t, RateLimitTypeDefault, ForPath("/api/v1/users/register"))
}
