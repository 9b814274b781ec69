package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpass/internal/shared/middleware"
)

type tokenAsUser struct{}

func (tokenAsUser) Verify(token string) (string, error) { return token, nil }

type staffOnly struct{}

func (staffOnly) HasPermission(_ context.Context, userID, _ string) (bool, error) {
	return userID == "staff", nil
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	guard := middleware.NewGuard(tokenAsUser{}, staffOnly{}, quietLogger())
	noLimit := func(c *gin.Context) { c.Next() }
	SetupAttendanceRoutes(router.Group("/api/v1"), NewController(svc, quietLogger()), guard, noLimit)
	return router
}

func send(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func exceptionOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	s, _ := body["exception"].(string)
	return s
}

func TestController_Track(t *testing.T) {
	svc, _, mock := newTestService(t, true)
	router := setupRouter(svc)

	mock.ExpectTxPipeline()
	mock.ExpectIncrBy("eventpass:guest_count:R", 3).SetVal(3)
	mock.ExpectTxPipelineExec()

	w := send(router, http.MethodPost, "/api/v1/rooms/R/track", "staff", TrackRequest{Operation: "Enter", TicketID: "T"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	w = send(router, http.MethodPost, "/api/v1/rooms/VIP/track", "staff", TrackRequest{Operation: "enter", TicketID: "T"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeTicketNotPermitted, exceptionOf(t, w))

	w = send(router, http.MethodPost, "/api/v1/rooms/nowhere/track", "staff", TrackRequest{Operation: "enter", TicketID: "T"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeRoomNotFound, exceptionOf(t, w))

	w = send(router, http.MethodPost, "/api/v1/rooms/R/track", "staff", TrackRequest{Operation: "enter", TicketID: "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeTicketNotFound, exceptionOf(t, w))

	w = send(router, http.MethodPost, "/api/v1/rooms/R/track", "staff", map[string]string{"operation": "teleport", "ticket_id": "T"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", exceptionOf(t, w))
}

func TestController_TrackNeedsPermission(t *testing.T) {
	svc, _, mock := newTestService(t, true)
	router := setupRouter(svc)

	w := send(router, http.MethodPost, "/api/v1/rooms/R/track", "alice", TrackRequest{Operation: "enter", TicketID: "T"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "PERMISSION_DENIED", exceptionOf(t, w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestController_GuestCount(t *testing.T) {
	svc, _, mock := newTestService(t, true)
	router := setupRouter(svc)

	mock.ExpectGet("eventpass:guest_count:R").RedisNil()

	w := send(router, http.MethodGet, "/api/v1/rooms/R/guests", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "guest_count", body["type"])
	assert.EqualValues(t, 0, body["count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestController_Wristbands(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	router := setupRouter(svc)

	req := BindWristbandRequest{WristbandID: "W-1", ReserverID: "alice", TicketID: "T"}

	w := send(router, http.MethodPost, "/api/v1/wristbands", "staff", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(router, http.MethodPost, "/api/v1/wristbands", "staff", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeWristbandAlreadyUsed, exceptionOf(t, w))

	w = send(router, http.MethodGet, "/api/v1/wristbands/W-1", "staff", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(router, http.MethodGet, "/api/v1/wristbands/W-404", "staff", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, codeWristbandNotFound, exceptionOf(t, w))
}
