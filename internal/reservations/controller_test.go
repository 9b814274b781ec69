package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpass/internal/shared/middleware"
)

type tokenAsUser struct{}

func (tokenAsUser) Verify(token string) (string, error) {
	if token == "bad" {
		return "", errors.New("bad token")
	}
	return token, nil
}

type permissionSet map[string]bool

func (p permissionSet) HasPermission(_ context.Context, userID, name string) (bool, error) {
	return p[userID+":"+name], nil
}

func setupRouter(t *testing.T, h *harness) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	guard := middleware.NewGuard(tokenAsUser{}, permissionSet{"staff:" + PermissionForceReserve: true}, quietLogger())
	noLimit := func(c *gin.Context) { c.Next() }
	SetupReservationRoutes(router.Group("/api/v1"), NewController(h.service, quietLogger()), guard, noLimit)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestController_ReserveRequiresUser(t *testing.T) {
	router := setupRouter(t, newHarness(newEvent("E", nil)))

	w := doJSON(router, http.MethodPost, "/api/v1/reservations", "", ReserveRequest{EventID: "E"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "USER_AUTHENTICATION_FAILED", decode(t, w)["exception"])

	w = doJSON(router, http.MethodPost, "/api/v1/reservations", "bad", ReserveRequest{EventID: "E"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestController_ReserveLifecycle(t *testing.T) {
	h := newHarness(newEvent("E", intPtr(2)))
	router := setupRouter(t, h)

	w := doJSON(router, http.MethodPost, "/api/v1/reservations", "alice", ReserveRequest{EventID: "E", Tickets: adults(2)})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "reserve", body["type"])
	assert.Equal(t, "RESERVED", body["status"])
	reservation := body["reservation"].(map[string]interface{})
	id := reservation["reservation_id"].(string)
	assert.EqualValues(t, 2, reservation["headcount"])

	w = doJSON(router, http.MethodPost, "/api/v1/reservations", "bob", ReserveRequest{EventID: "E", Tickets: adults(1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = decode(t, w)
	assert.Equal(t, "CAPACITY_OVER", body["exception"])
	assert.Equal(t, ReserveCapacityOver.Message(), body["display_string"])

	w = doJSON(router, http.MethodGet, "/api/v1/reservations/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/reservations/"+id, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/reservations/"+id, "alice", ModifyRequest{Tickets: adults(1)})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "modify", body["type"])
	assert.EqualValues(t, -1, body["delta"])

	w = doJSON(router, http.MethodDelete, "/api/v1/reservations/"+id, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "CANCELLED", body["status"])
	assert.Equal(t, 0, h.events.taken("E"))

	w = doJSON(router, http.MethodDelete, "/api/v1/reservations/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RESERVATION_NOT_FOUND", decode(t, w)["exception"])
}

func TestController_ReserveUnknownEvent(t *testing.T) {
	router := setupRouter(t, newHarness())

	w := doJSON(router, http.MethodPost, "/api/v1/reservations", "alice", ReserveRequest{EventID: "nope", Tickets: adults(1)})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EVENT_NOT_FOUND", decode(t, w)["exception"])
}

func TestController_ReserveMalformedBody(t *testing.T) {
	router := setupRouter(t, newHarness(newEvent("E", nil)))

	w := doJSON(router, http.MethodPost, "/api/v1/reservations", "alice", map[string]interface{}{"tickets": adults(1)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w)["exception"])
}

func TestController_ForceReserveNeedsPermission(t *testing.T) {
	h := newHarness(newEvent("E", nil))
	router := setupRouter(t, h)
	req := ForceReserveRequest{EventID: "E", Tickets: adults(1), Note: "door"}

	w := doJSON(router, http.MethodPost, "/api/v1/reservations/force", "alice", req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "PERMISSION_DENIED", decode(t, w)["exception"])

	w = doJSON(router, http.MethodPost, "/api/v1/reservations/force", "staff", req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "force_reserve", decode(t, w)["type"])
	assert.Equal(t, 1, h.events.taken("E"))
}

func TestController_ListReservations(t *testing.T) {
	h := newHarness(newEvent("E", nil), newEvent("F", nil))
	router := setupRouter(t, h)

	doJSON(router, http.MethodPost, "/api/v1/reservations", "alice", ReserveRequest{EventID: "E", Tickets: adults(1)})
	doJSON(router, http.MethodPost, "/api/v1/reservations", "alice", ReserveRequest{EventID: "F", Tickets: adults(1)})

	w := doJSON(router, http.MethodGet, "/api/v1/reservations", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "reservations", body["type"])
	assert.Len(t, body["reservations"], 2)
}
