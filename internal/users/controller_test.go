package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventpass/internal/shared/middleware"
	"eventpass/pkg/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

type tokenAsUser struct{}

func (tokenAsUser) Verify(token string) (string, error) { return token, nil }

type noPermissions struct{}

func (noPermissions) HasPermission(context.Context, string, string) (bool, error) { return false, nil }

func setupRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWithWriter(io.Discard, "error")

	router := gin.New()
	guard := middleware.NewGuard(tokenAsUser{}, noPermissions{}, log)
	SetupUserRoutes(router.Group("/api/v1"), NewController(NewService(repo, log)), guard)
	return router
}

func post(router *gin.Engine, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func exception(w *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	s, _ := body["exception"].(string)
	return s
}

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, "alice").Return(nil, ErrUserNotFound).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.ID == "alice" && u.FirstName == "Alice" && u.LastName == "Smith"
	})).Return(nil).Once()

	w := post(setupRouter(repo), "alice", `{"first_name":" Alice ","last_name":"Smith"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		body      string
		setup     func(*MockRepository)
		status    int
		exception string
	}{
		{
			name:      "no token",
			body:      `{"first_name":"A","last_name":"B"}`,
			setup:     func(*MockRepository) {},
			status:    http.StatusUnauthorized,
			exception: "USER_AUTHENTICATION_FAILED",
		},
		{
			name:      "missing last name",
			token:     "alice",
			body:      `{"first_name":"A"}`,
			setup:     func(*MockRepository) {},
			status:    http.StatusBadRequest,
			exception: "INVALID_REQUEST",
		},
		{
			name:  "already registered",
			token: "alice",
			body:  `{"first_name":"A","last_name":"B"}`,
			setup: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, "alice").Return(&User{ID: "alice"}, nil)
			},
			status:    http.StatusConflict,
			exception: CodeAlreadyRegistered,
		},
		{
			name:  "lost race on insert",
			token: "alice",
			body:  `{"first_name":"A","last_name":"B"}`,
			setup: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, "alice").Return(nil, ErrUserNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(ErrAlreadyRegistered)
			},
			status:    http.StatusConflict,
			exception: CodeAlreadyRegistered,
		},
		{
			name:  "store down",
			token: "alice",
			body:  `{"first_name":"A","last_name":"B"}`,
			setup: func(m *MockRepository) {
				m.On("GetByID", mock.Anything, "alice").Return(nil, errors.New("connection reset"))
			},
			status:    http.StatusInternalServerError,
			exception: "INTERNAL_EXCEPTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setup(repo)

			w := post(setupRouter(repo), tt.token, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.exception, exception(w))
		})
	}
}

func TestGetProfile(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, "alice").Return(&User{ID: "alice", FirstName: "Alice"}, nil)
	repo.On("GetByID", mock.Anything, "bob").Return(nil, ErrUserNotFound)
	router := setupRouter(repo)

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, get("alice").Code)

	w := get("bob")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeUserNotFound, exception(w))
}
