package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccessKeepsOperationType(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusOK, "reserve", gin.H{"status": "RESERVED", "type": "ignored"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reserve", body["type"])
	assert.Equal(t, "RESERVED", body["status"])
}

func TestExceptionEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Exception(c, http.StatusNotFound, "EVENT_NOT_FOUND", "Event does not exist.")

	var body ExceptionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EVENT_NOT_FOUND", body.Exception)
	assert.Equal(t, "Event does not exist.", body.DisplayString)
}

func TestInternalHidesDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Internal(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"exception":"INTERNAL_EXCEPTION","display_string":"Something went wrong. Please try again later."}`, w.Body.String())
}
