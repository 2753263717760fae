package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"signage_server/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderError(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondError(c, err)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorKeepsDetailsOfWrappedErrors(t *testing.T) {
	err := fmt.Errorf("update schedule: %w", apperr.Validation("invalid window").WithDetail("field", "end_time"))

	status, body := renderError(t, err)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, "VALIDATION_ERROR", body.Error)
	assert.Equal(t, map[string]string{"field": "end_time"}, body.Details)
}

func TestRespondErrorHidesInternalMessages(t *testing.T) {
	status, body := renderError(t, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Empty(t, body.Details)
}
