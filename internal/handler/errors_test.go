package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"collabtask/internal/logging"
	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", service.ErrInvalidInput, http.StatusBadRequest, "Invalid input"},
		{"auth", service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, service.ErrForbidden.Message},
		{"not found", service.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"conflict", service.ErrDuplicateEmail, http.StatusConflict, "User with this email already exists"},
		{"wrapped domain error", fmt.Errorf("update: %w", service.ErrProjectNotFound), http.StatusNotFound, "Project not found"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(resp)
			c.Request = httptest.NewRequest("GET", "/", nil)

			respondError(c, logging.Discard(), tc.err)

			assert.Equal(t, tc.status, resp.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestRespondError_Details(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest("POST", "/create_project", nil)

	err := &service.Error{
		Kind:       service.KindValidation,
		Code:       service.ErrInvalidMember.Code,
		Message:    service.ErrInvalidMember.Message,
		DetailsKey: "invalidMembers",
		Details:    []string{"u1", "u2"},
	}
	respondError(c, logging.Discard(), err)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Some member IDs are invalid.","invalidMembers":["u1","u2"]}`, resp.Body.String())
}
