package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/apperr"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Unauthenticated, http.StatusUnauthorized},
		{apperr.Forbidden, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.InvalidArgument, http.StatusBadRequest},
		{apperr.InvalidState, http.StatusBadRequest},
		{apperr.Conflict, http.StatusConflict},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.kind))
		})
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "classified",
			err:      apperr.New(apperr.NotFound, "Opportunity not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"message":"Opportunity not found"}`,
		},
		{
			name:     "wrapped classified",
			err:      fmt.Errorf("lookup: %w", apperr.New(apperr.Conflict, "Player already registered")),
			wantCode: http.StatusConflict,
			wantBody: `{"message":"Player already registered"}`,
		},
		{
			name:     "unclassified hides detail",
			err:      errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"message":"Server error"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			Error(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}

func TestMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Message(c, http.StatusOK, "Logged out")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out"}`, w.Body.String())
}
