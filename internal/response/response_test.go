package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkboard/internal/resolver"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{resolver.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
		{resolver.ErrOutOfRange, http.StatusBadRequest, CodeOutOfRange},
		{resolver.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidArgument},
		{resolver.ErrLinkNotFound, http.StatusNotFound, CodeLinkNotFound},
		{resolver.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
		{resolver.ErrInvalidPassword, http.StatusUnauthorized, CodeInvalidPassword},
		{resolver.ErrAlreadyVoted, http.StatusConflict, CodeAlreadyVoted},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := Classify(fmt.Errorf("wrapped: %w", tt.err))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestFromErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, errors.New("password authentication failed for user postgres"), "req-1")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInternal, body.Error.Code)
	assert.Equal(t, "req-1", body.Error.RequestID)
	assert.NotContains(t, body.Error.Message, "postgres")
}
