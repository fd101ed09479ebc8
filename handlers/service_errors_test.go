package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shoplens/assistant-proxy/services"
	"github.com/shoplens/assistant-proxy/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "method not allowed",
			err:         services.ErrMethodNotAllowed,
			wantStatus:  http.StatusMethodNotAllowed,
			wantError:   "method_not_allowed",
			wantMessage: "Only POST is supported",
		},
		{
			name:        "invalid action carries its message",
			err:         services.NewDomainError(services.ErrorTypeInvalidAction, `unsupported action "translate"`, nil),
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: `unsupported action "translate"`,
		},
		{
			name:        "missing credential collapses to generic message",
			err:         services.ErrMissingCredential,
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Server is misconfigured",
		},
		{
			name:        "upstream failure collapses to generic message",
			err:         services.WrapUpstream("upstream request failed", errors.New("429 quota exceeded details")),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Upstream request failed",
		},
		{
			name:        "internal error keeps short message",
			err:         services.WrapInternal("malformed request body", errors.New("unexpected EOF")),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "malformed request body",
		},
		{
			name:        "unknown error falls through to generic 500",
			err:         errors.New("plain error"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleServiceError(rec, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp utils.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestHandleServiceError_NeverLeaksWrappedCause(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleServiceError(rec, services.WrapUpstream("upstream request failed",
		errors.New(`{"error":{"message":"API key not valid"}}`)), zap.NewNop())

	assert.NotContains(t, rec.Body.String(), "API key not valid")
}

func TestHandleServiceError_NilError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleServiceError(rec, nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
