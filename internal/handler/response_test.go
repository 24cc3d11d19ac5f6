package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/robotics-league/internal/apperror"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("name", "name is required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("sign in required"), http.StatusUnauthorized, "unauthorized"},
		{"no such account", apperror.NoSuchAccount("a@b.c"), http.StatusUnauthorized, "no_such_account"},
		{"invalid credentials", apperror.InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("team", "9"), http.StatusNotFound, "not_found"},
		{"user not found", apperror.UserNotFound("u1"), http.StatusNotFound, "not_found"},
		{"duplicate email", apperror.DuplicateEmail("a@b.c"), http.StatusConflict, "duplicate_email"},
		{"conflict", apperror.Conflict("user", "u1"), http.StatusConflict, "conflict"},
		{"wrapped", fmt.Errorf("service: %w", apperror.NotFound("team", "9")), http.StatusNotFound, "not_found"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Error)
		})
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, errors.New("sqlite: no such table users"))
	assert.NotContains(t, rr.Body.String(), "sqlite")
}

func TestWriteError_CarriesField(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, apperror.DuplicateEmail("ana@example.com"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "email", body.Field)
}
