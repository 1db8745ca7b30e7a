package json

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hilthontt/melody/internal/errs"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestRead(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ann@example.com","password":"s3cretpass"}`))

	var req registerRequest
	require.NoError(t, Read(r, &req))
	assert.Equal(t, "ann@example.com", req.Email)
}

func TestRead_ValidationMessagesUseJSONNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short"}`))

	var req registerRequest
	err := Read(r, &req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestRead_BadJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

	var req registerRequest
	assert.Error(t, Read(r, &req))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{errs.New(errs.ErrNotFound, "missing"), http.StatusNotFound},
		{errs.New(errs.ErrConflict, "dup"), http.StatusConflict},
		{errs.New(errs.ErrUnauthorized, "who"), http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", errs.New(errs.ErrUnavailable, "down")), http.StatusServiceUnavailable},
		{collab.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWriteDomainError_HidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()

	status := WriteDomainError(rec, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()

	Write(rec, http.StatusCreated, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
}
