package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileClient_Provision(t *testing.T) {
	var got ProvisionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/profiles", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := NewProfileClient(NewClient("profile", srv.URL, time.Second)).Provision(context.Background(), "u1", "ann@example.com")

	require.NoError(t, err)
	assert.Equal(t, ProvisionRequest{UserID: "u1", DisplayName: "ann", Region: "RU"}, got)
}

func TestDisplayNameFromEmail(t *testing.T) {
	assert.Equal(t, "ann", DisplayNameFromEmail("ann@example.com"))
	assert.Equal(t, "no-at-sign", DisplayNameFromEmail("no-at-sign"))
}
