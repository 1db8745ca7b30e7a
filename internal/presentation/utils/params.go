package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/melody/internal/infrastructure/json"
)

// UserHeader carries the caller's id when a gateway has already
// authenticated the request; the query parameter wins when both are set.
const UserHeader = "X-User-ID"

// RequireSubject returns the id named by query parameter name, or the
// UserHeader value. It writes a 400 and returns false when neither is set.
func RequireSubject(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get(name))
	if id == "" {
		id = strings.TrimSpace(r.Header.Get(UserHeader))
	}
	if id == "" {
		json.WriteBadRequestError(w, fmt.Sprintf("%s query parameter is required", name))
		return "", false
	}
	return id, true
}

// RequireURLParam writes a 400 and returns false when the route parameter is empty.
func RequireURLParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := chi.URLParam(r, name)
	if v == "" {
		json.WriteBadRequestError(w, fmt.Sprintf("%s is missing", name))
		return "", false
	}
	return v, true
}

func QueryBool(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return v, nil
}

func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
