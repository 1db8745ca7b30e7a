package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/melody/internal/infrastructure/configs"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/metrics"
	"github.com/hilthontt/melody/internal/infrastructure/ratelimiter"
	healthHandler "github.com/hilthontt/melody/internal/presentation/handler/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoutes struct{}

func (stubRoutes) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func (stubRoutes) InternalRoutes(r chi.Router) {
	r.Post("/internal/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
}

func newTestApp(limiter ratelimiter.Limiter) http.Handler {
	app := NewApplication(
		configs.Config{},
		"test",
		stubRoutes{},
		healthHandler.NewHandler("test"),
		logging.NewNop(),
		limiter,
		metrics.New("test"),
	)
	return app.Mount()
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMount_Routes(t *testing.T) {
	h := newTestApp(nil)

	for _, path := range []string{"/health", "/healthz", "/ready", "/live"} {
		rec := serve(h, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"service":"test"`)
	}

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodGet, APIPrefix+"/ping").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusAccepted, serve(h, http.MethodPost, "/internal/ping").Code)

	rec := serve(h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "melody_http_requests_total"))
}

func TestMount_RateLimitsPublicRoutes(t *testing.T) {
	h := newTestApp(ratelimiter.New(ratelimiter.Config{MaxRatePerSecond: 1, MaxBurst: 1}))

	first := serve(h, http.MethodGet, APIPrefix+"/ping")
	require.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := serve(h, http.MethodGet, APIPrefix+"/ping")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health").Code)
}

func TestMount_CorsPreflight(t *testing.T) {
	h := newTestApp(nil)
	req := httptest.NewRequest(http.MethodOptions, APIPrefix+"/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func freePort(t *testing.T) uint16 {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return uint16(l.Addr().(*net.TCPAddr).Port)
}

func TestRun_StopsWhenContextIsCancelled(t *testing.T) {
	cfg := configs.Config{}
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = freePort(t)

	app := NewApplication(cfg, "test", stubRoutes{}, healthHandler.NewHandler("test"), logging.NewNop(), nil, metrics.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, app.Mount()) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.HTTP.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
