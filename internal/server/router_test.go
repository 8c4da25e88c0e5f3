package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/features/admin"
	"github.com/sunusimusa/scratch-app/internal/features/cooldown"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
	"github.com/sunusimusa/scratch-app/internal/features/game"
	"github.com/sunusimusa/scratch-app/internal/features/rewards"
	"github.com/sunusimusa/scratch-app/internal/server/middleware"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, health Pinger, adminHash string) http.Handler {
	t.Helper()
	return newTestRouterWithProxy(t, health, adminHash, false)
}

func newTestRouterWithProxy(t *testing.T, health Pinger, adminHash string, trustProxy bool) http.Handler {
	t.Helper()
	store := economy.NewMemoryStore()
	svc := game.NewService(store, rewards.DefaultTables(),
		cooldown.NewGate(20, 30*time.Minute, 24*time.Hour),
		rewards.NewRoller(nil), game.DefaultSettings(), nil)
	sessions := middleware.NewSessions("sid", false)
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Close)

	opts := Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Sessions:       sessions,
		Limiter:        limiter,
		Game:           game.NewHandler(svc, sessions),
		Health:         health,
		TrustProxy:     trustProxy,
	}
	if adminHash != "" {
		opts.Admin = admin.NewHandler(admin.NewService(adminHash, svc, nil))
	}
	return NewRouter(opts)
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t, pinger{}, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	newTestRouter(t, pinger{err: errors.New("down")}, "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouter_CORSAllowsCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/scratch", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	newTestRouter(t, nil, "").ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_AdminRoutesOnlyWithHash(t *testing.T) {
	body := `{"sessionId":"x","grant":{"energy":5}}`

	rr := httptest.NewRecorder()
	newTestRouter(t, nil, "").ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/grant", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	hash := admin.HashPassword("s3cret", []byte("0123456789abcdef"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/grant", strings.NewReader(body))
	req.Header.Set(admin.PasswordHeader, "wrong")
	rr = httptest.NewRecorder()
	newTestRouter(t, nil, hash).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"UNAUTHORIZED"}`, rr.Body.String())
}

func wrongPasswordFrom(t *testing.T, h http.Handler, realIP string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/grant",
		strings.NewReader(`{"sessionId":"x","grant":{"energy":5}}`))
	req.Header.Set(admin.PasswordHeader, "wrong")
	req.Header.Set("X-Real-IP", realIP)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_AdminLockoutIgnoresForwardedHeaders(t *testing.T) {
	hash := admin.HashPassword("s3cret", []byte("0123456789abcdef"))
	h := newTestRouter(t, nil, hash)

	// GIVEN: every guess claims a different client address
	for i := 1; i <= admin.MaxFailedAttempts; i++ {
		rr := wrongPasswordFrom(t, h, fmt.Sprintf("10.0.0.%d", i))
		require.Equal(t, http.StatusUnauthorized, rr.Code, "attempt %d", i)
	}

	// THEN: the peer address is still locked out
	rr := wrongPasswordFrom(t, h, "10.0.0.99")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":"TOO_MANY_ATTEMPTS"}`, rr.Body.String())
}

func TestRouter_TrustProxyUsesForwardedAddress(t *testing.T) {
	hash := admin.HashPassword("s3cret", []byte("0123456789abcdef"))
	h := newTestRouterWithProxy(t, nil, hash, true)

	for i := 1; i <= admin.MaxFailedAttempts; i++ {
		require.Equal(t, http.StatusUnauthorized, wrongPasswordFrom(t, h, "10.0.0.1").Code)
	}

	// Behind a trusted proxy the forwarded address is the client.
	assert.Equal(t, http.StatusTooManyRequests, wrongPasswordFrom(t, h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPasswordFrom(t, h, "10.0.0.2").Code)
}
