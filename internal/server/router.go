// Package server assembles the HTTP router.
//
// Middleware order:
//  1. RequestID, RealIP (only with TrustProxy; it rewrites RemoteAddr from client headers)
//  2. Session cookie (so later middlewares can see the session)
//  3. Request logging (logrus)
//  4. Panic recovery
//  5. CORS with credentials for the browser client
//  6. Per-session rate limiting on /api
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/admin"
	"github.com/sunusimusa/scratch-app/internal/features/game"
	"github.com/sunusimusa/scratch-app/internal/server/middleware"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewRouter.
type Options struct {
	AllowedOrigins []string
	Sessions       *middleware.Sessions
	Limiter        *middleware.RateLimiter
	Game           *game.Handler
	Admin          *admin.Handler // nil disables the admin routes
	Health         Pinger
	TrustProxy     bool // take the client address from X-Real-IP / X-Forwarded-For
}

// NewRouter creates the router with all routes configured.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(opts.Sessions.Middleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", admin.PasswordHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(opts.Health))

	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		opts.Game.Routes(r)
		if opts.Admin != nil {
			r.Route("/admin", opts.Admin.Routes)
		}
	})

	return r
}

func healthz(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if p != nil {
			if err := p.Ping(ctx); err != nil {
				common.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
