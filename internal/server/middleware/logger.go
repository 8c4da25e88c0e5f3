// Package middleware holds the HTTP middlewares: request logging, panic
// recovery, rate limiting and the session cookie.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs every request once it completes.
// Logged: method, path, status, duration, request id, session.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		entry := log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": chimw.GetReqID(r.Context()),
			"session":    shortID(SessionID(r.Context())),
		})
		if ww.Status() >= http.StatusInternalServerError {
			entry.Warn("Request failed")
			return
		}
		entry.Debug("Request")
	})
}

// shortID keeps session ids out of logs in full.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
