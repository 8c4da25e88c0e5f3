package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/common"
)

// Recoverer turns a handler panic into a logged 500 SERVER_ERROR.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.WithFields(log.Fields{
				"component":  "panic_recovery",
				"panic":      fmt.Sprintf("%v", rec),
				"stack":      string(debug.Stack()),
				"request_id": chimw.GetReqID(r.Context()),
				"path":       r.URL.Path,
			}).Error("Panic in handler, recovered")
			common.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": common.ErrServer.Code})
		}()
		next.ServeHTTP(w, r)
	})
}
