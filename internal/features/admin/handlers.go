package admin

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sunusimusa/scratch-app/internal/common"
)

// PasswordHeader carries the admin password.
const PasswordHeader = "X-Admin-Password"

// Handler serves the admin API.
type Handler struct {
	svc *Service
}

// NewHandler creates the admin handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the admin routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/grant", h.Grant)
}

// Grant handles POST /api/admin/grant.
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	res, err := h.svc.Grant(r.Context(), clientIP(r), r.Header.Get(PasswordHeader), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
