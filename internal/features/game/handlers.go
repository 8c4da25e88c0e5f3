// Package game: handlers.go maps the /api routes onto Service actions.
// Domain rejections are answered as {"error": CODE} with status 200;
// infrastructure failures as 500 SERVER_ERROR.
package game

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/server/middleware"
)

// Handler serves player actions.
type Handler struct {
	svc      *Service
	sessions *middleware.Sessions
}

// NewHandler creates the player API handler.
func NewHandler(svc *Service, sessions *middleware.Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Routes registers the player routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/user", h.CreateUser)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/achievements", h.Achievements)
	r.Get("/shop", h.ShopItems)

	r.Post("/daily-energy", h.DailyEnergy)
	r.Post("/ads/watch", h.WatchAd)
	r.Post("/scratch", h.Scratch)
	r.Post("/spin", h.Spin)
	r.Post("/mystery/open", h.OpenMystery)
	r.Post("/bonus", h.Bonus)
	r.Post("/referral/claim", h.ClaimReferral)
	r.Post("/streak", h.Streak)
	r.Post("/shop/buy", h.Buy)
}

// CreateUser handles POST /api/user: issues a session cookie when missing
// and returns the (possibly new) record.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessions.Ensure(w, r)
	res, err := h.svc.GetOrCreate(r.Context(), sessionID)
	reply(w, res, err)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Dashboard(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) Achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Achievements(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"achievements": list,
	})
}

func (h *Handler) ShopItems(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   h.svc.Shop(),
	})
}

func (h *Handler) DailyEnergy(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClaimDailyEnergy(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) WatchAd(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.WatchAd(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) Scratch(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Scratch(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Spin(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) OpenMystery(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.OpenMystery(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) Bonus(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClaimBonus(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

func (h *Handler) Streak(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CheckInStreak(r.Context(), middleware.SessionID(r.Context()))
	reply(w, res, err)
}

type referralRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ClaimReferral(w http.ResponseWriter, r *http.Request) {
	var req referralRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.svc.ClaimReferral(r.Context(), middleware.SessionID(r.Context()), req.Code)
	reply(w, res, err)
}

type buyRequest struct {
	Item string `json:"item"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.svc.Buy(r.Context(), middleware.SessionID(r.Context()), req.Item)
	reply(w, res, err)
}

// reply writes v, or err when it is set.
func reply(w http.ResponseWriter, v any, err error) {
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}
