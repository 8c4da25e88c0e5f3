// Package common: errors.go defines the errors shared by every module of the service.
// Domain rejections carry the code the client sees in {"error": CODE};
// handlers tell them apart from infrastructure failures with errors.As.
package common

import (
	"errors"
	"net/http"
)

// Error is a domain rejection. Nothing is persisted when an action returns one.
type Error struct {
	Code   string // Wire code, e.g. "NO_ENERGY"
	Msg    string // Human-readable description for logs
	Status int    // HTTP status used by the handlers
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Msg
}

// Is matches errors by code, so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code, msg string) *Error {
	return &Error{Code: code, Msg: msg, Status: http.StatusOK}
}

// Session errors
var (
	// ErrNoSession: the request carries no session cookie
	ErrNoSession = newError("NO_SESSION", "session cookie is missing")
	// ErrNoUser: no economy record exists for the session
	ErrNoUser = newError("NO_USER", "no economy record for this session")
)

// Cooldown and cost errors
var (
	ErrDailyAlreadyClaimed = newError("DAILY_ALREADY_CLAIMED", "daily energy already claimed today")
	ErrAdsLimitReached     = newError("ADS_LIMIT_REACHED", "daily ad limit reached")
	ErrNoEnergy            = newError("NO_ENERGY", "not enough energy to scratch")
	ErrAlreadySpun         = newError("ALREADY_SPUN", "wheel already spun today")
	ErrCooldown            = newError("COOLDOWN", "action is cooling down")
)

// Referral errors
var (
	ErrAlreadyReferred = newError("ALREADY_REFERRED", "a referral code was already claimed")
	ErrSelfReferral    = newError("SELF_REFERRAL", "cannot claim your own referral code")
	ErrInvalidCode     = newError("INVALID_CODE", "referral code does not exist")
)

// Shop errors
var (
	ErrNotEnoughPoints  = newError("NOT_ENOUGH_POINTS", "not enough points")
	ErrNotEnoughGold    = newError("NOT_ENOUGH_GOLD", "not enough gold")
	ErrNotEnoughDiamond = newError("NOT_ENOUGH_DIAMOND", "not enough diamond")
	ErrInvalidItem      = newError("INVALID_ITEM", "unknown shop item")
)

// Admin errors
var (
	ErrUnauthorized    = &Error{Code: "UNAUTHORIZED", Msg: "wrong admin password", Status: http.StatusUnauthorized}
	ErrTooManyAttempts = &Error{Code: "TOO_MANY_ATTEMPTS", Msg: "too many attempts, wait an hour", Status: http.StatusTooManyRequests}
	ErrInvalidAmount   = newError("INVALID_AMOUNT", "amounts must not be negative")
)

// Transport errors
var (
	ErrConflict    = &Error{Code: "CONFLICT", Msg: "record changed concurrently, retry", Status: http.StatusConflict}
	ErrRateLimited = &Error{Code: "RATE_LIMITED", Msg: "too many requests", Status: http.StatusTooManyRequests}
	ErrBadRequest  = &Error{Code: "BAD_REQUEST", Msg: "malformed request body", Status: http.StatusBadRequest}
	ErrServer      = &Error{Code: "SERVER_ERROR", Msg: "internal error", Status: http.StatusInternalServerError}
)

// Storage errors. These never reach the client as-is.
var (
	ErrRecordNotFound        = errors.New("economy record not found")
	ErrSessionExists         = errors.New("economy record already exists for session")
	ErrDuplicateReferralCode = errors.New("referral code already taken")
)
