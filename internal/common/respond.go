package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// WriteError renders err as {"error": CODE}. Domain rejections keep their own
// status (200 for game rules); anything else is logged and becomes SERVER_ERROR.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		log.WithError(err).Error("request failed")
		domainErr = ErrServer
	}
	WriteJSON(w, domainErr.Status, map[string]string{"error": domainErr.Code})
}

// DecodeJSON reads a small JSON request body into v.
// An empty body leaves v zero so the domain rejects it with its own code.
// A malformed body becomes ErrBadRequest.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return ErrBadRequest
	}
	return nil
}
