package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{5, "points", "+5 Points"},
		{1, "points", "+1 Point"},
		{3, "energy", "+3 Energy"},
		{1, "diamond", "+1 Diamond"},
		{2, "diamond", "+2 Diamonds"},
		{-3, "energy", "-3 Energy"},
		{7, "stars", "+7 stars"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.currency))
	}
}

func TestDayString_IsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:00 local is still the previous day in UTC.
	ts := time.Date(2026, 3, 11, 2, 0, 0, 0, loc)

	assert.Equal(t, "2026-03-10", DayString(ts))
}

func TestFromMillis(t *testing.T) {
	assert.True(t, FromMillis(0).IsZero())

	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, ts.Equal(FromMillis(UnixMillis(ts))))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, ClampInt(-5, 0, 100))
	assert.Equal(t, 100, ClampInt(140, 0, 100))
	assert.Equal(t, 42, ClampInt(42, 0, 100))
}

func TestError_MatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("scratch: %w", ErrNoEnergy)

	assert.ErrorIs(t, wrapped, ErrNoEnergy)
	assert.NotErrorIs(t, wrapped, ErrCooldown)
	assert.Equal(t, "NO_ENERGY: not enough energy to scratch", ErrNoEnergy.Error())
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, fmt.Errorf("wrapped: %w", ErrAlreadySpun))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"error":"ALREADY_SPUN"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteError(rr, errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"SERVER_ERROR"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	WriteError(rr, ErrConflict)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Code string `json:"code"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"AB12CD34"}`))
	assert.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "AB12CD34", v.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, DecodeJSON(req, &v), ErrBadRequest)

	// An empty body decodes to the zero value.
	v.Code = ""
	req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	assert.NoError(t, DecodeJSON(req, &v))
	assert.Empty(t, v.Code)
}
