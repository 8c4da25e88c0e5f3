package shop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

func newRecord() *economy.Record {
	return economy.NewRecord("s", "C", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
}

func TestBuy(t *testing.T) {
	tests := []struct {
		item        string
		setup       func(*economy.Record)
		wantEnergy  int64
		wantBalance func(*economy.Record) int64
	}{
		{"POINTS", func(r *economy.Record) { r.Points = 150 }, 10, func(r *economy.Record) int64 { return r.Points }},
		{"gold", func(r *economy.Record) { r.Gold = 1 }, 15, func(r *economy.Record) int64 { return r.Gold }},
		{"DIAMOND", func(r *economy.Record) { r.Diamond = 2 }, 50, func(r *economy.Record) int64 { return r.Diamond }},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			rec := newRecord()
			tt.setup(rec)
			before := tt.wantBalance(rec)

			item, err := DefaultCatalog().Buy(rec, tt.item)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEnergy, rec.Energy)
			spent := item.Price.Points + item.Price.Gold + item.Price.Diamond
			assert.Equal(t, before-spent, tt.wantBalance(rec))
		})
	}
}

func TestBuy_Rejections(t *testing.T) {
	tests := []struct {
		item string
		want error
	}{
		{"POINTS", common.ErrNotEnoughPoints},
		{"GOLD", common.ErrNotEnoughGold},
		{"DIAMOND", common.ErrNotEnoughDiamond},
		{"SWORD", common.ErrInvalidItem},
		{"", common.ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			rec := newRecord()
			rec.Points = 99
			before := rec.Clone()

			_, err := DefaultCatalog().Buy(rec, tt.item)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, rec)
		})
	}
}

func TestItems_KeepOrder(t *testing.T) {
	var keys []string
	for _, it := range DefaultCatalog().Items() {
		keys = append(keys, it.Key)
	}
	assert.Equal(t, []string{"POINTS", "GOLD", "DIAMOND"}, keys)
}
