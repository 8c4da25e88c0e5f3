// Package shop converts tiered currencies into energy.
package shop

import (
	"strings"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// Item is a shop offer: pay Price, receive Gives.
type Item struct {
	Key   string        `json:"key"`
	Price economy.Grant `json:"price"`
	Gives economy.Grant `json:"gives"`
}

// Catalog maps item keys to offers.
type Catalog struct {
	items map[string]Item
	order []string
}

// DefaultCatalog returns the standard offers:
//
//	POINTS:  100 points → 10 energy
//	GOLD:    1 gold     → 15 energy
//	DIAMOND: 1 diamond  → 50 energy
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Item{Key: "POINTS", Price: economy.Grant{Points: 100}, Gives: economy.Grant{Energy: 10}},
		Item{Key: "GOLD", Price: economy.Grant{Gold: 1}, Gives: economy.Grant{Energy: 15}},
		Item{Key: "DIAMOND", Price: economy.Grant{Diamond: 1}, Gives: economy.Grant{Energy: 50}},
	)
}

// NewCatalog creates a catalog listing items in the given order.
func NewCatalog(items ...Item) *Catalog {
	c := &Catalog{items: make(map[string]Item, len(items))}
	for _, it := range items {
		c.items[it.Key] = it
		c.order = append(c.order, it.Key)
	}
	return c
}

// Items returns the offers in display order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.items[key])
	}
	return out
}

// Buy charges rec for item and credits what it gives.
// Rejections leave rec untouched.
func (c *Catalog) Buy(rec *economy.Record, key string) (Item, error) {
	item, ok := c.items[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return Item{}, common.ErrInvalidItem
	}

	switch {
	case rec.Points < item.Price.Points:
		return Item{}, common.ErrNotEnoughPoints
	case rec.Gold < item.Price.Gold:
		return Item{}, common.ErrNotEnoughGold
	case rec.Diamond < item.Price.Diamond:
		return Item{}, common.ErrNotEnoughDiamond
	case rec.Energy < item.Price.Energy:
		return Item{}, common.ErrNoEnergy
	}

	rec.Energy -= item.Price.Energy
	rec.Points -= item.Price.Points
	rec.Gold -= item.Price.Gold
	rec.Diamond -= item.Price.Diamond
	item.Gives.Apply(rec)
	return item, nil
}
