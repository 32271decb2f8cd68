package cart

import (
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/lumina-backend/internal/catalog"
)

// SnapshotLine is the persisted form of a line: identifiers only, never prices.
type SnapshotLine struct {
	ProductID       string  `json:"productId"`
	CustomizationID *string `json:"customizationId"`
	Quantity        int     `json:"quantity"`
}

// Snapshot is the value written under the cart storage key.
type Snapshot struct {
	Lines  []SnapshotLine `json:"lines"`
	IsOpen bool           `json:"isOpen"`
}

// Resolver looks catalog records up by id.
type Resolver interface {
	ProductByID(id string) (catalog.Product, bool)
	CustomizationByID(id string) (catalog.Customization, bool)
}

// Snapshot captures the current lines and drawer flag.
func (c *Cart) Snapshot() Snapshot {
	lines := make([]SnapshotLine, 0, len(c.lines))
	for _, l := range c.lines {
		sl := SnapshotLine{ProductID: l.Product.ID, Quantity: l.Quantity}
		if l.Customization != nil {
			id := l.Customization.ID
			sl.CustomizationID = &id
		}
		lines = append(lines, sl)
	}
	return Snapshot{Lines: lines, IsOpen: c.isOpen}
}

func EncodeSnapshot(s Snapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(raw), nil
}

func DecodeSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return s, nil
}

// Restore rebuilds a cart from a snapshot. Lines whose product or base colour is
// no longer in the catalog, or whose quantity is not positive, are dropped and
// reported. Repeated identities are merged.
func Restore(s Snapshot, resolver Resolver, pricing Pricing) (*Cart, []SnapshotLine) {
	c := New(pricing)
	var dropped []SnapshotLine
	for _, sl := range s.Lines {
		if sl.Quantity <= 0 {
			dropped = append(dropped, sl)
			continue
		}
		product, ok := resolver.ProductByID(sl.ProductID)
		if !ok {
			dropped = append(dropped, sl)
			continue
		}
		var customization *catalog.Customization
		if sl.CustomizationID != nil && *sl.CustomizationID != "" {
			cz, ok := resolver.CustomizationByID(*sl.CustomizationID)
			if !ok {
				dropped = append(dropped, sl)
				continue
			}
			customization = &cz
		}

		line := Line{Product: product, Customization: customization, Quantity: sl.Quantity}
		if i := c.indexOf(line.Key()); i >= 0 {
			c.lines[i].Quantity += sl.Quantity
			continue
		}
		c.lines = append(c.lines, line)
	}
	c.isOpen = s.IsOpen
	return c, dropped
}
