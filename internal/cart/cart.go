package cart

import (
	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/shopspring/decimal"
)

// Pricing holds the price rules shared by the cart and the checkout builder.
type Pricing struct {
	CustomizationSurcharge decimal.Decimal
}

// Line is one product/base-colour combination and its quantity (always >= 1).
type Line struct {
	Product       catalog.Product
	Customization *catalog.Customization
	Quantity      int
}

func (l Line) Key() LineKey {
	key := LineKey{ProductID: l.Product.ID}
	if l.Customization != nil {
		key.CustomizationID = l.Customization.ID
	}
	return key
}

// UnitPrice is the product price plus the surcharge when a base colour is chosen.
func (l Line) UnitPrice(p Pricing) decimal.Decimal {
	if l.Customization == nil {
		return l.Product.Price
	}
	return l.Product.Price.Add(p.CustomizationSurcharge)
}

func (l Line) Total(p Pricing) decimal.Decimal {
	return l.UnitPrice(p).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a single shopper's selection plus the drawer visibility flag.
// Lines keep insertion order. A Cart is not safe for concurrent use.
type Cart struct {
	lines   []Line
	isOpen  bool
	pricing Pricing
}

func New(pricing Pricing) *Cart {
	return &Cart{pricing: pricing}
}

// AddItem increments the matching line or appends a new one with quantity 1,
// then opens the drawer.
func (c *Cart) AddItem(product catalog.Product, customization *catalog.Customization) {
	line := Line{Product: product, Customization: customization, Quantity: 1}
	if i := c.indexOf(line.Key()); i >= 0 {
		c.lines[i].Quantity++
	} else {
		if customization != nil {
			cz := *customization
			line.Customization = &cz
		}
		c.lines = append(c.lines, line)
	}
	c.isOpen = true
}

// RemoveItem deletes the line with key. Missing keys are ignored.
func (c *Cart) RemoveItem(key LineKey) {
	i := c.indexOf(key)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// UpdateQuantity overwrites the quantity of the line with key.
// A quantity <= 0 removes the line. Missing keys are ignored.
func (c *Cart) UpdateQuantity(key LineKey, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(key)
		return
	}
	if i := c.indexOf(key); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Open() {
	c.isOpen = true
}

func (c *Cart) Close() {
	c.isOpen = false
}

func (c *Cart) Toggle() {
	c.isOpen = !c.isOpen
}

func (c *Cart) IsOpen() bool {
	return c.isOpen
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Line(key LineKey) (Line, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return Line{}, false
	}
	return c.lines[i], true
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalItems is the sum of line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal is the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total(c.pricing))
	}
	return total
}

func (c *Cart) Pricing() Pricing {
	return c.pricing
}

func (c *Cart) indexOf(key LineKey) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
