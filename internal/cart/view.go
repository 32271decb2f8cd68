package cart

import (
	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	"github.com/shopspring/decimal"
)

// LineView is a cart line as rendered to clients.
type LineView struct {
	ProductID       string                 `json:"product_id"`
	CustomizationID *string                `json:"customization_id"`
	Slug            string                 `json:"slug"`
	Name            string                 `json:"name"`
	Subtitle        string                 `json:"subtitle"`
	Image           string                 `json:"image"`
	Customization   *catalog.Customization `json:"customization,omitempty"`
	Quantity        int                    `json:"quantity"`
	UnitPrice       decimal.Decimal        `json:"unit_price"`
	LineTotal       decimal.Decimal        `json:"line_total"`
}

// View carries a cart with every derived amount.
type View struct {
	Lines                    []LineView      `json:"lines"`
	IsOpen                   bool            `json:"is_open"`
	TotalItems               int             `json:"total_items"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	Shipping                 shipping.Quote  `json:"shipping"`
	GrandTotal               decimal.Decimal `json:"grand_total"`
	FreeShippingThreshold    decimal.Decimal `json:"free_shipping_threshold"`
	RemainingForFreeShipping decimal.Decimal `json:"remaining_for_free_shipping"`
}

// View renders session with a shipping quote for country (DefaultCountry when blank).
func (s *service) View(session *Session, country string) View {
	if country == "" {
		country = DefaultCountry
	}
	c := session.Cart()
	subtotal := c.Subtotal()
	quote := s.shipping.Quote(subtotal, country)

	lines := make([]LineView, 0, len(c.lines))
	for _, l := range c.Lines() {
		lv := LineView{
			ProductID: l.Product.ID,
			Slug:      l.Product.Slug,
			Name:      l.Product.Name,
			Subtitle:  l.Product.Subtitle,
			Image:     l.Product.Images.Off,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice(c.pricing),
			LineTotal: l.Total(c.pricing),
		}
		if l.Customization != nil {
			cz := *l.Customization
			lv.Customization = &cz
			lv.CustomizationID = &cz.ID
		}
		lines = append(lines, lv)
	}

	return View{
		Lines:                    lines,
		IsOpen:                   c.IsOpen(),
		TotalItems:               c.TotalItems(),
		Subtotal:                 subtotal,
		Shipping:                 quote,
		GrandTotal:               subtotal.Add(quote.Amount),
		FreeShippingThreshold:    s.shipping.FreeThreshold(),
		RemainingForFreeShipping: s.shipping.RemainingForFree(subtotal),
	}
}
