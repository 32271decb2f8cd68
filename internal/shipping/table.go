package shipping

import (
	"strings"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	RateIDFree          = "shipping_free"
	RateIDDomestic      = "shipping_france"
	RateIDRegional      = "shipping_europe"
	RateIDInternational = "shipping_international"

	LabelFree          = "Livraison offerte"
	LabelDomestic      = "Livraison France métropolitaine"
	LabelRegional      = "Livraison Europe"
	LabelInternational = "Livraison internationale"
)

// Quote is the shipping fee for one subtotal and destination.
type Quote struct {
	Amount decimal.Decimal    `json:"amount"`
	Label  string             `json:"label"`
	IsFree bool               `json:"is_free"`
	RateID string             `json:"rate_id"`
	Zone   enums.ShippingZone `json:"zone"`
}

// Option is a shipping choice offered on the hosted payment page.
type Option struct {
	RateID          string          `json:"rate_id"`
	Label           string          `json:"label"`
	Amount          decimal.Decimal `json:"amount"`
	MinBusinessDays int64           `json:"min_business_days"`
	MaxBusinessDays int64           `json:"max_business_days"`
}

// Table is the flat-rate shipping schedule.
type Table struct {
	freeThreshold decimal.Decimal
	domesticRate  decimal.Decimal
	regionalRate  decimal.Decimal
	domestic      []string
	regional      []string
	domesticSet   map[string]struct{}
	regionalSet   map[string]struct{}
}

// NewTable builds the schedule from configuration. Country codes are normalised to upper case.
func NewTable(cfg config.ShippingConfig) *Table {
	t := &Table{
		freeThreshold: cfg.FreeThreshold,
		domesticRate:  cfg.DomesticRate,
		regionalRate:  cfg.RegionalRate,
		domesticSet:   map[string]struct{}{},
		regionalSet:   map[string]struct{}{},
	}
	t.domestic = addCountries(t.domesticSet, cfg.DomesticCountries, nil)
	t.regional = addCountries(t.regionalSet, cfg.RegionalCountries, t.domesticSet)
	return t
}

func addCountries(set map[string]struct{}, raw []string, exclude map[string]struct{}) []string {
	ordered := make([]string, 0, len(raw))
	for _, code := range raw {
		code = normalizeCountry(code)
		if code == "" {
			continue
		}
		if _, skip := exclude[code]; skip {
			continue
		}
		if _, dup := set[code]; dup {
			continue
		}
		set[code] = struct{}{}
		ordered = append(ordered, code)
	}
	return ordered
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Quote returns the fee for subtotal shipped to country. Every input yields a quote.
func (t *Table) Quote(subtotal decimal.Decimal, country string) Quote {
	if t.IsFree(subtotal) {
		return Quote{Amount: decimal.Zero, Label: LabelFree, IsFree: true, RateID: RateIDFree, Zone: enums.ShippingZoneFree}
	}

	code := normalizeCountry(country)
	if _, ok := t.domesticSet[code]; ok {
		return Quote{Amount: t.domesticRate, Label: LabelDomestic, RateID: RateIDDomestic, Zone: enums.ShippingZoneDomestic}
	}
	if _, ok := t.regionalSet[code]; ok {
		return Quote{Amount: t.regionalRate, Label: LabelRegional, RateID: RateIDRegional, Zone: enums.ShippingZoneRegional}
	}
	return Quote{Amount: t.regionalRate, Label: LabelInternational, RateID: RateIDInternational, Zone: enums.ShippingZoneInternational}
}

// IsFree reports whether subtotal reaches the free-shipping threshold.
func (t *Table) IsFree(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(t.freeThreshold)
}

// RemainingForFree is the amount still needed to reach free shipping, never negative.
func (t *Table) RemainingForFree(subtotal decimal.Decimal) decimal.Decimal {
	remaining := t.freeThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

func (t *Table) FreeThreshold() decimal.Decimal {
	return t.freeThreshold
}

// Options lists the shipping choices for subtotal: a single free option at or above
// the threshold, otherwise the domestic and regional rates.
func (t *Table) Options(subtotal decimal.Decimal) []Option {
	if t.IsFree(subtotal) {
		return []Option{{RateID: RateIDFree, Label: LabelFree, Amount: decimal.Zero, MinBusinessDays: 3, MaxBusinessDays: 7}}
	}
	return []Option{
		{RateID: RateIDDomestic, Label: LabelDomestic, Amount: t.domesticRate, MinBusinessDays: 3, MaxBusinessDays: 5},
		{RateID: RateIDRegional, Label: LabelRegional, Amount: t.regionalRate, MinBusinessDays: 5, MaxBusinessDays: 10},
	}
}

// AllowedCountries is the domestic set followed by the regional set.
func (t *Table) AllowedCountries() []string {
	out := make([]string, 0, len(t.domestic)+len(t.regional))
	out = append(out, t.domestic...)
	return append(out, t.regional...)
}
