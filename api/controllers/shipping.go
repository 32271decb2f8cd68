package controllers

import (
	"net/http"

	"github.com/angelmondragon/lumina-backend/api/responses"
	"github.com/angelmondragon/lumina-backend/api/validators"
	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type shippingQuoteResponse struct {
	shipping.Quote
	Subtotal                 decimal.Decimal `json:"subtotal"`
	Country                  string          `json:"country"`
	FreeShippingThreshold    decimal.Decimal `json:"free_shipping_threshold"`
	RemainingForFreeShipping decimal.Decimal `json:"remaining_for_free_shipping"`
}

// ShippingQuote prices delivery for ?subtotal= to ?country= (default FR).
func ShippingQuote(table *shipping.Table, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if table == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping table unavailable"))
			return
		}

		subtotal, err := validators.ParseQueryAmount(r, "subtotal")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		country, err := validators.ParseQueryCountry(r, "country", cart.DefaultCountry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shippingQuoteResponse{
			Quote:                    table.Quote(subtotal, country),
			Subtotal:                 subtotal,
			Country:                  country,
			FreeShippingThreshold:    table.FreeThreshold(),
			RemainingForFreeShipping: table.RemainingForFree(subtotal),
		})
	}
}
