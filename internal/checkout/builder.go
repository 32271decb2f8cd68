package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	"github.com/angelmondragon/lumina-backend/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

const (
	sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

	shippingAddressMessage = "Nous livrons uniquement en France et en Europe. Livraison offerte à partir de %s€."
	submitMessage          = "Nous vous enverrons un email de confirmation avec le suivi de votre commande."

	// Hosted-page label of the free option; storefront quotes keep shipping.LabelFree.
	freeOptionDisplayName = "🎁 Livraison offerte"
)

// Settings holds the hosted-page options that do not depend on the cart.
type Settings struct {
	Currency    string
	Locale      string
	SessionTTL  time.Duration
	SuccessPath string
	CancelPath  string
	OrderSource string
}

// Builder turns cart lines into Stripe checkout session parameters.
type Builder struct {
	pricing  cart.Pricing
	table    *shipping.Table
	settings Settings
}

func NewBuilder(pricing cart.Pricing, table *shipping.Table, settings Settings) *Builder {
	return &Builder{pricing: pricing, table: table, settings: settings}
}

// LineName is the display name of a line on the hosted page.
func LineName(line cart.Line) string {
	name := line.Product.DisplayName()
	if line.Customization != nil {
		name += fmt.Sprintf(" (Socle %s)", line.Customization.Name)
	}
	return name
}

// LineDescription is the product description with the chosen base colour appended.
func LineDescription(line cart.Line) string {
	desc := line.Product.Description
	if line.Customization != nil {
		desc += fmt.Sprintf(" • Socle personnalisé: %s", line.Customization.Name)
	}
	return desc
}

// Build assembles the session parameters. origin is the storefront base URL
// without a trailing slash.
func (b *Builder) Build(lines []cart.Line, origin string, now time.Time) *stripe.CheckoutSessionCreateParams {
	origin = strings.TrimRight(origin, "/")
	currency := strings.ToLower(b.settings.Currency)

	items := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		items = append(items, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name:        stripe.String(LineName(line)),
					Description: stripe.String(LineDescription(line)),
					Images: []*string{
						stripe.String(origin + line.Product.Images.On),
						stripe.String(origin + line.Product.Images.Off),
					},
				},
				UnitAmount: stripe.Int64(types.MinorUnits(line.UnitPrice(b.pricing))),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
		subtotal = subtotal.Add(line.Total(b.pricing))
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		ShippingOptions:    b.shippingOptions(subtotal, currency),
		ShippingAddressCollection: &stripe.CheckoutSessionCreateShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(b.table.AllowedCountries()),
		},
		BillingAddressCollection: stripe.String("required"),
		PhoneNumberCollection: &stripe.CheckoutSessionCreatePhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		CustomText: &stripe.CheckoutSessionCreateCustomTextParams{
			ShippingAddress: &stripe.CheckoutSessionCreateCustomTextShippingAddressParams{
				Message: stripe.String(fmt.Sprintf(shippingAddressMessage, euros(b.table.FreeThreshold()))),
			},
			Submit: &stripe.CheckoutSessionCreateCustomTextSubmitParams{
				Message: stripe.String(submitMessage),
			},
		},
		SuccessURL: stripe.String(origin + b.settings.SuccessPath + "?session_id=" + sessionIDPlaceholder),
		CancelURL:  stripe.String(origin + b.settings.CancelPath),
		Locale:     stripe.String(b.settings.Locale),
		ExpiresAt:  stripe.Int64(now.Add(b.settings.SessionTTL).Unix()),
	}
	params.AddMetadata("order_source", b.settings.OrderSource)
	return params
}

func (b *Builder) shippingOptions(subtotal decimal.Decimal, currency string) []*stripe.CheckoutSessionCreateShippingOptionParams {
	options := b.table.Options(subtotal)
	out := make([]*stripe.CheckoutSessionCreateShippingOptionParams, 0, len(options))
	for _, opt := range options {
		out = append(out, &stripe.CheckoutSessionCreateShippingOptionParams{
			ShippingRateData: &stripe.CheckoutSessionCreateShippingOptionShippingRateDataParams{
				Type: stripe.String("fixed_amount"),
				FixedAmount: &stripe.CheckoutSessionCreateShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(types.MinorUnits(opt.Amount)),
					Currency: stripe.String(currency),
				},
				DisplayName: stripe.String(optionDisplayName(opt)),
				DeliveryEstimate: &stripe.CheckoutSessionCreateShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionCreateShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.MinBusinessDays),
					},
					Maximum: &stripe.CheckoutSessionCreateShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(opt.MaxBusinessDays),
					},
				},
			},
		})
	}
	return out
}

func optionDisplayName(opt shipping.Option) string {
	if opt.RateID == shipping.RateIDFree {
		return freeOptionDisplayName
	}
	return opt.Label
}

// euros formats an amount the French way: "100", "79,90".
func euros(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return amount.StringFixed(0)
	}
	return strings.Replace(amount.StringFixed(2), ".", ",", 1)
}
