package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
	"github.com/angelmondragon/lumina-backend/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

// Session is the hosted checkout handle returned to the client.
type Session struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

type Customer struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type ConfirmationItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// Confirmation summarises a paid session for the order confirmation page.
type Confirmation struct {
	SessionID     string              `json:"session_id"`
	Reference     string              `json:"reference"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Customer      Customer            `json:"customer"`
	Items         []ConfirmationItem  `json:"items"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	AmountTotal   decimal.Decimal     `json:"amount_total"`
}

// Service hands a cart over to the payment provider.
type Service interface {
	CreateSession(ctx context.Context, lines []cart.Line, origin string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Confirmation, error)
}

type ServiceParams struct {
	Provider      Provider
	Builder       *Builder
	DefaultOrigin string
	Logger        *logger.Logger
	Metrics       *metrics.Storefront
	Now           func() time.Time
}

type service struct {
	provider      Provider
	builder       *Builder
	defaultOrigin string
	logg          *logger.Logger
	metrics       *metrics.Storefront
	now           func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("checkout provider required")
	}
	if params.Builder == nil {
		return nil, fmt.Errorf("checkout builder required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		provider:      params.Provider,
		builder:       params.Builder,
		defaultOrigin: strings.TrimSpace(params.DefaultOrigin),
		logg:          params.Logger,
		metrics:       params.Metrics,
		now:           now,
	}, nil
}

// CreateSession creates a hosted checkout session for lines. The caller's cart
// is never modified, whatever the outcome.
func (s *service) CreateSession(ctx context.Context, lines []cart.Line, origin string) (*Session, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	base, err := s.resolveOrigin(origin)
	if err != nil {
		return nil, err
	}

	params := s.builder.Build(lines, base, s.now())

	started := time.Now()
	created, err := s.provider.Create(ctx, params)
	if err != nil {
		s.metrics.ObserveCheckout(metrics.OutcomeFailure, time.Since(started))
		s.logg.Error(s.logg.WithField(ctx, "lines", len(lines)), "checkout session creation failed", err)
		return nil, providerError(err, "create checkout session")
	}
	s.metrics.ObserveCheckout(metrics.OutcomeSuccess, time.Since(started))

	s.logg.Info(s.logg.WithField(ctx, "checkout_session_id", created.ID), "checkout session created")
	return &Session{ID: created.ID, URL: created.URL}, nil
}

// GetSession loads a session and returns its confirmation. Only paid sessions
// are confirmed.
func (s *service) GetSession(ctx context.Context, id string) (*Confirmation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")

	cs, err := s.provider.Retrieve(ctx, id, params)
	if err != nil {
		return nil, providerError(err, "retrieve checkout session")
	}

	status := enums.PaymentStatus(cs.PaymentStatus)
	if status != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed").
			WithDetails(map[string]any{"payment_status": status})
	}
	return confirmationFromSession(cs), nil
}

func (s *service) resolveOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = s.defaultOrigin
	}
	if origin == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "origin is required")
	}
	parsed, err := url.Parse(origin)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "origin must be an absolute http(s) url").
			WithDetails(map[string]any{"origin": origin})
	}
	return strings.TrimRight(origin, "/"), nil
}

func providerError(err error, action string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "checkout session not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action).
			WithDetails(map[string]any{"provider_message": stripeErr.Msg})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func confirmationFromSession(cs *stripe.CheckoutSession) *Confirmation {
	out := &Confirmation{
		SessionID:     cs.ID,
		Reference:     OrderReference(cs.ID),
		PaymentStatus: enums.PaymentStatus(cs.PaymentStatus),
		AmountTotal:   types.FromMinorUnits(cs.AmountTotal),
		ShippingCost:  decimal.Zero,
		Items:         []ConfirmationItem{},
	}
	if cs.ShippingCost != nil {
		out.ShippingCost = types.FromMinorUnits(cs.ShippingCost.AmountTotal)
	}
	if cd := cs.CustomerDetails; cd != nil {
		out.Customer = Customer{Name: cd.Name, Email: cd.Email, Phone: cd.Phone}
		if a := cd.Address; a != nil {
			out.Customer.Address = &Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				PostalCode: a.PostalCode,
				City:       a.City,
				Country:    a.Country,
			}
		}
	}
	if cs.LineItems != nil {
		for _, li := range cs.LineItems.Data {
			if li == nil {
				continue
			}
			out.Items = append(out.Items, ConfirmationItem{
				Name:     lineItemName(li),
				Quantity: li.Quantity,
				Amount:   types.FromMinorUnits(li.AmountTotal),
			})
		}
	}
	return out
}

func lineItemName(li *stripe.LineItem) string {
	if li.Price != nil && li.Price.Product != nil && li.Price.Product.Name != "" {
		return li.Price.Product.Name
	}
	return li.Description
}

// OrderReference is the short order number shown to shoppers: the last eight
// characters of the session id, upper-cased.
func OrderReference(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}
