package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

const DefaultCountry = "FR"

type shippingQuoter interface {
	Quote(subtotal decimal.Decimal, country string) shipping.Quote
	RemainingForFree(subtotal decimal.Decimal) decimal.Decimal
	FreeThreshold() decimal.Decimal
}

// ItemInput identifies a line by catalog ids, as sent by clients.
type ItemInput struct {
	ProductID       string
	CustomizationID *string
}

// Service resolves catalog ids for cart requests and renders cart views.
type Service interface {
	Open(ctx context.Context, storage Storage) *Session
	View(session *Session, country string) View
	AddItem(ctx context.Context, session *Session, input ItemInput) error
	UpdateQuantity(ctx context.Context, session *Session, input ItemInput, quantity int) error
	RemoveItem(ctx context.Context, session *Session, input ItemInput) error
	Clear(ctx context.Context, session *Session)
	SetDrawer(ctx context.Context, session *Session, mutation enums.CartMutation) error
	Pricing() Pricing
}

type service struct {
	catalog  *catalog.Catalog
	shipping shippingQuoter
	pricing  Pricing
	logg     *logger.Logger
	metrics  *metrics.Storefront
}

// NewService builds the cart service. metrics may be nil.
func NewService(cat *catalog.Catalog, quoter shippingQuoter, pricing Pricing, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("shipping table required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pricing.CustomizationSurcharge.IsNegative() {
		return nil, fmt.Errorf("customization surcharge cannot be negative")
	}
	return &service{
		catalog:  cat,
		shipping: quoter,
		pricing:  pricing,
		logg:     logg,
		metrics:  m,
	}, nil
}

func (s *service) Pricing() Pricing {
	return s.pricing
}

// Open builds and hydrates the session backed by storage.
func (s *service) Open(ctx context.Context, storage Storage) *Session {
	session := NewSession(storage, s.catalog, s.pricing, s.logg)
	session.Hydrate(ctx)
	return session
}

func (s *service) AddItem(ctx context.Context, session *Session, input ItemInput) error {
	product, customization, err := s.resolve(input)
	if err != nil {
		return err
	}
	if !product.InStock {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock").
			WithDetails(map[string]any{"product_id": product.ID})
	}
	session.AddItem(ctx, product, customization)
	s.metrics.IncCartMutation(enums.CartMutationAdd.String())
	return nil
}

// UpdateQuantity and RemoveItem address lines by raw identity, so ids that
// match no line, including ids unknown to the catalog, leave the cart as is.
func (s *service) UpdateQuantity(ctx context.Context, session *Session, input ItemInput, quantity int) error {
	session.UpdateQuantity(ctx, lineKey(input), quantity)
	s.metrics.IncCartMutation(enums.CartMutationUpdate.String())
	return nil
}

func (s *service) RemoveItem(ctx context.Context, session *Session, input ItemInput) error {
	session.RemoveItem(ctx, lineKey(input))
	s.metrics.IncCartMutation(enums.CartMutationRemove.String())
	return nil
}

func (s *service) Clear(ctx context.Context, session *Session) {
	session.Clear(ctx)
	s.metrics.IncCartMutation(enums.CartMutationClear.String())
}

func (s *service) SetDrawer(ctx context.Context, session *Session, mutation enums.CartMutation) error {
	switch mutation {
	case enums.CartMutationOpen:
		session.Open(ctx)
	case enums.CartMutationClose:
		session.Close(ctx)
	case enums.CartMutationToggle:
		session.Toggle(ctx)
	default:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported drawer action %q", mutation)
	}
	s.metrics.IncCartMutation(mutation.String())
	return nil
}

func (s *service) resolve(input ItemInput) (catalog.Product, *catalog.Customization, error) {
	product, ok := s.catalog.ProductByID(strings.TrimSpace(input.ProductID))
	if !ok {
		return catalog.Product{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": input.ProductID})
	}
	if input.CustomizationID == nil || strings.TrimSpace(*input.CustomizationID) == "" {
		return product, nil, nil
	}
	customization, ok := s.catalog.CustomizationByID(strings.TrimSpace(*input.CustomizationID))
	if !ok {
		return catalog.Product{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "customization not found").
			WithDetails(map[string]any{"customization_id": *input.CustomizationID})
	}
	return product, &customization, nil
}

func lineKey(input ItemInput) LineKey {
	key := LineKey{ProductID: strings.TrimSpace(input.ProductID)}
	if input.CustomizationID != nil {
		key.CustomizationID = strings.TrimSpace(*input.CustomizationID)
	}
	return key
}
