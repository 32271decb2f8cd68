package cart

import (
	"context"
	"errors"

	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

// Session binds a Cart to its Storage. Every mutation writes the full snapshot
// back, but only once Hydrate has run so an empty startup cart never overwrites
// a saved one. Storage failures are logged and never returned.
type Session struct {
	cart     *Cart
	storage  Storage
	resolver Resolver
	logg     *logger.Logger
	hydrated bool
}

func NewSession(storage Storage, resolver Resolver, pricing Pricing, logg *logger.Logger) *Session {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Session{
		cart:     New(pricing),
		storage:  storage,
		resolver: resolver,
		logg:     logg,
	}
}

// Hydrate loads the saved snapshot. A missing, unreadable or corrupt snapshot
// leaves the cart empty.
func (s *Session) Hydrate(ctx context.Context) {
	defer func() { s.hydrated = true }()

	raw, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot unreadable, starting empty")
		}
		return
	}

	snapshot, err := DecodeSnapshot(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart snapshot corrupt, starting empty")
		return
	}

	restored, dropped := Restore(snapshot, s.resolver, s.cart.pricing)
	for _, line := range dropped {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"product_id":       line.ProductID,
			"customization_id": line.CustomizationID,
			"quantity":         line.Quantity,
		}), "dropping unknown cart line")
	}
	s.cart = restored
}

func (s *Session) Hydrated() bool {
	return s.hydrated
}

// Cart exposes the current cart for reads. Mutate through the Session so changes persist.
func (s *Session) Cart() *Cart {
	return s.cart
}

func (s *Session) AddItem(ctx context.Context, product catalog.Product, customization *catalog.Customization) {
	s.cart.AddItem(product, customization)
	s.persist(ctx)
}

func (s *Session) RemoveItem(ctx context.Context, key LineKey) {
	s.cart.RemoveItem(key)
	s.persist(ctx)
}

func (s *Session) UpdateQuantity(ctx context.Context, key LineKey, quantity int) {
	s.cart.UpdateQuantity(key, quantity)
	s.persist(ctx)
}

func (s *Session) Clear(ctx context.Context) {
	s.cart.Clear()
	s.persist(ctx)
}

func (s *Session) Open(ctx context.Context) {
	s.cart.Open()
	s.persist(ctx)
}

func (s *Session) Close(ctx context.Context) {
	s.cart.Close()
	s.persist(ctx)
}

func (s *Session) Toggle(ctx context.Context) {
	s.cart.Toggle()
	s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) {
	if !s.hydrated {
		return
	}
	raw, err := EncodeSnapshot(s.cart.Snapshot())
	if err != nil {
		s.logg.Error(ctx, "failed to encode cart snapshot", err)
		return
	}
	if err := s.storage.Save(ctx, raw); err != nil {
		s.logg.Error(ctx, "failed to save cart snapshot", err)
	}
}
