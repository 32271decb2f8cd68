package cart

import (
	"context"
	"testing"

	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T, pricing Pricing) (Service, *catalog.Catalog) {
	t.Helper()
	cat := loadCatalog(t)
	table := shipping.NewTable(config.ShippingConfig{
		FreeThreshold:     decimal.NewFromInt(100),
		DomesticRate:      decimal.RequireFromString("9.90"),
		RegionalRate:      decimal.RequireFromString("25"),
		DomesticCountries: []string{"FR"},
		RegionalCountries: []string{"DE"},
	})
	svc, err := NewService(cat, table, pricing, logger.Nop(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, cat
}

func strPtr(v string) *string { return &v }

func TestServiceAddItemResolvesCatalogIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{})
	session := svc.Open(ctx, &memoryStorage{})

	if err := svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("bleu")}); err != nil {
		t.Fatalf("add: %v", err)
	}

	err := svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-unknown"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown product, got %v", err)
	}
	err = svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("violet")})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown customization, got %v", err)
	}

	if session.Cart().TotalItems() != 1 {
		t.Fatalf("failed adds must not mutate the cart, got %d items", session.Cart().TotalItems())
	}
}

func TestServiceEmptyCustomizationMeansDefaultBase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{})
	session := svc.Open(ctx, &memoryStorage{})

	_ = svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("")})
	_ = svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise"})

	if got := len(session.Cart().Lines()); got != 1 {
		t.Fatalf("expected one line, got %d", got)
	}
}

func TestServiceUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{})
	store := &memoryStorage{}
	session := svc.Open(ctx, store)

	input := ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("bleu")}
	_ = svc.AddItem(ctx, session, input)

	if err := svc.UpdateQuantity(ctx, session, input, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	if session.Cart().TotalItems() != 4 {
		t.Fatalf("expected 4 items, got %d", session.Cart().TotalItems())
	}
	if err := svc.UpdateQuantity(ctx, session, input, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !session.Cart().IsEmpty() {
		t.Fatal("quantity 0 should remove the line")
	}
	if err := svc.RemoveItem(ctx, session, input); err != nil {
		t.Fatalf("removing an absent line should not fail: %v", err)
	}
	if store.saves != 4 {
		t.Fatalf("expected 4 persisted mutations, got %d", store.saves)
	}
}

func TestServiceIgnoresUnknownLines(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{})
	session := svc.Open(ctx, &memoryStorage{})

	kept := ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("bleu")}
	_ = svc.AddItem(ctx, session, kept)

	unknown := []ItemInput{
		{ProductID: "nope"},
		{ProductID: "lumina-turquoise", CustomizationID: strPtr("fuchsia")},
		{ProductID: "lumina-turquoise"},
	}
	for _, input := range unknown {
		if err := svc.UpdateQuantity(ctx, session, input, 3); err != nil {
			t.Fatalf("update %+v: %v", input, err)
		}
		if err := svc.RemoveItem(ctx, session, input); err != nil {
			t.Fatalf("remove %+v: %v", input, err)
		}
	}

	lines := session.Cart().Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 || lines[0].Key() != lineKey(kept) {
		t.Fatalf("expected the original line untouched, got %+v", lines)
	}
}

func TestServiceSetDrawer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{})
	session := svc.Open(ctx, &memoryStorage{})

	_ = svc.SetDrawer(ctx, session, enums.CartMutationOpen)
	if !session.Cart().IsOpen() {
		t.Fatal("expected open drawer")
	}
	_ = svc.SetDrawer(ctx, session, enums.CartMutationToggle)
	if session.Cart().IsOpen() {
		t.Fatal("expected toggled closed")
	}
	if err := svc.SetDrawer(ctx, session, enums.CartMutationAdd); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceViewDerivesTotals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Pricing{CustomizationSurcharge: decimal.NewFromInt(10)})
	session := svc.Open(ctx, &memoryStorage{})

	_ = svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise"})
	view := svc.View(session, "")

	if view.TotalItems != 1 || !view.Subtotal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected totals %+v", view)
	}
	if view.Shipping.RateID != shipping.RateIDDomestic {
		t.Fatalf("blank country should default to FR, got %s", view.Shipping.RateID)
	}
	if !view.GrandTotal.Equal(decimal.RequireFromString("99.90")) {
		t.Fatalf("unexpected grand total %s", view.GrandTotal)
	}
	if !view.RemainingForFreeShipping.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected remaining %s", view.RemainingForFreeShipping)
	}

	_ = svc.AddItem(ctx, session, ItemInput{ProductID: "lumina-turquoise", CustomizationID: strPtr("olive")})
	view = svc.View(session, "us")
	if !view.Subtotal.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("expected surcharge in subtotal, got %s", view.Subtotal)
	}
	if !view.Shipping.IsFree || !view.GrandTotal.Equal(view.Subtotal) {
		t.Fatalf("expected free shipping above threshold, got %+v", view.Shipping)
	}
	if view.Lines[1].CustomizationID == nil || *view.Lines[1].CustomizationID != "olive" {
		t.Fatalf("unexpected second line %+v", view.Lines[1])
	}
	if !view.Lines[1].UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected unit price %s", view.Lines[1].UnitPrice)
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(nil, nil, Pricing{}, logger.Nop(), nil); err == nil {
		t.Fatal("expected missing catalog to fail")
	}
	cat := loadCatalog(t)
	table := shipping.NewTable(config.ShippingConfig{})
	if _, err := NewService(cat, table, Pricing{CustomizationSurcharge: decimal.NewFromInt(-1)}, logger.Nop(), nil); err == nil {
		t.Fatal("expected negative surcharge to fail")
	}
}
