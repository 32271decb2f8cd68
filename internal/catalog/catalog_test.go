package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func TestLoadEmbeddedCatalog(t *testing.T) {
	c := mustLoad(t)

	if got := len(c.Products()); got != 10 {
		t.Fatalf("expected 10 products, got %d", got)
	}
	if got := len(c.Styles()); got != 3 {
		t.Fatalf("expected 3 styles, got %d", got)
	}
	if got := len(c.Customizations()); got != 7 {
		t.Fatalf("expected 7 base colours, got %d", got)
	}

	p, ok := c.ProductByID("lumina-turquoise")
	if !ok {
		t.Fatal("expected lumina-turquoise")
	}
	if !p.Price.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected price %s", p.Price)
	}
	if p.DisplayName() != "Lumina Turquoise" {
		t.Fatalf("unexpected display name %q", p.DisplayName())
	}
	if p.Images.Off != "/images/IMG_3455.jpeg" || p.Images.On != "/images/IMG_3456.jpeg" {
		t.Fatalf("unexpected images %+v", p.Images)
	}

	for _, p := range c.Products() {
		if !strings.HasPrefix(p.Images.On, "/images/") || !strings.HasPrefix(p.Images.Off, "/images/") {
			t.Fatalf("product %s has non-image paths %+v", p.ID, p.Images)
		}
		if p.Images.On == p.Images.Off {
			t.Fatalf("product %s reuses one photo for both states", p.ID)
		}
	}
}

func TestLookups(t *testing.T) {
	c := mustLoad(t)

	if _, ok := c.ProductBySlug("rose-poudre"); !ok {
		t.Fatal("expected slug lookup to succeed")
	}
	if _, ok := c.ProductBySlug("nope"); ok {
		t.Fatal("expected unknown slug to miss")
	}
	if s, ok := c.StyleBySlug("ocean"); !ok || s.Name != "Océan" {
		t.Fatalf("unexpected style lookup %+v ok=%v", s, ok)
	}
	if cz, ok := c.CustomizationByID("gris-bleu"); !ok || cz.Hex != "#64748B" {
		t.Fatalf("unexpected customization lookup %+v ok=%v", cz, ok)
	}
	if _, ok := c.CustomizationByID("violet"); ok {
		t.Fatal("expected unknown customization to miss")
	}
}

func TestFeaturedAndByStyle(t *testing.T) {
	c := mustLoad(t)

	featured := c.Featured()
	want := []string{"lumina-rose-poudre", "lumina-ambre-dore", "lumina-turquoise", "lumina-vert-menthe"}
	if len(featured) != len(want) {
		t.Fatalf("expected %d featured, got %d", len(want), len(featured))
	}
	for i, id := range want {
		if featured[i].ID != id {
			t.Fatalf("featured[%d] = %s, want %s", i, featured[i].ID, id)
		}
	}

	if got := len(c.ProductsByStyle("aurore")); got != 4 {
		t.Fatalf("expected 4 aurore lamps, got %d", got)
	}
	if got := len(c.ProductsByStyle("unknown")); got != 0 {
		t.Fatalf("expected none for unknown style, got %d", got)
	}
}

func TestRelatedExcludesSelfAndHonoursLimit(t *testing.T) {
	c := mustLoad(t)
	p, _ := c.ProductByID("lumina-rose-poudre")

	related := c.Related(p, 0)
	if len(related) != DefaultRelatedLimit {
		t.Fatalf("expected %d related, got %d", DefaultRelatedLimit, len(related))
	}
	for _, r := range related {
		if r.ID == p.ID {
			t.Fatal("related must not include the product itself")
		}
		if r.StyleSlug != p.StyleSlug {
			t.Fatalf("related product %s has style %s", r.ID, r.StyleSlug)
		}
	}

	if got := len(c.Related(p, 1)); got != 1 {
		t.Fatalf("expected limit 1, got %d", got)
	}
}

func TestParseRejectsUnknownStyle(t *testing.T) {
	raw := []byte(`{"styles":[],"customizations":[],"products":[{"id":"a","slug":"a","price":"1","styleSlug":"x"}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected unknown style to fail")
	}
}

func TestParseRejectsInvalidImagePath(t *testing.T) {
	raw := []byte(`{"styles":[{"slug":"x"}],"customizations":[],"products":[{"id":"a","slug":"a","price":"1","styleSlug":"x",` +
		`"images":{"off":"/images/a.jpeg","on":"Une lampe douce."}}]}`)
	if _, err := Parse(raw); err == nil {
		t.Fatal("expected description in image slot to fail")
	}
}

func TestProductsReturnsCopy(t *testing.T) {
	c := mustLoad(t)
	list := c.Products()
	list[0].Name = "changed"

	p, _ := c.ProductByID(list[0].ID)
	if p.Name == "changed" {
		t.Fatal("catalog must not be mutated through returned slices")
	}
}
