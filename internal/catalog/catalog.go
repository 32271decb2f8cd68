package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultRelatedLimit = 3

//go:embed data/catalog.json
var embeddedCatalog []byte

// Images holds the lamp photographs, switched off and switched on.
type Images struct {
	Off string `json:"off"`
	On  string `json:"on"`
}

type Dimensions struct {
	Height   string `json:"height"`
	Diameter string `json:"diameter"`
}

// Product is an immutable catalog entry. Price is in major units (euros).
type Product struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Subtitle        string          `json:"subtitle"`
	Price           decimal.Decimal `json:"price"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Images          Images          `json:"images"`
	Dimensions      Dimensions      `json:"dimensions"`
	Material        string          `json:"material"`
	Style           string          `json:"style"`
	StyleSlug       string          `json:"styleSlug"`
	Color           string          `json:"color"`
	InStock         bool            `json:"inStock"`
	Featured        bool            `json:"featured"`
}

// DisplayName is the product name followed by its subtitle.
func (p Product) DisplayName() string {
	return strings.TrimSpace(p.Name + " " + p.Subtitle)
}

type Style struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Customization is a base colour a lamp can be ordered with.
type Customization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type document struct {
	Styles         []Style         `json:"styles"`
	Customizations []Customization `json:"customizations"`
	Products       []Product       `json:"products"`
}

// Catalog is the read-only product catalog, loaded once at boot.
type Catalog struct {
	products       []Product
	styles         []Style
	customizations []Customization

	byID          map[string]int
	bySlug        map[string]int
	styleBySlug   map[string]int
	customization map[string]int
}

// Load parses the catalog bundled into the binary.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse builds a Catalog from its JSON document and checks referential integrity.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		products:       doc.Products,
		styles:         doc.Styles,
		customizations: doc.Customizations,
		byID:           make(map[string]int, len(doc.Products)),
		bySlug:         make(map[string]int, len(doc.Products)),
		styleBySlug:    make(map[string]int, len(doc.Styles)),
		customization:  make(map[string]int, len(doc.Customizations)),
	}

	for i, s := range doc.Styles {
		if _, dup := c.styleBySlug[s.Slug]; dup {
			return nil, fmt.Errorf("duplicate style slug %q", s.Slug)
		}
		c.styleBySlug[s.Slug] = i
	}
	for i, cz := range doc.Customizations {
		if _, dup := c.customization[cz.ID]; dup {
			return nil, fmt.Errorf("duplicate customization id %q", cz.ID)
		}
		c.customization[cz.ID] = i
	}
	for i, p := range doc.Products {
		if p.ID == "" || p.Slug == "" {
			return nil, fmt.Errorf("product %d is missing id or slug", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate product slug %q", p.Slug)
		}
		if _, ok := c.styleBySlug[p.StyleSlug]; !ok {
			return nil, fmt.Errorf("product %q references unknown style %q", p.ID, p.StyleSlug)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		if !isImagePath(p.Images.Off) || !isImagePath(p.Images.On) {
			return nil, fmt.Errorf("product %q has an invalid image path", p.ID)
		}
		c.byID[p.ID] = i
		c.bySlug[p.Slug] = i
	}
	return c, nil
}

// Image paths are site-relative and get prefixed with the storefront origin.
func isImagePath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.ContainsAny(path, " \t\n")
}

// Products returns every product in catalog order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

func (c *Catalog) ProductByID(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) ProductBySlug(slug string) (Product, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) ProductsByStyle(styleSlug string) []Product {
	return c.filter(func(p Product) bool { return p.StyleSlug == styleSlug })
}

func (c *Catalog) Featured() []Product {
	return c.filter(func(p Product) bool { return p.Featured })
}

// Related returns up to limit products sharing the style of product, excluding product itself.
// A non-positive limit falls back to DefaultRelatedLimit.
func (c *Catalog) Related(product Product, limit int) []Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	related := c.filter(func(p Product) bool {
		return p.StyleSlug == product.StyleSlug && p.ID != product.ID
	})
	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

func (c *Catalog) Styles() []Style {
	return append([]Style(nil), c.styles...)
}

func (c *Catalog) StyleBySlug(slug string) (Style, bool) {
	i, ok := c.styleBySlug[slug]
	if !ok {
		return Style{}, false
	}
	return c.styles[i], true
}

func (c *Catalog) Customizations() []Customization {
	return append([]Customization(nil), c.customizations...)
}

func (c *Catalog) CustomizationByID(id string) (Customization, bool) {
	i, ok := c.customization[id]
	if !ok {
		return Customization{}, false
	}
	return c.customizations[i], true
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
