package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/lumina-backend/api/responses"
	"github.com/angelmondragon/lumina-backend/api/validators"
	"github.com/angelmondragon/lumina-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

type productResponse struct {
	ID              string             `json:"id"`
	Slug            string             `json:"slug"`
	Name            string             `json:"name"`
	Subtitle        string             `json:"subtitle"`
	Price           decimal.Decimal    `json:"price"`
	Description     string             `json:"description"`
	LongDescription string             `json:"long_description"`
	Images          catalog.Images     `json:"images"`
	Dimensions      catalog.Dimensions `json:"dimensions"`
	Material        string             `json:"material"`
	Style           string             `json:"style"`
	StyleSlug       string             `json:"style_slug"`
	Color           string             `json:"color"`
	InStock         bool               `json:"in_stock"`
	Featured        bool               `json:"featured"`
}

type productDetailResponse struct {
	Product productResponse   `json:"product"`
	Related []productResponse `json:"related"`
}

type styleDetailResponse struct {
	Style    catalog.Style     `json:"style"`
	Products []productResponse `json:"products"`
}

func newProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Slug:            p.Slug,
		Name:            p.Name,
		Subtitle:        p.Subtitle,
		Price:           p.Price,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Images:          p.Images,
		Dimensions:      p.Dimensions,
		Material:        p.Material,
		Style:           p.Style,
		StyleSlug:       p.StyleSlug,
		Color:           p.Color,
		InStock:         p.InStock,
		Featured:        p.Featured,
	}
}

func newProductResponses(products []catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

// ProductList returns the catalog, optionally filtered by ?style= and ?featured=true.
func ProductList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := cat.Products()
		if style := strings.TrimSpace(r.URL.Query().Get("style")); style != "" {
			if _, ok := cat.StyleBySlug(style); !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "style not found").
					WithDetails(map[string]any{"style": style}))
				return
			}
			products = cat.ProductsByStyle(style)
		}
		if featured {
			kept := products[:0:0]
			for _, p := range products {
				if p.Featured {
					kept = append(kept, p)
				}
			}
			products = kept
		}

		responses.WriteSuccess(w, newProductResponses(products))
	}
}

// ProductDetail returns one product by slug plus up to ?related_limit= siblings of the same style.
func ProductDetail(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		product, ok := cat.ProductBySlug(slug)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"slug": slug}))
			return
		}

		limit, err := validators.ParseQueryInt(r, "related_limit", catalog.DefaultRelatedLimit, 0, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productDetailResponse{
			Product: newProductResponse(product),
			Related: newProductResponses(cat.Related(product, limit)),
		})
	}
}

func StyleList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, cat.Styles())
	}
}

func StyleDetail(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		style, ok := cat.StyleBySlug(slug)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "style not found").
				WithDetails(map[string]any{"slug": slug}))
			return
		}

		responses.WriteSuccess(w, styleDetailResponse{
			Style:    style,
			Products: newProductResponses(cat.ProductsByStyle(style.Slug)),
		})
	}
}

func CustomizationList(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cat == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, cat.Customizations())
	}
}
