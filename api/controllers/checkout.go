package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/lumina-backend/api/responses"
	"github.com/angelmondragon/lumina-backend/api/validators"
	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

type checkoutRequest struct {
	Origin string `json:"origin,omitempty" validate:"omitempty,http_url,max=255"`
}

// Checkout hands the caller's cart to the hosted payment page. The cart is
// read, never modified.
func Checkout(svc checkout.Service, cartSvc cart.Service, storages cart.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		if cartSvc == nil || storages == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		origin := strings.TrimSpace(payload.Origin)
		if origin == "" {
			origin = strings.TrimSpace(r.Header.Get("Origin"))
		}

		session := cartSvc.Open(r.Context(), storages(w, r))
		result, err := svc.CreateSession(r.Context(), session.Cart().Lines(), origin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutSession returns the order confirmation for a paid session.
func CheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id required"))
			return
		}

		confirmation, err := svc.GetSession(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, confirmation)
	}
}
