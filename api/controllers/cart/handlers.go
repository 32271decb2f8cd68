package cart

import (
	"net/http"

	"github.com/angelmondragon/lumina-backend/api/responses"
	"github.com/angelmondragon/lumina-backend/api/validators"
	cartsvc "github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

// CartFetch renders the caller's cart with a shipping quote for ?country=.
func CartFetch(svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		country, err := validators.ParseQueryCountry(r, "country", cartsvc.DefaultCountry)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		responses.WriteSuccess(w, svc.View(session, country))
	}
}

// CartAddItem adds one unit of a product, optionally with a base colour.
func CartAddItem(svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		if err := svc.AddItem(r.Context(), session, payload.input()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(session, cartsvc.DefaultCountry))
	}
}

// CartUpdateItem sets a line quantity; zero or less removes the line.
func CartUpdateItem(svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		if err := svc.UpdateQuantity(r.Context(), session, payload.input(), *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(session, cartsvc.DefaultCountry))
	}
}

func CartRemoveItem(svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		var payload itemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		if err := svc.RemoveItem(r.Context(), session, payload.input()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(session, cartsvc.DefaultCountry))
	}
}

func CartClear(svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		svc.Clear(r.Context(), session)
		responses.WriteSuccess(w, svc.View(session, cartsvc.DefaultCountry))
	}
}

// CartDrawer opens, closes or toggles the cart drawer.
func CartDrawer(svc cartsvc.Service, storages cartsvc.StorageFactory, mutation enums.CartMutation, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready(w, r, svc, storages, logg) {
			return
		}

		session := svc.Open(r.Context(), storages(w, r))
		if err := svc.SetDrawer(r.Context(), session, mutation); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.View(session, cartsvc.DefaultCountry))
	}
}

func ready(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, storages cartsvc.StorageFactory, logg *logger.Logger) bool {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return false
	}
	if storages == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable"))
		return false
	}
	return true
}
