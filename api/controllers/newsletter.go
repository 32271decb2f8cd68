package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/lumina-backend/api/responses"
	"github.com/angelmondragon/lumina-backend/api/validators"
	"github.com/angelmondragon/lumina-backend/internal/newsletter"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

type newsletterRequest struct {
	Email  string `json:"email" validate:"required,max=254"`
	Source string `json:"source,omitempty" validate:"omitempty,max=64"`
}

type newsletterResponse struct {
	Email        string    `json:"email"`
	Source       string    `json:"source"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewsletterSubscribe records a mailing-list sign-up.
func NewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}

		var payload newsletterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Subscribe(r.Context(), newsletter.SubscribeInput{
			Email:  payload.Email,
			Source: validators.SanitizeString(payload.Source, 64),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newsletterResponse{
			Email:        sub.Email,
			Source:       sub.Source,
			SubscribedAt: sub.SubscribedAt,
		})
	}
}

func NewsletterStats(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}

		count, err := svc.Count(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"count": count})
	}
}
