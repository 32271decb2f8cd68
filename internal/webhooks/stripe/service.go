package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/angelmondragon/lumina-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
	"github.com/angelmondragon/lumina-backend/pkg/types"
	"github.com/stripe/stripe-go/v84"
)

type ServiceParams struct {
	Logger  *logger.Logger
	Metrics *metrics.Storefront
}

// Service reacts to hosted-checkout lifecycle events. Orders are not
// persisted; events are logged and counted.
type Service struct {
	logg    *logger.Logger
	metrics *metrics.Storefront
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{logg: params.Logger, metrics: params.Metrics}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	eventType := string(event.Type)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.metrics.IncWebhookEvent(eventType, metrics.OutcomeFailure)
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		if cs.ID == "" {
			s.metrics.IncWebhookEvent(eventType, metrics.OutcomeFailure)
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		s.recordCheckout(ctx, event, &cs)
		s.metrics.IncWebhookEvent(eventType, metrics.OutcomeSuccess)
		return nil
	default:
		s.metrics.IncWebhookEvent(eventType, metrics.OutcomeIgnored)
		return nil
	}
}

func (s *Service) recordCheckout(ctx context.Context, event *stripe.Event, cs *stripe.CheckoutSession) {
	fields := map[string]any{
		"event_id":       event.ID,
		"event_type":     string(event.Type),
		"session_id":     cs.ID,
		"reference":      checkout.OrderReference(cs.ID),
		"payment_status": string(cs.PaymentStatus),
		"amount_total":   types.FromMinorUnits(cs.AmountTotal).StringFixed(2),
	}
	if source := cs.Metadata["order_source"]; source != "" {
		fields["order_source"] = source
	}
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		fields["customer_email"] = cs.CustomerDetails.Email
	}
	logCtx := s.logg.WithFields(ctx, fields)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			s.logg.Info(logCtx, "checkout completed, payment pending")
			return
		}
		s.logg.Info(logCtx, "order paid")
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		s.logg.Warn(logCtx, "order payment failed")
	case stripe.EventTypeCheckoutSessionExpired:
		s.logg.Info(logCtx, "checkout session expired")
	}
}
