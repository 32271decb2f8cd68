package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeIgnored = "ignored"
)

// Storefront records cart, checkout, newsletter and webhook activity.
// A nil *Storefront is valid and records nothing.
type Storefront struct {
	cartMutations    *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
	newsletter       *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"mutation"})
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_checkout_sessions_total",
		Help: "Hosted checkout sessions requested, by outcome.",
	}, []string{"outcome"})
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumina_checkout_session_duration_seconds",
		Help:    "Latency of checkout session creation against the payment provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	newsletter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_newsletter_subscriptions_total",
		Help: "Newsletter subscription attempts, by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lumina_webhook_events_total",
		Help: "Payment webhook events received, by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(cartMutations, checkoutSessions, checkoutDuration, newsletter, webhookEvents)
	return &Storefront{
		cartMutations:    cartMutations,
		checkoutSessions: checkoutSessions,
		checkoutDuration: checkoutDuration,
		newsletter:       newsletter,
		webhookEvents:    webhookEvents,
	}
}

// IncCartMutation counts one applied cart mutation.
func (s *Storefront) IncCartMutation(mutation string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(mutation)).Inc()
}

// ObserveCheckout records one checkout session attempt and its latency.
func (s *Storefront) ObserveCheckout(outcome string, duration time.Duration) {
	if s == nil || s.checkoutSessions == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	s.checkoutSessions.WithLabelValues(outcome).Inc()
	s.checkoutDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncNewsletter counts a subscription attempt.
func (s *Storefront) IncNewsletter(outcome string) {
	if s == nil || s.newsletter == nil {
		return
	}
	s.newsletter.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhookEvent counts a received webhook event.
func (s *Storefront) IncWebhookEvent(eventType, outcome string) {
	if s == nil || s.webhookEvents == nil {
		return
	}
	s.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
