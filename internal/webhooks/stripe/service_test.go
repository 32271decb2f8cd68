package stripewebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v84"
)

func newTestService(t *testing.T) (*Service, *bytes.Buffer, *prometheus.Registry) {
	t.Helper()
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: &buf}),
		Metrics: metrics.NewStorefront(reg),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc, &buf, reg
}

func checkoutEvent(t *testing.T, eventType stripe.EventType, cs *stripe.CheckoutSession) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{ID: "evt_1", Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestHandleCheckoutCompletedLogsPaidOrder(t *testing.T) {
	svc, buf, reg := newTestService(t)

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:            "cs_test_a1b2c3d4e5f6",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   19980,
		Metadata:      map[string]string{"order_source": "lumina_website"},
	})
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"message":"order paid"`, `"reference":"C3D4E5F6"`, `"amount_total":"199.80"`, `"order_source":"lumina_website"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %s, got %s", want, out)
		}
	}
	if got := webhookCount(t, reg, string(stripe.EventTypeCheckoutSessionCompleted), metrics.OutcomeSuccess); got != 1 {
		t.Fatalf("expected success counter 1, got %f", got)
	}
}

func TestHandleCheckoutExpired(t *testing.T) {
	svc, buf, _ := newTestService(t)

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionExpired, &stripe.CheckoutSession{
		ID:            "cs_test_expired01",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	})
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if !strings.Contains(buf.String(), "checkout session expired") {
		t.Fatalf("expected expiry log, got %s", buf.String())
	}
}

func TestHandleIgnoresUnrelatedEvents(t *testing.T) {
	svc, buf, reg := newTestService(t)

	event := &stripe.Event{ID: "evt_2", Type: stripe.EventTypeCustomerCreated, Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %s", buf.String())
	}
	if got := webhookCount(t, reg, string(stripe.EventTypeCustomerCreated), metrics.OutcomeIgnored); got != 1 {
		t.Fatalf("expected ignored counter 1, got %f", got)
	}
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	svc, _, _ := newTestService(t)

	event := &stripe.Event{ID: "evt_3", Type: stripe.EventTypeCheckoutSessionCompleted, Data: &stripe.EventData{Raw: []byte(`{"id":`)}}
	if err := svc.HandleEvent(context.Background(), event); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.HandleEvent(context.Background(), nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil event, got %v", err)
	}
}

func webhookCount(t *testing.T, reg *prometheus.Registry, eventType, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "lumina_webhook_events_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["type"] == eventType && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
