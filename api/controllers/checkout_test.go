package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/checkout"
	"github.com/angelmondragon/lumina-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

type stubCheckoutService struct {
	lines  []cart.Line
	origin string
	err    error
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, lines []cart.Line, origin string) (*checkout.Session, error) {
	s.lines = lines
	s.origin = origin
	if s.err != nil {
		return nil, s.err
	}
	return &checkout.Session{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

func (s *stubCheckoutService) GetSession(ctx context.Context, id string) (*checkout.Confirmation, error) {
	if id != "cs_test_123" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return &checkout.Confirmation{SessionID: id, Reference: checkout.OrderReference(id)}, nil
}

type checkoutHarness struct {
	cartSvc  cart.Service
	storages cart.StorageFactory
	cookies  []*http.Cookie
}

func newCheckoutHarness(t *testing.T) *checkoutHarness {
	t.Helper()
	cartSvc, err := cart.NewService(loadCatalog(t), testShippingTable(), cart.Pricing{}, logger.Nop(), nil)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	cfg := config.CartConfig{
		Storage:           config.CartStorageCookie,
		CookieName:        "lumina-cart",
		SessionCookieName: "lumina-session",
		TTL:               time.Hour,
		SigningSecret:     "test-secret",
		Issuer:            "lumina",
	}
	signer, err := cart.NewSnapshotSigner(cfg)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	storages, err := cart.NewStorageFactory(cfg, signer, nil)
	if err != nil {
		t.Fatalf("storage factory: %v", err)
	}
	return &checkoutHarness{cartSvc: cartSvc, storages: storages}
}

// seed stores a cart holding productID in the harness cookies.
func (h *checkoutHarness) seed(t *testing.T, productID string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	session := h.cartSvc.Open(req.Context(), h.storages(rec, req))
	if err := h.cartSvc.AddItem(req.Context(), session, cart.ItemInput{ProductID: productID}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	h.cookies = rec.Result().Cookies()
}

func (h *checkoutHarness) request(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	return req
}

func TestCheckoutCreatesSessionFromCart(t *testing.T) {
	h := newCheckoutHarness(t)
	h.seed(t, "lumina-rose-poudre")
	svc := &stubCheckoutService{}

	rec := httptest.NewRecorder()
	Checkout(svc, h.cartSvc, h.storages, nil).ServeHTTP(rec, h.request(http.MethodPost, "/api/v1/checkout", `{"origin":"https://lumina.fr"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var session checkout.Session
	decodeData(t, rec, &session)
	if session.ID != "cs_test_123" || session.URL == "" {
		t.Fatalf("unexpected session %+v", session)
	}
	if len(svc.lines) != 1 || svc.lines[0].Product.ID != "lumina-rose-poudre" {
		t.Fatalf("expected cart lines forwarded, got %+v", svc.lines)
	}
	if svc.origin != "https://lumina.fr" {
		t.Fatalf("unexpected origin %q", svc.origin)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("checkout must not rewrite the cart")
	}
}

func TestCheckoutFallsBackToOriginHeader(t *testing.T) {
	h := newCheckoutHarness(t)
	h.seed(t, "lumina-rose-poudre")
	svc := &stubCheckoutService{}

	req := h.request(http.MethodPost, "/api/v1/checkout", "")
	req.Header.Set("Origin", "https://shop.lumina.fr")
	rec := httptest.NewRecorder()
	Checkout(svc, h.cartSvc, h.storages, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.origin != "https://shop.lumina.fr" {
		t.Fatalf("expected origin header used, got %q", svc.origin)
	}
}

func TestCheckoutProviderFailureSurfaces(t *testing.T) {
	h := newCheckoutHarness(t)
	h.seed(t, "lumina-rose-poudre")
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "create checkout session")}

	rec := httptest.NewRecorder()
	Checkout(svc, h.cartSvc, h.storages, nil).ServeHTTP(rec, h.request(http.MethodPost, "/api/v1/checkout", `{}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCheckoutRejectsInvalidOrigin(t *testing.T) {
	h := newCheckoutHarness(t)
	rec := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, h.cartSvc, h.storages, nil).ServeHTTP(rec, h.request(http.MethodPost, "/api/v1/checkout", `{"origin":"lumina"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckoutSessionConfirmation(t *testing.T) {
	handler := CheckoutSession(&stubCheckoutService{}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/sessions/cs_test_123", nil), "sessionId", "cs_test_123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var confirmation checkout.Confirmation
	decodeData(t, rec, &confirmation)
	if confirmation.Reference != "TEST_123" {
		t.Fatalf("unexpected reference %q", confirmation.Reference)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/sessions/cs_missing", nil), "sessionId", "cs_missing")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
