package cart

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/pkg/config"
)

func testCartConfig() config.CartConfig {
	return config.CartConfig{
		Storage:           config.CartStorageCookie,
		CookieName:        "lumina-cart",
		SessionCookieName: "lumina-session",
		TTL:               time.Hour,
		SigningSecret:     "secret",
		Issuer:            "lumina",
		SecureCookie:      true,
	}
}

func TestSignerRoundTrip(t *testing.T) {
	signer, err := NewSnapshotSigner(testCartConfig())
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := signer.Sign(`{"lines":[]}`)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != `{"lines":[]}` {
		t.Fatalf("unexpected snapshot %q", got)
	}
}

func TestSignerRejectsTamperedAndExpiredTokens(t *testing.T) {
	signer, _ := NewSnapshotSigner(testCartConfig())
	token, _ := signer.Sign(`{"lines":[]}`)

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := signer.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected tampered token to fail")
	}

	other := testCartConfig()
	other.SigningSecret = "other"
	otherSigner, _ := NewSnapshotSigner(other)
	if _, err := otherSigner.Verify(token); err == nil {
		t.Fatal("expected foreign secret to fail")
	}

	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := signer.Sign(`{"lines":[]}`)
	signer.now = time.Now
	if _, err := signer.Verify(stale); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestNewSnapshotSignerValidatesConfig(t *testing.T) {
	cfg := testCartConfig()
	cfg.SigningSecret = " "
	if _, err := NewSnapshotSigner(cfg); err == nil {
		t.Fatal("expected missing secret to fail")
	}
	cfg = testCartConfig()
	cfg.TTL = 0
	if _, err := NewSnapshotSigner(cfg); err == nil {
		t.Fatal("expected zero ttl to fail")
	}
}

func TestCookieStorageRoundTrip(t *testing.T) {
	cfg := testCartConfig()
	signer, _ := NewSnapshotSigner(cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	storage := NewCookieStorage(rec, req, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer)

	if _, err := storage.Load(req.Context()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound without cookie, got %v", err)
	}
	if err := storage.Save(req.Context(), `{"lines":[],"isOpen":true}`); err != nil {
		t.Fatalf("save: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != "lumina-cart" || !cookie.HttpOnly || !cookie.Secure || cookie.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}

	next := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	next.AddCookie(cookie)
	got, err := NewCookieStorage(httptest.NewRecorder(), next, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer).Load(next.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != `{"lines":[],"isOpen":true}` {
		t.Fatalf("unexpected snapshot %q", got)
	}
}

func TestCookieStorageRejectsForgedCookie(t *testing.T) {
	cfg := testCartConfig()
	signer, _ := NewSnapshotSigner(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: `{"lines":[]}`})

	_, err := NewCookieStorage(httptest.NewRecorder(), req, cfg.CookieName, cfg.TTL, false, signer).Load(req.Context())
	if err == nil || err == ErrNotFound {
		t.Fatalf("expected verification error, got %v", err)
	}
}

func TestCookieStorageFitsEveryCatalogCombination(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	c := New(Pricing{})
	for _, p := range cat.Products() {
		c.AddItem(p, nil)
		for _, cz := range cat.Customizations() {
			c.AddItem(p, &cz)
		}
	}
	for _, l := range c.Lines() {
		c.UpdateQuantity(l.Key(), 12)
	}
	want := len(cat.Products()) * (len(cat.Customizations()) + 1)
	if got := len(c.Lines()); got != want {
		t.Fatalf("expected %d lines, got %d", want, got)
	}
	raw, err := EncodeSnapshot(c.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cfg := testCartConfig()
	signer, _ := NewSnapshotSigner(cfg)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	if err := NewCookieStorage(rec, req, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer).Save(req.Context(), raw); err != nil {
		t.Fatalf("save: %v", err)
	}

	header := rec.Header().Get("Set-Cookie")
	if header == "" || len(header) > maxCookieBytes {
		t.Fatalf("expected a cookie within %d bytes, got %d", maxCookieBytes, len(header))
	}

	next := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	next.AddCookie(rec.Result().Cookies()[0])
	got, err := NewCookieStorage(httptest.NewRecorder(), next, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer).Load(next.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != raw {
		t.Fatal("snapshot changed across the cookie round trip")
	}
}

func TestCookieStorageRefusesOversizedSnapshot(t *testing.T) {
	cfg := testCartConfig()
	signer, _ := NewSnapshotSigner(cfg)

	noise := make([]byte, 8<<10)
	if _, err := rand.Read(noise); err != nil {
		t.Fatalf("rand: %v", err)
	}
	raw := `{"lines":[{"productId":"` + hex.EncodeToString(noise) + `","quantity":1}],"isOpen":false}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	err := NewCookieStorage(rec, req, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer).Save(req.Context(), raw)
	if !errors.Is(err, ErrCookieTooLarge) {
		t.Fatalf("expected ErrCookieTooLarge, got %v", err)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatal("oversized cookie must not be written")
	}
}

func TestStorageFingerprintIgnoresDrawerFlag(t *testing.T) {
	cfg := testCartConfig()
	signer, _ := NewSnapshotSigner(cfg)
	factory, err := NewStorageFactory(cfg, signer, nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	if got := factory.Fingerprint(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)); got != nil {
		t.Fatalf("expected nil fingerprint without a cart, got %q", got)
	}

	fingerprint := func(raw string) []byte {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
		if err := factory(rec, req).Save(req.Context(), raw); err != nil {
			t.Fatalf("save: %v", err)
		}
		next := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		next.AddCookie(rec.Result().Cookies()[0])
		return factory.Fingerprint(next)
	}

	closed := fingerprint(`{"lines":[{"productId":"lumina-turquoise","customizationId":null,"quantity":1}],"isOpen":false}`)
	open := fingerprint(`{"lines":[{"productId":"lumina-turquoise","customizationId":null,"quantity":1}],"isOpen":true}`)
	more := fingerprint(`{"lines":[{"productId":"lumina-turquoise","customizationId":null,"quantity":2}],"isOpen":false}`)

	if len(closed) == 0 || string(closed) != string(open) {
		t.Fatalf("drawer flag changed the fingerprint: %q vs %q", closed, open)
	}
	if string(closed) == string(more) {
		t.Fatal("quantity change must change the fingerprint")
	}
	if got := fingerprint(`{"lines":[],"isOpen":true}`); got != nil {
		t.Fatalf("expected nil fingerprint for an empty cart, got %q", got)
	}
}
