package controllers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/lumina-backend/internal/newsletter"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

func newNewsletterService(t *testing.T) newsletter.Service {
	t.Helper()
	repo, err := newsletter.NewFileRepository(filepath.Join(t.TempDir(), "newsletter.json"))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	svc, err := newsletter.NewService(repo, logger.Nop(), nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func TestNewsletterSubscribeStatuses(t *testing.T) {
	svc := newNewsletterService(t)
	handler := NewsletterSubscribe(svc, nil)

	cases := []struct {
		body   string
		status int
	}{
		{`{"email":"Ada@Example.com","source":"footer"}`, http.StatusCreated},
		{`{"email":"ada@example.com"}`, http.StatusConflict},
		{`{"email":"not-an-email"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`{"email":"x@y.fr","extra":true}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", strings.NewReader(tc.body)))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.body, tc.status, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	NewsletterStats(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/newsletter/stats", nil))
	var stats map[string]int64
	decodeData(t, rec, &stats)
	if stats["count"] != 1 {
		t.Fatalf("expected one subscriber, got %v", stats)
	}
}

func TestNewsletterSubscribeResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NewsletterSubscribe(newNewsletterService(t), nil).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/newsletter", strings.NewReader(`{"email":" Grace@Example.com "}`)))

	var resp newsletterResponse
	decodeData(t, rec, &resp)
	if resp.Email != "grace@example.com" || resp.Source != newsletter.DefaultSource || resp.SubscribedAt.IsZero() {
		t.Fatalf("unexpected response %+v", resp)
	}
}
