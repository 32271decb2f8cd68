package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/redis"
	"github.com/google/uuid"
)

type stubRedis struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newStubRedis() *stubRedis {
	return &stubRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := s.data[key]
	if !ok {
		return "", redis.ErrNil
	}
	return v, nil
}

func (s *stubRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubRedis) CartKey(name, sessionID string) string {
	return "lm:cart:" + name + ":" + sessionID
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStubRedis()
	storage := NewRedisStorage(store, "lumina-cart", "abc", time.Hour)

	if _, err := storage.Load(ctx); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := storage.Save(ctx, `{"lines":[]}`); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.ttls["lm:cart:lumina-cart:abc"] != time.Hour {
		t.Fatalf("expected ttl to be applied, got %v", store.ttls)
	}
	got, err := storage.Load(ctx)
	if err != nil || got != `{"lines":[]}` {
		t.Fatalf("unexpected load %q err=%v", got, err)
	}
}

func TestStorageFactoryRedisIssuesSessionCookie(t *testing.T) {
	cfg := testCartConfig()
	cfg.Storage = config.CartStorageRedis
	store := newStubRedis()

	factory, err := NewStorageFactory(cfg, nil, store)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	storage, ok := factory(rec, req).(*RedisStorage)
	if !ok {
		t.Fatal("expected redis storage")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "lumina-session" {
		t.Fatalf("expected a session cookie, got %+v", cookies)
	}
	if _, err := uuid.Parse(cookies[0].Value); err != nil {
		t.Fatalf("session id should be a uuid: %v", err)
	}
	if storage.Key() != "lm:cart:lumina-cart:"+cookies[0].Value {
		t.Fatalf("unexpected key %s", storage.Key())
	}

	again := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	again.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	reused := factory(rec2, again).(*RedisStorage)
	if reused.Key() != storage.Key() {
		t.Fatal("existing session cookie should be reused")
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Fatal("no new cookie expected when the session exists")
	}
}

func TestStorageFactoryValidatesDependencies(t *testing.T) {
	cfg := testCartConfig()
	if _, err := NewStorageFactory(cfg, nil, nil); err == nil {
		t.Fatal("cookie storage needs a signer")
	}
	cfg.Storage = config.CartStorageRedis
	if _, err := NewStorageFactory(cfg, nil, nil); err == nil {
		t.Fatal("redis storage needs a store")
	}
	cfg.Storage = "local"
	if _, err := NewStorageFactory(cfg, nil, newStubRedis()); err == nil {
		t.Fatal("unknown storage should fail")
	}

	cfg.Storage = config.CartStorageCookie
	signer, _ := NewSnapshotSigner(cfg)
	factory, err := NewStorageFactory(cfg, signer, nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if _, ok := factory(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)).(*CookieStorage); !ok {
		t.Fatal("expected cookie storage")
	}
}
