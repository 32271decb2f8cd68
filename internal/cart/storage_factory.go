package cart

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/google/uuid"
)

// StorageFactory builds the Storage for one HTTP request.
type StorageFactory func(w http.ResponseWriter, r *http.Request) Storage

// NewStorageFactory selects the cookie or redis backend from configuration.
func NewStorageFactory(cfg config.CartConfig, signer *SnapshotSigner, store RedisStore) (StorageFactory, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage)) {
	case config.CartStorageCookie, "":
		if signer == nil {
			return nil, fmt.Errorf("snapshot signer required for cookie cart storage")
		}
		return func(w http.ResponseWriter, r *http.Request) Storage {
			return NewCookieStorage(w, r, cfg.CookieName, cfg.TTL, cfg.SecureCookie, signer)
		}, nil
	case config.CartStorageRedis:
		if store == nil {
			return nil, fmt.Errorf("redis store required for redis cart storage")
		}
		return func(w http.ResponseWriter, r *http.Request) Storage {
			sessionID := browsingSessionID(w, r, cfg)
			return NewRedisStorage(store, cfg.CookieName, sessionID, cfg.TTL)
		}, nil
	default:
		return nil, fmt.Errorf("unknown cart storage %q", cfg.Storage)
	}
}

// Fingerprint returns the caller's saved cart lines in canonical form, or nil
// for an empty or unreadable cart. The drawer flag is left out. Nothing is
// written to the response.
func (f StorageFactory) Fingerprint(r *http.Request) []byte {
	raw, err := f(discardResponse{}, r).Load(r.Context())
	if err != nil {
		return nil
	}
	snapshot, err := DecodeSnapshot(raw)
	if err != nil || len(snapshot.Lines) == 0 {
		return nil
	}
	snapshot.IsOpen = false
	canonical, err := EncodeSnapshot(snapshot)
	if err != nil {
		return nil
	}
	return []byte(canonical)
}

type discardResponse struct{}

func (discardResponse) Header() http.Header         { return http.Header{} }
func (discardResponse) Write(b []byte) (int, error) { return len(b), nil }
func (discardResponse) WriteHeader(int)             {}

// browsingSessionID reads the session cookie, issuing a new id when absent or malformed.
func browsingSessionID(w http.ResponseWriter, r *http.Request, cfg config.CartConfig) string {
	if cookie, err := r.Cookie(cfg.SessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
