package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/lumina-backend/api/responses"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/lumina-backend/pkg/redis"
)

const (
	idempotencyHeader  = "Idempotency-Key"
	replayedHeader     = "Idempotent-Replayed"
	maxIdempotencyKey  = 255
	pendingStatus      = 0
	idempotencyBodyCap = 64 << 10
)

// Lifetimes of stored responses. Checkout matches the hosted session expiry.
const (
	CheckoutIdempotencyTTL   = 30 * time.Minute
	NewsletterIdempotencyTTL = 24 * time.Hour
)

// storedResponse is the redis value for one key. Status is pendingStatus
// while the first request is still running.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

// RequestFingerprint returns request state that lives outside the body, such
// as the caller's cart, so it counts toward the idempotency request hash.
type RequestFingerprint func(r *http.Request) []byte

// Idempotency lets a client safely retry a POST by sending Idempotency-Key.
// The first request claims the key; a retry with the same body gets the
// stored response, a retry with a different body or one that races the
// first request is rejected. 5xx responses release the key. Requests
// without the header pass through.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return IdempotencyWithFingerprint(store, ttl, nil, logg)
}

// IdempotencyWithFingerprint is Idempotency with fingerprint mixed into the
// request hash, so reusing a key after that state changed is rejected.
func IdempotencyWithFingerprint(store pkgredis.IdempotencyStore, ttl time.Duration, fingerprint RequestFingerprint, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, idempotencyBodyCap))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := store.IdempotencyKey(idempotencyScope(r), clientKey)
			var extra []byte
			if fingerprint != nil {
				extra = fingerprint(r)
			}
			hash := requestHash(body, extra)

			claim, _ := json.Marshal(storedResponse{Status: pendingStatus, RequestHash: hash})
			claimed, err := store.SetNX(ctx, key, string(claim), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replay(ctx, w, store, key, hash, logg)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			status := capture.statusCode()

			// Drop the claim either way; a success is written back below.
			if err := store.Del(ctx, key); err != nil {
				logIdempotencyError(ctx, logg, "release idempotency key", err)
				return
			}
			if status >= http.StatusInternalServerError {
				return
			}

			record, _ := json.Marshal(storedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if _, err := store.SetNX(ctx, key, string(record), ttl); err != nil {
				logIdempotencyError(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func replay(ctx context.Context, w http.ResponseWriter, store pkgredis.IdempotencyStore, key, hash string, logg *logger.Logger) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, pkgredis.ErrNil) {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request still in progress, retry"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case stored.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request"))
	case stored.Status == pendingStatus:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request still in progress, retry"))
	default:
		if stored.ContentType != "" {
			w.Header().Set("Content-Type", stored.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(stored.Status)
		_, _ = w.Write(stored.Body)
	}
}

// idempotencyScope keeps keys from different callers and endpoints apart.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{requestClientIP(r), r.Method, strings.TrimSuffix(r.URL.Path, "/")}, "|")
}

func requestHash(body, extra []byte) string {
	h := sha256.New()
	h.Write(body)
	if len(extra) > 0 {
		h.Write([]byte{0})
		h.Write(extra)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func logIdempotencyError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
