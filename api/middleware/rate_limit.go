package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/lumina-backend/api/responses"
	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy throttles one endpoint per client IP and per submitted
// email. A zero limit disables that dimension.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	return RateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// limitCheck is one counter to bump for a request.
type limitCheck struct {
	dimension string
	subject   string
	limit     int
}

func (c limitCheck) scope(policy string) string {
	return c.dimension + ":" + policy + ":" + c.subject
}

// RateLimit rejects requests with 429 once any counter of policy is exhausted.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			checks, err := policy.checksFor(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			for _, check := range checks {
				allowed, count, err := store.FixedWindowAllow(ctx, check.scope(policy.name), int64(check.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					policy.reject(ctx, logg, w, check, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checksFor lists the counters for r. The body is restored for the handler.
func (p RateLimitPolicy) checksFor(r *http.Request) ([]limitCheck, error) {
	var checks []limitCheck
	if ip := requestClientIP(r); p.ipLimit > 0 && ip != "" {
		checks = append(checks, limitCheck{dimension: "ip", subject: ip, limit: p.ipLimit})
	}
	if p.emailLimit <= 0 || r.Body == nil {
		return checks, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if email := submittedEmail(body); email != "" {
		checks = append(checks, limitCheck{dimension: "email", subject: sha256Hex(email), limit: p.emailLimit})
	}
	return checks, nil
}

func (p RateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, check limitCheck, count int64) {
	retryAfter := strconv.Itoa(int(p.window.Seconds()))
	if logg != nil {
		subjectField := "ip"
		if check.dimension == "email" {
			subjectField = "email_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         p.name,
			"scope":          check.dimension,
			subjectField:     check.subject,
			"attempts":       count,
			"limit":          check.limit,
			"window_seconds": retryAfter,
		}), "rate_limit.blocked")
	}
	w.Header().Set("Retry-After", retryAfter)
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later"))
}

// submittedEmail pulls the lower-cased email field from a JSON body, if any.
func submittedEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
