package stripewebhook

import (
	"context"
	"strconv"
	"time"

	pkgerrors "github.com/angelmondragon/lumina-backend/pkg/errors"
	"github.com/angelmondragon/lumina-backend/pkg/redis"
)

// IdempotencyGuard claims provider event ids in redis. A claimed id is
// acknowledged on redelivery without being handled again; a released id can
// be claimed by the next retry.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
	now   func() time.Time
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency store is required")
	case ttl < 0:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency ttl must be non-negative")
	case scope == "":
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope, now: time.Now}, nil
}

// Claim returns true when the caller owns eventID and should process it.
func (g *IdempotencyGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	claimedAt := strconv.FormatInt(g.now().Unix(), 10)
	ok, err := g.store.SetNX(ctx, key, claimedAt, g.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim webhook event")
	}
	return ok, nil
}

// Release drops the claim on eventID after a failed delivery.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	if err := g.store.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release webhook event")
	}
	return nil
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}
