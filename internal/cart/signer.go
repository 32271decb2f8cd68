package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var snapshotSigningMethod = jwt.SigningMethodHS256

type snapshotClaims struct {
	Cart string `json:"cart"`
	jwt.RegisteredClaims
}

// SnapshotSigner wraps encoded snapshots in an HS256 JWT so a client-held
// cart cannot be edited without detection.
type SnapshotSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSnapshotSigner(cfg config.CartConfig) (*SnapshotSigner, error) {
	if strings.TrimSpace(cfg.SigningSecret) == "" {
		return nil, fmt.Errorf("cart signing secret required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("cart token issuer required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &SnapshotSigner{
		secret: []byte(cfg.SigningSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

func (s *SnapshotSigner) Sign(snapshot string) (string, error) {
	now := s.now()
	claims := snapshotClaims{
		Cart: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(snapshotSigningMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing cart snapshot: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry, and returns the embedded snapshot.
func (s *SnapshotSigner) Verify(token string) (string, error) {
	claims := &snapshotClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != snapshotSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{snapshotSigningMethod.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	return claims.Cart, nil
}
