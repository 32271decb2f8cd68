package cart

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/flate"
)

const (
	// Browsers silently drop a Set-Cookie longer than this.
	maxCookieBytes = 4096

	// Upper bound on an inflated snapshot read back from a cookie.
	maxSnapshotBytes = 64 << 10
)

// ErrCookieTooLarge is returned by CookieStorage.Save when the signed
// snapshot would not fit in a browser cookie.
var ErrCookieTooLarge = errors.New("cart cookie exceeds browser size limit")

// CookieStorage keeps the signed snapshot in a browser cookie, so the cart
// never lives on the server. The snapshot is deflated before signing.
type CookieStorage struct {
	w      http.ResponseWriter
	r      *http.Request
	name   string
	ttl    time.Duration
	secure bool
	signer *SnapshotSigner
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request, name string, ttl time.Duration, secure bool, signer *SnapshotSigner) *CookieStorage {
	return &CookieStorage{w: w, r: r, name: name, ttl: ttl, secure: secure, signer: signer}
}

func (s *CookieStorage) Load(ctx context.Context) (string, error) {
	cookie, err := s.r.Cookie(s.name)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && cookie.Value == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	packed, err := s.signer.Verify(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("verify cart cookie: %w", err)
	}
	return unpackSnapshot(packed)
}

func (s *CookieStorage) Save(ctx context.Context, value string) error {
	packed, err := packSnapshot(value)
	if err != nil {
		return err
	}
	signed, err := s.signer.Sign(packed)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     s.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if size := len(cookie.String()); size > maxCookieBytes {
		return fmt.Errorf("%w: %d bytes", ErrCookieTooLarge, size)
	}
	http.SetCookie(s.w, cookie)
	return nil
}

func packSnapshot(value string) (string, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("deflate cart snapshot: %w", err)
	}
	if _, err := io.WriteString(zw, value); err != nil {
		return "", fmt.Errorf("deflate cart snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("deflate cart snapshot: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func unpackSnapshot(packed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(packed)
	if err != nil {
		return "", fmt.Errorf("decode cart cookie: %w", err)
	}
	zr := flate.NewReader(bytes.NewReader(raw))
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxSnapshotBytes+1))
	if err != nil {
		return "", fmt.Errorf("inflate cart cookie: %w", err)
	}
	if len(out) > maxSnapshotBytes {
		return "", fmt.Errorf("inflate cart cookie: snapshot exceeds %d bytes", maxSnapshotBytes)
	}
	return string(out), nil
}
