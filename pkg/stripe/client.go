package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"

	webhookSecretPrefix = "whsec_"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errSecretRequired   = errors.New("stripe webhook secret is required")
	errInvalidSecret    = fmt.Errorf("stripe webhook secret must start with %q", webhookSecretPrefix)
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// keyPrefixes lists the secret and restricted key prefixes accepted per environment.
var keyPrefixes = map[string][]string{
	testEnv: {"sk_test_", "rk_test_"},
	liveEnv: {"sk_live_", "rk_live_"},
}

// Client wraps Stripe's API client together with the webhook signing secret
// and the environment the API key belongs to.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
	keyHint       string
}

func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := strings.TrimSpace(strings.ToLower(cfg.Env))
	if env == "" {
		env = testEnv
	}
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, errInvalidStripeEnv
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe %s environment requires a key starting with %s", env, strings.Join(prefixes, " or "))
	}

	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	if !strings.HasPrefix(secret, webhookSecretPrefix) {
		return nil, errInvalidSecret
	}

	client := &Client{
		api:           stripe.NewClient(apiKey),
		environment:   env,
		signingSecret: secret,
		keyHint:       maskKey(apiKey),
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_env": env,
			"stripe_key": client.keyHint,
		}), "stripe client initialized")
	}
	return client, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook endpoint secret used to verify signatures.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// KeyHint is a loggable form of the API key: its prefix and last four characters.
func (c *Client) KeyHint() string {
	if c == nil {
		return ""
	}
	return c.keyHint
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

func maskKey(key string) string {
	idx := strings.LastIndex(key, "_")
	if idx < 0 || len(key)-idx-1 <= 4 {
		return "****"
	}
	return key[:idx+1] + "..." + key[len(key)-4:]
}
