package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/lumina-backend/pkg/enums"
)

type Config struct {
	App        AppConfig
	Cart       CartConfig
	Shipping   ShippingConfig
	Checkout   CheckoutConfig
	Redis      RedisConfig
	DB         DBConfig
	Newsletter NewsletterConfig
	RateLimit  RateLimitConfig
	Stripe     StripeConfig
	CORS       CORSConfig
	Eventing   EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MigrateConfig is the slice of configuration the migration CLI needs, so it
// can run without payment or cache credentials.
type MigrateConfig struct {
	App AppConfig
	DB  DBConfig
}

func LoadMigrate() (*MigrateConfig, error) {
	var cfg MigrateConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LUMINA_APP_ENV" required:"true"`
	Port         string `envconfig:"LUMINA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LUMINA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LUMINA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CartConfig struct {
	Storage                string          `envconfig:"LUMINA_CART_STORAGE" default:"cookie"`
	CookieName             string          `envconfig:"LUMINA_CART_COOKIE_NAME" default:"lumina-cart"`
	SessionCookieName      string          `envconfig:"LUMINA_CART_SESSION_COOKIE_NAME" default:"lumina-session"`
	TTL                    time.Duration   `envconfig:"LUMINA_CART_TTL" default:"720h"`
	SigningSecret          string          `envconfig:"LUMINA_CART_SIGNING_SECRET" required:"true"`
	Issuer                 string          `envconfig:"LUMINA_CART_ISSUER" default:"lumina"`
	SecureCookie           bool            `envconfig:"LUMINA_CART_SECURE_COOKIE" default:"true"`
	CustomizationSurcharge decimal.Decimal `envconfig:"LUMINA_CART_CUSTOMIZATION_SURCHARGE" default:"0"`
}

type ShippingConfig struct {
	FreeThreshold     decimal.Decimal `envconfig:"LUMINA_SHIPPING_FREE_THRESHOLD" default:"100"`
	DomesticRate      decimal.Decimal `envconfig:"LUMINA_SHIPPING_DOMESTIC_RATE" default:"9.90"`
	RegionalRate      decimal.Decimal `envconfig:"LUMINA_SHIPPING_REGIONAL_RATE" default:"25.00"`
	DomesticCountries []string        `envconfig:"LUMINA_SHIPPING_DOMESTIC_COUNTRIES" default:"FR"`
	RegionalCountries []string        `envconfig:"LUMINA_SHIPPING_REGIONAL_COUNTRIES" default:"AT,BE,BG,HR,CY,CZ,DK,EE,FI,DE,GR,HU,IE,IT,LV,LT,LU,MT,NL,PL,PT,RO,SK,SI,ES,SE,CH,GB,NO"`
}

type CheckoutConfig struct {
	Currency      string        `envconfig:"LUMINA_CHECKOUT_CURRENCY" default:"eur"`
	Locale        string        `envconfig:"LUMINA_CHECKOUT_LOCALE" default:"fr"`
	SessionTTL    time.Duration `envconfig:"LUMINA_CHECKOUT_SESSION_TTL" default:"30m"`
	SuccessPath   string        `envconfig:"LUMINA_CHECKOUT_SUCCESS_PATH" default:"/commande/success"`
	CancelPath    string        `envconfig:"LUMINA_CHECKOUT_CANCEL_PATH" default:"/panier"`
	OrderSource   string        `envconfig:"LUMINA_CHECKOUT_ORDER_SOURCE" default:"lumina_website"`
	DefaultOrigin string        `envconfig:"LUMINA_CHECKOUT_DEFAULT_ORIGIN"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LUMINA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LUMINA_REDIS_ADDR"`
	Password     string        `envconfig:"LUMINA_REDIS_PASSWORD"`
	DB           int           `envconfig:"LUMINA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LUMINA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LUMINA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LUMINA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LUMINA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LUMINA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN         string `envconfig:"LUMINA_DB_DSN"`
	Driver      string `envconfig:"LUMINA_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"LUMINA_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"LUMINA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"LUMINA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"LUMINA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LUMINA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (d DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(d.Driver), DBDriverSQLite)
}

type NewsletterConfig struct {
	Backend  string `envconfig:"LUMINA_NEWSLETTER_BACKEND" default:"file"`
	FilePath string `envconfig:"LUMINA_NEWSLETTER_FILE" default:"data/newsletter.json"`
}

// UsesSQL reports whether subscribers live in the SQL database.
func (n NewsletterConfig) UsesSQL() bool {
	return strings.EqualFold(strings.TrimSpace(n.Backend), NewsletterBackendSQL)
}

type RateLimitConfig struct {
	NewsletterWindow     time.Duration `envconfig:"LUMINA_RATE_LIMIT_NEWSLETTER_WINDOW" default:"10m"`
	NewsletterIPLimit    int           `envconfig:"LUMINA_RATE_LIMIT_NEWSLETTER_IP_LIMIT" default:"5"`
	NewsletterEmailLimit int           `envconfig:"LUMINA_RATE_LIMIT_NEWSLETTER_EMAIL_LIMIT" default:"3"`
}

type StripeConfig struct {
	APIKey string `envconfig:"LUMINA_STRIPE_API_KEY" required:"true"`
	Secret string `envconfig:"LUMINA_STRIPE_SECRET" required:"true"`
	Env    string `envconfig:"LUMINA_STRIPE_ENV" default:"test"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LUMINA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL time.Duration `envconfig:"LUMINA_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Cart.Storage)) {
	case CartStorageCookie, CartStorageRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCartStorage, CartStorageCookie, CartStorageRedis)
	}

	switch strings.ToLower(strings.TrimSpace(c.Newsletter.Backend)) {
	case NewsletterBackendFile:
	case NewsletterBackendSQL:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvNewsletterBackend, NewsletterBackendSQL)
		}
	default:
		return fmt.Errorf("%s must be %q or %q", EnvNewsletterBackend, NewsletterBackendFile, NewsletterBackendSQL)
	}

	if _, err := enums.ParseCurrency(c.Checkout.Currency); err != nil {
		return fmt.Errorf("%s: %w", EnvCheckoutCurrency, err)
	}

	if c.Cart.CustomizationSurcharge.IsNegative() {
		return fmt.Errorf("%s cannot be negative", EnvCartSurcharge)
	}
	if c.Shipping.FreeThreshold.IsNegative() || c.Shipping.DomesticRate.IsNegative() || c.Shipping.RegionalRate.IsNegative() {
		return fmt.Errorf("shipping amounts cannot be negative")
	}
	return nil
}
