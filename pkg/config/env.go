package config

const EnvPrefix = "LUMINA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	CartStorageCookie = "cookie"
	CartStorageRedis  = "redis"

	NewsletterBackendFile = "file"
	NewsletterBackendSQL  = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv            = "LUMINA_APP_ENV"
	EnvPort              = "LUMINA_APP_PORT"
	EnvCartStorage       = "LUMINA_CART_STORAGE"
	EnvCartSecret        = "LUMINA_CART_SIGNING_SECRET"
	EnvCartSurcharge     = "LUMINA_CART_CUSTOMIZATION_SURCHARGE"
	EnvShippingDomestic  = "LUMINA_SHIPPING_DOMESTIC_RATE"
	EnvShippingCountries = "LUMINA_SHIPPING_DOMESTIC_COUNTRIES"
	EnvRedisURL          = "LUMINA_REDIS_URL"
	EnvDBDSN             = "LUMINA_DB_DSN"
	EnvDBDriver          = "LUMINA_DB_DRIVER"
	EnvNewsletterBackend = "LUMINA_NEWSLETTER_BACKEND"
	EnvCheckoutCurrency  = "LUMINA_CHECKOUT_CURRENCY"
	EnvStripeAPIKey      = "LUMINA_STRIPE_API_KEY"
	EnvStripeSecret      = "LUMINA_STRIPE_SECRET"
)
