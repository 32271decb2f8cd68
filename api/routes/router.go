package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/lumina-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/lumina-backend/api/controllers/cart"
	webhookcontrollers "github.com/angelmondragon/lumina-backend/api/controllers/webhooks"
	"github.com/angelmondragon/lumina-backend/api/middleware"
	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/lumina-backend/internal/checkout"
	"github.com/angelmondragon/lumina-backend/internal/newsletter"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	stripewebhook "github.com/angelmondragon/lumina-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/enums"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/lumina-backend/pkg/redis"
	"github.com/angelmondragon/lumina-backend/pkg/stripe"
)

// RedisStore is the redis surface shared by the idempotency and rate limit
// middleware and the readiness probe.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	cat *catalog.Catalog,
	shippingTable *shipping.Table,
	cartService cart.Service,
	cartStorages cart.StorageFactory,
	checkoutService checkoutsvc.Service,
	newsletterService newsletter.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ClientIP(),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	readyDeps := map[string]controllers.Pinger{}
	if redisStore != nil {
		readyDeps["redis"] = redisStore
	}
	if dbP != nil {
		readyDeps["db"] = dbP
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// A nil store must reach the middleware as a nil interface, not a typed nil.
	var idempotencyStore pkgredis.IdempotencyStore
	if redisStore != nil {
		idempotencyStore = redisStore
	}
	// The checkout body carries no cart, so the saved cart joins the request hash.
	var cartFingerprint middleware.RequestFingerprint
	if cartStorages != nil {
		cartFingerprint = cartStorages.Fingerprint
	}
	checkoutIdempotency := middleware.IdempotencyWithFingerprint(idempotencyStore, middleware.CheckoutIdempotencyTTL, cartFingerprint, logg)
	newsletterIdempotency := middleware.Idempotency(idempotencyStore, middleware.NewsletterIdempotencyTTL, logg)

	newsletterPolicy := middleware.NewRateLimitPolicy(
		"newsletter",
		cfg.RateLimit.NewsletterWindow,
		cfg.RateLimit.NewsletterIPLimit,
		cfg.RateLimit.NewsletterEmailLimit,
	)
	newsletterLimiter := func(next http.Handler) http.Handler { return next }
	if redisStore != nil {
		newsletterLimiter = middleware.RateLimit(newsletterPolicy, redisStore, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(cat, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(cat, logg))
		r.Get("/styles", controllers.StyleList(cat, logg))
		r.Get("/styles/{slug}", controllers.StyleDetail(cat, logg))
		r.Get("/customizations", controllers.CustomizationList(cat, logg))

		r.Get("/shipping/quote", controllers.ShippingQuote(shippingTable, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, cartStorages, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, cartStorages, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, cartStorages, logg))
			r.Patch("/items", cartcontrollers.CartUpdateItem(cartService, cartStorages, logg))
			r.Delete("/items", cartcontrollers.CartRemoveItem(cartService, cartStorages, logg))
			r.Post("/open", cartcontrollers.CartDrawer(cartService, cartStorages, enums.CartMutationOpen, logg))
			r.Post("/close", cartcontrollers.CartDrawer(cartService, cartStorages, enums.CartMutationClose, logg))
			r.Post("/toggle", cartcontrollers.CartDrawer(cartService, cartStorages, enums.CartMutationToggle, logg))
		})

		r.With(checkoutIdempotency).Post("/checkout", controllers.Checkout(checkoutService, cartService, cartStorages, logg))
		r.Get("/checkout/sessions/{sessionId}", controllers.CheckoutSession(checkoutService, logg))

		r.With(newsletterLimiter, newsletterIdempotency).Post("/newsletter", controllers.NewsletterSubscribe(newsletterService, logg))
		r.Get("/newsletter/stats", controllers.NewsletterStats(newsletterService, logg))

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
		})
	})

	return r
}
