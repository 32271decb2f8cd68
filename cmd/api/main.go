package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/lumina-backend/api"
	"github.com/angelmondragon/lumina-backend/api/controllers"
	"github.com/angelmondragon/lumina-backend/api/routes"
	"github.com/angelmondragon/lumina-backend/internal/cart"
	"github.com/angelmondragon/lumina-backend/internal/catalog"
	"github.com/angelmondragon/lumina-backend/internal/checkout"
	"github.com/angelmondragon/lumina-backend/internal/newsletter"
	"github.com/angelmondragon/lumina-backend/internal/shipping"
	stripewebhook "github.com/angelmondragon/lumina-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/db"
	"github.com/angelmondragon/lumina-backend/pkg/instance"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
	"github.com/angelmondragon/lumina-backend/pkg/metrics"
	"github.com/angelmondragon/lumina-backend/pkg/migrate"
	"github.com/angelmondragon/lumina-backend/pkg/redis"
	"github.com/angelmondragon/lumina-backend/pkg/stripe"
)

const webhookIdempotencyScope = "stripe-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	var dbClient *db.Client
	var dbPinger controllers.Pinger
	if cfg.Newsletter.UsesSQL() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			return err
		}
		defer func() {
			err = multierr.Append(err, dbClient.Close())
		}()
		dbPinger = dbClient

		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefront(registry)

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stripe client", err)
		return err
	}

	cat, err := catalog.Load()
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		return err
	}
	shippingTable := shipping.NewTable(cfg.Shipping)
	pricing := cart.Pricing{CustomizationSurcharge: cfg.Cart.CustomizationSurcharge}

	cartService, err := cart.NewService(cat, shippingTable, pricing, logg, storefrontMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		return err
	}
	signer, err := cart.NewSnapshotSigner(cfg.Cart)
	if err != nil {
		logg.Error(ctx, "failed to create cart signer", err)
		return err
	}
	cartStorages, err := cart.NewStorageFactory(cfg.Cart, signer, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to create cart storage", err)
		return err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Provider: checkout.NewStripeProvider(stripeClient),
		Builder: checkout.NewBuilder(pricing, shippingTable, checkout.Settings{
			Currency:    cfg.Checkout.Currency,
			Locale:      cfg.Checkout.Locale,
			SessionTTL:  cfg.Checkout.SessionTTL,
			SuccessPath: cfg.Checkout.SuccessPath,
			CancelPath:  cfg.Checkout.CancelPath,
			OrderSource: cfg.Checkout.OrderSource,
		}),
		DefaultOrigin: cfg.Checkout.DefaultOrigin,
		Logger:        logg,
		Metrics:       storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		return err
	}

	var newsletterRepo newsletter.Repository
	if dbClient != nil {
		newsletterRepo = newsletter.NewSQLRepository(dbClient.DB())
	} else {
		fileRepo, err := newsletter.NewFileRepository(cfg.Newsletter.FilePath)
		if err != nil {
			logg.Error(ctx, "failed to open newsletter store", err)
			return err
		}
		newsletterRepo = fileRepo
	}
	newsletterService, err := newsletter.NewService(newsletterRepo, logg, storefrontMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create newsletter service", err)
		return err
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook service", err)
		return err
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.WebhookIdempotencyTTL, webhookIdempotencyScope)
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook guard", err)
		return err
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbPinger,
		redisClient,
		registry,
		cat,
		shippingTable,
		cartService,
		cartStorages,
		checkoutService,
		newsletterService,
		stripeClient,
		webhookService,
		webhookGuard,
	)

	addr := api.Addr(cfg, os.Getenv("PORT"))
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      instance.GetID(),
		"stripe_env":    stripeClient.Environment(),
		"cart_storage":  cfg.Cart.Storage,
		"newsletter_db": cfg.Newsletter.Backend,
	})
	logg.Info(startCtx, "starting api server")

	return api.Serve(ctx, api.NewServer(addr, handler), logg)
}
