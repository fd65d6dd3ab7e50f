package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ajeitai/marketplace-backend/api/routes"
	"github.com/ajeitai/marketplace-backend/internal/availability"
	"github.com/ajeitai/marketplace-backend/internal/bookings"
	"github.com/ajeitai/marketplace-backend/internal/clients"
	"github.com/ajeitai/marketplace-backend/internal/notifications"
	"github.com/ajeitai/marketplace-backend/internal/payments"
	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/internal/subscriptions"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/internal/wallet"
	billingwebhook "github.com/ajeitai/marketplace-backend/internal/webhooks/billing"
	"github.com/ajeitai/marketplace-backend/internal/withdrawals"
	"github.com/ajeitai/marketplace-backend/pkg/abacatepay"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/media"
	"github.com/ajeitai/marketplace-backend/pkg/migrate"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
	"github.com/ajeitai/marketplace-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	txRunner, err := tenant.NewRunner(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant runner", err)
		os.Exit(1)
	}

	gateway, err := abacatepay.NewClient(cfg.AbacatePay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create billing gateway client", err)
		os.Exit(1)
	}

	storage, err := media.NewLocalStorage(cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare media storage", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	clientsRepo := clients.NewRepository(gormDB)
	providersRepo := providers.NewRepository(gormDB)
	availabilityRepo := availability.NewRepository(gormDB)
	bookingsRepo := bookings.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	withdrawalsRepo := withdrawals.NewRepository(gormDB)
	subscriptionsRepo := subscriptions.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	clientsSvc, err := clients.NewService(clientsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}
	providersSvc, err := providers.NewService(providersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create providers service", err)
		os.Exit(1)
	}
	availabilitySvc, err := availability.NewService(availabilityRepo, txRunner)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}
	paymentsSvc, err := payments.NewService(paymentsRepo, gateway, cfg.AbacatePay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}
	walletSvc, err := wallet.NewService(walletRepo, outboxSvc, cfg.Wallet)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}
	bookingsSvc, err := bookings.NewService(
		bookingsRepo,
		txRunner,
		availabilityRepo,
		clientsRepo,
		providersRepo,
		paymentsSvc,
		walletSvc,
		outboxSvc,
		cfg.Booking,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}
	withdrawalsSvc, err := withdrawals.NewService(withdrawalsRepo, walletRepo, txRunner, outboxSvc, cfg.Withdrawal)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}
	subscriptionsSvc, err := subscriptions.NewService(
		subscriptionsRepo,
		providersRepo,
		walletSvc,
		gateway,
		txRunner,
		outboxSvc,
		cfg.Subscription,
		cfg.AbacatePay,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}
	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}
	webhookSvc, err := billingwebhook.NewService(redisClient, bookingsSvc, subscriptionsSvc, txRunner, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:               cfg,
			Logger:               logg,
			DBPinger:             dbClient,
			RedisClient:          redisClient,
			ClientsRepo:          clientsRepo,
			ProvidersRepo:        providersRepo,
			ClientsService:       clientsSvc,
			ProvidersService:     providersSvc,
			AvailabilityService:  availabilitySvc,
			BookingsService:      bookingsSvc,
			WalletService:        walletSvc,
			WithdrawalsService:   withdrawalsSvc,
			SubscriptionsService: subscriptionsSvc,
			NotificationsService: notificationsSvc,
			WebhookService:       webhookSvc,
			WebhookSecret:        gateway.WebhookSecret(),
			MediaStorage:         storage,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
