// Package routes wires the HTTP surface of the API.
package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ajeitai/marketplace-backend/api/controllers"
	"github.com/ajeitai/marketplace-backend/api/middleware"
	"github.com/ajeitai/marketplace-backend/internal/availability"
	"github.com/ajeitai/marketplace-backend/internal/bookings"
	"github.com/ajeitai/marketplace-backend/internal/clients"
	"github.com/ajeitai/marketplace-backend/internal/notifications"
	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/internal/subscriptions"
	"github.com/ajeitai/marketplace-backend/internal/wallet"
	billingwebhook "github.com/ajeitai/marketplace-backend/internal/webhooks/billing"
	"github.com/ajeitai/marketplace-backend/internal/withdrawals"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/media"
	"github.com/ajeitai/marketplace-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    pinger
	RedisClient *redis.Client

	ClientsRepo   clients.Repository
	ProvidersRepo providers.Repository

	ClientsService       clients.Service
	ProvidersService     providers.Service
	AvailabilityService  availability.Service
	BookingsService      bookings.Service
	WalletService        wallet.Service
	WithdrawalsService   withdrawals.Service
	SubscriptionsService subscriptions.Service
	NotificationsService notifications.Service
	WebhookService       *billingwebhook.Service
	WebhookSecret        string
	MediaStorage         media.Storage
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var cache pinger
	if deps.RedisClient != nil {
		cache = deps.RedisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, cache, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/abacatepay", controllers.AbacatePayWebhook(deps.WebhookService, deps.WebhookSecret, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.ClientsRepo, deps.ProvidersRepo, logg))

		r.Post("/clients/register", controllers.RegisterClient(deps.ClientsService, logg))
		r.Post("/providers/register", controllers.RegisterProvider(deps.ProvidersService, logg))

		r.Get("/providers", controllers.SearchProviders(deps.ProvidersService, logg))
		r.Get("/providers/{providerID}/availability", controllers.ListProviderAvailability(deps.AvailabilityService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.NotificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.NotificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.NotificationsService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireClient(logg))

			r.Get("/clients/me", controllers.GetMyClientProfile(deps.ClientsService, logg))
			r.Put("/clients/me", controllers.UpdateMyClientProfile(deps.ClientsService, logg))

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", controllers.CreateBooking(deps.BookingsService, logg))
				r.Get("/", controllers.ListMyBookings(deps.BookingsService, logg))
				r.Get("/{bookingID}", controllers.GetMyBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/cancel", controllers.CancelBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/confirm-payment", controllers.ConfirmBookingPayment(deps.BookingsService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireProvider(logg))

			r.Get("/provider/me", controllers.GetMyProviderProfile(deps.ProvidersService, logg))
			r.Put("/provider/me", controllers.UpdateMyProviderProfile(deps.ProvidersService, logg))

			r.Route("/provider/availability", func(r chi.Router) {
				r.Get("/", controllers.ListMyAvailability(deps.AvailabilityService, logg))
				r.Put("/", controllers.ReplaceAvailability(deps.AvailabilityService, logg))
			})

			r.Route("/provider/bookings", func(r chi.Router) {
				r.Get("/", controllers.ListProviderBookings(deps.BookingsService, logg))
				r.Get("/{bookingID}", controllers.GetProviderBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/accept", controllers.AcceptBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/refuse", controllers.RefuseBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/checkin", controllers.CheckInBooking(deps.BookingsService, logg))
				r.Post("/{bookingID}/checkout", controllers.CheckOutBooking(deps.BookingsService, deps.MediaStorage, logg))
			})

			r.Route("/provider/wallet", func(r chi.Router) {
				r.Get("/", controllers.GetWalletAccount(deps.WalletService, logg))
				r.Get("/statement", controllers.GetWalletStatement(deps.WalletService, logg))
			})

			r.Route("/provider/withdrawals", func(r chi.Router) {
				r.Get("/summary", controllers.GetWithdrawalSummary(deps.WithdrawalsService, logg))
				r.Post("/", controllers.RequestWithdrawal(deps.WithdrawalsService, logg))
				r.Get("/", controllers.ListWithdrawals(deps.WithdrawalsService, logg))
			})

			r.Route("/provider/subscription", func(r chi.Router) {
				r.Get("/", controllers.GetSubscriptionStatus(deps.SubscriptionsService, logg))
				r.Post("/renew", controllers.RenewSubscription(deps.SubscriptionsService, logg))
				r.Get("/history", controllers.ListSubscriptions(deps.SubscriptionsService, logg))
			})
		})
	})

	return r
}
