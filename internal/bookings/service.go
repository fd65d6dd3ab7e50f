package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/internal/availability"
	"github.com/ajeitai/marketplace-backend/internal/clients"
	"github.com/ajeitai/marketplace-backend/internal/providers"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type paymentService interface {
	CreateForBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking, client *models.Client, provider *models.Provider) (*models.Payment, error)
	ConfirmForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error)
	CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

type walletCreditor interface {
	CreditConfirmedPayment(ctx context.Context, tx *gorm.DB, booking *models.Booking, payment *models.Payment) error
}

// CreateInput carries a client's booking request.
type CreateInput struct {
	ClientID      uuid.UUID
	ProviderID    uuid.UUID
	ScheduledAt   time.Time
	PaymentMethod enums.PaymentMethod
	Note          string
}

// CheckpointInput records a provider's on-site check-in or check-out.
type CheckpointInput struct {
	BookingID  uuid.UUID
	ProviderID uuid.UUID
	Latitude   float64
	Longitude  float64
	// PhotoPath is only honored on check-out.
	PhotoPath *string
}

// Event is the payload shipped with every booking lifecycle event.
type Event struct {
	BookingID   uuid.UUID           `json:"booking_id"`
	ClientID    uuid.UUID           `json:"client_id"`
	ProviderID  uuid.UUID           `json:"provider_id"`
	Status      enums.BookingStatus `json:"status"`
	ScheduledAt time.Time           `json:"scheduled_at"`
	PaymentURL  *string             `json:"payment_url,omitempty"`
}

// Service is the booking state machine. Transitions follow
// PENDENTE -> ACEITO -> CONFIRMADO -> REALIZADO, with RECUSADO and CANCELADO
// as terminal exits.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	Accept(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error)
	Refuse(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error)
	ConfirmPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) error
	CheckIn(ctx context.Context, input CheckpointInput) (*models.Booking, error)
	CheckOut(ctx context.Context, input CheckpointInput) (*models.Booking, error)
	GetForClient(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error)
	GetForProvider(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error)
	ListForClient(ctx context.Context, clientID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	slots     availability.Repository
	clients   clients.Repository
	providers providers.Repository
	payments  paymentService
	wallet    walletCreditor
	outbox    outboxPublisher
	cfg       config.BookingConfig
	logg      *logger.Logger
	now       func() time.Time
	lock      func(tx *gorm.DB, providerID uuid.UUID, timeout time.Duration) error
}

// NewService wires the booking state machine with its collaborators.
func NewService(
	repo Repository,
	tx txRunner,
	slots availability.Repository,
	clientsRepo clients.Repository,
	providersRepo providers.Repository,
	paymentsSvc paymentService,
	walletSvc walletCreditor,
	outboxSvc outboxPublisher,
	cfg config.BookingConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if slots == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if clientsRepo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if providersRepo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	if paymentsSvc == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		slots:     slots,
		clients:   clientsRepo,
		providers: providersRepo,
		payments:  paymentsSvc,
		wallet:    walletSvc,
		outbox:    outboxSvc,
		cfg:       cfg,
		logg:      logg,
		now:       time.Now,
		lock:      db.LockProviderRow,
	}, nil
}

// Create validates antecedence, location match, slot containment and slot
// conflict, then persists a PENDENTE booking. The conflict check and insert
// run under an exclusive lock on the provider row so two concurrent requests
// for the same slot cannot both succeed.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if input.ClientID == uuid.Nil || input.ProviderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client and provider ids required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	now := s.now()
	if input.ScheduledAt.Before(now.Add(s.cfg.MinAntecedence)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("booking must be created at least %d minutes in advance", int(s.cfg.MinAntecedence.Minutes())))
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		client, err := s.clients.WithTx(tx).FindByID(ctx, input.ClientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
		}
		provider, err := s.providers.WithTx(tx).FindByID(ctx, input.ProviderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
		}

		if !client.Address.IsRegistered() {
			return pkgerrors.New(pkgerrors.CodeValidation, "client has no registered address")
		}
		if !provider.Address.IsRegistered() {
			return pkgerrors.New(pkgerrors.CodeValidation, "provider has no registered address")
		}
		if !client.Address.SameCity(provider.Address) {
			return pkgerrors.New(pkgerrors.CodeValidation, "client and provider must be in the same city")
		}

		if err := s.lock(tx, input.ProviderID, s.cfg.ProviderLockTimeout); err != nil {
			if db.IsLockNotAvailable(err) {
				return pkgerrors.New(pkgerrors.CodeSlotContention, "provider is being booked by another client")
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "provider not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock provider row")
		}

		weekday := availability.ISOWeekday(input.ScheduledAt)
		slots, err := s.slots.WithTx(tx).ListByProviderAndWeekday(ctx, input.ProviderID, weekday)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load availability slots")
		}
		if !availability.AnySlotCovers(slots, input.ScheduledAt) {
			return pkgerrors.New(pkgerrors.CodeValidation, "requested time is outside the provider's availability")
		}

		conflict, err := s.repo.WithTx(tx).ExistsActiveAt(ctx, input.ProviderID, input.ScheduledAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot conflict")
		}
		if conflict {
			return pkgerrors.New(pkgerrors.CodeConflict, "provider already has a booking at this time")
		}

		booking = &models.Booking{
			ClientID:      input.ClientID,
			ProviderID:    input.ProviderID,
			ScheduledAt:   input.ScheduledAt,
			Status:        enums.BookingStatusPendente,
			PaymentMethod: input.PaymentMethod,
			ServicePrice:  provider.ServicePrice,
			Note:          input.Note,
			Address:       client.Address,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}

		return s.emit(ctx, tx, enums.EventBookingCreated, booking, clientActor(input.ClientID), nil)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Accept moves a PENDENTE booking to ACEITO and creates its payment. Cash
// bookings confirm immediately since no gateway is involved.
func (s *service) Accept(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil || providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and provider ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, bookingID, nil, &providerID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusPendente {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending bookings can be accepted")
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":      enums.BookingStatusAceito,
			"accepted_at": now,
		}
		if err := s.repo.WithTx(tx).Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept booking")
		}
		booking.Status = enums.BookingStatusAceito
		booking.AcceptedAt = &now

		client, err := s.clients.WithTx(tx).FindByID(ctx, booking.ClientID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
		}
		provider, err := s.providers.WithTx(tx).FindByID(ctx, booking.ProviderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
		}

		payment, err := s.payments.CreateForBooking(ctx, tx, booking, client, provider)
		if err != nil {
			return err
		}

		if err := s.emit(ctx, tx, enums.EventBookingAccepted, booking, providerActor(providerID), nil); err != nil {
			return err
		}
		if payment.PaymentURL != nil {
			if err := s.emit(ctx, tx, enums.EventPaymentLinkAvailable, booking, providerActor(providerID), payment.PaymentURL); err != nil {
				return err
			}
		}

		if booking.PaymentMethod == enums.PaymentMethodDinheiro {
			confirmedAt := s.now().UTC()
			updates := map[string]any{
				"status":       enums.BookingStatusConfirmado,
				"confirmed_at": confirmedAt,
			}
			if err := s.repo.WithTx(tx).Update(ctx, booking.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm cash booking")
			}
			booking.Status = enums.BookingStatusConfirmado
			booking.ConfirmedAt = &confirmedAt
			return s.emit(ctx, tx, enums.EventBookingConfirmed, booking, providerActor(providerID), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Refuse is the provider's terminal rejection of a PENDENTE booking.
func (s *service) Refuse(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil || providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and provider ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, bookingID, nil, &providerID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusPendente {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending bookings can be refused")
		}

		if err := s.repo.WithTx(tx).Update(ctx, booking.ID, map[string]any{"status": enums.BookingStatusRecusado}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refuse booking")
		}
		booking.Status = enums.BookingStatusRecusado

		if err := s.payments.CancelForBooking(ctx, tx, booking.ID); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventBookingRefused, booking, providerActor(providerID), nil)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel lets the owning client abandon any booking that has not been
// completed. Canceling twice is a no-op.
func (s *service) Cancel(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil || clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and client ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, bookingID, &clientID, nil)
		if err != nil {
			return err
		}
		if booking.Status == enums.BookingStatusCancelado {
			return nil
		}
		if booking.Status == enums.BookingStatusRealizado {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed bookings cannot be canceled")
		}

		if err := s.repo.WithTx(tx).Update(ctx, booking.ID, map[string]any{"status": enums.BookingStatusCancelado}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
		}
		booking.Status = enums.BookingStatusCancelado

		if err := s.payments.CancelForBooking(ctx, tx, booking.ID); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventBookingCanceled, booking, clientActor(clientID), nil)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmPayment is the client-side confirmation path. Settlement happens in
// the same transaction as the status change.
func (s *service) ConfirmPayment(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil || clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and client ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, bookingID, &clientID, nil)
		if err != nil {
			return err
		}
		if booking.Status == enums.BookingStatusConfirmado {
			return nil
		}
		if booking.Status != enums.BookingStatusAceito {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted bookings can be confirmed")
		}
		return s.confirm(ctx, tx, booking, clientActor(clientID))
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmPaymentByBookingID is the gateway-callback path. Anything other than
// an ACEITO booking is silently ignored, which makes duplicate or out-of-order
// webhook deliveries harmless.
func (s *service) ConfirmPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.repo.WithTx(tx).FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logg.Warn(s.logg.WithBookingID(ctx, bookingID.String()), "webhook for unknown booking ignored")
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.Status != enums.BookingStatusAceito {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"booking_id": booking.ID.String(),
				"status":     booking.Status.String(),
			})
			s.logg.Info(logCtx, "webhook ignored, booking not awaiting confirmation")
			return nil
		}
		return s.confirm(ctx, tx, booking, nil)
	})
}

func (s *service) confirm(ctx context.Context, tx *gorm.DB, booking *models.Booking, actor *outbox.ActorRef) error {
	payment, err := s.payments.ConfirmForBooking(ctx, tx, booking.ID)
	if err != nil {
		return err
	}

	confirmedAt := s.now().UTC()
	updates := map[string]any{
		"status":       enums.BookingStatusConfirmado,
		"confirmed_at": confirmedAt,
	}
	if err := s.repo.WithTx(tx).Update(ctx, booking.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
	}
	booking.Status = enums.BookingStatusConfirmado
	booking.ConfirmedAt = &confirmedAt

	if err := s.wallet.CreditConfirmedPayment(ctx, tx, booking, payment); err != nil {
		return err
	}
	return s.emit(ctx, tx, enums.EventBookingConfirmed, booking, actor, nil)
}

// CheckIn records the provider's arrival with coordinates.
func (s *service) CheckIn(ctx context.Context, input CheckpointInput) (*models.Booking, error) {
	if input.BookingID == uuid.Nil || input.ProviderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and provider ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, input.BookingID, nil, &input.ProviderID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusConfirmado {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "check-in requires a confirmed booking")
		}
		if booking.CheckinAt != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "check-in already recorded")
		}

		now := s.now().UTC()
		updates := map[string]any{
			"checkin_at":        now,
			"checkin_latitude":  input.Latitude,
			"checkin_longitude": input.Longitude,
		}
		if err := s.repo.WithTx(tx).Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record check-in")
		}
		booking.CheckinAt = &now
		booking.CheckinLatitude = &input.Latitude
		booking.CheckinLongitude = &input.Longitude
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckOut closes the visit and moves the booking to REALIZADO.
func (s *service) CheckOut(ctx context.Context, input CheckpointInput) (*models.Booking, error) {
	if input.BookingID == uuid.Nil || input.ProviderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and provider ids required")
	}

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, input.BookingID, nil, &input.ProviderID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusConfirmado {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "check-out requires a confirmed booking")
		}
		if booking.CheckinAt == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "check-in must be recorded before check-out")
		}
		if booking.CheckoutAt != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "check-out already recorded")
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":             enums.BookingStatusRealizado,
			"checkout_at":        now,
			"checkout_latitude":  input.Latitude,
			"checkout_longitude": input.Longitude,
		}
		if input.PhotoPath != nil {
			updates["completion_photo_path"] = *input.PhotoPath
		}
		if err := s.repo.WithTx(tx).Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record check-out")
		}
		booking.Status = enums.BookingStatusRealizado
		booking.CheckoutAt = &now
		booking.CheckoutLatitude = &input.Latitude
		booking.CheckoutLongitude = &input.Longitude
		booking.CompletionPhotoPath = input.PhotoPath

		return s.emit(ctx, tx, enums.EventBookingCompleted, booking, providerActor(input.ProviderID), nil)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) GetForClient(ctx context.Context, bookingID, clientID uuid.UUID) (*models.Booking, error) {
	return s.getOwned(ctx, bookingID, &clientID, nil)
}

func (s *service) GetForProvider(ctx context.Context, bookingID, providerID uuid.UUID) (*models.Booking, error) {
	return s.getOwned(ctx, bookingID, nil, &providerID)
}

func (s *service) ListForClient(ctx context.Context, clientID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error) {
	if clientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	bookings, err := s.repo.ListByClient(ctx, clientID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return bookings, nil
}

func (s *service) ListForProvider(ctx context.Context, providerID uuid.UUID, status *enums.BookingStatus) ([]models.Booking, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	bookings, err := s.repo.ListByProvider(ctx, providerID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return bookings, nil
}

func (s *service) getOwned(ctx context.Context, bookingID uuid.UUID, clientID, providerID *uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if err := checkOwnership(booking, clientID, providerID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) loadOwned(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, clientID, providerID *uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.WithTx(tx).FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if err := checkOwnership(booking, clientID, providerID); err != nil {
		return nil, err
	}
	return booking, nil
}

func checkOwnership(booking *models.Booking, clientID, providerID *uuid.UUID) error {
	if clientID != nil && booking.ClientID != *clientID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to client")
	}
	if providerID != nil && booking.ProviderID != *providerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to provider")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, booking *models.Booking, actor *outbox.ActorRef, paymentURL *string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateBooking,
		AggregateID:   booking.ID,
		Actor:         actor,
		Data: Event{
			BookingID:   booking.ID,
			ClientID:    booking.ClientID,
			ProviderID:  booking.ProviderID,
			Status:      booking.Status,
			ScheduledAt: booking.ScheduledAt,
			PaymentURL:  paymentURL,
		},
	})
}

func clientActor(clientID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{Role: enums.ActorRoleClient, ClientID: &clientID}
}

func providerActor(providerID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{Role: enums.ActorRoleProvider, ProviderID: &providerID}
}
