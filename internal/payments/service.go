package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ajeitai/marketplace-backend/pkg/abacatepay"
	"github.com/ajeitai/marketplace-backend/pkg/config"
	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
)

// ExternalIDPrefix distinguishes booking charges from subscription charges
// in gateway callbacks.
const ExternalIDPrefix = "ag-"

const placeholderCheckoutBase = "https://pagamentos.ajeitai.com/checkout/"

var centsFactor = decimal.NewFromInt(100)

type billingGateway interface {
	Enabled() bool
	CreateBilling(ctx context.Context, params abacatepay.BillingParams) (*abacatepay.BillingResult, error)
}

// Service creates and settles booking payments. All methods run against the
// caller's transaction so payment state moves together with booking state.
type Service interface {
	CreateForBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking, client *models.Client, provider *models.Provider) (*models.Payment, error)
	ConfirmForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error)
	CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
}

type service struct {
	repo    Repository
	gateway billingGateway
	cfg     config.AbacatePayConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the payments service.
func NewService(repo Repository, gateway billingGateway, cfg config.AbacatePayConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("billing gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// BookingExternalID builds the gateway external id for a booking charge.
func BookingExternalID(bookingID uuid.UUID) string {
	return ExternalIDPrefix + bookingID.String()
}

// ParseBookingExternalID extracts the booking id from a gateway external id.
func ParseBookingExternalID(externalID string) (uuid.UUID, bool) {
	raw, found := strings.CutPrefix(externalID, ExternalIDPrefix)
	if !found {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateForBooking is idempotent: an existing payment is returned untouched.
// Cash bookings get a NAO_APLICAVEL record; online bookings get a PENDENTE
// record with a gateway payment link, or a placeholder link when the gateway
// is down or not configured.
func (s *service) CreateForBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking, client *models.Client, provider *models.Provider) (*models.Payment, error) {
	if booking == nil || booking.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking required")
	}
	repo := s.repo.WithTx(tx)

	existing, err := repo.FindByBookingID(ctx, booking.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	payment := &models.Payment{BookingID: booking.ID}
	if booking.PaymentMethod == enums.PaymentMethodDinheiro {
		payment.Status = enums.PaymentStatusNaoAplicavel
		if _, err := repo.Create(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return payment, nil
	}

	payment.Status = enums.PaymentStatusPendente
	billingID, paymentURL := s.createBillingLink(ctx, booking, client, provider)
	payment.BillingID = billingID
	payment.PaymentURL = &paymentURL

	if _, err := repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return payment, nil
}

func (s *service) createBillingLink(ctx context.Context, booking *models.Booking, client *models.Client, provider *models.Provider) (*string, string) {
	externalID := BookingExternalID(booking.ID)
	fallbackURL := placeholderCheckoutBase + booking.ID.String()

	params := abacatepay.BillingParams{
		ExternalID:  externalID,
		ProductName: "Atendimento",
		Description: "Agendamento " + booking.ScheduledAt.Format("02/01/2006 15:04"),
		PriceCents:  int(booking.ServicePrice.Mul(centsFactor).IntPart()),
		ReturnURL:   strings.TrimRight(s.cfg.FrontendBaseURL, "/") + "/cliente/agendamentos",
	}
	if provider != nil && provider.TradeName != "" {
		params.ProductName = "Atendimento - " + provider.TradeName
	}
	if client != nil {
		params.CustomerName = client.Name
		params.CustomerPhone = client.Phone
		params.CustomerEmail = client.Email
		params.CustomerTaxID = client.TaxID
	}

	result, err := s.gateway.CreateBilling(ctx, params)
	if err != nil {
		logCtx := s.logg.WithBookingID(ctx, booking.ID.String())
		s.logg.Error(logCtx, "billing link creation failed, using placeholder", err)
		return nil, fallbackURL
	}
	if result == nil {
		return nil, fallbackURL
	}
	return &result.BillingID, result.PaymentURL
}

// ConfirmForBooking marks the payment CONFIRMADO. Already-confirmed payments
// are returned unchanged so webhook retries stay harmless.
func (s *service) ConfirmForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	repo := s.repo.WithTx(tx)

	payment, err := repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for booking")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment.Status == enums.PaymentStatusConfirmado {
		return payment, nil
	}

	confirmedAt := s.now().UTC()
	updates := map[string]any{
		"status":       enums.PaymentStatusConfirmado,
		"confirmed_at": confirmedAt,
	}
	if err := repo.Update(ctx, payment.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}
	payment.Status = enums.PaymentStatusConfirmado
	payment.ConfirmedAt = &confirmedAt
	return payment, nil
}

// CancelForBooking is best effort: bookings without a payment are a no-op and
// confirmed payments stay confirmed.
func (s *service) CancelForBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	repo := s.repo.WithTx(tx)

	payment, err := repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment.Status == enums.PaymentStatusConfirmado || payment.Status == enums.PaymentStatusCancelado {
		return nil
	}
	if err := repo.Update(ctx, payment.ID, map[string]any{"status": enums.PaymentStatusCancelado}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel payment")
	}
	return nil
}
