package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/api/responses"
	"github.com/ajeitai/marketplace-backend/api/validators"
	"github.com/ajeitai/marketplace-backend/internal/bookings"
	"github.com/ajeitai/marketplace-backend/internal/tenant"
	"github.com/ajeitai/marketplace-backend/pkg/enums"
	pkgerrors "github.com/ajeitai/marketplace-backend/pkg/errors"
	"github.com/ajeitai/marketplace-backend/pkg/logger"
	"github.com/ajeitai/marketplace-backend/pkg/media"
)

const (
	completionPhotoFolder  = "conclusoes"
	completionPhotoMaxSize = 10 << 20
)

type createBookingRequest struct {
	ProviderID    uuid.UUID `json:"providerId" validate:"required"`
	ScheduledAt   time.Time `json:"scheduledAt" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required"`
	Note          string    `json:"note" validate:"max=500"`
}

// CreateBooking schedules a service for the authenticated client.
func CreateBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		booking, err := svc.Create(r.Context(), bookings.CreateInput{
			ClientID:      clientID,
			ProviderID:    req.ProviderID,
			ScheduledAt:   req.ScheduledAt,
			PaymentMethod: method,
			Note:          req.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBookingView(booking))
	}
}

func statusFilter(r *http.Request) (*enums.BookingStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseBookingStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
	}
	return &status, nil
}

// ListMyBookings returns the authenticated client's bookings.
func ListMyBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := statusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForClient(r.Context(), clientID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingViews(list))
	}
}

// GetMyBooking returns one of the authenticated client's bookings.
func GetMyBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.GetForClient(r.Context(), bookingID, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

// CancelBooking cancels a pending or accepted booking for the client.
func CancelBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Cancel(r.Context(), bookingID, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

// ConfirmBookingPayment marks an online payment as settled from the
// client side. Webhook delivery is the usual path; this endpoint covers
// return-URL confirmation.
func ConfirmBookingPayment(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clientID, err := scope.RequireClient()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.ConfirmPayment(r.Context(), bookingID, clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

// ListProviderBookings returns the authenticated provider's bookings.
func ListProviderBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := statusFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForProvider(r.Context(), providerID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingViews(list))
	}
}

// GetProviderBooking returns one of the authenticated provider's bookings.
func GetProviderBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.GetForProvider(r.Context(), bookingID, providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

// AcceptBooking moves a pending booking to accepted, issuing the payment
// charge when the booking pays online.
func AcceptBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Accept(r.Context(), bookingID, providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

// RefuseBooking declines a pending booking.
func RefuseBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Refuse(r.Context(), bookingID, providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

type checkpointRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// CheckInBooking records the provider's arrival at the service address.
func CheckInBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkpointRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.CheckIn(r.Context(), bookings.CheckpointInput{
			BookingID:  bookingID,
			ProviderID: providerID,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}

func parseCoordinate(raw, field string, min, max float64) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid coordinate").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// CheckOutBooking completes the engagement. The body is multipart so the
// provider can attach the completion photo alongside the coordinates.
func CheckOutBooking(svc bookings.Service, storage media.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := tenant.RequireScope(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := scope.RequireProvider()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(completionPhotoMaxSize); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		latitude, err := parseCoordinate(r.FormValue("latitude"), "latitude", -90, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		longitude, err := parseCoordinate(r.FormValue("longitude"), "longitude", -180, 180)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := bookings.CheckpointInput{
			BookingID:  bookingID,
			ProviderID: providerID,
			Latitude:   latitude,
			Longitude:  longitude,
		}

		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			path, err := storage.Save(r.Context(), completionPhotoFolder, header.Filename, file)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store completion photo"))
				return
			}
			input.PhotoPath = &path
		} else if err != http.ErrMissingFile {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo upload"))
			return
		}

		booking, err := svc.CheckOut(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingView(booking))
	}
}
