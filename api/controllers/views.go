package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ajeitai/marketplace-backend/pkg/db/models"
	"github.com/ajeitai/marketplace-backend/pkg/types"
)

const dateLayout = "2006-01-02"

type addressView struct {
	Street     string   `json:"street"`
	Number     string   `json:"number"`
	Complement *string  `json:"complement,omitempty"`
	District   string   `json:"district"`
	PostalCode string   `json:"postalCode"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

func newAddressView(addr types.Address) addressView {
	return addressView{
		Street:     addr.Street,
		Number:     addr.Number,
		Complement: addr.Complement,
		District:   addr.District,
		PostalCode: addr.PostalCode,
		City:       addr.City,
		State:      addr.State,
		Latitude:   addr.Latitude,
		Longitude:  addr.Longitude,
	}
}

type clientView struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   addressView `json:"address"`
	CreatedAt time.Time   `json:"createdAt"`
}

func newClientView(client *models.Client) clientView {
	return clientView{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   newAddressView(client.Address),
		CreatedAt: client.CreatedAt,
	}
}

type providerView struct {
	ID           uuid.UUID   `json:"id"`
	TradeName    string      `json:"tradeName"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	ServicePrice string      `json:"servicePrice"`
	Address      addressView `json:"address"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func newProviderView(provider *models.Provider) providerView {
	return providerView{
		ID:           provider.ID,
		TradeName:    provider.TradeName,
		Email:        provider.Email,
		Phone:        provider.Phone,
		ServicePrice: provider.ServicePrice.StringFixed(2),
		Address:      newAddressView(provider.Address),
		CreatedAt:    provider.CreatedAt,
	}
}

func newProviderViews(providers []models.Provider) []providerView {
	views := make([]providerView, 0, len(providers))
	for i := range providers {
		views = append(views, newProviderView(&providers[i]))
	}
	return views
}

type slotView struct {
	ID      uuid.UUID `json:"id"`
	Weekday int       `json:"weekday"`
	Start   string    `json:"start"`
	End     string    `json:"end"`
}

func newSlotViews(slots []models.AvailabilitySlot) []slotView {
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{
			ID:      slot.ID,
			Weekday: slot.Weekday,
			Start:   slot.Start,
			End:     slot.End,
		})
	}
	return views
}

type bookingView struct {
	ID            uuid.UUID   `json:"id"`
	ClientID      uuid.UUID   `json:"clientId"`
	ProviderID    uuid.UUID   `json:"providerId"`
	ScheduledAt   time.Time   `json:"scheduledAt"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"paymentMethod"`
	ServicePrice  string      `json:"servicePrice"`
	Note          string      `json:"note,omitempty"`
	Address       addressView `json:"address"`
	CreatedAt     time.Time   `json:"createdAt"`
	AcceptedAt    *time.Time  `json:"acceptedAt,omitempty"`
	ConfirmedAt   *time.Time  `json:"confirmedAt,omitempty"`
	CheckinAt     *time.Time  `json:"checkinAt,omitempty"`
	CheckoutAt    *time.Time  `json:"checkoutAt,omitempty"`
	PhotoPath     *string     `json:"completionPhotoPath,omitempty"`
}

func newBookingView(booking *models.Booking) bookingView {
	return bookingView{
		ID:            booking.ID,
		ClientID:      booking.ClientID,
		ProviderID:    booking.ProviderID,
		ScheduledAt:   booking.ScheduledAt,
		Status:        string(booking.Status),
		PaymentMethod: string(booking.PaymentMethod),
		ServicePrice:  booking.ServicePrice.StringFixed(2),
		Note:          booking.Note,
		Address:       newAddressView(booking.Address),
		CreatedAt:     booking.CreatedAt,
		AcceptedAt:    booking.AcceptedAt,
		ConfirmedAt:   booking.ConfirmedAt,
		CheckinAt:     booking.CheckinAt,
		CheckoutAt:    booking.CheckoutAt,
		PhotoPath:     booking.CompletionPhotoPath,
	}
}

func newBookingViews(bookings []models.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, newBookingView(&bookings[i]))
	}
	return views
}

type walletAccountView struct {
	ProviderID       uuid.UUID `json:"providerId"`
	AvailableBalance string    `json:"availableBalance"`
	LastWithdrawalAt *string   `json:"lastWithdrawalAt,omitempty"`
}

func newWalletAccountView(account *models.WalletAccount) walletAccountView {
	view := walletAccountView{
		ProviderID:       account.ProviderID,
		AvailableBalance: account.AvailableBalance.StringFixed(2),
	}
	if account.LastWithdrawalAt != nil {
		formatted := account.LastWithdrawalAt.Format(dateLayout)
		view.LastWithdrawalAt = &formatted
	}
	return view
}

type transactionView struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	GrossAmount  string     `json:"grossAmount"`
	PlatformFee  string     `json:"platformFee"`
	NetAmount    string     `json:"netAmount"`
	BookingID    *uuid.UUID `json:"bookingId,omitempty"`
	WithdrawalID *uuid.UUID `json:"withdrawalId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func newTransactionViews(entries []models.WalletTransaction) []transactionView {
	views := make([]transactionView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, transactionView{
			ID:           entry.ID,
			Type:         string(entry.Type),
			GrossAmount:  entry.GrossAmount.StringFixed(2),
			PlatformFee:  entry.PlatformFee.StringFixed(2),
			NetAmount:    entry.NetAmount.StringFixed(2),
			BookingID:    entry.BookingID,
			WithdrawalID: entry.WithdrawalID,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return views
}

type withdrawalView struct {
	ID              uuid.UUID  `json:"id"`
	RequestedAmount string     `json:"requestedAmount"`
	NetAmount       string     `json:"netAmount"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requestedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func newWithdrawalView(withdrawal *models.Withdrawal) withdrawalView {
	return withdrawalView{
		ID:              withdrawal.ID,
		RequestedAmount: withdrawal.RequestedAmount.StringFixed(2),
		NetAmount:       withdrawal.NetAmount.StringFixed(2),
		Status:          string(withdrawal.Status),
		RequestedAt:     withdrawal.RequestedAt,
		CompletedAt:     withdrawal.CompletedAt,
	}
}

func newWithdrawalViews(withdrawals []models.Withdrawal) []withdrawalView {
	views := make([]withdrawalView, 0, len(withdrawals))
	for i := range withdrawals {
		views = append(views, newWithdrawalView(&withdrawals[i]))
	}
	return views
}

type subscriptionView struct {
	ID            uuid.UUID  `json:"id"`
	Status        string     `json:"status"`
	StartDate     *string    `json:"startDate,omitempty"`
	EndDate       *string    `json:"endDate,omitempty"`
	LastPaymentAt *time.Time `json:"lastPaymentAt,omitempty"`
	CurrentPrice  string     `json:"currentPrice"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newSubscriptionView(sub *models.Subscription) subscriptionView {
	view := subscriptionView{
		ID:            sub.ID,
		Status:        string(sub.Status),
		LastPaymentAt: sub.LastPaymentAt,
		CurrentPrice:  sub.CurrentPrice.StringFixed(2),
		CreatedAt:     sub.CreatedAt,
	}
	if sub.StartDate != nil {
		formatted := sub.StartDate.Format(dateLayout)
		view.StartDate = &formatted
	}
	if sub.EndDate != nil {
		formatted := sub.EndDate.Format(dateLayout)
		view.EndDate = &formatted
	}
	return view
}

func newSubscriptionViews(subs []models.Subscription) []subscriptionView {
	views := make([]subscriptionView, 0, len(subs))
	for i := range subs {
		views = append(views, newSubscriptionView(&subs[i]))
	}
	return views
}

type notificationView struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newNotificationViews(items []models.Notification) []notificationView {
	views := make([]notificationView, 0, len(items))
	for _, item := range items {
		views = append(views, notificationView{
			ID:        item.ID,
			Kind:      item.Kind,
			Title:     item.Title,
			Message:   item.Message,
			Link:      item.Link,
			ReadAt:    item.ReadAt,
			CreatedAt: item.CreatedAt,
		})
	}
	return views
}
