package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawly/PGS-BookingService/pkg/types"
)

// BookingStatus represents the status of a grooming appointment
type BookingStatus string

const (
	StatusScheduled BookingStatus = "scheduled"
	StatusInService BookingStatus = "in_service"
	StatusDone      BookingStatus = "done"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a grooming appointment with its service lines
type Booking struct {
	ID          int64
	CustomerID  int64
	PetID       int64
	BookingDate time.Time
	StartTime   types.TimeString
	Status      BookingStatus
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	Lines []ServiceLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlocksSlot returns true if the booking occupies its time slot.
// Done bookings intentionally free the slot for same-day re-booking;
// cancelled and no-show bookings never block it.
func (b *Booking) BlocksSlot() bool {
	return b.Status == StatusScheduled || b.Status == StatusInService
}

// ConsumesQuota returns true if the booking's subscription-covered lines
// count against the subscription allotment
func (b *Booking) ConsumesQuota() bool {
	return b.Status == StatusScheduled || b.Status == StatusInService || b.Status == StatusDone
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusScheduled || b.Status == StatusInService
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CanTransitionTo returns true if the status change is a legal staff action
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusScheduled:
		return next == StatusInService || next == StatusNoShow
	case StatusInService:
		return next == StatusDone
	default:
		return false
	}
}

// ServiceLine represents one service within a booking.
// SubscriptionID is set only when the line was covered by a subscription
// allotment; otherwise the customer is billed PriceCharged directly.
type ServiceLine struct {
	ID             int64
	BookingID      int64
	ServiceID      int64
	SubscriptionID *int64
	ServiceName    string
	PriceCharged   decimal.Decimal
}

// IsCoveredBySubscription returns true if the line was charged against a subscription
func (l *ServiceLine) IsCoveredBySubscription() bool {
	return l.SubscriptionID != nil
}

// CustomerBookingsFilter фильтр для выборки бронирований клиента
type CustomerBookingsFilter struct {
	CustomerID int64          // Обязательный параметр
	Status     *BookingStatus // Фильтр по статусу (опционально)
}
