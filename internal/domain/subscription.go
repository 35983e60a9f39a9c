package domain

import "time"

// SubscriptionStatus represents the billing state of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionLate      SubscriptionStatus = "late"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription represents a customer's plan subscription for one billing period
type Subscription struct {
	ID          int64
	CustomerID  int64
	PlanID      int64
	Status      SubscriptionStatus
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCompletePeriod returns true if both billing-period bounds are present.
// A subscription without them must never be charged against: the accountant
// treats it as a data-integrity failure, not as an unlimited allowance.
func (s *Subscription) HasCompletePeriod() bool {
	return s.PeriodStart != nil && s.PeriodEnd != nil
}

// CoversDate returns true if date falls inside [PeriodStart, PeriodEnd]
func (s *Subscription) CoversDate(date time.Time) bool {
	if !s.HasCompletePeriod() {
		return false
	}
	d := dateOnly(date)
	return !d.Before(dateOnly(*s.PeriodStart)) && !d.After(dateOnly(*s.PeriodEnd))
}

// dateOnly обнуляет время, оставляя только календарную дату
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PlanEntitlement defines how many units of a service one subscription
// period includes
type PlanEntitlement struct {
	ID                int64
	PlanID            int64
	ServiceID         int64
	QuantityPerPeriod int
}

// ServiceUsage is the derived per-service consumption report for one
// subscription period
type ServiceUsage struct {
	ServiceID         int64
	ServiceName       string
	QuantityPerPeriod int
	Consumed          int
	Remaining         int // floored at 0 for display
}

// HasRemaining returns true if at least one more unit can be consumed
func (u *ServiceUsage) HasRemaining() bool {
	return u.QuantityPerPeriod-u.Consumed > 0
}
