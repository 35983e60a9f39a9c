package get_subscription_usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawly/PGS-BookingService/internal/domain"
	subscriptionRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/subscription"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeSubscriptionRepo struct {
	subscription *domain.Subscription
	findErr      error
	entitlements []*domain.PlanEntitlement
	consumed     map[int64]int
}

func (f *fakeSubscriptionRepo) FindActiveForDate(_ context.Context, _ int64, _ time.Time) (*domain.Subscription, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.subscription, nil
}

func (f *fakeSubscriptionRepo) ListEntitlements(_ context.Context, _ int64) ([]*domain.PlanEntitlement, error) {
	return f.entitlements, nil
}

func (f *fakeSubscriptionRepo) CountConsumption(_ context.Context, _, serviceID int64, _, _ time.Time) (int, error) {
	return f.consumed[serviceID], nil
}

type fakeCatalogRepo struct {
	names map[int64]string
}

func (f *fakeCatalogRepo) GetService(_ context.Context, id int64) (*domain.Service, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, errors.New("service not found")
	}
	return &domain.Service{ID: id, Name: name}, nil
}

var testDate = time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)

func activeSubscription() *domain.Subscription {
	periodStart := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	return &domain.Subscription{
		ID:          7,
		CustomerID:  1,
		PlanID:      3,
		Status:      domain.SubscriptionActive,
		PeriodStart: &periodStart,
		PeriodEnd:   &periodEnd,
	}
}

func TestExecute_NoSubscriptionIsNotAnError(t *testing.T) {
	subs := &fakeSubscriptionRepo{findErr: subscriptionRepo.ErrSubscriptionNotFound}
	uc := NewUseCase(subs, &fakeCatalogRepo{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{CustomerID: 1, Date: testDate})
	require.NoError(t, err)

	assert.False(t, resp.HasSubscription)
	assert.Nil(t, resp.Subscription)
	assert.Empty(t, resp.PerService)
}

func TestExecute_IncompletePeriodIsHardError(t *testing.T) {
	sub := activeSubscription()
	sub.PeriodEnd = nil

	subs := &fakeSubscriptionRepo{subscription: sub}
	uc := NewUseCase(subs, &fakeCatalogRepo{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{CustomerID: 1, Date: testDate})
	assert.ErrorIs(t, err, ErrIncompletePeriod)
}

func TestExecute_PerServiceReport(t *testing.T) {
	subs := &fakeSubscriptionRepo{
		subscription: activeSubscription(),
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 4},
			{PlanID: 3, ServiceID: 200, QuantityPerPeriod: 2},
		},
		consumed: map[int64]int{100: 1, 200: 2},
	}
	catalog := &fakeCatalogRepo{names: map[int64]string{
		100: "Полный груминг",
		200: "Стрижка когтей",
	}}
	uc := NewUseCase(subs, catalog, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{CustomerID: 1, Date: testDate})
	require.NoError(t, err)

	assert.True(t, resp.HasSubscription)
	require.Len(t, resp.PerService, 2)

	assert.Equal(t, domain.ServiceUsage{
		ServiceID:         100,
		ServiceName:       "Полный груминг",
		QuantityPerPeriod: 4,
		Consumed:          1,
		Remaining:         3,
	}, resp.PerService[0])

	assert.Equal(t, 0, resp.PerService[1].Remaining)
	assert.False(t, resp.PerService[1].HasRemaining())
}

func TestExecute_RemainingFlooredAtZero(t *testing.T) {
	// Потребление больше квоты возможно после уменьшения квоты плана задним числом
	subs := &fakeSubscriptionRepo{
		subscription: activeSubscription(),
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 2},
		},
		consumed: map[int64]int{100: 5},
	}
	uc := NewUseCase(subs, &fakeCatalogRepo{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{CustomerID: 1, Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.PerService, 1)
	assert.Equal(t, 5, resp.PerService[0].Consumed)
	assert.Equal(t, 0, resp.PerService[0].Remaining)
}

func TestExecute_CatalogFailureDoesNotBreakReport(t *testing.T) {
	subs := &fakeSubscriptionRepo{
		subscription: activeSubscription(),
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 4},
		},
		consumed: map[int64]int{},
	}
	uc := NewUseCase(subs, &fakeCatalogRepo{}, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{CustomerID: 1, Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.PerService, 1)
	assert.Empty(t, resp.PerService[0].ServiceName)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&fakeSubscriptionRepo{}, &fakeCatalogRepo{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{CustomerID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{CustomerID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
