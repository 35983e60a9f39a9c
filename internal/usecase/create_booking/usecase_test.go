package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawly/PGS-BookingService/internal/domain"
	bookingRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	subscriptionRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/subscription"
)

// Фейки контрактов use case

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeTxManager исполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	dayBookings []*domain.Booking
	createErr   error
	created     *domain.Booking
}

func (f *fakeBookingRepo) CreateWithLines(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *b
	created.ID = 101
	for i := range created.Lines {
		created.Lines[i].ID = int64(i + 1)
		created.Lines[i].BookingID = created.ID
	}
	f.created = &created
	return &created, nil
}

func (f *fakeBookingRepo) ListByDate(_ context.Context, _ time.Time, _ []domain.BookingStatus) ([]*domain.Booking, error) {
	return f.dayBookings, nil
}

type fakeScheduleRepo struct {
	template    *domain.ScheduleTemplate
	templateErr error
	blackouts   []*domain.Blackout
}

func (f *fakeScheduleRepo) GetTemplate(_ context.Context, _ time.Weekday) (*domain.ScheduleTemplate, error) {
	if f.templateErr != nil {
		return nil, f.templateErr
	}
	return f.template, nil
}

func (f *fakeScheduleRepo) ListBlackouts(_ context.Context, _ time.Time) ([]*domain.Blackout, error) {
	return f.blackouts, nil
}

type fakeSubscriptionRepo struct {
	subscription *domain.Subscription
	findErr      error
	entitlements []*domain.PlanEntitlement
	consumed     map[int64]int // serviceID -> consumed
	locked       bool
}

func (f *fakeSubscriptionRepo) FindActiveForDate(_ context.Context, _ int64, _ time.Time) (*domain.Subscription, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.subscription, nil
}

func (f *fakeSubscriptionRepo) LockByID(_ context.Context, _ int64) error {
	f.locked = true
	return nil
}

func (f *fakeSubscriptionRepo) ListEntitlements(_ context.Context, _ int64) ([]*domain.PlanEntitlement, error) {
	return f.entitlements, nil
}

func (f *fakeSubscriptionRepo) CountConsumption(_ context.Context, _, serviceID int64, _, _ time.Time) (int, error) {
	return f.consumed[serviceID], nil
}

type fakeCatalogRepo struct {
	customers map[int64]*domain.Customer
	pets      map[int64]*domain.Pet
	services  map[int64]*domain.Service
}

func (f *fakeCatalogRepo) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, catalogRepo.ErrCustomerNotFound
	}
	return c, nil
}

func (f *fakeCatalogRepo) GetPet(_ context.Context, id int64) (*domain.Pet, error) {
	p, ok := f.pets[id]
	if !ok {
		return nil, catalogRepo.ErrPetNotFound
	}
	return p, nil
}

func (f *fakeCatalogRepo) GetActiveService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return s, nil
}

// Хелперы окружения теста

func defaultCatalog() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		customers: map[int64]*domain.Customer{
			1: {ID: 1, Name: "Анна"},
		},
		pets: map[int64]*domain.Pet{
			10: {ID: 10, CustomerID: 1, Name: "Барсик"},
		},
		services: map[int64]*domain.Service{
			100: {ID: 100, Name: "Полный груминг", Price: decimal.NewFromInt(3000), Active: true},
			200: {ID: 200, Name: "Стрижка когтей", Price: decimal.NewFromInt(500), Active: true},
		},
	}
}

func defaultSchedule() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		template: &domain.ScheduleTemplate{
			Weekday:             time.Tuesday,
			OpenTime:            "08:00",
			CloseTime:           "12:00",
			SlotIntervalMinutes: 60,
		},
	}
}

// Вторник
var testDate = time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)

func validRequest() *Request {
	return &Request{
		CustomerID: 1,
		PetID:      10,
		Date:       testDate,
		StartTime:  "09:00",
		Services:   []ServiceRequest{{ServiceID: 100}},
	}
}

func newTestUseCase(
	bookings *fakeBookingRepo,
	schedule *fakeScheduleRepo,
	subscriptions *fakeSubscriptionRepo,
	catalog *fakeCatalogRepo,
) *UseCase {
	return NewUseCase(bookings, schedule, subscriptions, catalog, fakeTxManager{}, nopLogger{})
}

func TestExecute_CreatesBookingAtFullPrice(t *testing.T) {
	bookings := &fakeBookingRepo{}
	uc := newTestUseCase(bookings, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(101), resp.ID)
	assert.Equal(t, "scheduled", resp.Status)
	require.Len(t, resp.Lines, 1)
	assert.Nil(t, resp.Lines[0].SubscriptionID)
	assert.True(t, resp.Lines[0].PriceCharged.Equal(decimal.NewFromInt(3000)),
		"line must carry the catalog price, got %s", resp.Lines[0].PriceCharged)
}

func TestExecute_PriceOverrideWins(t *testing.T) {
	bookings := &fakeBookingRepo{}
	uc := newTestUseCase(bookings, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	req := validRequest()
	override := decimal.NewFromInt(1000)
	req.Services = []ServiceRequest{{ServiceID: 100, PriceOverride: &override}}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].PriceCharged.Equal(override))
}

func TestExecute_SlotTakenByExistingBooking(t *testing.T) {
	bookings := &fakeBookingRepo{
		dayBookings: []*domain.Booking{
			{StartTime: "09:00", Status: domain.StatusScheduled},
		},
	}
	uc := newTestUseCase(bookings, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_DoneBookingDoesNotBlockSlot(t *testing.T) {
	bookings := &fakeBookingRepo{
		dayBookings: []*domain.Booking{
			{StartTime: "09:00", Status: domain.StatusDone},
		},
	}
	uc := newTestUseCase(bookings, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestExecute_BlackoutBlocksSlot(t *testing.T) {
	schedule := defaultSchedule()
	schedule.blackouts = []*domain.Blackout{
		{StartTime: "08:30", EndTime: "09:30"},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, schedule, &fakeSubscriptionRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_OffGridTime(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	req := validRequest()
	req.StartTime = "09:30" // сетка часовая: 08:00, 09:00, 10:00, 11:00

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_SalonClosed(t *testing.T) {
	schedule := &fakeScheduleRepo{templateErr: scheduleRepo.ErrTemplateNotFound}
	uc := newTestUseCase(&fakeBookingRepo{}, schedule, &fakeSubscriptionRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSalonClosed)
}

func TestExecute_ConcurrentInsertLosesRace(t *testing.T) {
	// Конкурент успел вставить бронирование между проверкой и вставкой:
	// уникальный индекс переводится в ErrSlotNotAvailable
	bookings := &fakeBookingRepo{createErr: bookingRepo.ErrSlotTaken}
	uc := newTestUseCase(bookings, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_SubscriptionCoversLine(t *testing.T) {
	periodStart := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	subscriptions := &fakeSubscriptionRepo{
		subscription: &domain.Subscription{
			ID:          7,
			CustomerID:  1,
			PlanID:      3,
			Status:      domain.SubscriptionActive,
			PeriodStart: &periodStart,
			PeriodEnd:   &periodEnd,
		},
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 4},
		},
		consumed: map[int64]int{100: 2},
	}
	bookings := &fakeBookingRepo{}
	uc := newTestUseCase(bookings, defaultSchedule(), subscriptions, defaultCatalog())

	req := validRequest()
	req.UseSubscription = true

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, subscriptions.locked, "subscription row must be locked before recount")
	require.Len(t, resp.Lines, 1)
	require.NotNil(t, resp.Lines[0].SubscriptionID)
	assert.Equal(t, int64(7), *resp.Lines[0].SubscriptionID)
}

func TestExecute_QuotaExhausted(t *testing.T) {
	periodStart := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	subscriptions := &fakeSubscriptionRepo{
		subscription: &domain.Subscription{
			ID:          7,
			PlanID:      3,
			Status:      domain.SubscriptionActive,
			PeriodStart: &periodStart,
			PeriodEnd:   &periodEnd,
		},
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 4},
		},
		consumed: map[int64]int{100: 4},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), subscriptions, defaultCatalog())

	req := validRequest()
	req.UseSubscription = true

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestExecute_ServiceNotInPlan(t *testing.T) {
	periodStart := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
	subscriptions := &fakeSubscriptionRepo{
		subscription: &domain.Subscription{
			ID:          7,
			PlanID:      3,
			Status:      domain.SubscriptionActive,
			PeriodStart: &periodStart,
			PeriodEnd:   &periodEnd,
		},
		entitlements: []*domain.PlanEntitlement{
			{PlanID: 3, ServiceID: 100, QuantityPerPeriod: 4},
		},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), subscriptions, defaultCatalog())

	req := validRequest()
	req.UseSubscription = true
	req.Services = []ServiceRequest{{ServiceID: 200}} // план покрывает только 100

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestExecute_NoActiveSubscription(t *testing.T) {
	subscriptions := &fakeSubscriptionRepo{findErr: subscriptionRepo.ErrSubscriptionNotFound}
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), subscriptions, defaultCatalog())

	req := validRequest()
	req.UseSubscription = true

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestExecute_IncompleteSubscriptionPeriod(t *testing.T) {
	subscriptions := &fakeSubscriptionRepo{
		subscription: &domain.Subscription{
			ID:     7,
			PlanID: 3,
			Status: domain.SubscriptionActive,
			// Периодные границы отсутствуют
		},
	}
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), subscriptions, defaultCatalog())

	req := validRequest()
	req.UseSubscription = true

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrIncompletePeriod)
}

func TestExecute_PetBelongsToAnotherCustomer(t *testing.T) {
	catalog := defaultCatalog()
	catalog.pets[10].CustomerID = 99

	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), &fakeSubscriptionRepo{}, catalog)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPetNotFound)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, defaultSchedule(), &fakeSubscriptionRepo{}, defaultCatalog())

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "no services", mutate: func(r *Request) { r.Services = nil }},
		{name: "duplicate services", mutate: func(r *Request) {
			r.Services = []ServiceRequest{{ServiceID: 100}, {ServiceID: 100}}
		}},
		{name: "zero customer", mutate: func(r *Request) { r.CustomerID = 0 }},
		{name: "bad time format", mutate: func(r *Request) { r.StartTime = "9am" }},
		{name: "negative override", mutate: func(r *Request) {
			neg := decimal.NewFromInt(-1)
			r.Services = []ServiceRequest{{ServiceID: 100, PriceOverride: &neg}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
