package create_booking

import (
	"context"
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CreateWithLines(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListByDate(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetTemplate(ctx context.Context, weekday time.Weekday) (*domain.ScheduleTemplate, error)
	ListBlackouts(ctx context.Context, date time.Time) ([]*domain.Blackout, error)
}

// SubscriptionRepository интерфейс репозитория подписок
type SubscriptionRepository interface {
	FindActiveForDate(ctx context.Context, customerID int64, date time.Time) (*domain.Subscription, error)
	LockByID(ctx context.Context, id int64) error
	ListEntitlements(ctx context.Context, planID int64) ([]*domain.PlanEntitlement, error)
	CountConsumption(ctx context.Context, subscriptionID, serviceID int64, periodStart, periodEnd time.Time) (int, error)
}

// CatalogRepository интерфейс справочников
type CatalogRepository interface {
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	GetPet(ctx context.Context, id int64) (*domain.Pet, error)
	GetActiveService(ctx context.Context, id int64) (*domain.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
