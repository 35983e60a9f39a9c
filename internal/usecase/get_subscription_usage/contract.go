package get_subscription_usage

import (
	"context"
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
)

// SubscriptionRepository интерфейс репозитория подписок
type SubscriptionRepository interface {
	FindActiveForDate(ctx context.Context, customerID int64, date time.Time) (*domain.Subscription, error)
	ListEntitlements(ctx context.Context, planID int64) ([]*domain.PlanEntitlement, error)
	CountConsumption(ctx context.Context, subscriptionID, serviceID int64, periodStart, periodEnd time.Time) (int, error)
}

// CatalogRepository интерфейс справочника услуг
type CatalogRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
