package get_subscription_usage

import (
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
)

// Request модель запроса отчета о потреблении абонемента
type Request struct {
	CustomerID int64
	Date       time.Time // Дата, которую должен покрывать период подписки
}

// Response отчет о потреблении абонемента на дату.
// Отсутствие активной подписки - нормальный, частый случай, а не ошибка:
// HasSubscription=false, остальные поля пустые.
type Response struct {
	HasSubscription bool
	Subscription    *domain.Subscription
	PerService      []domain.ServiceUsage
}
