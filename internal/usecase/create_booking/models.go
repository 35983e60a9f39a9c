package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawly/PGS-BookingService/pkg/types"
)

// ServiceRequest одна запрошенная услуга
type ServiceRequest struct {
	ServiceID     int64
	PriceOverride *decimal.Decimal // Явная цена вместо цены из каталога (опционально)
}

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID      int64
	PetID           int64
	Date            time.Time        // Дата бронирования (распарсена в таймзоне салона)
	StartTime       types.TimeString // Время начала слота (например, "10:00")
	UseSubscription bool             // Списать услуги с абонемента вместо прямой оплаты
	Services        []ServiceRequest
	Notes           *string
}

// LineResponse сервисная линия созданного бронирования
type LineResponse struct {
	ID             int64
	ServiceID      int64
	SubscriptionID *int64 // Заполнен, если линия покрыта абонементом
	ServiceName    string
	PriceCharged   decimal.Decimal
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          int64
	CustomerID  int64
	PetID       int64
	BookingDate time.Time
	StartTime   types.TimeString
	Status      string
	Notes       *string
	Lines       []LineResponse
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
