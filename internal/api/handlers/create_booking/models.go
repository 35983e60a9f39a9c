package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawly/PGS-BookingService/internal/domain"
	createBooking "github.com/pawly/PGS-BookingService/internal/usecase/create_booking"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// ServiceItem одна запрошенная услуга
type ServiceItem struct {
	ServiceID     int64            `json:"serviceId"`
	PriceOverride *decimal.Decimal `json:"priceOverride,omitempty"` // Цена вместо каталожной (опционально)
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CustomerID      int64         `json:"customerId"`
	PetID           int64         `json:"petId"`
	Date            string        `json:"date"`      // "2025-10-15"
	StartTime       string        `json:"startTime"` // "10:00"
	UseSubscription bool          `json:"useSubscription"`
	Services        []ServiceItem `json:"services"`
	Notes           *string       `json:"notes,omitempty"`
}

// ServiceLineResponse сервисная линия созданного бронирования
type ServiceLineResponse struct {
	ID             int64  `json:"id"`
	ServiceID      int64  `json:"serviceId"`
	SubscriptionID *int64 `json:"subscriptionId,omitempty"`
	ServiceName    string `json:"serviceName"`
	PriceCharged   string `json:"priceCharged"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID          int64                 `json:"id"`
	CustomerID  int64                 `json:"customerId"`
	PetID       int64                 `json:"petId"`
	BookingDate string                `json:"bookingDate"`
	StartTime   string                `json:"startTime"`
	Status      string                `json:"status"`
	Services    []ServiceLineResponse `json:"services"`
	Notes       *string               `json:"notes,omitempty"`
	CreatedAt   string                `json:"createdAt"`
	UpdatedAt   string                `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Дата парсится в таймзоне салона: от нее зависит день недели расписания.
func (r *CreateBookingRequest) ToUseCaseRequest(loc *time.Location) (*createBooking.Request, error) {
	bookingDate, err := time.ParseInLocation(domain.DateFormat, r.Date, loc)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	services := make([]createBooking.ServiceRequest, 0, len(r.Services))
	for _, item := range r.Services {
		services = append(services, createBooking.ServiceRequest{
			ServiceID:     item.ServiceID,
			PriceOverride: item.PriceOverride,
		})
	}

	return &createBooking.Request{
		CustomerID:      r.CustomerID,
		PetID:           r.PetID,
		Date:            bookingDate,
		StartTime:       startTime,
		UseSubscription: r.UseSubscription,
		Services:        services,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	services := make([]ServiceLineResponse, 0, len(resp.Lines))
	for _, line := range resp.Lines {
		services = append(services, ServiceLineResponse{
			ID:             line.ID,
			ServiceID:      line.ServiceID,
			SubscriptionID: line.SubscriptionID,
			ServiceName:    line.ServiceName,
			PriceCharged:   line.PriceCharged.StringFixed(2),
		})
	}

	return &BookingResponse{
		ID:          resp.ID,
		CustomerID:  resp.CustomerID,
		PetID:       resp.PetID,
		BookingDate: resp.BookingDate.Format(domain.DateFormat),
		StartTime:   resp.StartTime.String(),
		Status:      resp.Status,
		Services:    services,
		Notes:       resp.Notes,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   resp.UpdatedAt.Format(time.RFC3339),
	}
}
