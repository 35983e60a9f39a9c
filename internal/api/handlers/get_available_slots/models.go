package get_available_slots

import (
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
	getAvailableSlots "github.com/pawly/PGS-BookingService/internal/usecase/get_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date  string   `json:"date"`  // "2025-10-15"
	Slots []string `json:"slots"` // ["08:00", "09:00", ...]
}

// ToUseCaseRequest парсит дату в таймзоне салона и собирает запрос use case
func ToUseCaseRequest(dateStr string, loc *time.Location) (*getAvailableSlots.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, dateStr, loc)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{Date: date}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	slots := make([]string, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, slot.String())
	}

	return &SlotsResponse{
		Date:  resp.Date.Format(domain.DateFormat),
		Slots: slots,
	}
}
