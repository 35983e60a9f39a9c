package create_booking

import (
	"fmt"

	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.PetID <= 0 {
		return fmt.Errorf("%w: petID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if len(req.Services) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}

	if len(req.Services) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: at most %d services per booking", ErrInvalidInput, domain.MaxServicesPerBooking)
	}

	seen := make(map[int64]struct{}, len(req.Services))
	for _, svc := range req.Services {
		if svc.ServiceID <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
		if _, dup := seen[svc.ServiceID]; dup {
			return fmt.Errorf("%w: duplicate serviceID %d", ErrInvalidInput, svc.ServiceID)
		}
		seen[svc.ServiceID] = struct{}{}

		if svc.PriceOverride != nil && svc.PriceOverride.IsNegative() {
			return fmt.Errorf("%w: priceOverride must not be negative", ErrInvalidInput)
		}
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateSlot проверяет запрошенное время на слот-сетке шаблона и по занятости.
// Различает две ситуации: время вне сетки (ошибка клиента, не ретраится)
// и слот занят/в блэкауте (клиент перечитывает список слотов).
func validateSlot(
	startTime types.TimeString,
	tpl *domain.ScheduleTemplate,
	blackouts []*domain.Blackout,
	bookings []*domain.Booking,
) error {
	onGrid := false
	current := tpl.OpenTime
	for current.IsBefore(tpl.CloseTime) {
		if current == startTime {
			onGrid = true
			break
		}
		next, err := current.AddMinutes(tpl.SlotIntervalMinutes)
		if err != nil {
			break
		}
		current = next
	}

	if !onGrid {
		return ErrInvalidTimeSlot
	}

	for _, b := range bookings {
		if b.BlocksSlot() && b.StartTime == startTime {
			return ErrSlotNotAvailable
		}
	}

	for _, b := range blackouts {
		if b.Blocks(startTime) {
			return ErrSlotNotAvailable
		}
	}

	return nil
}
