package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawly/PGS-BookingService/internal/domain"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// UseCase use case расчета доступных слотов на дату
type UseCase struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// Execute вычисляет свободные слоты на дату.
// Read-only и детерминирован относительно содержимого БД: одинаковые данные
// дают одинаковый упорядоченный список. "Салон закрыт в этот день недели" -
// это пустой список, а не ошибка.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// День недели берем из даты, распарсенной в таймзоне салона,
	// а не из локальной зоны процесса
	weekday := req.Date.Weekday()

	tpl, err := uc.scheduleRepo.GetTemplate(ctx, weekday)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			uc.logger.Info("GetAvailableSlots: no template for weekday=%s, salon closed", weekday)
			return &Response{Date: req.Date, Slots: []types.TimeString{}}, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get template: %v", err)
		return nil, fmt.Errorf("%w: failed to get template: %v", ErrInternal, err)
	}

	if !tpl.IsValid() {
		uc.logger.Warn("GetAvailableSlots: malformed template for weekday=%s (open=%s close=%s interval=%d)",
			weekday, tpl.OpenTime, tpl.CloseTime, tpl.SlotIntervalMinutes)
		return &Response{Date: req.Date, Slots: []types.TimeString{}}, nil
	}

	blackouts, err := uc.scheduleRepo.ListBlackouts(ctx, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list blackouts: %v", err)
		return nil, fmt.Errorf("%w: failed to list blackouts: %v", ErrInternal, err)
	}

	bookings, err := uc.bookingRepo.ListByDate(ctx, req.Date, domain.SlotBlockingStatuses)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}

	slots := computeFreeSlots(tpl, blackouts, bookings)

	uc.logger.Info("GetAvailableSlots: %d free slots for date=%s", len(slots), req.Date.Format(domain.DateFormat))

	return &Response{
		Date:  req.Date,
		Slots: slots,
	}, nil
}
