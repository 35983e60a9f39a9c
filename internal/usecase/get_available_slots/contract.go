package get_available_slots

import (
	"context"
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetTemplate(ctx context.Context, weekday time.Weekday) (*domain.ScheduleTemplate, error)
	ListBlackouts(ctx context.Context, date time.Time) ([]*domain.Blackout, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListByDate(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
