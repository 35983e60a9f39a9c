package schedule

import (
	"context"
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписания и блэкаутов
type ScheduleRepository interface {
	ListTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error)
	UpsertTemplate(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error)
	ListBlackouts(ctx context.Context, date time.Time) ([]*domain.Blackout, error)
	CreateBlackout(ctx context.Context, b *domain.Blackout) (*domain.Blackout, error)
	DeleteBlackout(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
