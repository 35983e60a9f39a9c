package update_schedule

import (
	"context"
	"time"

	"github.com/pawly/PGS-BookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertTemplate(ctx context.Context, weekday time.Weekday, req *models.UpsertTemplateRequest) (*models.TemplateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
