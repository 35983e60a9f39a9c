package update_schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	"github.com/pawly/PGS-BookingService/internal/service/schedule"
	"github.com/pawly/PGS-BookingService/internal/service/schedule/models"
)

const (
	msgInvalidWeekday     = "некорректный день недели, ожидается число 0-6"
	msgInvalidRequestBody = "некорректное тело запроса"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/schedule/{weekday}
// Замена шаблона не затрагивает существующие бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем weekday из URL (0 = воскресенье, по time.Weekday)
	vars := mux.Vars(r)
	weekdayStr := vars["weekday"]

	weekdayNum, err := strconv.Atoi(weekdayStr)
	if err != nil || weekdayNum < 0 || weekdayNum > 6 {
		h.logger.Warn("PUT /schedule/{weekday} - Invalid weekday: %s", weekdayStr)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	// Декодируем body
	var req models.UpsertTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpsertTemplate(r.Context(), time.Weekday(weekdayNum), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /schedule/{weekday} - Invalid input: weekday=%d, error=%v", weekdayNum, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT /schedule/{weekday} - Failed to upsert template: weekday=%d, error=%v",
				weekdayNum, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /schedule/{weekday} - Template upserted successfully: weekday=%d, template_id=%d",
		weekdayNum, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
