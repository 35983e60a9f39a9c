package create_blackout

import (
	"errors"
	"net/http"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	"github.com/pawly/PGS-BookingService/internal/service/schedule"
	"github.com/pawly/PGS-BookingService/internal/service/schedule/models"
)

const (
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

// Handle POST /api/v1/blackouts
// Существующие бронирования внутри окна блэкаута остаются нетронутыми
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBlackoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /blackouts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateBlackout(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /blackouts - Invalid input: date=%s, error=%v", req.Date, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /blackouts - Failed to create blackout: date=%s, error=%v", req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /blackouts - Blackout created successfully: blackout_id=%d, date=%s", result.ID, req.Date)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
