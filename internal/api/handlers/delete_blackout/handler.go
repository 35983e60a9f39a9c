package delete_blackout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	"github.com/pawly/PGS-BookingService/internal/service/schedule"
)

const (
	msgInvalidBlackoutID = "некорректный ID блэкаута"
	msgNotFound          = "блэкаут не найден"
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

// Handle DELETE /api/v1/blackouts/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /blackouts/{id} - Invalid blackout ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlackoutID)
		return
	}

	if err := h.service.DeleteBlackout(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, schedule.ErrBlackoutNotFound):
			h.logger.Warn("DELETE /blackouts/{id} - Blackout not found: blackout_id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /blackouts/{id} - Failed to delete blackout: blackout_id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /blackouts/{id} - Blackout deleted successfully: blackout_id=%d", id)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
