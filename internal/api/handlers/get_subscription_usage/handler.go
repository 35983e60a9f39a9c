package get_subscription_usage

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	"github.com/pawly/PGS-BookingService/internal/domain"
	getSubscriptionUsage "github.com/pawly/PGS-BookingService/internal/usecase/get_subscription_usage"
)

const (
	msgInvalidCustomerID = "некорректный ID клиента"
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgIncompletePeriod  = "у абонемента не заданы границы периода"
)

type Handler struct {
	useCase  GetSubscriptionUsageUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetSubscriptionUsageUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/customers/{customerId}/subscription-usage
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем customerId из URL
	vars := mux.Vars(r)
	customerIDStr := vars["customerId"]

	customerID, err := strconv.ParseInt(customerIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /customers/{id}/subscription-usage - Invalid customer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCustomerID)
		return
	}

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /customers/{id}/subscription-usage - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.ParseInLocation(domain.DateFormat, dateStr, h.location)
	if err != nil {
		h.logger.Warn("GET /customers/{id}/subscription-usage - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), &getSubscriptionUsage.Request{
		CustomerID: customerID,
		Date:       date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getSubscriptionUsage.ErrIncompletePeriod):
			h.logger.Warn("GET /customers/{id}/subscription-usage - Incomplete period: customer_id=%d", customerID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, handlers.CodeIncompletePeriod, msgIncompletePeriod)

		case errors.Is(err, getSubscriptionUsage.ErrInvalidInput):
			h.logger.Warn("GET /customers/{id}/subscription-usage - Invalid input: customer_id=%d, error=%v",
				customerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /customers/{id}/subscription-usage - Failed to get usage: customer_id=%d, error=%v",
				customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /customers/{id}/subscription-usage - Usage retrieved successfully: customer_id=%d, date=%s",
		customerID, dateStr)
	handlers.RespondJSON(w, http.StatusOK, response)
}
