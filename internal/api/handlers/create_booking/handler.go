package create_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/pawly/PGS-BookingService/internal/api/handlers"
	createBooking "github.com/pawly/PGS-BookingService/internal/usecase/create_booking"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidStartTime     = "некорректный формат времени начала, ожидается HH:MM"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgCustomerNotFound     = "клиент не найден"
	msgPetNotFound          = "питомец не найден"
	msgServiceNotFound      = "услуга не найдена"
	msgSalonClosed          = "салон закрыт в выбранную дату"
	msgInvalidTimeSlot      = "время не попадает на сетку слотов"
	msgNoActiveSubscription = "нет активного абонемента на выбранную дату"
	msgQuotaExhausted       = "квота абонемента исчерпана"
	msgIncompletePeriod     = "у абонемента не заданы границы периода"
)

type Handler struct {
	useCase  CreateBookingUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateBookingUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(h.location)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, types.ErrInvalidTimeString) {
			handlers.RespondBadRequest(w, msgInvalidStartTime)
			return
		}
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Обработка ошибок use case
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: customer_id=%d, date=%s, time=%s",
				req.CustomerID, req.Date, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, handlers.CodeSlotUnavailable, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrQuotaExhausted):
			h.logger.Warn("POST /bookings - Quota exhausted: customer_id=%d", req.CustomerID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, handlers.CodeQuotaExhausted, msgQuotaExhausted)

		case errors.Is(err, createBooking.ErrNoActiveSubscription):
			h.logger.Warn("POST /bookings - No active subscription: customer_id=%d, date=%s", req.CustomerID, req.Date)
			handlers.RespondError(w, http.StatusUnprocessableEntity, handlers.CodeQuotaExhausted, msgNoActiveSubscription)

		case errors.Is(err, createBooking.ErrIncompletePeriod):
			h.logger.Warn("POST /bookings - Incomplete subscription period: customer_id=%d", req.CustomerID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, handlers.CodeIncompletePeriod, msgIncompletePeriod)

		case errors.Is(err, createBooking.ErrCustomerNotFound):
			h.logger.Warn("POST /bookings - Customer not found: customer_id=%d", req.CustomerID)
			handlers.RespondNotFound(w, msgCustomerNotFound)

		case errors.Is(err, createBooking.ErrPetNotFound):
			h.logger.Warn("POST /bookings - Pet not found: customer_id=%d, pet_id=%d", req.CustomerID, req.PetID)
			handlers.RespondNotFound(w, msgPetNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: customer_id=%d", req.CustomerID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrSalonClosed):
			h.logger.Warn("POST /bookings - Salon closed: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgSalonClosed)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /bookings - Invalid time slot: date=%s, time=%s", req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: customer_id=%d, error=%v", req.CustomerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, error=%v",
				req.CustomerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, customer_id=%d",
		result.ID, req.CustomerID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
