package create_booking

import "errors"

var (
	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("create_booking: customer not found")

	// ErrPetNotFound возвращается, когда питомец не найден или принадлежит другому клиенту
	ErrPetNotFound = errors.New("create_booking: pet not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrSalonClosed возвращается, когда на этот день недели нет расписания
	ErrSalonClosed = errors.New("create_booking: salon is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда время не лежит на слот-сетке шаблона
	ErrInvalidTimeSlot = errors.New("create_booking: time is not on the slot grid")

	// ErrSlotNotAvailable возвращается, когда слот занят или попадает в блэкаут.
	// Проверка выполняется в момент коммита: клиент мог смотреть устаревший список
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrNoActiveSubscription возвращается, когда покрытие абонементом запрошено,
	// но активной подписки на дату бронирования нет
	ErrNoActiveSubscription = errors.New("create_booking: no active subscription for this date")

	// ErrQuotaExhausted возвращается, когда у подписки не осталось квоты хотя бы
	// по одной из запрошенных услуг. Именованная ошибка, отличная от валидационной:
	// клиент может предложить оплату по полной цене
	ErrQuotaExhausted = errors.New("create_booking: subscription quota exhausted")

	// ErrIncompletePeriod возвращается при подписке без границ биллингового периода
	ErrIncompletePeriod = errors.New("create_booking: subscription period is incomplete")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
