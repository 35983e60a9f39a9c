package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinSlotIntervalMinutes = 5
	MaxSlotIntervalMinutes = 480 // 8 hours
	MaxNotesLength         = 500
	MaxReasonLength        = 500
	MaxServicesPerBooking  = 10
)

// SlotBlockingStatuses статусы, при которых бронирование занимает свой слот.
// Завершенные (done) бронирования слот не занимают.
var SlotBlockingStatuses = []BookingStatus{
	StatusScheduled,
	StatusInService,
}

// QuotaConsumingStatuses статусы, при которых линии бронирования расходуют
// абонементную квоту. Отмененные и no-show бронирования квоту возвращают.
var QuotaConsumingStatuses = []BookingStatus{
	StatusScheduled,
	StatusInService,
	StatusDone,
}
