package get_available_slots

import (
	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// generateCandidateSlots генерирует все границы слотов дня по шаблону:
// t = open; пока t < close: выдать t; t += interval.
// Интервал полуоткрытый: слот, начинающийся ровно в close, не выдается.
// Некорректный шаблон дает пустой список, а не ошибку.
func generateCandidateSlots(tpl *domain.ScheduleTemplate) []types.TimeString {
	if tpl == nil || !tpl.IsValid() {
		return []types.TimeString{}
	}

	slots := make([]types.TimeString, 0)
	current := tpl.OpenTime

	for current.IsBefore(tpl.CloseTime) {
		slots = append(slots, current)

		next, err := current.AddMinutes(tpl.SlotIntervalMinutes)
		if err != nil {
			// Вышли за пределы суток - дальше слотов нет
			break
		}
		current = next
	}

	return slots
}

// collectTakenTimes собирает множество времен, занятых бронированиями,
// которые блокируют свой слот. Завершенные (done), отмененные и no-show
// бронирования слот не занимают.
func collectTakenTimes(bookings []*domain.Booking) map[types.TimeString]struct{} {
	taken := make(map[types.TimeString]struct{}, len(bookings))
	for _, b := range bookings {
		if b.BlocksSlot() {
			taken[b.StartTime] = struct{}{}
		}
	}
	return taken
}

// isBlackedOut проверяет, что слот попадает хотя бы в один блэкаут.
// Несколько блэкаутов на одну дату объединяются.
func isBlackedOut(slot types.TimeString, blackouts []*domain.Blackout) bool {
	for _, b := range blackouts {
		if b.Blocks(slot) {
			return true
		}
	}
	return false
}

// computeFreeSlots вычисляет свободные слоты дня: кандидаты по шаблону
// минус занятые времена минус блэкауты. Чистая детерминированная функция.
func computeFreeSlots(
	tpl *domain.ScheduleTemplate,
	blackouts []*domain.Blackout,
	bookings []*domain.Booking,
) []types.TimeString {
	candidates := generateCandidateSlots(tpl)
	taken := collectTakenTimes(bookings)

	free := make([]types.TimeString, 0, len(candidates))
	for _, slot := range candidates {
		if _, occupied := taken[slot]; occupied {
			continue
		}
		if isBlackedOut(slot, blackouts) {
			continue
		}
		free = append(free, slot)
	}

	return free
}
