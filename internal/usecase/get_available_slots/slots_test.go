package get_available_slots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

func tpl(open, close types.TimeString, interval int) *domain.ScheduleTemplate {
	return &domain.ScheduleTemplate{
		Weekday:             2, // вторник
		OpenTime:            open,
		CloseTime:           close,
		SlotIntervalMinutes: interval,
	}
}

func booking(start types.TimeString, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{StartTime: start, Status: status}
}

func TestGenerateCandidateSlots(t *testing.T) {
	tests := []struct {
		name string
		tpl  *domain.ScheduleTemplate
		want []types.TimeString
	}{
		{
			name: "hourly grid, close boundary excluded",
			tpl:  tpl("08:00", "12:00", 60),
			want: []types.TimeString{"08:00", "09:00", "10:00", "11:00"},
		},
		{
			name: "interval does not divide window evenly",
			tpl:  tpl("09:00", "10:45", 45),
			want: []types.TimeString{"09:00", "09:45", "10:30"},
		},
		{
			name: "single slot",
			tpl:  tpl("10:00", "10:30", 30),
			want: []types.TimeString{"10:00"},
		},
		{
			name: "nil template",
			tpl:  nil,
			want: []types.TimeString{},
		},
		{
			name: "malformed template open after close",
			tpl:  tpl("18:00", "09:00", 60),
			want: []types.TimeString{},
		},
		{
			name: "malformed template zero interval",
			tpl:  tpl("09:00", "18:00", 0),
			want: []types.TimeString{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateCandidateSlots(tt.tpl))
		})
	}
}

func TestComputeFreeSlots_TakenBookings(t *testing.T) {
	template := tpl("08:00", "12:00", 60)

	t.Run("scheduled and in_service block their slots", func(t *testing.T) {
		bookings := []*domain.Booking{
			booking("09:00", domain.StatusScheduled),
			booking("10:00", domain.StatusInService),
		}

		free := computeFreeSlots(template, nil, bookings)

		assert.Equal(t, []types.TimeString{"08:00", "11:00"}, free)
	})

	t.Run("done, cancelled and no_show free their slots", func(t *testing.T) {
		bookings := []*domain.Booking{
			booking("08:00", domain.StatusDone),
			booking("09:00", domain.StatusCancelled),
			booking("10:00", domain.StatusNoShow),
		}

		free := computeFreeSlots(template, nil, bookings)

		assert.Equal(t, []types.TimeString{"08:00", "09:00", "10:00", "11:00"}, free)
	})
}

func TestComputeFreeSlots_Blackouts(t *testing.T) {
	template := tpl("08:00", "12:00", 60)

	t.Run("mid-grid blackout removes covered slots", func(t *testing.T) {
		// Окно 09:30-10:30 накрывает слот 10:00, но не 09:00 и не 10:30
		blackouts := []*domain.Blackout{
			{StartTime: "09:30", EndTime: "10:30"},
		}

		free := computeFreeSlots(template, blackouts, nil)

		assert.Equal(t, []types.TimeString{"08:00", "09:00", "11:00"}, free)
	})

	t.Run("blackout end boundary is exclusive", func(t *testing.T) {
		blackouts := []*domain.Blackout{
			{StartTime: "09:00", EndTime: "10:00"},
		}

		free := computeFreeSlots(template, blackouts, nil)

		assert.Equal(t, []types.TimeString{"08:00", "10:00", "11:00"}, free)
	})

	t.Run("multiple blackouts union", func(t *testing.T) {
		blackouts := []*domain.Blackout{
			{StartTime: "08:00", EndTime: "08:30"},
			{StartTime: "10:30", EndTime: "11:30"},
		}

		free := computeFreeSlots(template, blackouts, nil)

		assert.Equal(t, []types.TimeString{"09:00", "10:00"}, free)
	})
}

func TestComputeFreeSlots_Deterministic(t *testing.T) {
	template := tpl("08:00", "20:00", 30)
	blackouts := []*domain.Blackout{
		{StartTime: "12:00", EndTime: "13:00"},
	}
	bookings := []*domain.Booking{
		booking("08:30", domain.StatusScheduled),
		booking("15:00", domain.StatusInService),
	}

	first := computeFreeSlots(template, blackouts, bookings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, computeFreeSlots(template, blackouts, bookings))
	}

	// Список строго возрастает
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].IsBefore(first[i]),
			"slots must be in ascending order: %s before %s", first[i-1], first[i])
	}
}

func TestComputeFreeSlots_FullyBooked(t *testing.T) {
	template := tpl("08:00", "10:00", 60)
	bookings := []*domain.Booking{
		booking("08:00", domain.StatusScheduled),
		booking("09:00", domain.StatusScheduled),
	}

	assert.Empty(t, computeFreeSlots(template, nil, bookings))
}
