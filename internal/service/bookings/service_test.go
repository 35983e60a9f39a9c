package bookings

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawly/PGS-BookingService/internal/domain"
	bookingRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/booking"
	"github.com/pawly/PGS-BookingService/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking

	cancelErr error
	updateErr error

	cancelledID     int64
	cancelledReason string
	updatedID       int64
	updatedFrom     domain.BookingStatus
	updatedStatus   domain.BookingStatus
	listByDateCalls []time.Time
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByCustomer(_ context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookingRepo) ListByDate(_ context.Context, date time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	f.listByDateCalls = append(f.listByDateCalls, date)
	var result []*domain.Booking
	for _, b := range f.bookings {
		if !b.BookingDate.Equal(date) {
			continue
		}
		if statuses != nil {
			matched := false
			for _, s := range statuses {
				if b.Status == s {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, from, to domain.BookingStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	f.updatedID = id
	f.updatedFrom = from
	f.updatedStatus = to
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if !b.CanBeCancelled() {
		return bookingRepo.ErrStatusConflict
	}
	f.cancelledID = id
	f.cancelledReason = reason
	return nil
}

var testDate = time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)

func scheduledBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		CustomerID:  1,
		PetID:       10,
		BookingDate: testDate,
		StartTime:   "10:00",
		Status:      domain.StatusScheduled,
		Lines: []domain.ServiceLine{
			{ID: 1, BookingID: id, ServiceID: 100, ServiceName: "Полный груминг",
				PriceCharged: decimal.NewFromInt(3000)},
		},
	}
}

func newService(repo *fakeBookingRepo) *Service {
	return NewService(repo, nopLogger{})
}

func TestGetByID(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
	svc := newService(repo)

	t.Run("found", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
		assert.Equal(t, "scheduled", resp.Status)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "3000.00", resp.Lines[0].PriceCharged)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 999)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestGetCustomerBookings(t *testing.T) {
	done := scheduledBooking(2)
	done.Status = domain.StatusDone

	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{
		1: scheduledBooking(1),
		2: done,
	}}
	svc := newService(repo)

	t.Run("without filter returns all", func(t *testing.T) {
		resp, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{CustomerID: 1})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 2)
	})

	t.Run("status filter applies", func(t *testing.T) {
		status := "done"
		resp, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
			CustomerID: 1,
			Status:     &status,
		})
		require.NoError(t, err)
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, int64(2), resp.Bookings[0].ID)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		status := "confirmed"
		_, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
			CustomerID: 1,
			Status:     &status,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("non-positive customer rejected", func(t *testing.T) {
		_, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{CustomerID: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestGetDayBookings(t *testing.T) {
	cancelled := scheduledBooking(3)
	cancelled.Status = domain.StatusCancelled

	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{
		1: scheduledBooking(1),
		3: cancelled,
	}}
	svc := newService(repo)

	t.Run("journal includes cancelled bookings", func(t *testing.T) {
		resp, err := svc.GetDayBookings(context.Background(), testDate)
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 2)
	})

	t.Run("zero date rejected", func(t *testing.T) {
		_, err := svc.GetDayBookings(context.Background(), time.Time{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCancel(t *testing.T) {
	t.Run("scheduled booking is cancelled with reason", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.Cancel(context.Background(), 5, &models.CancelBookingRequest{
			CancellationReason: "клиент заболел",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), repo.cancelledID)
		assert.Equal(t, "клиент заболел", repo.cancelledReason)
	})

	t.Run("done booking cannot be cancelled", func(t *testing.T) {
		b := scheduledBooking(5)
		b.Status = domain.StatusDone
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: b}}
		svc := newService(repo)

		err := svc.Cancel(context.Background(), 5, &models.CancelBookingRequest{})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Zero(t, repo.cancelledID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{}}
		svc := newService(repo)

		err := svc.Cancel(context.Background(), 999, &models.CancelBookingRequest{})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("concurrently finished visit loses the cancel race", func(t *testing.T) {
		// Между чтением и UPDATE визит завершили в другом запросе
		repo := &fakeBookingRepo{
			bookings:  map[int64]*domain.Booking{5: scheduledBooking(5)},
			cancelErr: bookingRepo.ErrStatusConflict,
		}
		svc := newService(repo)

		err := svc.Cancel(context.Background(), 5, &models.CancelBookingRequest{})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Zero(t, repo.cancelledID)
	})

	t.Run("reason length limited", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.Cancel(context.Background(), 5, &models.CancelBookingRequest{
			CancellationReason: strings.Repeat("a", domain.MaxReasonLength+1),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("scheduled to in_service", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 5, &models.UpdateStatusRequest{Status: "in_service"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusScheduled, repo.updatedFrom)
		assert.Equal(t, domain.StatusInService, repo.updatedStatus)
	})

	t.Run("concurrent status change loses the race", func(t *testing.T) {
		// Статус изменился между чтением и условным UPDATE
		repo := &fakeBookingRepo{
			bookings:  map[int64]*domain.Booking{5: scheduledBooking(5)},
			updateErr: bookingRepo.ErrStatusConflict,
		}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 5, &models.UpdateStatusRequest{Status: "in_service"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Zero(t, repo.updatedID)
	})

	t.Run("illegal transition rejected", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 5, &models.UpdateStatusRequest{Status: "done"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Zero(t, repo.updatedID)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 5, &models.UpdateStatusRequest{Status: "finished"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("cancellation via status endpoint rejected", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: scheduledBooking(5)}}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 5, &models.UpdateStatusRequest{Status: "cancelled"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Zero(t, repo.updatedID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{}}
		svc := newService(repo)

		err := svc.UpdateStatus(context.Background(), 999, &models.UpdateStatusRequest{Status: "in_service"})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
