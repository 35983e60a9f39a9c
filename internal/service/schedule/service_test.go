package schedule

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawly/PGS-BookingService/internal/domain"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	"github.com/pawly/PGS-BookingService/internal/service/schedule/models"
	"github.com/pawly/PGS-BookingService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeScheduleRepo struct {
	templates []*domain.ScheduleTemplate
	blackouts []*domain.Blackout

	upserted  *domain.ScheduleTemplate
	created   *domain.Blackout
	deletedID int64
	deleteErr error
}

func (f *fakeScheduleRepo) ListTemplates(_ context.Context) ([]*domain.ScheduleTemplate, error) {
	return f.templates, nil
}

func (f *fakeScheduleRepo) UpsertTemplate(_ context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	f.upserted = tpl
	saved := *tpl
	saved.ID = 42
	return &saved, nil
}

func (f *fakeScheduleRepo) ListBlackouts(_ context.Context, _ time.Time) ([]*domain.Blackout, error) {
	return f.blackouts, nil
}

func (f *fakeScheduleRepo) CreateBlackout(_ context.Context, b *domain.Blackout) (*domain.Blackout, error) {
	f.created = b
	saved := *b
	saved.ID = 7
	return &saved, nil
}

func (f *fakeScheduleRepo) DeleteBlackout(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

func newService(repo *fakeScheduleRepo) *Service {
	return NewService(repo, nopLogger{})
}

func TestListTemplates(t *testing.T) {
	repo := &fakeScheduleRepo{templates: []*domain.ScheduleTemplate{
		{ID: 1, Weekday: time.Monday, OpenTime: "09:00", CloseTime: "18:00", SlotIntervalMinutes: 60},
		{ID: 2, Weekday: time.Tuesday, OpenTime: "10:00", CloseTime: "20:00", SlotIntervalMinutes: 30},
	}}
	svc := newService(repo)

	resp, err := svc.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Templates, 2)
	assert.Equal(t, 1, resp.Templates[0].Weekday)
	assert.Equal(t, "09:00", resp.Templates[0].OpenTime)
}

func TestUpsertTemplate(t *testing.T) {
	validReq := func() *models.UpsertTemplateRequest {
		return &models.UpsertTemplateRequest{
			OpenTime:            "09:00",
			CloseTime:           "18:00",
			SlotIntervalMinutes: 60,
		}
	}

	t.Run("valid template upserted", func(t *testing.T) {
		repo := &fakeScheduleRepo{}
		svc := newService(repo)

		resp, err := svc.UpsertTemplate(context.Background(), time.Wednesday, validReq())
		require.NoError(t, err)

		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, int(time.Wednesday), resp.Weekday)
		require.NotNil(t, repo.upserted)
		assert.Equal(t, time.Wednesday, repo.upserted.Weekday)
	})

	t.Run("invalid cases", func(t *testing.T) {
		tests := []struct {
			name    string
			weekday time.Weekday
			mutate  func(*models.UpsertTemplateRequest)
		}{
			{"weekday out of range", time.Weekday(7), func(*models.UpsertTemplateRequest) {}},
			{"interval below minimum", time.Monday, func(r *models.UpsertTemplateRequest) {
				r.SlotIntervalMinutes = domain.MinSlotIntervalMinutes - 1
			}},
			{"interval above maximum", time.Monday, func(r *models.UpsertTemplateRequest) {
				r.SlotIntervalMinutes = domain.MaxSlotIntervalMinutes + 1
			}},
			{"open equals close", time.Monday, func(r *models.UpsertTemplateRequest) {
				r.CloseTime = r.OpenTime
			}},
			{"open after close", time.Monday, func(r *models.UpsertTemplateRequest) {
				r.OpenTime = "19:00"
			}},
			{"non canonical time", time.Monday, func(r *models.UpsertTemplateRequest) {
				r.OpenTime = "9:00"
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &fakeScheduleRepo{}
				svc := newService(repo)

				req := validReq()
				tt.mutate(req)

				_, err := svc.UpsertTemplate(context.Background(), tt.weekday, req)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Nil(t, repo.upserted)
			})
		}
	})
}

func TestCreateBlackout(t *testing.T) {
	validReq := func() *models.CreateBlackoutRequest {
		return &models.CreateBlackoutRequest{
			Date:      "2025-10-15",
			StartTime: "12:00",
			EndTime:   "14:00",
			Reason:    ptr.Ptr("санитарный час"),
		}
	}

	t.Run("valid blackout created", func(t *testing.T) {
		repo := &fakeScheduleRepo{}
		svc := newService(repo)

		resp, err := svc.CreateBlackout(context.Background(), validReq())
		require.NoError(t, err)

		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, "2025-10-15", resp.Date)
		assert.Equal(t, "12:00", resp.StartTime)
		assert.Equal(t, "14:00", resp.EndTime)
	})

	t.Run("invalid cases", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*models.CreateBlackoutRequest)
		}{
			{"bad date format", func(r *models.CreateBlackoutRequest) { r.Date = "15.10.2025" }},
			{"bad start time", func(r *models.CreateBlackoutRequest) { r.StartTime = "noon" }},
			{"bad end time", func(r *models.CreateBlackoutRequest) { r.EndTime = "25:00" }},
			{"start equals end", func(r *models.CreateBlackoutRequest) { r.EndTime = r.StartTime }},
			{"start after end", func(r *models.CreateBlackoutRequest) { r.StartTime = "15:00" }},
			{"reason too long", func(r *models.CreateBlackoutRequest) {
				r.Reason = ptr.Ptr(strings.Repeat("a", domain.MaxReasonLength+1))
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &fakeScheduleRepo{}
				svc := newService(repo)

				req := validReq()
				tt.mutate(req)

				_, err := svc.CreateBlackout(context.Background(), req)
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Nil(t, repo.created)
			})
		}
	})
}

func TestDeleteBlackout(t *testing.T) {
	t.Run("existing blackout deleted", func(t *testing.T) {
		repo := &fakeScheduleRepo{}
		svc := newService(repo)

		require.NoError(t, svc.DeleteBlackout(context.Background(), 7))
		assert.Equal(t, int64(7), repo.deletedID)
	})

	t.Run("missing blackout", func(t *testing.T) {
		repo := &fakeScheduleRepo{deleteErr: scheduleRepo.ErrBlackoutNotFound}
		svc := newService(repo)

		err := svc.DeleteBlackout(context.Background(), 999)
		assert.ErrorIs(t, err, ErrBlackoutNotFound)
	})
}
