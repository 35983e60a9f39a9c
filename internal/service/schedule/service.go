package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	"github.com/pawly/PGS-BookingService/internal/service/schedule/models"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// Service сервис для управления недельным расписанием и блэкаутами
type Service struct {
	scheduleRepo ScheduleRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(scheduleRepo ScheduleRepository, logger Logger) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// ListTemplates получает недельное расписание салона
// Публичный метод - доступен всем
func (s *Service) ListTemplates(ctx context.Context) (*models.TemplateListResponse, error) {
	s.logger.Info("ListTemplates: fetching weekly schedule")

	templates, err := s.scheduleRepo.ListTemplates(ctx)
	if err != nil {
		s.logger.Error("ListTemplates: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListTemplates - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListTemplates: successfully fetched %d templates", len(templates))
	return models.FromDomainTemplateList(templates), nil
}

// UpsertTemplate создает или заменяет шаблон расписания для дня недели
// Замена шаблона не затрагивает уже созданные бронирования
func (s *Service) UpsertTemplate(ctx context.Context, weekday time.Weekday, req *models.UpsertTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("UpsertTemplate: upserting template for weekday=%d (%s)", weekday, weekday)

	// 1. Валидируем входные данные
	if err := s.validateTemplateData(weekday, req); err != nil {
		s.logger.Warn("UpsertTemplate: validation failed: %v", err)
		return nil, err
	}

	tpl, err := req.ToDomainTemplate(weekday)
	if err != nil {
		s.logger.Warn("UpsertTemplate: invalid time format: %v", err)
		return nil, fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	// 2. Сохраняем шаблон
	saved, err := s.scheduleRepo.UpsertTemplate(ctx, tpl)
	if err != nil {
		s.logger.Error("UpsertTemplate: repository error for weekday=%d: %v", weekday, err)
		return nil, fmt.Errorf("%w: UpsertTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertTemplate: successfully upserted template id=%d for weekday=%d", saved.ID, weekday)
	return models.FromDomainTemplate(saved), nil
}

// CreateBlackout создает блэкаут на дату
// Существующие бронирования внутри окна блэкаута остаются нетронутыми
func (s *Service) CreateBlackout(ctx context.Context, req *models.CreateBlackoutRequest) (*models.BlackoutResponse, error) {
	s.logger.Info("CreateBlackout: creating blackout for date=%s, window=%s-%s", req.Date, req.StartTime, req.EndTime)

	// 1. Валидируем и конвертируем входные данные
	blackout, err := s.parseBlackoutRequest(req)
	if err != nil {
		s.logger.Warn("CreateBlackout: validation failed: %v", err)
		return nil, err
	}

	// 2. Сохраняем блэкаут
	created, err := s.scheduleRepo.CreateBlackout(ctx, blackout)
	if err != nil {
		s.logger.Error("CreateBlackout: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBlackout - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateBlackout: successfully created blackout id=%d", created.ID)
	return models.FromDomainBlackout(created), nil
}

// DeleteBlackout удаляет блэкаут по ID
func (s *Service) DeleteBlackout(ctx context.Context, id int64) error {
	s.logger.Info("DeleteBlackout: deleting blackout id=%d", id)

	if err := s.scheduleRepo.DeleteBlackout(ctx, id); err != nil {
		if errors.Is(err, scheduleRepo.ErrBlackoutNotFound) {
			s.logger.Warn("DeleteBlackout: blackout id=%d not found", id)
			return ErrBlackoutNotFound
		}
		s.logger.Error("DeleteBlackout: repository error for blackout id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteBlackout - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteBlackout: successfully deleted blackout id=%d", id)
	return nil
}

// Вспомогательные методы

// validateTemplateData валидирует параметры шаблона расписания
func (s *Service) validateTemplateData(weekday time.Weekday, req *models.UpsertTemplateRequest) error {
	if weekday < time.Sunday || weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}

	if req.SlotIntervalMinutes < domain.MinSlotIntervalMinutes || req.SlotIntervalMinutes > domain.MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slotIntervalMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes)
	}

	if req.OpenTime >= req.CloseTime {
		return fmt.Errorf("%w: openTime must be before closeTime", ErrInvalidInput)
	}

	return nil
}

// parseBlackoutRequest валидирует запрос и собирает domain модель блэкаута
func (s *Service) parseBlackoutRequest(req *models.CreateBlackoutRequest) (*domain.Blackout, error) {
	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	endTime, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if !startTime.IsBefore(endTime) {
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	return &domain.Blackout{
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Reason:    req.Reason,
	}, nil
}
