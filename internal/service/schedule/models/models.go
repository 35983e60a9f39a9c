package models

import (
	"time"

	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/types"
)

// Request модели

// UpsertTemplateRequest запрос на создание или замену шаблона дня недели
type UpsertTemplateRequest struct {
	OpenTime            string `json:"openTime"`  // "09:00"
	CloseTime           string `json:"closeTime"` // "18:00"
	SlotIntervalMinutes int    `json:"slotIntervalMinutes"`
}

// CreateBlackoutRequest запрос на создание блэкаута
type CreateBlackoutRequest struct {
	Date      string  `json:"date"`      // "2025-10-15"
	StartTime string  `json:"startTime"` // "12:00"
	EndTime   string  `json:"endTime"`   // "14:00"
	Reason    *string `json:"reason,omitempty"`
}

// Response модели

// TemplateResponse ответ с данными шаблона расписания
type TemplateResponse struct {
	ID                  int64     `json:"id"`
	Weekday             int       `json:"weekday"` // 0 = воскресенье, по time.Weekday
	OpenTime            string    `json:"openTime"`
	CloseTime           string    `json:"closeTime"`
	SlotIntervalMinutes int       `json:"slotIntervalMinutes"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// TemplateListResponse ответ с недельным расписанием
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// BlackoutResponse ответ с данными блэкаута
type BlackoutResponse struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.ScheduleTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}

	return &TemplateResponse{
		ID:                  t.ID,
		Weekday:             int(t.Weekday),
		OpenTime:            t.OpenTime.String(),
		CloseTime:           t.CloseTime.String(),
		SlotIntervalMinutes: t.SlotIntervalMinutes,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// FromDomainTemplateList конвертирует список domain моделей в DTO
func FromDomainTemplateList(templates []*domain.ScheduleTemplate) *TemplateListResponse {
	if templates == nil {
		return &TemplateListResponse{
			Templates: []TemplateResponse{},
		}
	}

	resp := &TemplateListResponse{
		Templates: make([]TemplateResponse, len(templates)),
	}

	for i, tpl := range templates {
		if tplResp := FromDomainTemplate(tpl); tplResp != nil {
			resp.Templates[i] = *tplResp
		}
	}

	return resp
}

// FromDomainBlackout конвертирует domain модель в DTO
func FromDomainBlackout(b *domain.Blackout) *BlackoutResponse {
	if b == nil {
		return nil
	}

	return &BlackoutResponse{
		ID:        b.ID,
		Date:      b.Date.Format(domain.DateFormat),
		StartTime: b.StartTime.String(),
		EndTime:   b.EndTime.String(),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

// ToDomainTemplate конвертирует UpsertTemplateRequest в domain модель
func (r *UpsertTemplateRequest) ToDomainTemplate(weekday time.Weekday) (*domain.ScheduleTemplate, error) {
	openTime, err := types.NewTimeStringFromString(r.OpenTime)
	if err != nil {
		return nil, err
	}

	closeTime, err := types.NewTimeStringFromString(r.CloseTime)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleTemplate{
		Weekday:             weekday,
		OpenTime:            openTime,
		CloseTime:           closeTime,
		SlotIntervalMinutes: r.SlotIntervalMinutes,
	}, nil
}
