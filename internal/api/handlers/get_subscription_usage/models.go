package get_subscription_usage

import (
	"github.com/pawly/PGS-BookingService/internal/domain"
	getSubscriptionUsage "github.com/pawly/PGS-BookingService/internal/usecase/get_subscription_usage"
)

// ServiceUsageResponse потребление по одной услуге плана
type ServiceUsageResponse struct {
	ServiceID         int64  `json:"serviceId"`
	ServiceName       string `json:"serviceName"`
	QuantityPerPeriod int    `json:"quantityPerPeriod"`
	Consumed          int    `json:"consumed"`
	Remaining         int    `json:"remaining"`
}

// SubscriptionInfo данные подписки в отчете
type SubscriptionInfo struct {
	ID          int64  `json:"id"`
	PlanID      int64  `json:"planId"`
	Status      string `json:"status"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// UsageResponse HTTP response model.
// hasSubscription=false - нормальный ответ для клиента без абонемента.
type UsageResponse struct {
	HasSubscription bool                   `json:"hasSubscription"`
	Subscription    *SubscriptionInfo      `json:"subscription,omitempty"`
	PerService      []ServiceUsageResponse `json:"perService,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSubscriptionUsage.Response) *UsageResponse {
	if !resp.HasSubscription {
		return &UsageResponse{HasSubscription: false}
	}

	sub := resp.Subscription
	info := &SubscriptionInfo{
		ID:     sub.ID,
		PlanID: sub.PlanID,
		Status: string(sub.Status),
	}
	// Период гарантированно полный: use case отвергает подписки без границ
	if sub.PeriodStart != nil {
		info.PeriodStart = sub.PeriodStart.Format(domain.DateFormat)
	}
	if sub.PeriodEnd != nil {
		info.PeriodEnd = sub.PeriodEnd.Format(domain.DateFormat)
	}

	perService := make([]ServiceUsageResponse, 0, len(resp.PerService))
	for _, usage := range resp.PerService {
		perService = append(perService, ServiceUsageResponse{
			ServiceID:         usage.ServiceID,
			ServiceName:       usage.ServiceName,
			QuantityPerPeriod: usage.QuantityPerPeriod,
			Consumed:          usage.Consumed,
			Remaining:         usage.Remaining,
		})
	}

	return &UsageResponse{
		HasSubscription: true,
		Subscription:    info,
		PerService:      perService,
	}
}
