package get_subscription_usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawly/PGS-BookingService/internal/domain"
	subscriptionRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/subscription"
)

// UseCase use case расчета потребления абонемента за текущий период
type UseCase struct {
	subscriptionRepo SubscriptionRepository
	catalogRepo      CatalogRepository
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	subscriptionRepo SubscriptionRepository,
	catalogRepo CatalogRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		subscriptionRepo: subscriptionRepo,
		catalogRepo:      catalogRepo,
		logger:           logger,
	}
}

// Execute считает потребление по каждой услуге плана внутри текущего периода.
// Read-only, без побочных эффектов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetSubscriptionUsage: customer=%d, date=%s",
		req.CustomerID, req.Date.Format(domain.DateFormat))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetSubscriptionUsage: validation failed: %v", err)
		return nil, err
	}

	sub, err := uc.subscriptionRepo.FindActiveForDate(ctx, req.CustomerID, req.Date)
	if err != nil {
		if errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
			uc.logger.Info("GetSubscriptionUsage: no active subscription for customer=%d", req.CustomerID)
			return &Response{HasSubscription: false, PerService: []domain.ServiceUsage{}}, nil
		}
		uc.logger.Error("GetSubscriptionUsage: failed to find subscription: %v", err)
		return nil, fmt.Errorf("%w: failed to find subscription: %v", ErrInternal, err)
	}

	// Подписка без границ периода - жесткая ошибка, а не безлимит
	if !sub.HasCompletePeriod() {
		uc.logger.Error("GetSubscriptionUsage: subscription id=%d has incomplete period", sub.ID)
		return nil, ErrIncompletePeriod
	}

	entitlements, err := uc.subscriptionRepo.ListEntitlements(ctx, sub.PlanID)
	if err != nil {
		uc.logger.Error("GetSubscriptionUsage: failed to list entitlements: %v", err)
		return nil, fmt.Errorf("%w: failed to list entitlements: %v", ErrInternal, err)
	}

	perService := make([]domain.ServiceUsage, 0, len(entitlements))
	for _, ent := range entitlements {
		consumed, err := uc.subscriptionRepo.CountConsumption(
			ctx, sub.ID, ent.ServiceID, *sub.PeriodStart, *sub.PeriodEnd,
		)
		if err != nil {
			uc.logger.Error("GetSubscriptionUsage: failed to count consumption for service=%d: %v",
				ent.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to count consumption: %v", ErrInternal, err)
		}

		remaining := ent.QuantityPerPeriod - consumed
		if remaining < 0 {
			// Для отображения остаток не бывает отрицательным
			remaining = 0
		}

		perService = append(perService, domain.ServiceUsage{
			ServiceID:         ent.ServiceID,
			ServiceName:       uc.serviceName(ctx, ent.ServiceID),
			QuantityPerPeriod: ent.QuantityPerPeriod,
			Consumed:          consumed,
			Remaining:         remaining,
		})
	}

	uc.logger.Info("GetSubscriptionUsage: subscription id=%d, %d entitlements", sub.ID, len(perService))

	return &Response{
		HasSubscription: true,
		Subscription:    sub,
		PerService:      perService,
	}, nil
}

// serviceName возвращает название услуги для отчета.
// Недоступность справочника не ломает отчет о потреблении.
func (uc *UseCase) serviceName(ctx context.Context, serviceID int64) string {
	service, err := uc.catalogRepo.GetService(ctx, serviceID)
	if err != nil {
		uc.logger.Warn("GetSubscriptionUsage: failed to resolve service name id=%d: %v", serviceID, err)
		return ""
	}
	return service.Name
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
