package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pawly/PGS-BookingService/internal/domain"
	bookingRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/booking"
	catalogRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/catalog"
	scheduleRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/schedule"
	subscriptionRepo "github.com/pawly/PGS-BookingService/internal/infra/storage/subscription"
)

// UseCase use case создания бронирования.
// Единственная точка, мутирующая журнал бронирований: проверка слота,
// проверка квоты и вставка выполняются одной serializable-транзакцией.
type UseCase struct {
	bookingRepo      BookingRepository
	scheduleRepo     ScheduleRepository
	subscriptionRepo SubscriptionRepository
	catalogRepo      CatalogRepository
	txManager        TransactionManager
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	subscriptionRepo SubscriptionRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		scheduleRepo:     scheduleRepo,
		subscriptionRepo: subscriptionRepo,
		catalogRepo:      catalogRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, pet=%d, date=%s, time=%s, useSubscription=%t, services=%d",
		req.CustomerID, req.PetID, req.Date.Format(domain.DateFormat), req.StartTime,
		req.UseSubscription, len(req.Services))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем существование клиента
	if _, err := uc.catalogRepo.GetCustomer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, catalogRepo.ErrCustomerNotFound) {
			uc.logger.Warn("CreateBooking: customer id=%d not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		}
		uc.logger.Error("CreateBooking: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// 3. Проверяем питомца и его принадлежность клиенту
	pet, err := uc.catalogRepo.GetPet(ctx, req.PetID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrPetNotFound) {
			uc.logger.Warn("CreateBooking: pet id=%d not found", req.PetID)
			return nil, ErrPetNotFound
		}
		uc.logger.Error("CreateBooking: failed to get pet id=%d: %v", req.PetID, err)
		return nil, fmt.Errorf("%w: failed to get pet: %v", ErrInternal, err)
	}
	if pet.CustomerID != req.CustomerID {
		uc.logger.Warn("CreateBooking: pet id=%d does not belong to customer id=%d", req.PetID, req.CustomerID)
		return nil, ErrPetNotFound
	}

	// 4. Резолвим запрошенные услуги из каталога
	services := make(map[int64]*domain.Service, len(req.Services))
	for _, svcReq := range req.Services {
		service, err := uc.catalogRepo.GetActiveService(ctx, svcReq.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				uc.logger.Warn("CreateBooking: service id=%d not found", svcReq.ServiceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("CreateBooking: failed to get service id=%d: %v", svcReq.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		services[service.ID] = service
	}

	var result *domain.Booking

	// 5. Критическая секция: повторная проверка слота и квоты в момент коммита,
	// атомарно со вставкой
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Шаблон расписания на день недели даты бронирования
		tpl, err := uc.scheduleRepo.GetTemplate(txCtx, req.Date.Weekday())
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
				uc.logger.Warn("CreateBooking: salon closed on %s", req.Date.Format(domain.DateFormat))
				return ErrSalonClosed
			}
			uc.logger.Error("CreateBooking: failed to get template: %v", err)
			return fmt.Errorf("%w: failed to get template: %v", ErrInternal, err)
		}
		if !tpl.IsValid() {
			uc.logger.Warn("CreateBooking: malformed template for weekday=%s", req.Date.Weekday())
			return ErrSalonClosed
		}

		// 5.2. Блэкауты и занятые бронирования дня (с блокировкой FOR UPDATE)
		blackouts, err := uc.scheduleRepo.ListBlackouts(txCtx, req.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list blackouts: %v", err)
			return fmt.Errorf("%w: failed to list blackouts: %v", ErrInternal, err)
		}

		dayBookings, err := uc.bookingRepo.ListByDate(txCtx, req.Date, domain.SlotBlockingStatuses)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list bookings: %v", err)
			return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
		}

		// 5.3. Проверка слота в момент коммита
		if err := validateSlot(req.StartTime, tpl, blackouts, dayBookings); err != nil {
			uc.logger.Warn("CreateBooking: slot check failed for %s %s: %v",
				req.Date.Format(domain.DateFormat), req.StartTime, err)
			return err
		}

		// 5.4. Проверка квоты абонемента под блокировкой строки подписки
		var subscriptionID *int64
		if req.UseSubscription {
			sub, err := uc.checkSubscriptionQuota(txCtx, req)
			if err != nil {
				return err
			}
			subscriptionID = &sub.ID
		}

		// 5.5. Формируем бронирование с линиями
		booking := &domain.Booking{
			CustomerID:  req.CustomerID,
			PetID:       req.PetID,
			BookingDate: req.Date,
			StartTime:   req.StartTime,
			Status:      domain.StatusScheduled,
			Notes:       req.Notes,
			Lines:       make([]domain.ServiceLine, 0, len(req.Services)),
		}

		for _, svcReq := range req.Services {
			service := services[svcReq.ServiceID]
			booking.Lines = append(booking.Lines, domain.ServiceLine{
				ServiceID:      service.ID,
				SubscriptionID: subscriptionID,
				ServiceName:    service.Name,
				PriceCharged:   resolvePrice(svcReq, service),
			})
		}

		// 5.6. Атомарная вставка; конфликт уникального индекса означает,
		// что конкурентная транзакция успела занять слот первой
		created, err := uc.bookingRepo.CreateWithLines(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: slot %s %s taken by concurrent booking",
					req.Date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return toResponse(result), nil
}

// checkSubscriptionQuota находит активную подписку на дату, блокирует ее строку
// и пересчитывает остаток квоты по каждой запрошенной услуге.
// Отказ оптовый: если хотя бы по одной услуге квоты нет, запрос отклоняется
// целиком, без молчаливого перехода на полную цену.
func (uc *UseCase) checkSubscriptionQuota(ctx context.Context, req *Request) (*domain.Subscription, error) {
	sub, err := uc.subscriptionRepo.FindActiveForDate(ctx, req.CustomerID, req.Date)
	if err != nil {
		if errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
			uc.logger.Warn("CreateBooking: no active subscription for customer=%d on %s",
				req.CustomerID, req.Date.Format(domain.DateFormat))
			return nil, ErrNoActiveSubscription
		}
		uc.logger.Error("CreateBooking: failed to find subscription: %v", err)
		return nil, fmt.Errorf("%w: failed to find subscription: %v", ErrInternal, err)
	}

	if !sub.HasCompletePeriod() {
		uc.logger.Error("CreateBooking: subscription id=%d has incomplete period", sub.ID)
		return nil, ErrIncompletePeriod
	}

	// Блокировка строки подписки сериализует конкурентные списания квоты
	if err := uc.subscriptionRepo.LockByID(ctx, sub.ID); err != nil {
		uc.logger.Error("CreateBooking: failed to lock subscription id=%d: %v", sub.ID, err)
		return nil, fmt.Errorf("%w: failed to lock subscription: %v", ErrInternal, err)
	}

	entitlements, err := uc.subscriptionRepo.ListEntitlements(ctx, sub.PlanID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list entitlements: %v", err)
		return nil, fmt.Errorf("%w: failed to list entitlements: %v", ErrInternal, err)
	}

	quantityByService := make(map[int64]int, len(entitlements))
	for _, ent := range entitlements {
		quantityByService[ent.ServiceID] = ent.QuantityPerPeriod
	}

	for _, svcReq := range req.Services {
		quantity, covered := quantityByService[svcReq.ServiceID]
		if !covered {
			uc.logger.Warn("CreateBooking: service id=%d is not covered by plan id=%d",
				svcReq.ServiceID, sub.PlanID)
			return nil, ErrQuotaExhausted
		}

		consumed, err := uc.subscriptionRepo.CountConsumption(
			ctx, sub.ID, svcReq.ServiceID, *sub.PeriodStart, *sub.PeriodEnd,
		)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to count consumption for service=%d: %v",
				svcReq.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to count consumption: %v", ErrInternal, err)
		}

		if quantity-consumed <= 0 {
			uc.logger.Warn("CreateBooking: quota exhausted for subscription=%d service=%d (%d/%d used)",
				sub.ID, svcReq.ServiceID, consumed, quantity)
			return nil, ErrQuotaExhausted
		}
	}

	return sub, nil
}

// resolvePrice возвращает цену линии: явный override или цена из каталога
func resolvePrice(svcReq ServiceRequest, service *domain.Service) decimal.Decimal {
	if svcReq.PriceOverride != nil {
		return *svcReq.PriceOverride
	}
	return service.Price
}

// toResponse конвертирует доменное бронирование в ответ use case
func toResponse(b *domain.Booking) *Response {
	lines := make([]LineResponse, 0, len(b.Lines))
	for _, line := range b.Lines {
		lines = append(lines, LineResponse{
			ID:             line.ID,
			ServiceID:      line.ServiceID,
			SubscriptionID: line.SubscriptionID,
			ServiceName:    line.ServiceName,
			PriceCharged:   line.PriceCharged,
		})
	}

	return &Response{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		PetID:       b.PetID,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		Status:      string(b.Status),
		Notes:       b.Notes,
		Lines:       lines,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
