package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/dbmetrics"
	"github.com/pawly/PGS-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий подписок, лимитов плана и учета потребления
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подписок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindActiveForDate находит активную подписку клиента, период которой покрывает дату.
// Tie-break: если под дату попадает несколько активных подписок, выбирается
// подписка с самым поздним period_start (а при равенстве - с большим id).
// Это явное бизнес-правило "побеждает самая свежая подписка".
func (r *Repository) FindActiveForDate(ctx context.Context, customerID int64, date time.Time) (*domain.Subscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"customer_id",
		"plan_id",
		"status",
		"period_start",
		"period_end",
		"created_at",
		"updated_at",
	).
		From("subscriptions").
		Where(squirrel.Eq{
			"customer_id": customerID,
			"status":      domain.SubscriptionActive,
		}).
		// Подписка без границ периода тоже попадает в выборку: это дефект данных,
		// который accountant должен превратить в жесткую ошибку, а не молча пропустить
		Where(squirrel.Or{squirrel.Eq{"period_start": nil}, squirrel.LtOrEq{"period_start": date}}).
		Where(squirrel.Or{squirrel.Eq{"period_end": nil}, squirrel.GtOrEq{"period_end": date}}).
		OrderBy("period_start DESC NULLS LAST", "id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveForDate - build select query: %v", ErrBuildQuery, err)
	}

	sub, err := scanSubscription(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveForDate - scan subscription: %v", ErrScanRow, err)
	}

	return sub, nil
}

// GetByID получает подписку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"customer_id",
		"plan_id",
		"status",
		"period_start",
		"period_end",
		"created_at",
		"updated_at",
	).
		From("subscriptions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	sub, err := scanSubscription(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan subscription: %v", ErrScanRow, err)
	}

	return sub, nil
}

// LockByID блокирует строку подписки до конца текущей транзакции (FOR UPDATE).
// Используется координатором бронирования: пересчет потребления и вставка
// новых линий выполняются под этой блокировкой, чтобы два конкурентных
// запроса не израсходовали одну и ту же единицу квоты.
func (r *Repository) LockByID(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("subscriptions").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: LockByID - build select query: %v", ErrBuildQuery, err)
	}

	var lockedID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return ErrSubscriptionNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: LockByID - execute select: %v", ErrExecQuery, err)
	}

	return nil
}

// ListEntitlements получает лимиты услуг для плана
func (r *Repository) ListEntitlements(ctx context.Context, planID int64) ([]*domain.PlanEntitlement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"plan_id",
		"service_id",
		"quantity_per_period",
	).
		From("plan_entitlements").
		Where(squirrel.Eq{"plan_id": planID}).
		OrderBy("service_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListEntitlements - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEntitlements - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entitlements := make([]*domain.PlanEntitlement, 0)
	for rows.Next() {
		var e domain.PlanEntitlement
		if err := rows.Scan(&e.ID, &e.PlanID, &e.ServiceID, &e.QuantityPerPeriod); err != nil {
			return nil, fmt.Errorf("%w: ListEntitlements - scan row: %v", ErrScanRow, err)
		}
		entitlements = append(entitlements, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEntitlements - rows error: %v", ErrScanRow, err)
	}

	return entitlements, nil
}

// CountConsumption подсчитывает, сколько единиц услуги уже израсходовано
// по подписке внутри биллингового периода. Считаются только линии бронирований
// в статусах, расходующих квоту: отмененные и no-show бронирования квоту возвращают.
func (r *Repository) CountConsumption(
	ctx context.Context,
	subscriptionID int64,
	serviceID int64,
	periodStart time.Time,
	periodEnd time.Time,
) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	consumingStatuses := make([]string, len(domain.QuotaConsumingStatuses))
	for i, s := range domain.QuotaConsumingStatuses {
		consumingStatuses[i] = string(s)
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("service_lines sl").
		Join("bookings b ON b.id = sl.booking_id").
		Where(squirrel.Eq{
			"sl.subscription_id": subscriptionID,
			"sl.service_id":      serviceID,
			"b.status":           consumingStatuses,
		}).
		Where(squirrel.GtOrEq{"b.booking_date": periodStart}).
		Where(squirrel.LtOrEq{"b.booking_date": periodEnd}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountConsumption - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountConsumption - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSubscription сканирует одну строку subscriptions
func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&sub.ID,
		&sub.CustomerID,
		&sub.PlanID,
		&sub.Status,
		&sub.PeriodStart,
		&sub.PeriodEnd,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt = createdAt.Time
	sub.UpdatedAt = updatedAt.Time

	return &sub, nil
}
