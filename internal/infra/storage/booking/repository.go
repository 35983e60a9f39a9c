package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/pawly/PGS-BookingService/internal/domain"
	"github.com/pawly/PGS-BookingService/pkg/dbmetrics"
	"github.com/pawly/PGS-BookingService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// activeSlotConstraint имя частичного уникального индекса по (дата, время)
const activeSlotConstraint = "uq_bookings_active_slot"

// bookingColumns колонки таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"customer_id",
	"pet_id",
	"booking_date",
	"start_time",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий журнала бронирований и их сервисных линий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateWithLines атомарно создает бронирование вместе с его сервисными линиями.
// Предполагает вызов внутри транзакции (координатор всегда выполняет его в
// serializable-транзакции); вне транзакции атомарность не гарантируется.
// Конфликт по уникальному индексу активного слота транслируется в ErrSlotTaken.
func (r *Repository) CreateWithLines(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"pet_id",
			"booking_date",
			"start_time",
			"status",
			"notes",
		).
		Values(
			b.CustomerID,
			b.PetID,
			b.BookingDate,
			b.StartTime,
			b.Status,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateWithLines - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isActiveSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: CreateWithLines - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	for i := range b.Lines {
		line := &b.Lines[i]
		line.BookingID = b.ID

		lineQuery, lineArgs, err := psqlbuilder.Insert("service_lines").
			Columns(
				"booking_id",
				"service_id",
				"subscription_id",
				"service_name",
				"price_charged",
			).
			Values(
				line.BookingID,
				line.ServiceID,
				line.SubscriptionID,
				line.ServiceName,
				line.PriceCharged,
			).
			Suffix("RETURNING id").
			ToSql()

		if err != nil {
			return nil, fmt.Errorf("%w: CreateWithLines - build line insert: %v", ErrBuildQuery, err)
		}

		if err := executor.QueryRowContext(ctx, lineQuery, lineArgs...).Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("%w: CreateWithLines - execute line insert: %v", ErrExecQuery, err)
		}
	}

	return b, nil
}

// GetByID получает бронирование по ID вместе с его сервисными линиями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.CustomerID,
		&b.PetID,
		&b.BookingDate,
		&b.StartTime,
		&b.Status,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	linesByBooking, err := r.loadLines(ctx, executor, []int64{b.ID})
	if err != nil {
		return nil, err
	}
	b.Lines = linesByBooking[b.ID]

	return &b, nil
}

// ListByDate получает бронирования на дату с фильтром по статусам,
// упорядоченные по времени начала.
// Внутри транзакции выборка выполняется с FOR UPDATE: координатор блокирует
// бронирования дня на время проверки доступности слота и вставки.
func (r *Repository) ListByDate(ctx context.Context, date time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_date": date}).
		OrderBy("start_time ASC")

	if len(statuses) > 0 {
		statusStrings := make([]string, len(statuses))
		for i, s := range statuses {
			statusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachLines(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// GetByCustomer получает историю бронирований клиента вместе с линиями,
// свежие бронирования первыми. Опционально фильтрует по статусу.
func (r *Repository) GetByCustomer(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": filter.CustomerID}).
		OrderBy("booking_date DESC, start_time DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachLines(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatus переводит бронирование из статуса from в статус to.
// Условие на текущий статус в WHERE закрывает гонку с параллельным
// переходом: проигравший UPDATE не находит строку и получает
// ErrStatusConflict вместо молчаливой перезаписи.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, executor, id, "UpdateStatus")
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины.
// Отмена немедленно освобождает слот и возвращает абонементную квоту:
// и подсчет занятых слотов, и подсчет потребления фильтруют по статусу.
// UPDATE обусловлен отменяемыми статусами: параллельно завершенный визит
// не может быть отменен задним числом (иначе вернулась бы квота за
// фактически оказанную услугу).
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": []domain.BookingStatus{domain.StatusScheduled, domain.StatusInService},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, executor, id, "Cancel")
	}

	return nil
}

// classifyMissedUpdate различает причины нулевого rows affected условного
// UPDATE: строки нет вовсе (ErrBookingNotFound) или она существует, но уже
// не в ожидаемом статусе (ErrStatusConflict)
func (r *Repository) classifyMissedUpdate(ctx context.Context, executor DBExecutor, id int64, op string) error {
	query, args, err := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, op, err)
	}

	var one int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("%w: %s - check existence: %v", ErrExecQuery, op, err)
	}

	return ErrStatusConflict
}

// scanBookings сканирует результаты запроса в слайс бронирований (без линий)
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.CustomerID,
			&b.PetID,
			&b.BookingDate,
			&b.StartTime,
			&b.Status,
			&b.Notes,
			&b.CancellationReason,
			&b.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// attachLines догружает сервисные линии для списка бронирований
func (r *Repository) attachLines(ctx context.Context, executor DBExecutor, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	linesByBooking, err := r.loadLines(ctx, executor, ids)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		b.Lines = linesByBooking[b.ID]
	}

	return nil
}

// loadLines загружает сервисные линии для набора бронирований
func (r *Repository) loadLines(ctx context.Context, executor DBExecutor, bookingIDs []int64) (map[int64][]domain.ServiceLine, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"service_id",
		"subscription_id",
		"service_name",
		"price_charged",
	).
		From("service_lines").
		Where(squirrel.Eq{"booking_id": bookingIDs}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.ServiceLine)
	for rows.Next() {
		var line domain.ServiceLine
		err := rows.Scan(
			&line.ID,
			&line.BookingID,
			&line.ServiceID,
			&line.SubscriptionID,
			&line.ServiceName,
			&line.PriceCharged,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: loadLines - scan row: %v", ErrScanRow, err)
		}
		result[line.BookingID] = append(result[line.BookingID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadLines - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// isActiveSlotConflict проверяет, что ошибка вызвана конфликтом по
// уникальному индексу активного слота
func isActiveSlotConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == activeSlotConstraint
	}
	return false
}
