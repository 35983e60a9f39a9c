package schedule

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

// Repository репозиторий шаблонов недельного расписания и блэкаутов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetTemplate получает шаблон расписания для дня недели
func (r *Repository) GetTemplate(ctx context.Context, weekday time.Weekday) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"open_time",
		"close_time",
		"slot_interval_minutes",
		"created_at",
		"updated_at",
	).
		From("schedule_templates").
		Where(squirrel.Eq{"weekday": int(weekday)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - build select query: %v", ErrBuildQuery, err)
	}

	tpl, err := scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - scan template: %v", ErrScanRow, err)
	}

	return tpl, nil
}

// ListTemplates получает все шаблоны расписания, упорядоченные по дню недели
func (r *Repository) ListTemplates(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"open_time",
		"close_time",
		"slot_interval_minutes",
		"created_at",
		"updated_at",
	).
		From("schedule_templates").
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.ScheduleTemplate, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListTemplates - scan row: %v", ErrScanRow, err)
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - rows error: %v", ErrScanRow, err)
	}

	return templates, nil
}

// UpsertTemplate создает или обновляет шаблон расписания для дня недели
func (r *Repository) UpsertTemplate(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_templates").
		Columns(
			"weekday",
			"open_time",
			"close_time",
			"slot_interval_minutes",
		).
		Values(
			int(tpl.Weekday),
			tpl.OpenTime,
			tpl.CloseTime,
			tpl.SlotIntervalMinutes,
		).
		Suffix(`ON CONFLICT (weekday) DO UPDATE SET
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertTemplate - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tpl.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertTemplate - execute upsert: %v", ErrExecQuery, err)
	}

	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return tpl, nil
}

// ListBlackouts получает все блэкауты на конкретную дату, упорядоченные по началу
func (r *Repository) ListBlackouts(ctx context.Context, date time.Time) ([]*domain.Blackout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"blackout_date",
		"start_time",
		"end_time",
		"reason",
		"created_at",
	).
		From("blackouts").
		Where(squirrel.Eq{"blackout_date": date}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blackouts := make([]*domain.Blackout, 0)
	for rows.Next() {
		var b domain.Blackout
		var createdAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.Date,
			&b.StartTime,
			&b.EndTime,
			&b.Reason,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBlackouts - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		blackouts = append(blackouts, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlackouts - rows error: %v", ErrScanRow, err)
	}

	return blackouts, nil
}

// CreateBlackout создает блэкаут на конкретную дату
func (r *Repository) CreateBlackout(ctx context.Context, b *domain.Blackout) (*domain.Blackout, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("blackouts").
		Columns(
			"blackout_date",
			"start_time",
			"end_time",
			"reason",
		).
		Values(
			b.Date,
			b.StartTime,
			b.EndTime,
			b.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlackout - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlackout - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time

	return b, nil
}

// DeleteBlackout удаляет блэкаут по ID
func (r *Repository) DeleteBlackout(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("blackouts").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteBlackout - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBlackout - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlackout - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlackoutNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTemplate сканирует одну строку schedule_templates
func scanTemplate(row rowScanner) (*domain.ScheduleTemplate, error) {
	var tpl domain.ScheduleTemplate
	var weekday int
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&tpl.ID,
		&weekday,
		&tpl.OpenTime,
		&tpl.CloseTime,
		&tpl.SlotIntervalMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tpl.Weekday = time.Weekday(weekday)
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	return &tpl, nil
}
