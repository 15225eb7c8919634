package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

var serviceColumns = []string{
	"id",
	"company_id",
	"name",
	"description",
	"duration_minutes",
	"price",
	"status",
	"availability_enabled",
	"working_days",
	"start_time",
	"end_time",
	"breaks",
	"holidays",
	"created_at",
	"updated_at",
}

// Repository репозиторий услуг компаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает услугу
func (r *Repository) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breaks, err := availability.EncodeBreaks(s.Availability.Breaks)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert("services").
		Columns(
			"company_id",
			"name",
			"description",
			"duration_minutes",
			"price",
			"status",
			"availability_enabled",
			"working_days",
			"start_time",
			"end_time",
			"breaks",
			"holidays",
		).
		Values(
			s.CompanyID,
			s.Name,
			s.Description,
			s.DurationMinutes,
			s.Price,
			s.Status,
			s.Availability.Enabled,
			pq.Array(nonNil(s.Availability.WorkingDays)),
			s.Availability.StartTime,
			s.Availability.EndTime,
			breaks,
			pq.Array(nonNil(s.Availability.Holidays)),
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	return s, nil
}

// List возвращает страницу услуг по фильтру и общее количество
func (r *Repository) List(ctx context.Context, filter domain.ServicesFilter) ([]*domain.Service, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	where := squirrel.And{}
	if filter.CompanyID != nil {
		where = append(where, squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}

	countQuery, countArgs, err := psqlbuilder.Select("COUNT(*)").From("services").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: List - execute count: %v", ErrExecQuery, err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return services, total, nil
}

// Update обновляет основные поля услуги
func (r *Repository) Update(ctx context.Context, s *domain.Service) error {
	query, args, err := psqlbuilder.Update("services").
		Set("name", s.Name).
		Set("description", s.Description).
		Set("duration_minutes", s.DurationMinutes).
		Set("price", s.Price).
		Set("status", s.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Update", query, args)
}

// SetStatus меняет статус услуги
func (r *Repository) SetStatus(ctx context.Context, id int64, status domain.ServiceStatus) error {
	query, args, err := psqlbuilder.Update("services").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "SetStatus", query, args)
}

// SetAvailability заменяет блок правил доступности услуги целиком
func (r *Repository) SetAvailability(ctx context.Context, id int64, o domain.ServiceAvailabilityOverride) error {
	breaks, err := availability.EncodeBreaks(o.Breaks)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Update("services").
		Set("availability_enabled", o.Enabled).
		Set("working_days", pq.Array(nonNil(o.WorkingDays))).
		Set("start_time", o.StartTime).
		Set("end_time", o.EndTime).
		Set("breaks", breaks).
		Set("holidays", pq.Array(nonNil(o.Holidays))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetAvailability - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "SetAvailability", query, args)
}

// Delete удаляет услугу вместе с ее записями (каскад)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Delete("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Delete", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	var (
		s                    domain.Service
		breaks               []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.Name,
		&s.Description,
		&s.DurationMinutes,
		&s.Price,
		&s.Status,
		&s.Availability.Enabled,
		pq.Array(&s.Availability.WorkingDays),
		&s.Availability.StartTime,
		&s.Availability.EndTime,
		&breaks,
		pq.Array(&s.Availability.Holidays),
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Availability.Breaks, err = availability.DecodeBreaks(breaks)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = domain.DefaultPage
	}
	if limit < 1 {
		limit = domain.DefaultPageLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	return page, limit
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
