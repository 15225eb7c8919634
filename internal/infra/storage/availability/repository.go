package availability

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий конфигурации доступности компаний (одна запись на компанию)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCompany получает конфигурацию компании
func (r *Repository) GetByCompany(ctx context.Context, companyID int64) (*domain.AvailabilityConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"company_id",
		"working_days",
		"start_time",
		"end_time",
		"breaks",
		"holidays",
		"booking_open",
		"created_at",
		"updated_at",
	).
		From("availability_configs").
		Where(squirrel.Eq{"company_id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompany - build select query: %v", ErrBuildQuery, err)
	}

	var (
		cfg                  domain.AvailabilityConfig
		breaks               []byte
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&cfg.ID,
		&cfg.CompanyID,
		pq.Array(&cfg.WorkingDays),
		&cfg.StartTime,
		&cfg.EndTime,
		&breaks,
		pq.Array(&cfg.Holidays),
		&cfg.BookingOpen,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompany - scan config: %v", ErrScanRow, err)
	}

	cfg.Breaks, err = DecodeBreaks(breaks)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCompany - decode breaks: %v", ErrScanRow, err)
	}
	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}

// Upsert создает или полностью заменяет конфигурацию компании
func (r *Repository) Upsert(ctx context.Context, cfg *domain.AvailabilityConfig) (*domain.AvailabilityConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breaks, err := EncodeBreaks(cfg.Breaks)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert("availability_configs").
		Columns(
			"company_id",
			"working_days",
			"start_time",
			"end_time",
			"breaks",
			"holidays",
			"booking_open",
		).
		Values(
			cfg.CompanyID,
			pq.Array(nonNil(cfg.WorkingDays)),
			cfg.StartTime,
			cfg.EndTime,
			breaks,
			pq.Array(nonNil(cfg.Holidays)),
			cfg.BookingOpen,
		).
		Suffix(`ON CONFLICT (company_id) DO UPDATE SET
			working_days = EXCLUDED.working_days,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			breaks = EXCLUDED.breaks,
			holidays = EXCLUDED.holidays,
			booking_open = EXCLUDED.booking_open,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&cfg.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return cfg, nil
}

// EncodeBreaks сериализует перерывы в JSONB
func EncodeBreaks(breaks []domain.Break) (string, error) {
	if breaks == nil {
		breaks = []domain.Break{}
	}
	data, err := json.Marshal(breaks)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeBreaks, err)
	}
	return string(data), nil
}

// DecodeBreaks разбирает перерывы из JSONB
func DecodeBreaks(data []byte) ([]domain.Break, error) {
	breaks := make([]domain.Break, 0)
	if len(data) == 0 {
		return breaks, nil
	}
	if err := json.Unmarshal(data, &breaks); err != nil {
		return nil, err
	}
	return breaks, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
