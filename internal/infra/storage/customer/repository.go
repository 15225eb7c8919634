package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий пользователей (администраторы и клиенты) и их подписок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает пользователя
func (r *Repository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("users").
		Columns(
			"company_id",
			"name",
			"email",
			"role",
			"plan_type",
			"subscription_status",
			"booking_limit",
			"booking_used",
		).
		Values(
			u.CompanyID,
			u.Name,
			u.Email,
			u.Role,
			u.PlanType,
			u.SubscriptionStatus,
			u.BookingLimit,
			u.BookingUsed,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&u.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	return u, nil
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"company_id",
		"name",
		"email",
		"role",
		"plan_type",
		"subscription_status",
		"subscription_start_date",
		"subscription_end_date",
		"booking_limit",
		"booking_used",
		"free_plan_used",
		"created_at",
		"updated_at",
	).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		u                    domain.User
		start, end           sql.NullTime
		limit                sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.CompanyID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PlanType,
		&u.SubscriptionStatus,
		&start,
		&end,
		&limit,
		&u.BookingUsed,
		&u.FreePlanUsed,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan user: %v", ErrScanRow, err)
	}

	if start.Valid {
		u.SubscriptionStartDate = &start.Time
	}
	if end.Valid {
		u.SubscriptionEndDate = &end.Time
	}
	u.BookingLimit = nullableInt(limit)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	return &u, nil
}

// IncrementBookingUsed атомарно увеличивает счетчик записей.
// Для бесплатного плана увеличение проходит только пока счетчик меньше лимита,
// иначе возвращается ErrQuotaExceeded.
func (r *Repository) IncrementBookingUsed(ctx context.Context, id int64) (*domain.Quota, error) {
	query, args, err := psqlbuilder.Update("users").
		Set("booking_used", squirrel.Expr("booking_used + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Or{
			squirrel.NotEq{"plan_type": domain.PlanFree},
			squirrel.Eq{"booking_limit": nil},
			squirrel.Expr("booking_used < booking_limit"),
		}).
		Suffix("RETURNING plan_type, booking_limit, booking_used").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: IncrementBookingUsed - build update query: %v", ErrBuildQuery, err)
	}

	quota, err := r.scanQuota(ctx, query, args)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuotaExceeded
	}
	if err != nil {
		return nil, fmt.Errorf("%w: IncrementBookingUsed - execute update: %v", ErrExecQuery, err)
	}

	return quota, nil
}

// DecrementBookingUsed атомарно уменьшает счетчик бесплатного плана, не опуская его ниже нуля.
// Возвращает nil, если уменьшать нечего (платный план или счетчик равен нулю).
func (r *Repository) DecrementBookingUsed(ctx context.Context, id int64) (*domain.Quota, error) {
	query, args, err := psqlbuilder.Update("users").
		Set("booking_used", squirrel.Expr("booking_used - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "plan_type": domain.PlanFree}).
		Where(squirrel.Gt{"booking_used": 0}).
		Suffix("RETURNING plan_type, booking_limit, booking_used").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: DecrementBookingUsed - build update query: %v", ErrBuildQuery, err)
	}

	quota, err := r.scanQuota(ctx, query, args)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: DecrementBookingUsed - execute update: %v", ErrExecQuery, err)
	}

	return quota, nil
}

// ActivatePlan записывает поля нового плана и обнуляет счетчик записей.
// Счетчик сбрасывается в самом запросе, значение из памяти не используется.
func (r *Repository) ActivatePlan(ctx context.Context, u *domain.User) error {
	query, args, err := psqlbuilder.Update("users").
		Set("plan_type", u.PlanType).
		Set("subscription_status", domain.SubscriptionActive).
		Set("subscription_start_date", u.SubscriptionStartDate).
		Set("subscription_end_date", u.SubscriptionEndDate).
		Set("booking_limit", u.BookingLimit).
		Set("booking_used", squirrel.Expr("0")).
		Set("free_plan_used", squirrel.Expr("free_plan_used OR ?", u.FreePlanUsed)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ActivatePlan - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "ActivatePlan", query, args)
}

// ExpireSubscription переводит подписку пользователя в expired, не трогая счетчик записей
func (r *Repository) ExpireSubscription(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Update("users").
		Set("subscription_status", domain.SubscriptionExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ExpireSubscription - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "ExpireSubscription", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ExpireDue переводит в expired активные платные подписки, срок которых истек к моменту now.
// Возвращает ID затронутых пользователей.
func (r *Repository) ExpireDue(ctx context.Context, now time.Time) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("users").
		Set("subscription_status", domain.SubscriptionExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.NotEq{"plan_type": domain.PlanFree}).
		Where(squirrel.Eq{"subscription_status": domain.SubscriptionActive}).
		Where(squirrel.Lt{"subscription_end_date": now}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireDue - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ExpireDue - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ExpireDue - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ExpireDue - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

func (r *Repository) scanQuota(ctx context.Context, query string, args []interface{}) (*domain.Quota, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var (
		quota domain.Quota
		limit sql.NullInt64
	)
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&quota.PlanType, &limit, &quota.BookingUsed); err != nil {
		return nil, err
	}
	quota.BookingLimit = nullableInt(limit)

	return &quota, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
