package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	uniqueViolationCode = "23505"
	slotHolderIndex     = "uq_appointments_slot_holder"
)

var baseColumns = []string{
	"a.id",
	"a.customer_id",
	"a.service_id",
	"a.company_id",
	"a.date",
	"a.time_slot",
	"a.notes",
	"a.status",
	"a.rejection_reason",
	"a.rescheduled_from",
	"a.created_at",
	"a.updated_at",
}

var detailColumns = append(append([]string{}, baseColumns...),
	"s.name",
	"s.price",
	"s.duration_minutes",
	"u.name",
	"u.email",
)

// Repository репозиторий для работы с записями на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись. Если слот уже удерживает другая запись,
// уникальный индекс отклоняет вставку и возвращается ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"customer_id",
			"service_id",
			"company_id",
			"date",
			"time_slot",
			"notes",
			"status",
		).
		Values(
			a.CustomerID,
			a.ServiceID,
			a.CompanyID,
			a.Date.Format(domain.DateFormat),
			a.TimeSlot,
			a.Notes,
			a.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &createdAt, &updatedAt)
	if isSlotConflict(err) {
		return nil, ErrSlotConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по ID вместе с данными услуги и клиента.
// Внутри транзакции строка записи блокируется (FOR UPDATE OF a).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := detailSelect().Where(squirrel.Eq{"a.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF a")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanDetail(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// FindSlotHolders возвращает записи, удерживающие слот услуги (все статусы, кроме отклоненного).
// excludeID исключает запись из выборки (перенос самой себя).
// Внутри транзакции найденные строки блокируются.
func (r *Repository) FindSlotHolders(ctx context.Context, key domain.SlotKey, excludeID *int64) ([]*domain.Appointment, error) {
	builder := baseSelect().
		Where(squirrel.Eq{
			"a.service_id": key.ServiceID,
			"a.date":       key.Date.Format(domain.DateFormat),
			"a.time_slot":  key.TimeSlot,
		}).
		Where(squirrel.NotEq{"a.status": statusStrings(domain.SlotReleasingStatuses)})

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"a.id": *excludeID})
	}

	return r.queryBase(ctx, "FindSlotHolders", builder)
}

// FindByServiceAndDate возвращает записи услуги на дату, удерживающие слоты.
// Используется для пометки занятых слотов.
func (r *Repository) FindByServiceAndDate(ctx context.Context, serviceID int64, date time.Time) ([]*domain.Appointment, error) {
	builder := baseSelect().
		Where(squirrel.Eq{
			"a.service_id": serviceID,
			"a.date":       date.Format(domain.DateFormat),
		}).
		Where(squirrel.NotEq{"a.status": statusStrings(domain.SlotReleasingStatuses)}).
		OrderBy("a.time_slot ASC")

	return r.queryBase(ctx, "FindByServiceAndDate", builder)
}

// List возвращает записи по фильтру, сначала новые
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := detailSelect()

	if filter.CompanyID != nil {
		builder = builder.Where(squirrel.Eq{"a.company_id": *filter.CompanyID})
	}
	if filter.CustomerID != nil {
		builder = builder.Where(squirrel.Eq{"a.customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"a.status": *filter.Status})
	}
	if filter.FromDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"a.date": filter.FromDate.Format(domain.DateFormat)})
	}
	if filter.ToDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"a.date": filter.ToDate.Format(domain.DateFormat)})
	}
	if filter.CreatedFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"a.created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		builder = builder.Where(squirrel.Lt{"a.created_at": *filter.CreatedTo})
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"s.name": pattern},
		})
	}

	query, args, err := builder.OrderBy("a.date DESC", "a.created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// UpdateStatus меняет статус записи и причину отказа
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, rejectionReason string) error {
	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("rejection_reason", rejectionReason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "UpdateStatus", query, args)
}

// Reschedule переносит запись на новую дату и время, сохраняя прежнюю дату
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, timeSlot types.TimeString, previousDate time.Time) error {
	query, args, err := psqlbuilder.Update("appointments").
		Set("date", date.Format(domain.DateFormat)).
		Set("time_slot", timeSlot).
		Set("rescheduled_from", previousDate.Format(domain.DateFormat)).
		Set("status", domain.StatusRescheduled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Reschedule", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if isSlotConflict(err) {
		return ErrSlotConflict
	}
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func (r *Repository) queryBase(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		a, err := scanBase(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return appointments, nil
}

func baseSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(baseColumns...).From("appointments a")
}

func detailSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(detailColumns...).
		From("appointments a").
		Join("services s ON s.id = a.service_id").
		Join("users u ON u.id = a.customer_id")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func baseDest(a *domain.Appointment, notes *sql.NullString, rescheduledFrom, createdAt, updatedAt *sql.NullTime) []interface{} {
	return []interface{}{
		&a.ID,
		&a.CustomerID,
		&a.ServiceID,
		&a.CompanyID,
		&a.Date,
		&a.TimeSlot,
		notes,
		&a.Status,
		&a.RejectionReason,
		rescheduledFrom,
		createdAt,
		updatedAt,
	}
}

func scanBase(row rowScanner) (*domain.Appointment, error) {
	var (
		a                                   domain.Appointment
		notes                               sql.NullString
		rescheduledFrom, createdAt, updated sql.NullTime
	)

	if err := row.Scan(baseDest(&a, &notes, &rescheduledFrom, &createdAt, &updated)...); err != nil {
		return nil, err
	}

	fillNullable(&a, notes, rescheduledFrom, createdAt, updated)
	return &a, nil
}

func scanDetail(row rowScanner) (*domain.Appointment, error) {
	var (
		a                                   domain.Appointment
		notes                               sql.NullString
		rescheduledFrom, createdAt, updated sql.NullTime
	)

	dest := append(baseDest(&a, &notes, &rescheduledFrom, &createdAt, &updated),
		&a.ServiceName,
		&a.ServicePrice,
		&a.ServiceDuration,
		&a.CustomerName,
		&a.CustomerEmail,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	fillNullable(&a, notes, rescheduledFrom, createdAt, updated)
	return &a, nil
}

func fillNullable(a *domain.Appointment, notes sql.NullString, rescheduledFrom, createdAt, updatedAt sql.NullTime) {
	if notes.Valid {
		a.Notes = &notes.String
	}
	if rescheduledFrom.Valid {
		t := rescheduledFrom.Time
		a.RescheduledFrom = &t
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
}

// likeEscaper экранирует спецсимволы LIKE; в PostgreSQL escape-символ по умолчанию обратный слеш
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// isSlotConflict учитывает, что под SERIALIZABLE проигравшая конкурентная вставка
// получает 40001 вместо 23505
func isSlotConflict(err error) bool {
	return isSlotHolderViolation(err) || txmanager.IsSerializationFailure(err)
}

func isSlotHolderViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolationCode && (pqErr.Constraint == "" || pqErr.Constraint == slotHolderIndex)
}
