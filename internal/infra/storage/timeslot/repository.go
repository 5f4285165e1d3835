package timeslot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage"
	"github.com/m04kA/SMC-TechService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TechService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-TechService/pkg/types"
)

const tableName = "time_slots"

var columns = []string{
	"id",
	"slot_date",
	"start_time",
	"end_time",
	"is_available",
	"max_capacity",
	"current_bookings",
	"technician_notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает слот. Нарушение уникальности окна возвращает ErrDuplicateSlot.
func (r *Repository) Create(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := insertBuilder(slot).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if storage.IsUniqueViolation(err) {
		return nil, ErrDuplicateSlot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return slot, nil
}

// InsertIgnoreDuplicate вставляет слот, молча пропуская дубликаты окна.
// Возвращает true, если строка была вставлена.
func (r *Repository) InsertIgnoreDuplicate(ctx context.Context, slot *domain.TimeSlot) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := insertBuilder(slot).
		Suffix("ON CONFLICT (slot_date, start_time, end_time) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: InsertIgnoreDuplicate - build insert query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: InsertIgnoreDuplicate - execute insert: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: InsertIgnoreDuplicate - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// GetByID получает слот по ID.
// Внутри транзакции строка блокируется (SELECT ... FOR UPDATE) до конца транзакции.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ExistsByWindow проверяет наличие слота с тем же окном (дата, начало, конец).
// excludeID позволяет исключить сам обновляемый слот (0 - не исключать).
func (r *Repository) ExistsByWindow(ctx context.Context, date time.Time, start, end types.TimeString, excludeID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("1").
		From(tableName).
		Where(squirrel.Eq{
			"slot_date":  date.Format(domain.DateFormat),
			"start_time": start,
			"end_time":   end,
		}).
		Limit(1)

	if excludeID != 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsByWindow - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsByWindow - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// Update сохраняет административные поля слота (окно, вместимость, доступность, заметки).
// current_bookings здесь не меняется.
func (r *Repository) Update(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("slot_date", slot.Date.Format(domain.DateFormat)).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("is_available", slot.IsAvailable).
		Set("max_capacity", slot.MaxCapacity).
		Set("technician_notes", slot.TechnicianNotes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if storage.IsUniqueViolation(err) {
		return nil, ErrDuplicateSlot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return slot, nil
}

// SetCurrentBookings записывает счётчик бронирований слота
func (r *Repository) SetCurrentBookings(ctx context.Context, id int64, bookings int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("current_bookings", bookings).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetCurrentBookings - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetCurrentBookings - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetCurrentBookings - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// Delete физически удаляет слот
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if storage.IsForeignKeyViolation(err) {
		return ErrSlotReferenced
	}
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// List возвращает слоты по фильтру, отсортированные по дате и времени начала
func (r *Repository) List(ctx context.Context, filter domain.TimeSlotFilter) ([]*domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listBuilder(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func insertBuilder(slot *domain.TimeSlot) squirrel.InsertBuilder {
	return psqlbuilder.Insert(tableName).
		Columns(
			"slot_date",
			"start_time",
			"end_time",
			"is_available",
			"max_capacity",
			"current_bookings",
			"technician_notes",
		).
		Values(
			slot.Date.Format(domain.DateFormat),
			slot.StartTime,
			slot.EndTime,
			slot.IsAvailable,
			slot.MaxCapacity,
			slot.CurrentBookings,
			slot.TechnicianNotes,
		)
}

func listBuilder(filter domain.TimeSlotFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).From(tableName)

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"slot_date": filter.From.Format(domain.DateFormat)})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"slot_date": filter.To.Format(domain.DateFormat)})
	}
	if filter.IsAvailable != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_available": *filter.IsAvailable})
	}
	if filter.OnlyBookable {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"is_available": true}).
			Where("current_bookings < max_capacity")
	}

	return selectBuilder.OrderBy("slot_date ASC", "start_time ASC")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.TimeSlot, error) {
	var (
		slot                 domain.TimeSlot
		notes                sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.MaxCapacity,
		&slot.CurrentBookings,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		slot.TechnicianNotes = &notes.String
	}
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
