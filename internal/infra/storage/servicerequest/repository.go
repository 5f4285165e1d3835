package servicerequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage"
	"github.com/m04kA/SMC-TechService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TechService/pkg/psqlbuilder"
)

const tableName = "service_requests"

var columns = []string{
	"id",
	"request_number",
	"user_id",
	"service_type",
	"status",
	"priority",
	"description",
	"device_info",
	"estimated_cost",
	"actual_cost",
	"scheduled_date",
	"completed_date",
	"notes",
	"technician_notes",
	"time_slot_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заявками на обслуживание
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку.
// Вызывается внутри транзакции вместе с резервированием слота.
func (r *Repository) Create(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deviceInfo, err := marshalDeviceInfo(req.DeviceInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrDeviceInfo, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"request_number",
			"user_id",
			"service_type",
			"status",
			"priority",
			"description",
			"device_info",
			"estimated_cost",
			"scheduled_date",
			"notes",
			"time_slot_id",
		).
		Values(
			req.RequestNumber,
			req.UserID,
			req.ServiceType,
			req.Status,
			req.Priority,
			req.Description,
			deviceInfo,
			req.EstimatedCost,
			req.ScheduledDate,
			req.Notes,
			req.TimeSlotID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if storage.IsUniqueViolation(err) {
		return nil, ErrDuplicateRequestNumber
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return req, nil
}

// GetByID получает заявку по ID.
// Внутри транзакции строка блокируется до конца транзакции.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
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

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan request: %v", ErrScanRow, err)
	}

	return req, nil
}

// Update сохраняет изменяемые поля заявки (статус, приоритет, стоимость, дата, заметки)
func (r *Repository) Update(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", req.Status).
		Set("priority", req.Priority).
		Set("estimated_cost", req.EstimatedCost).
		Set("scheduled_date", req.ScheduledDate).
		Set("notes", req.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return req, nil
}

// Complete переводит заявку в completed и проставляет дату завершения.
// actualCost и technicianNotes записываются, только если переданы.
func (r *Repository) Complete(ctx context.Context, id int64, actualCost *float64, technicianNotes *string, completedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName).
		Set("status", domain.StatusCompleted).
		Set("completed_date", completedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if actualCost != nil {
		updateBuilder = updateBuilder.Set("actual_cost", *actualCost)
	}
	if technicianNotes != nil {
		updateBuilder = updateBuilder.Set("technician_notes", *technicianNotes)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Complete - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Complete", query, args)
}

// UpdateStatus обновляет статус заявки
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// List возвращает заявки по фильтру, сначала новые
func (r *Repository) List(ctx context.Context, filter domain.ServiceRequestFilter) ([]*domain.ServiceRequest, error) {
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

	requests := make([]*domain.ServiceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return requests, nil
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrRequestNotFound
	}

	return nil
}

func listBuilder(filter domain.ServiceRequestFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(columns...).From(tableName)

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	return selectBuilder.OrderBy("created_at DESC", "id DESC")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*domain.ServiceRequest, error) {
	var (
		req                          domain.ServiceRequest
		deviceInfo                   []byte
		estimatedCost, actualCost    sql.NullFloat64
		scheduledDate, completedDate sql.NullTime
		notes, technicianNotes       sql.NullString
		timeSlotID                   sql.NullInt64
		createdAt, updatedAt         sql.NullTime
	)

	err := row.Scan(
		&req.ID,
		&req.RequestNumber,
		&req.UserID,
		&req.ServiceType,
		&req.Status,
		&req.Priority,
		&req.Description,
		&deviceInfo,
		&estimatedCost,
		&actualCost,
		&scheduledDate,
		&completedDate,
		&notes,
		&technicianNotes,
		&timeSlotID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if req.DeviceInfo, err = unmarshalDeviceInfo(deviceInfo); err != nil {
		return nil, err
	}
	if estimatedCost.Valid {
		req.EstimatedCost = &estimatedCost.Float64
	}
	if actualCost.Valid {
		req.ActualCost = &actualCost.Float64
	}
	if scheduledDate.Valid {
		req.ScheduledDate = &scheduledDate.Time
	}
	if completedDate.Valid {
		req.CompletedDate = &completedDate.Time
	}
	if notes.Valid {
		req.Notes = &notes.String
	}
	if technicianNotes.Valid {
		req.TechnicianNotes = &technicianNotes.String
	}
	if timeSlotID.Valid {
		req.TimeSlotID = &timeSlotID.Int64
	}
	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return &req, nil
}

// marshalDeviceInfo возвращает nil для пустого объекта, чтобы в БД был NULL
func marshalDeviceInfo(info map[string]interface{}) (interface{}, error) {
	if len(info) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalDeviceInfo(data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var info map[string]interface{}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceInfo, err)
	}
	return info, nil
}
