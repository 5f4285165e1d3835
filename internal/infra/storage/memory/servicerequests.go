package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/servicerequest"
)

// ServiceRequestRepository репозиторий заявок в памяти.
// Возвращает те же ошибки, что и servicerequest.Repository.
type ServiceRequestRepository struct {
	store *Store

	// failCreate позволяет тестам сымитировать сбой записи заявки
	failCreate error
}

// FailNextCreates заставляет Create возвращать err (nil - отключить)
func (r *ServiceRequestRepository) FailNextCreates(err error) {
	r.failCreate = err
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	defer r.store.lock(ctx)()

	if r.failCreate != nil {
		return nil, r.failCreate
	}

	for _, existing := range r.store.requests {
		if existing.RequestNumber == req.RequestNumber {
			return nil, servicerequest.ErrDuplicateRequestNumber
		}
	}

	r.store.nextReq++
	now := r.store.now()
	req.ID = r.store.nextReq
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.requests[req.ID] = copyRequest(req)

	return req, nil
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	defer r.store.lock(ctx)()

	req, ok := r.store.requests[id]
	if !ok {
		return nil, servicerequest.ErrRequestNotFound
	}
	return copyRequest(req), nil
}

func (r *ServiceRequestRepository) Update(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	defer r.store.lock(ctx)()

	stored, ok := r.store.requests[req.ID]
	if !ok {
		return nil, servicerequest.ErrRequestNotFound
	}

	stored.Status = req.Status
	stored.Priority = req.Priority
	stored.EstimatedCost = copyPtr(req.EstimatedCost)
	stored.ScheduledDate = copyPtr(req.ScheduledDate)
	stored.Notes = copyPtr(req.Notes)
	stored.UpdatedAt = r.store.now()

	req.UpdatedAt = stored.UpdatedAt
	return req, nil
}

func (r *ServiceRequestRepository) Complete(ctx context.Context, id int64, actualCost *float64, technicianNotes *string, completedAt time.Time) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.requests[id]
	if !ok {
		return servicerequest.ErrRequestNotFound
	}

	stored.Status = domain.StatusCompleted
	stored.CompletedDate = &completedAt
	if actualCost != nil {
		stored.ActualCost = copyPtr(actualCost)
	}
	if technicianNotes != nil {
		stored.TechnicianNotes = copyPtr(technicianNotes)
	}
	stored.UpdatedAt = r.store.now()
	return nil
}

func (r *ServiceRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.requests[id]
	if !ok {
		return servicerequest.ErrRequestNotFound
	}
	stored.Status = status
	stored.UpdatedAt = r.store.now()
	return nil
}

func (r *ServiceRequestRepository) List(ctx context.Context, filter domain.ServiceRequestFilter) ([]*domain.ServiceRequest, error) {
	defer r.store.lock(ctx)()

	requests := make([]*domain.ServiceRequest, 0)
	for _, req := range r.store.requests {
		if filter.Matches(req) {
			requests = append(requests, copyRequest(req))
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].ID > requests[j].ID
	})

	return requests, nil
}
