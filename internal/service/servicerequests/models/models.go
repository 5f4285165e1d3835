package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	slotModels "github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

var (
	// ErrInvalidStatus возвращается при неизвестном статусе заявки
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority возвращается при неизвестном приоритете
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrNegativeCost возвращается при отрицательной стоимости
	ErrNegativeCost = errors.New("cost must not be negative")
)

// Request модели

// UpdateRequest частичное обновление заявки.
// Status, Priority, EstimatedCost и ScheduledDate применяются только для администратора.
type UpdateRequest struct {
	Status        *string    `json:"status,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	EstimatedCost *float64   `json:"estimatedCost,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CompleteRequest завершение заявки администратором
type CompleteRequest struct {
	ActualCost      *float64 `json:"actualCost,omitempty"`
	TechnicianNotes *string  `json:"technicianNotes,omitempty" validate:"omitempty,max=2000"`
}

// ListRequest фильтр списка заявок
type ListRequest struct {
	UserID *int64
	Status *string
}

// HasPrivilegedFields true, если задано хотя бы одно поле администратора
func (r *UpdateRequest) HasPrivilegedFields() bool {
	return r.Status != nil || r.Priority != nil || r.EstimatedCost != nil || r.ScheduledDate != nil
}

// ForActor отбрасывает поля администратора для остальных ролей до валидации
func (r *UpdateRequest) ForActor(actor domain.Actor) *UpdateRequest {
	if actor.IsAdmin() {
		return r
	}
	return &UpdateRequest{Notes: r.Notes}
}

// ToDomainUpdate конвертирует запрос в domain обновление
func (r *UpdateRequest) ToDomainUpdate() (domain.ServiceRequestUpdate, error) {
	update := domain.ServiceRequestUpdate{
		EstimatedCost: r.EstimatedCost,
		ScheduledDate: r.ScheduledDate,
		Notes:         r.Notes,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if r.Priority != nil {
		priority := domain.Priority(*r.Priority)
		if !priority.IsValid() {
			return update, fmt.Errorf("%w: %q", ErrInvalidPriority, *r.Priority)
		}
		update.Priority = &priority
	}
	if r.EstimatedCost != nil && *r.EstimatedCost < 0 {
		return update, fmt.Errorf("%w: estimatedCost", ErrNegativeCost)
	}

	return update, nil
}

// ToDomainFilter конвертирует запрос в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.ServiceRequestFilter, error) {
	filter := domain.ServiceRequestFilter{UserID: r.UserID}
	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}

// ToDomainStatus конвертирует строку в статус заявки
func ToDomainStatus(s string) (domain.ServiceRequestStatus, error) {
	status := domain.ServiceRequestStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Response модели

// UserResponse профиль владельца заявки
type UserResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	FullName  string  `json:"fullName,omitempty"`
	Email     string  `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ServiceRequestResponse заявка вместе со слотом и пользователем
type ServiceRequestResponse struct {
	ID              int64                   `json:"id"`
	RequestNumber   string                  `json:"requestNumber"`
	UserID          int64                   `json:"userId"`
	ServiceType     string                  `json:"serviceType"`
	Status          string                  `json:"status"`
	Priority        string                  `json:"priority"`
	Description     string                  `json:"description"`
	DeviceInfo      map[string]interface{}  `json:"deviceInfo,omitempty"`
	EstimatedCost   *float64                `json:"estimatedCost,omitempty"`
	ActualCost      *float64                `json:"actualCost,omitempty"`
	ScheduledDate   *time.Time              `json:"scheduledDate,omitempty"`
	CompletedDate   *time.Time              `json:"completedDate,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
	TechnicianNotes *string                 `json:"technicianNotes,omitempty"`
	TimeSlotID      *int64                  `json:"timeSlotId,omitempty"`
	TimeSlot        *slotModels.SlotResponse `json:"timeSlot,omitempty"`
	User            *UserResponse           `json:"user"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// ServiceRequestListResponse список заявок
type ServiceRequestListResponse struct {
	Requests []ServiceRequestResponse `json:"requests"`
	Total    int                      `json:"total"`
}

// FromDomainRequest конвертирует domain заявку в response.
// slot и user могут быть nil, тогда пользователь представлен только ID.
func FromDomainRequest(req *domain.ServiceRequest, slot *domain.TimeSlot, user *domain.User) *ServiceRequestResponse {
	resp := &ServiceRequestResponse{
		ID:              req.ID,
		RequestNumber:   req.RequestNumber,
		UserID:          req.UserID,
		ServiceType:     string(req.ServiceType),
		Status:          string(req.Status),
		Priority:        string(req.Priority),
		Description:     req.Description,
		DeviceInfo:      req.DeviceInfo,
		EstimatedCost:   req.EstimatedCost,
		ActualCost:      req.ActualCost,
		ScheduledDate:   req.ScheduledDate,
		CompletedDate:   req.CompletedDate,
		Notes:           req.Notes,
		TechnicianNotes: req.TechnicianNotes,
		TimeSlotID:      req.TimeSlotID,
		User:            &UserResponse{ID: req.UserID},
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}

	if slot != nil {
		resp.TimeSlot = slotModels.FromDomainSlot(slot)
	}

	if user != nil {
		resp.User = &UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			FullName:  user.FullName(),
			Email:     user.Email,
			Phone:     user.Phone,
		}
	}

	return resp
}

// FromDomainRequestList конвертирует список заявок без слотов и пользователей
func FromDomainRequestList(reqs []*domain.ServiceRequest) *ServiceRequestListResponse {
	resp := &ServiceRequestListResponse{
		Requests: make([]ServiceRequestResponse, 0, len(reqs)),
		Total:    len(reqs),
	}
	for _, req := range reqs {
		resp.Requests = append(resp.Requests, *FromDomainRequest(req, nil, nil))
	}
	return resp
}
