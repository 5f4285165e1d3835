package domain

import (
	"fmt"
	"time"
)

// ServiceRequestStatus represents the status of a service request
type ServiceRequestStatus string

const (
	StatusPending    ServiceRequestStatus = "pending"
	StatusInReview   ServiceRequestStatus = "in_review"
	StatusApproved   ServiceRequestStatus = "approved"
	StatusInProgress ServiceRequestStatus = "in_progress"
	StatusCompleted  ServiceRequestStatus = "completed"
	StatusCancelled  ServiceRequestStatus = "cancelled"
)

// IsValid returns true for known statuses
func (s ServiceRequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for completed and cancelled
func (s ServiceRequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ServiceType kind of work requested
type ServiceType string

const (
	ServiceTypeMaintenance  ServiceType = "maintenance"
	ServiceTypeRepair       ServiceType = "repair"
	ServiceTypeInstallation ServiceType = "installation"
	ServiceTypeConsultation ServiceType = "consultation"
	ServiceTypeUpgrade      ServiceType = "upgrade"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeMaintenance, ServiceTypeRepair, ServiceTypeInstallation, ServiceTypeConsultation, ServiceTypeUpgrade:
		return true
	}
	return false
}

// Priority of a service request
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ServiceRequest represents a customer's technical-service appointment
type ServiceRequest struct {
	ID              int64
	RequestNumber   string
	UserID          int64
	ServiceType     ServiceType
	Status          ServiceRequestStatus
	Priority        Priority
	Description     string
	DeviceInfo      map[string]interface{} // free-form, stored as JSONB
	EstimatedCost   *float64
	ActualCost      *float64
	ScheduledDate   *time.Time
	CompletedDate   *time.Time
	Notes           *string
	TechnicianNotes *string
	TimeSlotID      *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal returns true if no transition leaves the current status
func (r *ServiceRequest) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// CanBeCancelled returns true if the request is in a non-terminal state
func (r *ServiceRequest) CanBeCancelled() bool {
	return !r.IsTerminal()
}

// CanBeCompleted returns true if the request is in a non-terminal state
func (r *ServiceRequest) CanBeCompleted() bool {
	return !r.IsTerminal()
}

// HasSlot returns true if the request holds a slot reservation
func (r *ServiceRequest) HasSlot() bool {
	return r.TimeSlotID != nil
}

// ServiceRequestUpdate carries optional changes of a service request.
// Status, Priority, EstimatedCost and ScheduledDate are privileged.
type ServiceRequestUpdate struct {
	Status        *ServiceRequestStatus
	Priority      *Priority
	EstimatedCost *float64
	ScheduledDate *time.Time
	Notes         *string
}

// ForActor drops privileged fields for non-admin actors
func (u ServiceRequestUpdate) ForActor(actor Actor) ServiceRequestUpdate {
	if actor.IsAdmin() {
		return u
	}
	return ServiceRequestUpdate{Notes: u.Notes}
}

// HasPrivilegedFields returns true if any admin-only field is set
func (u ServiceRequestUpdate) HasPrivilegedFields() bool {
	return u.Status != nil || u.Priority != nil || u.EstimatedCost != nil || u.ScheduledDate != nil
}

// IsEmpty returns true if the update changes nothing
func (u ServiceRequestUpdate) IsEmpty() bool {
	return !u.HasPrivilegedFields() && u.Notes == nil
}

// ApplyTo applies the update to the request in place
func (u ServiceRequestUpdate) ApplyTo(r *ServiceRequest) {
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.Priority != nil {
		r.Priority = *u.Priority
	}
	if u.EstimatedCost != nil {
		cost := *u.EstimatedCost
		r.EstimatedCost = &cost
	}
	if u.ScheduledDate != nil {
		date := *u.ScheduledDate
		r.ScheduledDate = &date
	}
	if u.Notes != nil {
		notes := *u.Notes
		r.Notes = &notes
	}
}

// ServiceRequestFilter filter for listing service requests
type ServiceRequestFilter struct {
	UserID *int64
	Status *ServiceRequestStatus
}

// Matches reports whether the request passes the filter
func (f ServiceRequestFilter) Matches(r *ServiceRequest) bool {
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	return true
}

// RandomSource minimal random source needed for request numbers (*rand.Rand fits)
type RandomSource interface {
	Intn(n int) int
}

// GenerateRequestNumber builds "SR-<unix millis>-<3 digit random>".
// Uniqueness is not guaranteed; the storage unique index rejects collisions.
func GenerateRequestNumber(now time.Time, rnd RandomSource) string {
	return fmt.Sprintf("%s-%d-%03d", RequestNumberPrefix, now.UnixMilli(), rnd.Intn(1000))
}
