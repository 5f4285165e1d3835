package create_service_request

import (
	createRequest "github.com/m04kA/SMC-TechService/internal/usecase/create_service_request"
)

// CreateServiceRequestRequest HTTP request model
type CreateServiceRequestRequest struct {
	ServiceType string                 `json:"serviceType" validate:"required"`
	Priority    *string                `json:"priority,omitempty"`
	Description string                 `json:"description" validate:"required,max=2000"`
	DeviceInfo  map[string]interface{} `json:"deviceInfo,omitempty"`
	TimeSlotID  *int64                 `json:"timeSlotId" validate:"required,gt=0"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case, владелец берётся из токена
func (r *CreateServiceRequestRequest) ToUseCaseRequest(userID int64) *createRequest.Request {
	return &createRequest.Request{
		UserID:      userID,
		ServiceType: r.ServiceType,
		Priority:    r.Priority,
		Description: r.Description,
		DeviceInfo:  r.DeviceInfo,
		TimeSlotID:  r.TimeSlotID,
	}
}
