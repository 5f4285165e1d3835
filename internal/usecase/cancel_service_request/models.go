package cancel_service_request

import (
	"github.com/m04kA/SMC-TechService/internal/domain"
	srModels "github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

// Request модель запроса на отмену заявки
type Request struct {
	RequestID int64        // ID заявки
	Actor     domain.Actor // Кто отменяет
}

// Response отменённая заявка со слотом и пользователем
type Response = srModels.ServiceRequestResponse
