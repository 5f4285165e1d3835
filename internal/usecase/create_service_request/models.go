package create_service_request

import srModels "github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"

// Request модель запроса на создание заявки
type Request struct {
	UserID      int64                  // ID пользователя из токена
	ServiceType string                 // maintenance, repair, installation, consultation, upgrade
	Priority    *string                // low, medium, high, urgent (по умолчанию medium)
	Description string                 // Описание проблемы
	DeviceInfo  map[string]interface{} // Данные об устройстве (опционально)
	TimeSlotID  *int64                 // Обязательный слот
}

// Response созданная заявка со слотом и пользователем
type Response = srModels.ServiceRequestResponse
