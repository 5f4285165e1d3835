package get_service_request

import (
	"context"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

type ServiceRequestService interface {
	GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ServiceRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
