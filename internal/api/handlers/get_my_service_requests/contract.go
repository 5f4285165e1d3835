package get_my_service_requests

import (
	"context"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

type ServiceRequestService interface {
	ListMine(ctx context.Context, actor domain.Actor, status *string) (*models.ServiceRequestListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
