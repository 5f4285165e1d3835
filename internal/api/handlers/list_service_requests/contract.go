package list_service_requests

import (
	"context"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

type ServiceRequestService interface {
	ListAll(ctx context.Context, actor domain.Actor, req *models.ListRequest) (*models.ServiceRequestListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
