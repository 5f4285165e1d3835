package create_service_request

import (
	"context"

	createRequest "github.com/m04kA/SMC-TechService/internal/usecase/create_service_request"
)

type CreateServiceRequestUseCase interface {
	Execute(ctx context.Context, req *createRequest.Request) (*createRequest.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
