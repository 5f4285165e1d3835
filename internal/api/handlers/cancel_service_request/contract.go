package cancel_service_request

import (
	"context"

	cancelRequest "github.com/m04kA/SMC-TechService/internal/usecase/cancel_service_request"
)

type CancelServiceRequestUseCase interface {
	Execute(ctx context.Context, req *cancelRequest.Request) (*cancelRequest.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
