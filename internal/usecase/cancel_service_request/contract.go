package cancel_service_request

import (
	"context"

	"github.com/m04kA/SMC-TechService/internal/domain"
	srModels "github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

// SlotLedger освобождение места в слоте
type SlotLedger interface {
	Release(ctx context.Context, slotID int64) error
}

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) error
}

// Presenter собирает ответ по заявке (слот, пользователь)
type Presenter interface {
	Describe(ctx context.Context, req *domain.ServiceRequest) *srModels.ServiceRequestResponse
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
