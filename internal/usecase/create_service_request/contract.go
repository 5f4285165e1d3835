package create_service_request

import (
	"context"
	"math/rand"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	srModels "github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

// SlotLedger резервирование места в слоте
type SlotLedger interface {
	Reserve(ctx context.Context, slotID int64) (*domain.TimeSlot, error)
}

// RequestRepository интерфейс репозитория заявок
type RequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error)
}

// Presenter собирает ответ по заявке (слот, пользователь)
type Presenter interface {
	Describe(ctx context.Context, req *domain.ServiceRequest) *srModels.ServiceRequestResponse
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// GlobalRand источник случайных чисел для номеров заявок, безопасен для конкурентного использования
type GlobalRand struct{}

// Intn возвращает число в [0, n)
func (GlobalRand) Intn(n int) int {
	return rand.Intn(n)
}
