package timeslots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/pkg/types"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error)
	InsertIgnoreDuplicate(ctx context.Context, slot *domain.TimeSlot) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	ExistsByWindow(ctx context.Context, date time.Time, start, end types.TimeString, excludeID int64) (bool, error)
	Update(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error)
	SetCurrentBookings(ctx context.Context, id int64, bookings int) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.TimeSlotFilter) ([]*domain.TimeSlot, error)
}

// TransactionManager интерфейс для управления транзакциями.
// Вложенный Do выполняется в транзакции из контекста.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики операций со слотами
type Metrics interface {
	IncSlotOperation(operation, result string)
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

type noopMetrics struct{}

func (noopMetrics) IncSlotOperation(string, string) {}
