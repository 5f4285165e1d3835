package create_service_request

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-TechService/internal/domain"
	requestRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/servicerequest"
	"github.com/m04kA/SMC-TechService/pkg/tracing"
)

// maxNumberAttempts сколько раз повторяется транзакция при совпадении номера заявки
const maxNumberAttempts = 3

var tracer = tracing.Tracer("usecase/create_service_request")

// UseCase use case для создания заявки с резервированием слота
type UseCase struct {
	ledger       SlotLedger
	requestRepo  RequestRepository
	presenter    Presenter
	txManager    TransactionManager
	timeProvider TimeProvider
	random       domain.RandomSource
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledger SlotLedger,
	requestRepo RequestRepository,
	presenter Presenter,
	txManager TransactionManager,
	timeProvider TimeProvider,
	random domain.RandomSource,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledger:       ledger,
		requestRepo:  requestRepo,
		presenter:    presenter,
		txManager:    txManager,
		timeProvider: timeProvider,
		random:       random,
		logger:       logger,
	}
}

// Execute создает заявку. Резервирование слота и запись заявки выполняются в одной транзакции:
// при любой ошибке откатываются оба изменения. Ошибки реестра слотов возвращаются без изменений.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "CreateServiceRequest")
	defer span.End()

	uc.logger.Info("CreateServiceRequest: user=%d, type=%s, slot=%v", req.UserID, req.ServiceType, req.TimeSlotID)

	// 1. Валидация входных данных
	serviceType, priority, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateServiceRequest: validation failed: %v", err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("user.id", req.UserID),
		attribute.Int64("time_slot.id", *req.TimeSlotID),
	)

	// 2. Резерв + запись заявки в одной транзакции
	var created *domain.ServiceRequest
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		created, err = uc.createInTx(ctx, req, serviceType, priority)
		if err == nil || !errors.Is(err, requestRepo.ErrDuplicateRequestNumber) {
			break
		}
		uc.logger.Warn("CreateServiceRequest: request number collision, attempt %d/%d", attempt, maxNumberAttempts)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		if errors.Is(err, requestRepo.ErrDuplicateRequestNumber) {
			uc.logger.Error("CreateServiceRequest: could not generate unique request number: %v", err)
			return nil, fmt.Errorf("%w: request number collision: %v", ErrInternal, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("service_request.number", created.RequestNumber))
	uc.logger.Info("CreateServiceRequest: request id=%d (%s) created for slot id=%d",
		created.ID, created.RequestNumber, *created.TimeSlotID)

	// 3. Ответ со слотом и пользователем
	return uc.presenter.Describe(ctx, created), nil
}

func (uc *UseCase) createInTx(
	ctx context.Context,
	req *Request,
	serviceType domain.ServiceType,
	priority domain.Priority,
) (*domain.ServiceRequest, error) {
	var created *domain.ServiceRequest

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Занимаем место в слоте (строка блокируется до конца транзакции)
		slot, err := uc.ledger.Reserve(txCtx, *req.TimeSlotID)
		if err != nil {
			uc.logger.Warn("CreateServiceRequest: reserve slot id=%d failed: %v", *req.TimeSlotID, err)
			return err
		}

		// 2.2. Дата визита = дата слота + время начала
		scheduled, err := slot.ScheduledAt()
		if err != nil {
			return fmt.Errorf("%w: invalid slot start time %q: %v", ErrInternal, slot.StartTime, err)
		}

		// 2.3. Записываем заявку
		slotID := slot.ID
		created, err = uc.requestRepo.Create(txCtx, &domain.ServiceRequest{
			RequestNumber: domain.GenerateRequestNumber(uc.timeProvider.Now(), uc.random),
			UserID:        req.UserID,
			ServiceType:   serviceType,
			Status:        domain.StatusPending,
			Priority:      priority,
			Description:   req.Description,
			DeviceInfo:    req.DeviceInfo,
			ScheduledDate: &scheduled,
			TimeSlotID:    &slotID,
		})
		if err != nil {
			if errors.Is(err, requestRepo.ErrDuplicateRequestNumber) {
				return err
			}
			uc.logger.Error("CreateServiceRequest: failed to persist request: %v", err)
			return fmt.Errorf("%w: failed to persist request: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
