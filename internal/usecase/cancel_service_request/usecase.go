package cancel_service_request

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

var tracer = tracing.Tracer("usecase/cancel_service_request")

// UseCase use case для отмены заявки с освобождением слота
type UseCase struct {
	ledger      SlotLedger
	requestRepo RequestRepository
	presenter   Presenter
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledger SlotLedger,
	requestRepo RequestRepository,
	presenter Presenter,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledger:      ledger,
		requestRepo: requestRepo,
		presenter:   presenter,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute отменяет заявку. Освобождение слота и смена статуса выполняются в одной транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "CancelServiceRequest")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("service_request.id", req.RequestID),
		attribute.Int64("user.id", req.Actor.UserID),
	)

	uc.logger.Info("CancelServiceRequest: request id=%d by user=%d (role=%s)", req.RequestID, req.Actor.UserID, req.Actor.Role)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelServiceRequest: validation failed: %v", err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	var cancelled *domain.ServiceRequest
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Читаем заявку с блокировкой строки
		current, err := uc.getRequest(txCtx, req.RequestID)
		if err != nil {
			return err
		}

		// 2. Права и статус
		if err := checkCancellable(current, req.Actor); err != nil {
			uc.logger.Warn("CancelServiceRequest: request id=%d: %v", req.RequestID, err)
			return err
		}

		// 3. Сначала освобождаем слот, затем меняем статус
		if current.HasSlot() {
			if err := uc.ledger.Release(txCtx, *current.TimeSlotID); err != nil {
				uc.logger.Error("CancelServiceRequest: release slot id=%d failed: %v", *current.TimeSlotID, err)
				return err
			}
		}

		if err := uc.requestRepo.UpdateStatus(txCtx, current.ID, domain.StatusCancelled); err != nil {
			uc.logger.Error("CancelServiceRequest: failed to update status of request id=%d: %v", current.ID, err)
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		cancelled, err = uc.getRequest(txCtx, current.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cancel failed")
		return nil, err
	}

	uc.logger.Info("CancelServiceRequest: request id=%d cancelled", cancelled.ID)
	return uc.presenter.Describe(ctx, cancelled), nil
}

func (uc *UseCase) getRequest(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	current, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			uc.logger.Warn("CancelServiceRequest: request id=%d not found", id)
			return nil, ErrRequestNotFound
		}
		uc.logger.Error("CancelServiceRequest: failed to get request id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get request: %v", ErrInternal, err)
	}
	return current, nil
}
