package servicerequests

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TechService/internal/domain"
	requestRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/servicerequest"
	slotRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
)

// Service сервис для работы с заявками на техобслуживание
type Service struct {
	requestRepo  RequestRepository
	slotRepo     SlotRepository
	userClient   UserServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(
	requestRepo RequestRepository,
	slotRepo SlotRepository,
	userClient UserServiceClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		requestRepo:  requestRepo,
		slotRepo:     slotRepo,
		userClient:   userClient,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает заявку со слотом и пользователем.
// Доступно владельцу и администратору.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.ServiceRequestResponse, error) {
	s.logger.Info("GetByID: fetching request id=%d for user=%d", id, actor.UserID)

	req, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(req) {
		s.logger.Warn("GetByID: access denied for user=%d to request id=%d", actor.UserID, id)
		return nil, ErrForbidden
	}

	return s.Describe(ctx, req), nil
}

// ListMine возвращает заявки пользователя, опционально по статусу
func (s *Service) ListMine(ctx context.Context, actor domain.Actor, status *string) (*models.ServiceRequestListResponse, error) {
	userID := actor.UserID
	return s.list(ctx, "ListMine", &models.ListRequest{UserID: &userID, Status: status})
}

// ListAll возвращает все заявки с фильтрацией. Только для администратора.
func (s *Service) ListAll(ctx context.Context, actor domain.Actor, req *models.ListRequest) (*models.ServiceRequestListResponse, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("ListAll: user=%d is not an administrator", actor.UserID)
		return nil, ErrForbidden
	}
	return s.list(ctx, "ListAll", req)
}

// Update обновляет заявку владельцем или администратором.
// Привилегированные поля от не-администратора молча отбрасываются.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRequest, actor domain.Actor) (*models.ServiceRequestResponse, error) {
	s.logger.Info("Update: updating request id=%d by user=%d (role=%s)", id, actor.UserID, actor.Role)

	if req.HasPrivilegedFields() && !actor.IsAdmin() {
		s.logger.Info("Update: dropping privileged fields from user=%d for request id=%d", actor.UserID, id)
	}

	update, err := req.ForActor(actor).ToDomainUpdate()
	if err != nil {
		s.logger.Warn("Update: invalid input for request id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result *domain.ServiceRequest
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, "Update", id)
		if err != nil {
			return err
		}

		if !actor.CanAccess(current) {
			s.logger.Warn("Update: access denied for user=%d to request id=%d", actor.UserID, id)
			return ErrForbidden
		}

		if current.IsTerminal() {
			s.logger.Warn("Update: request id=%d is %s", id, current.Status)
			return ErrRequestFinalized
		}

		effective := update.ForActor(actor)

		if effective.Status != nil && effective.Status.IsTerminal() {
			s.logger.Warn("Update: status %s must be set via complete/cancel, request id=%d", *effective.Status, id)
			return fmt.Errorf("%w: status %s is set by the complete or cancel operation", ErrInvalidInput, *effective.Status)
		}

		if effective.IsEmpty() {
			result = current
			return nil
		}

		effective.ApplyTo(current)
		result, err = s.requestRepo.Update(ctx, current)
		if err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return ErrRequestNotFound
			}
			s.logger.Error("Update: repository error for request id=%d: %v", id, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: request id=%d updated, status=%s", id, result.Status)
	return s.Describe(ctx, result), nil
}

// Complete завершает заявку. Только для администратора, слот не освобождается.
func (s *Service) Complete(ctx context.Context, id int64, req *models.CompleteRequest, actor domain.Actor) (*models.ServiceRequestResponse, error) {
	s.logger.Info("Complete: completing request id=%d by user=%d", id, actor.UserID)

	if !actor.IsAdmin() {
		s.logger.Warn("Complete: user=%d is not an administrator", actor.UserID)
		return nil, ErrForbidden
	}

	if req.ActualCost != nil && *req.ActualCost < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, models.ErrNegativeCost)
	}
	if req.TechnicianNotes != nil && len(*req.TechnicianNotes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: technicianNotes exceeds %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	var completed *domain.ServiceRequest
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, "Complete", id)
		if err != nil {
			return err
		}

		if !current.CanBeCompleted() {
			s.logger.Warn("Complete: request id=%d is %s", id, current.Status)
			return ErrCannotComplete
		}

		now := s.timeProvider.Now()
		if err := s.requestRepo.Complete(ctx, id, req.ActualCost, req.TechnicianNotes, now); err != nil {
			if errors.Is(err, requestRepo.ErrRequestNotFound) {
				return ErrRequestNotFound
			}
			s.logger.Error("Complete: repository error for request id=%d: %v", id, err)
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}

		completed, err = s.get(ctx, "Complete", id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Complete: request id=%d completed", id)
	return s.Describe(ctx, completed), nil
}

// Describe собирает ответ: заявка, её слот и профиль пользователя.
// Ошибки получения слота и пользователя не прерывают ответ.
func (s *Service) Describe(ctx context.Context, req *domain.ServiceRequest) *models.ServiceRequestResponse {
	var slot *domain.TimeSlot
	if req.HasSlot() {
		found, err := s.slotRepo.GetByID(ctx, *req.TimeSlotID)
		switch {
		case err == nil:
			slot = found
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			s.logger.Warn("Describe: slot id=%d of request id=%d not found", *req.TimeSlotID, req.ID)
		default:
			s.logger.Error("Describe: failed to get slot id=%d: %v", *req.TimeSlotID, err)
		}
	}

	var user *domain.User
	profile, err := s.userClient.GetUserWithGracefulDegradation(ctx, req.UserID)
	if err == nil {
		user = profile.ToDomain()
	}

	return models.FromDomainRequest(req, slot, user)
}

func (s *Service) list(ctx context.Context, op string, req *models.ListRequest) (*models.ServiceRequestListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("%s: invalid filter: %v", op, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reqs, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: fetched %d requests", op, len(reqs))
	return models.FromDomainRequestList(reqs), nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.ServiceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestRepo.ErrRequestNotFound) {
			s.logger.Warn("%s: request id=%d not found", op, id)
			return nil, ErrRequestNotFound
		}
		s.logger.Error("%s: repository error for request id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return req, nil
}
