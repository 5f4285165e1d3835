package timeslots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	slotRepo "github.com/m04kA/SMC-TechService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

const (
	opReserve = "reserve"
	opRelease = "release"

	resultOK          = "ok"
	resultNotFound    = "not_found"
	resultUnavailable = "unavailable"
	resultFull        = "full"
	resultNoop        = "noop"
	resultError       = "error"
)

// Service реестр слотов: вместимость, занятость и администрирование
type Service struct {
	slotRepo     SlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	metrics      Metrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов.
// metrics может быть nil.
func NewService(
	slotRepo SlotRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	metrics Metrics,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		slotRepo:     slotRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
	}
}

// Reserve занимает одно место в слоте.
// Выполняется в транзакции из контекста (или в собственной), строка слота блокируется.
func (s *Service) Reserve(ctx context.Context, slotID int64) (*domain.TimeSlot, error) {
	var reserved *domain.TimeSlot

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		slot, err := s.getLocked(ctx, "Reserve", slotID)
		if err != nil {
			return err
		}

		if !slot.IsAvailable {
			s.logger.Warn("Reserve: slot id=%d is disabled", slotID)
			return ErrSlotUnavailable
		}
		if slot.IsFull() {
			s.logger.Warn("Reserve: slot id=%d is full (%d/%d)", slotID, slot.CurrentBookings, slot.MaxCapacity)
			return ErrSlotFull
		}

		slot.CurrentBookings++
		if err := s.slotRepo.SetCurrentBookings(ctx, slot.ID, slot.CurrentBookings); err != nil {
			s.logger.Error("Reserve: failed to update bookings for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: Reserve - update bookings: %v", ErrInternal, err)
		}

		reserved = slot
		return nil
	})

	s.metrics.IncSlotOperation(opReserve, reserveResult(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reserve: slot id=%d reserved (%d/%d)", slotID, reserved.CurrentBookings, reserved.MaxCapacity)
	return reserved, nil
}

// Release освобождает одно место в слоте.
// Отсутствующий слот и нулевая занятость не являются ошибкой.
func (s *Service) Release(ctx context.Context, slotID int64) error {
	result := resultOK

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		slot, err := s.slotRepo.GetByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				s.logger.Info("Release: slot id=%d not found, nothing to release", slotID)
				result = resultNoop
				return nil
			}
			s.logger.Error("Release: repository error for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: Release - get slot: %v", ErrInternal, err)
		}

		if !slot.HasBookings() {
			s.logger.Info("Release: slot id=%d has no bookings", slotID)
			result = resultNoop
			return nil
		}

		if err := s.slotRepo.SetCurrentBookings(ctx, slot.ID, slot.CurrentBookings-1); err != nil {
			s.logger.Error("Release: failed to update bookings for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: Release - update bookings: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		result = resultError
	}

	s.metrics.IncSlotOperation(opRelease, result)
	return err
}

// Create создает один слот
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Create: creating slot date=%s %s-%s", req.Date, req.StartTime, req.EndTime)

	slot, err := s.slotFromCreateRequest(req)
	if err != nil {
		s.logger.Warn("Create: invalid input: %v", err)
		return nil, err
	}

	exists, err := s.slotRepo.ExistsByWindow(ctx, slot.Date, slot.StartTime, slot.EndTime, 0)
	if err != nil {
		s.logger.Error("Create: repository error on window check: %v", err)
		return nil, fmt.Errorf("%w: Create - window check: %v", ErrInternal, err)
	}
	if exists {
		s.logger.Warn("Create: slot %s %s-%s already exists", req.Date, req.StartTime, req.EndTime)
		return nil, ErrSlotConflict
	}

	created, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, slotRepo.ErrDuplicateSlot) {
			s.logger.Warn("Create: slot %s %s-%s created concurrently", req.Date, req.StartTime, req.EndTime)
			return nil, ErrSlotConflict
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: slot id=%d created", created.ID)
	return models.FromDomainSlot(created), nil
}

// BulkCreate создает слоты на каждый день периода для каждого временного диапазона.
// Уже существующие окна пропускаются. Возвращает количество созданных слотов.
func (s *Service) BulkCreate(ctx context.Context, req *models.BulkCreateRequest) (*models.BulkCreateResponse, error) {
	s.logger.Info("BulkCreate: period %s..%s, ranges=%d, excludeWeekends=%t",
		req.StartDate, req.EndDate, len(req.TimeRanges), req.ExcludeWeekends)

	start, end, ranges, err := s.validateBulkRequest(req)
	if err != nil {
		s.logger.Warn("BulkCreate: invalid input: %v", err)
		return nil, err
	}

	capacity := domain.DefaultMaxCapacity
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}

	created := 0
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			if req.ExcludeWeekends && domain.IsWeekend(day) {
				continue
			}
			for _, r := range ranges {
				inserted, err := s.slotRepo.InsertIgnoreDuplicate(ctx, &domain.TimeSlot{
					Date:        day,
					StartTime:   r.Start,
					EndTime:     r.End,
					IsAvailable: true,
					MaxCapacity: capacity,
				})
				if err != nil {
					return fmt.Errorf("%w: BulkCreate - insert %s %s-%s: %v",
						ErrInternal, day.Format(domain.DateFormat), r.Start, r.End, err)
				}
				if inserted {
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("BulkCreate: %v", err)
		return nil, err
	}

	s.logger.Info("BulkCreate: created %d slots", created)
	return &models.BulkCreateResponse{Created: created}, nil
}

// Update частично обновляет слот. Вместимость не может стать меньше текущей занятости.
func (s *Service) Update(ctx context.Context, slotID int64, req *models.UpdateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Update: updating slot id=%d", slotID)

	patch, err := req.ToDomainPatch()
	if err != nil {
		s.logger.Warn("Update: invalid input for slot id=%d: %v", slotID, err)
		return nil, invalidf(ErrInvalidFormat, "%v", err)
	}

	var updated *domain.TimeSlot
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		slot, err := s.getLocked(ctx, "Update", slotID)
		if err != nil {
			return err
		}

		next := patch.ApplyTo(*slot)
		if err := s.validateUpdate(slot, &next, patch); err != nil {
			s.logger.Warn("Update: invalid input for slot id=%d: %v", slotID, err)
			return err
		}

		if patch.ChangesWindow() && !next.SameWindow(slot) {
			exists, err := s.slotRepo.ExistsByWindow(ctx, next.Date, next.StartTime, next.EndTime, slot.ID)
			if err != nil {
				return fmt.Errorf("%w: Update - window check: %v", ErrInternal, err)
			}
			if exists {
				s.logger.Warn("Update: window of slot id=%d collides with another slot", slotID)
				return ErrSlotConflict
			}
		}

		updated, err = s.slotRepo.Update(ctx, &next)
		if err != nil {
			if errors.Is(err, slotRepo.ErrDuplicateSlot) {
				return ErrSlotConflict
			}
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("Update: slot id=%d: %v", slotID, err)
		}
		return nil, err
	}

	s.logger.Info("Update: slot id=%d updated", slotID)
	return models.FromDomainSlot(updated), nil
}

// Delete удаляет слот без активных бронирований
func (s *Service) Delete(ctx context.Context, slotID int64) error {
	s.logger.Info("Delete: deleting slot id=%d", slotID)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		slot, err := s.getLocked(ctx, "Delete", slotID)
		if err != nil {
			return err
		}

		if slot.HasBookings() {
			s.logger.Warn("Delete: slot id=%d has %d bookings", slotID, slot.CurrentBookings)
			return ErrSlotHasBookings
		}

		if err := s.slotRepo.Delete(ctx, slotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			if errors.Is(err, slotRepo.ErrSlotReferenced) {
				return ErrSlotHasBookings
			}
			s.logger.Error("Delete: repository error for slot id=%d: %v", slotID, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Delete: slot id=%d deleted", slotID)
	return nil
}

// GetByID получает слот по ID
func (s *Service) GetByID(ctx context.Context, slotID int64) (*domain.TimeSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("GetByID: repository error for slot id=%d: %v", slotID, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return slot, nil
}

// List возвращает слоты с фильтрацией по периоду и доступности
func (s *Service) List(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.list(ctx, "List", filter)
}

// ListAvailable возвращает слоты, которые можно забронировать.
// Без нижней границы период начинается с сегодняшнего дня.
func (s *Service) ListAvailable(ctx context.Context, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListAvailable: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if filter.From == nil {
		today := s.today()
		filter.From = &today
	}
	filter.IsAvailable = nil
	filter.OnlyBookable = true

	return s.list(ctx, "ListAvailable", filter)
}

func (s *Service) list(ctx context.Context, op string, filter domain.TimeSlotFilter) (*models.SlotListResponse, error) {
	slots, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: fetched %d slots", op, len(slots))
	return models.FromDomainSlotList(slots), nil
}

// getLocked читает слот; внутри транзакции строка блокируется репозиторием
func (s *Service) getLocked(ctx context.Context, op string, slotID int64) (*domain.TimeSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found", op, slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot id=%d: %v", op, slotID, err)
		return nil, fmt.Errorf("%w: %s - get slot: %v", ErrInternal, op, err)
	}
	return slot, nil
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.timeProvider.Now())
}

func reserveResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrSlotNotFound):
		return resultNotFound
	case errors.Is(err, ErrSlotUnavailable):
		return resultUnavailable
	case errors.Is(err, ErrSlotFull):
		return resultFull
	default:
		return resultError
	}
}
