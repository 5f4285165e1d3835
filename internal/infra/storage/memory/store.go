package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
)

type txKey struct{}

// Store хранилище в памяти для слотов и заявок.
// Транзакция захватывает общий мьютекс целиком и откатывается восстановлением снимка,
// поэтому чтение-изменение-запись счётчика слота атомарно относительно других транзакций.
type Store struct {
	mu sync.Mutex

	slots    map[int64]*domain.TimeSlot
	requests map[int64]*domain.ServiceRequest
	nextSlot int64
	nextReq  int64
	now      func() time.Time
}

type snapshot struct {
	slots    map[int64]*domain.TimeSlot
	requests map[int64]*domain.ServiceRequest
	nextSlot int64
	nextReq  int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		slots:    make(map[int64]*domain.TimeSlot),
		requests: make(map[int64]*domain.ServiceRequest),
		now:      time.Now,
	}
}

// TimeSlots возвращает репозиторий слотов поверх хранилища
func (s *Store) TimeSlots() *TimeSlotRepository {
	return &TimeSlotRepository{store: s}
}

// ServiceRequests возвращает репозиторий заявок поверх хранилища
func (s *Store) ServiceRequests() *ServiceRequestRepository {
	return &ServiceRequestRepository{store: s}
}

// Do выполняет fn в транзакции. Вложенный вызов выполняется в уже открытой транзакции.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// DoReadOnly выполняет fn в транзакции (изменения не запрещаются, хранилище общее)
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// lock захватывает мьютекс, если вызов выполняется вне транзакции
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*Store)
	return ok
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		slots:    make(map[int64]*domain.TimeSlot, len(s.slots)),
		requests: make(map[int64]*domain.ServiceRequest, len(s.requests)),
		nextSlot: s.nextSlot,
		nextReq:  s.nextReq,
	}
	for id, slot := range s.slots {
		snap.slots[id] = copySlot(slot)
	}
	for id, req := range s.requests {
		snap.requests[id] = copyRequest(req)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.slots = snap.slots
	s.requests = snap.requests
	s.nextSlot = snap.nextSlot
	s.nextReq = snap.nextReq
}

func copySlot(slot *domain.TimeSlot) *domain.TimeSlot {
	c := *slot
	if slot.TechnicianNotes != nil {
		notes := *slot.TechnicianNotes
		c.TechnicianNotes = &notes
	}
	return &c
}

func copyRequest(req *domain.ServiceRequest) *domain.ServiceRequest {
	c := *req
	if req.DeviceInfo != nil {
		c.DeviceInfo = make(map[string]interface{}, len(req.DeviceInfo))
		for k, v := range req.DeviceInfo {
			c.DeviceInfo[k] = v
		}
	}
	c.EstimatedCost = copyPtr(req.EstimatedCost)
	c.ActualCost = copyPtr(req.ActualCost)
	c.ScheduledDate = copyPtr(req.ScheduledDate)
	c.CompletedDate = copyPtr(req.CompletedDate)
	c.Notes = copyPtr(req.Notes)
	c.TechnicianNotes = copyPtr(req.TechnicianNotes)
	c.TimeSlotID = copyPtr(req.TimeSlotID)
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
