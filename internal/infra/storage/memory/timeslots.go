package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-TechService/pkg/types"
)

// TimeSlotRepository репозиторий слотов в памяти.
// Возвращает те же ошибки, что и timeslot.Repository.
type TimeSlotRepository struct {
	store *Store
}

func (r *TimeSlotRepository) Create(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	defer r.store.lock(ctx)()

	if r.windowTaken(slot.Date, slot.StartTime, slot.EndTime, 0) {
		return nil, timeslot.ErrDuplicateSlot
	}

	r.insert(slot)
	return slot, nil
}

func (r *TimeSlotRepository) InsertIgnoreDuplicate(ctx context.Context, slot *domain.TimeSlot) (bool, error) {
	defer r.store.lock(ctx)()

	if r.windowTaken(slot.Date, slot.StartTime, slot.EndTime, 0) {
		return false, nil
	}

	r.insert(slot)
	return true, nil
}

func (r *TimeSlotRepository) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	defer r.store.lock(ctx)()

	slot, ok := r.store.slots[id]
	if !ok {
		return nil, timeslot.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (r *TimeSlotRepository) ExistsByWindow(ctx context.Context, date time.Time, start, end types.TimeString, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	return r.windowTaken(date, start, end, excludeID), nil
}

func (r *TimeSlotRepository) Update(ctx context.Context, slot *domain.TimeSlot) (*domain.TimeSlot, error) {
	defer r.store.lock(ctx)()

	stored, ok := r.store.slots[slot.ID]
	if !ok {
		return nil, timeslot.ErrSlotNotFound
	}
	if r.windowTaken(slot.Date, slot.StartTime, slot.EndTime, slot.ID) {
		return nil, timeslot.ErrDuplicateSlot
	}

	updated := copySlot(slot)
	updated.Date = domain.TruncateToDay(slot.Date)
	updated.CurrentBookings = stored.CurrentBookings
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.store.now()
	r.store.slots[slot.ID] = updated

	slot.UpdatedAt = updated.UpdatedAt
	return slot, nil
}

func (r *TimeSlotRepository) SetCurrentBookings(ctx context.Context, id int64, bookings int) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.slots[id]
	if !ok {
		return timeslot.ErrSlotNotFound
	}
	stored.CurrentBookings = bookings
	stored.UpdatedAt = r.store.now()
	return nil
}

// Delete удаляет слот и обнуляет ссылки на него в заявках (ON DELETE SET NULL)
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.slots[id]; !ok {
		return timeslot.ErrSlotNotFound
	}
	delete(r.store.slots, id)

	for _, req := range r.store.requests {
		if req.TimeSlotID != nil && *req.TimeSlotID == id {
			req.TimeSlotID = nil
		}
	}
	return nil
}

func (r *TimeSlotRepository) List(ctx context.Context, filter domain.TimeSlotFilter) ([]*domain.TimeSlot, error) {
	defer r.store.lock(ctx)()

	slots := make([]*domain.TimeSlot, 0)
	for _, slot := range r.store.slots {
		if filter.Matches(slot) {
			slots = append(slots, copySlot(slot))
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime.IsBefore(slots[j].StartTime)
		}
		return slots[i].ID < slots[j].ID
	})

	return slots, nil
}

func (r *TimeSlotRepository) insert(slot *domain.TimeSlot) {
	r.store.nextSlot++
	now := r.store.now()

	slot.ID = r.store.nextSlot
	slot.Date = domain.TruncateToDay(slot.Date)
	slot.CreatedAt = now
	slot.UpdatedAt = now
	r.store.slots[slot.ID] = copySlot(slot)
}

func (r *TimeSlotRepository) windowTaken(date time.Time, start, end types.TimeString, excludeID int64) bool {
	for id, slot := range r.store.slots {
		if id == excludeID {
			continue
		}
		if domain.SameDay(slot.Date, date) && slot.StartTime == start && slot.EndTime == end {
			return true
		}
	}
	return false
}
