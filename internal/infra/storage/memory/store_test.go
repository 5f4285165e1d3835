package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/servicerequest"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/timeslot"
	"github.com/m04kA/SMC-TechService/pkg/ptr"
	"github.com/m04kA/SMC-TechService/pkg/types"
)

func newSlot(day int, start, end string) *domain.TimeSlot {
	return &domain.TimeSlot{
		Date:        time.Date(2026, 3, day, 15, 0, 0, 0, time.UTC),
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		IsAvailable: true,
		MaxCapacity: 1,
	}
}

func TestTimeSlots_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().TimeSlots()

	created, err := repo.Create(ctx, newSlot(10, "09:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 0, created.Date.Hour(), "date must be truncated")

	_, err = repo.Create(ctx, newSlot(10, "09:00", "10:00"))
	assert.ErrorIs(t, err, timeslot.ErrDuplicateSlot)

	inserted, err := repo.InsertIgnoreDuplicate(ctx, newSlot(10, "09:00", "10:00"))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.InsertIgnoreDuplicate(ctx, newSlot(10, "10:00", "11:00"))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestTimeSlots_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().TimeSlots()

	created, err := repo.Create(ctx, newSlot(10, "09:00", "10:00"))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.CurrentBookings = 99

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.CurrentBookings)
}

func TestTimeSlots_ListOrdered(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().TimeSlots()

	for _, s := range []*domain.TimeSlot{
		newSlot(11, "09:00", "10:00"),
		newSlot(10, "14:00", "15:00"),
		newSlot(10, "09:00", "10:00"),
	} {
		_, err := repo.Create(ctx, s)
		require.NoError(t, err)
	}

	slots, err := repo.List(ctx, domain.TimeSlotFilter{})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, types.TimeString("09:00"), slots[0].StartTime)
	assert.Equal(t, 10, slots[0].Date.Day())
	assert.Equal(t, types.TimeString("14:00"), slots[1].StartTime)
	assert.Equal(t, 11, slots[2].Date.Day())
}

func TestTimeSlots_DeleteNullsReferences(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	slot, err := store.TimeSlots().Create(ctx, newSlot(10, "09:00", "10:00"))
	require.NoError(t, err)

	req, err := store.ServiceRequests().Create(ctx, &domain.ServiceRequest{
		RequestNumber: "SR-1-001",
		TimeSlotID:    ptr.Ptr(slot.ID),
	})
	require.NoError(t, err)

	require.NoError(t, store.TimeSlots().Delete(ctx, slot.ID))
	assert.ErrorIs(t, store.TimeSlots().Delete(ctx, slot.ID), timeslot.ErrSlotNotFound)

	got, err := store.ServiceRequests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TimeSlotID)
}

func TestDo_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	slots := store.TimeSlots()

	slot, err := slots.Create(ctx, newSlot(10, "09:00", "10:00"))
	require.NoError(t, err)

	errFail := errors.New("insert failed")
	err = store.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, slots.SetCurrentBookings(ctx, slot.ID, 1))
		_, err := slots.Create(ctx, newSlot(12, "09:00", "10:00"))
		require.NoError(t, err)
		return errFail
	})
	assert.ErrorIs(t, err, errFail)

	got, err := slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBookings)

	all, err := slots.List(ctx, domain.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDo_Nested(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Do(ctx, func(ctx context.Context) error {
		return store.Do(ctx, func(ctx context.Context) error {
			_, err := store.TimeSlots().Create(ctx, newSlot(10, "09:00", "10:00"))
			return err
		})
	})
	require.NoError(t, err)
}

func TestServiceRequests_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().ServiceRequests()

	req, err := repo.Create(ctx, &domain.ServiceRequest{
		RequestNumber: "SR-1-001",
		UserID:        5,
		Status:        domain.StatusPending,
		DeviceInfo:    map[string]interface{}{"cpu": "i7"},
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.ServiceRequest{RequestNumber: "SR-1-001"})
	assert.ErrorIs(t, err, servicerequest.ErrDuplicateRequestNumber)

	require.NoError(t, repo.UpdateStatus(ctx, req.ID, domain.StatusInReview))
	require.NoError(t, repo.Complete(ctx, req.ID, ptr.Ptr(75.0), nil, time.Now()))

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, 75.0, *got.ActualCost)
	assert.NotNil(t, got.CompletedDate)
	assert.Equal(t, "i7", got.DeviceInfo["cpu"])

	_, err = repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, servicerequest.ErrRequestNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 404, domain.StatusCancelled), servicerequest.ErrRequestNotFound)

	mine, err := repo.List(ctx, domain.ServiceRequestFilter{UserID: ptr.Ptr(int64(5))})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
