package timeslots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingMetrics struct {
	mu    sync.Mutex
	calls map[string]int
}

func (m *recordingMetrics) IncSlotOperation(operation, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[operation+"/"+result]++
}

// 2026-03-10 is a Tuesday
var today = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memory.Store, *recordingMetrics) {
	t.Helper()
	store := memory.NewStore()
	m := &recordingMetrics{}
	svc := NewService(store.TimeSlots(), store, fixedClock{now: today}, m, logger.NewNop())
	return svc, store, m
}

func createSlot(t *testing.T, svc *Service, date, start, end string, capacity int) *models.SlotResponse {
	t.Helper()
	slot, err := svc.Create(context.Background(), &models.CreateSlotRequest{
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: ptr.Ptr(capacity),
	})
	require.NoError(t, err)
	return slot
}

func TestCreate_Defaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	slot, err := svc.Create(context.Background(), &models.CreateSlotRequest{
		Date:      "2026-03-11",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-11", slot.Date)
	assert.Equal(t, "09:00", slot.StartTime)
	assert.Equal(t, 1, slot.MaxCapacity)
	assert.Equal(t, 0, slot.CurrentBookings)
	assert.True(t, slot.IsAvailable)
	assert.Equal(t, 1, slot.AvailableSpots)
}

func TestCreate_PastDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
		Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = svc.Create(context.Background(), &models.CreateSlotRequest{
		Date: "2026-03-10", StartTime: "09:00", EndTime: "10:00",
	})
	assert.NoError(t, err, "today is allowed")
}

func TestCreate_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	cases := map[string]struct {
		req   *models.CreateSlotRequest
		cause error
	}{
		"bad date":      {&models.CreateSlotRequest{Date: "10.03.2026", StartTime: "09:00", EndTime: "10:00"}, ErrInvalidFormat},
		"bad time":      {&models.CreateSlotRequest{Date: "2026-03-11", StartTime: "9am", EndTime: "10:00"}, ErrInvalidFormat},
		"start==end":    {&models.CreateSlotRequest{Date: "2026-03-11", StartTime: "10:00", EndTime: "10:00"}, ErrInvalidTimeRange},
		"start>end":     {&models.CreateSlotRequest{Date: "2026-03-11", StartTime: "11:00", EndTime: "10:00"}, ErrInvalidTimeRange},
		"zero capacity": {&models.CreateSlotRequest{Date: "2026-03-11", StartTime: "09:00", EndTime: "10:00", MaxCapacity: ptr.Ptr(0)}, ErrInvalidCapacity},
		"huge capacity": {&models.CreateSlotRequest{Date: "2026-03-11", StartTime: "09:00", EndTime: "10:00", MaxCapacity: ptr.Ptr(1000)}, ErrInvalidCapacity},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tc.cause)
		})
	}
}

func TestCreate_Conflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)

	_, err := svc.Create(context.Background(), &models.CreateSlotRequest{
		Date: "2026-03-11", StartTime: "09:00", EndTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrSlotConflict)
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 2)

	reserved, err := svc.Reserve(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reserved.CurrentBookings)

	reserved, err = svc.Reserve(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reserved.CurrentBookings)

	_, err = svc.Reserve(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrSlotFull)

	_, err = svc.Reserve(ctx, 999)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	assert.Equal(t, 2, m.calls["reserve/ok"])
	assert.Equal(t, 1, m.calls["reserve/full"])
	assert.Equal(t, 1, m.calls["reserve/not_found"])
}

func TestReserve_Unavailable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 5)

	_, err := svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(false)})
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	got, err := svc.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBookings)
}

func TestReserve_ConcurrentNeverOverbooks(t *testing.T) {
	const workers = 20
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", workers-1)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Reserve(ctx, slot.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrSlotFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, workers-1, ok)
	assert.Equal(t, 1, full)

	got, err := svc.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, workers-1, got.CurrentBookings)
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	svc, _, m := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)

	_, err := svc.Reserve(ctx, slot.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, slot.ID))
	got, err := svc.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBookings)

	// already at zero
	require.NoError(t, svc.Release(ctx, slot.ID))
	got, err = svc.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBookings)

	// missing slot
	assert.NoError(t, svc.Release(ctx, 999))

	assert.Equal(t, 1, m.calls["release/ok"])
	assert.Equal(t, 2, m.calls["release/noop"])
}

func TestReserve_JoinsCallerTransaction(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)

	errBoom := errors.New("boom")
	err := store.Do(ctx, func(ctx context.Context) error {
		if _, err := svc.Reserve(ctx, slot.ID); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := svc.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentBookings, "reservation must be rolled back with the caller")
}

func TestBulkCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)

	resp, err := svc.BulkCreate(ctx, &models.BulkCreateRequest{
		StartDate: "2026-03-10",
		EndDate:   "2026-03-16",
		TimeRanges: []models.TimeRangeRequest{
			{StartTime: "09:00", EndTime: "10:00"},
			{StartTime: "09:30", EndTime: "11:00"},
		},
		MaxCapacity:     ptr.Ptr(3),
		ExcludeWeekends: true,
	})
	require.NoError(t, err)

	// Tue..Fri and Mon = 5 days, 2 ranges each, one window already present
	assert.Equal(t, 9, resp.Created)

	list, err := svc.List(ctx, &models.ListSlotsRequest{From: ptr.Ptr("2026-03-14"), To: ptr.Ptr("2026-03-15")})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total, "weekend must be skipped")

	monday, err := svc.List(ctx, &models.ListSlotsRequest{From: ptr.Ptr("2026-03-16"), To: ptr.Ptr("2026-03-16")})
	require.NoError(t, err)
	require.Equal(t, 2, monday.Total)
	assert.Equal(t, 3, monday.Slots[0].MaxCapacity)
}

func TestBulkCreate_InvalidInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ranges := []models.TimeRangeRequest{{StartTime: "09:00", EndTime: "10:00"}}

	cases := map[string]struct {
		req   *models.BulkCreateRequest
		cause error
	}{
		"end before start": {&models.BulkCreateRequest{StartDate: "2026-03-12", EndDate: "2026-03-11", TimeRanges: ranges}, ErrInvalidPeriod},
		"too long":         {&models.BulkCreateRequest{StartDate: "2026-03-10", EndDate: "2027-06-01", TimeRanges: ranges}, ErrInvalidPeriod},
		"bad date":         {&models.BulkCreateRequest{StartDate: "2026/03/10", EndDate: "2026-03-11", TimeRanges: ranges}, ErrInvalidFormat},
		"bad range": {&models.BulkCreateRequest{StartDate: "2026-03-10", EndDate: "2026-03-11",
			TimeRanges: []models.TimeRangeRequest{{StartTime: "10:00", EndTime: "09:00"}}}, ErrInvalidTimeRange},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.BulkCreate(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tc.cause)
		})
	}
}

func TestBulkCreate_PastDaysSkippedAndEmptyRanges(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	ranges := []models.TimeRangeRequest{{StartTime: "09:00", EndTime: "10:00"}}

	resp, err := svc.BulkCreate(ctx, &models.BulkCreateRequest{StartDate: "2026-03-08", EndDate: "2026-03-11", TimeRanges: ranges})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created, "only today and tomorrow")

	past, err := svc.List(ctx, &models.ListSlotsRequest{To: ptr.Ptr("2026-03-09")})
	require.NoError(t, err)
	assert.Equal(t, 0, past.Total)

	resp, err = svc.BulkCreate(ctx, &models.BulkCreateRequest{StartDate: "2026-03-01", EndDate: "2026-03-05", TimeRanges: ranges})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created, "fully past period")

	resp, err = svc.BulkCreate(ctx, &models.BulkCreateRequest{StartDate: "2026-03-12", EndDate: "2026-03-13"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created, "no ranges")
}

func TestUpdate_CapacityFloor(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 5)

	for i := 0; i < 3; i++ {
		_, err := svc.Reserve(ctx, slot.ID)
		require.NoError(t, err)
	}

	_, err := svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{MaxCapacity: ptr.Ptr(2)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrCapacityBelowBookings)

	updated, err := svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{MaxCapacity: ptr.Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxCapacity)
	assert.Equal(t, 3, updated.CurrentBookings)
	assert.Equal(t, 0, updated.AvailableSpots)
}

func TestUpdate_PartialAndWindow(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)
	createSlot(t, svc, "2026-03-11", "10:00", "11:00", 1)

	updated, err := svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{TechnicianNotes: ptr.Ptr("bring thermal paste")})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, "10:00", updated.EndTime)
	assert.Equal(t, "bring thermal paste", *updated.TechnicianNotes)

	_, err = svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{StartTime: ptr.Ptr("10:00"), EndTime: ptr.Ptr("11:00")})
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{EndTime: ptr.Ptr("08:00")})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{Date: ptr.Ptr("2026-03-01")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = svc.Update(ctx, slot.ID, &models.UpdateSlotRequest{StartTime: ptr.Ptr("9am")})
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = svc.Update(ctx, 999, &models.UpdateSlotRequest{MaxCapacity: ptr.Ptr(2)})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDelete_Guard(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	slot := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)

	_, err := svc.Reserve(ctx, slot.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, slot.ID), ErrSlotHasBookings)

	require.NoError(t, svc.Release(ctx, slot.ID))
	require.NoError(t, svc.Delete(ctx, slot.ID))

	_, err = svc.GetByID(ctx, slot.ID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, slot.ID), ErrSlotNotFound)
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	// seeded directly: the service refuses past dates
	_, err := store.TimeSlots().Create(ctx, &domain.TimeSlot{
		Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "10:00",
		IsAvailable: true, MaxCapacity: 1,
	})
	require.NoError(t, err)

	free := createSlot(t, svc, "2026-03-11", "09:00", "10:00", 1)
	full := createSlot(t, svc, "2026-03-11", "10:00", "11:00", 1)
	disabled := createSlot(t, svc, "2026-03-12", "09:00", "10:00", 1)

	_, err = svc.Reserve(ctx, full.ID)
	require.NoError(t, err)
	_, err = svc.Update(ctx, disabled.ID, &models.UpdateSlotRequest{IsAvailable: ptr.Ptr(false)})
	require.NoError(t, err)

	resp, err := svc.ListAvailable(ctx, &models.ListSlotsRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, free.ID, resp.Slots[0].ID)

	all, err := svc.List(ctx, &models.ListSlotsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)

	_, err = svc.List(ctx, &models.ListSlotsRequest{From: ptr.Ptr("yesterday")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
