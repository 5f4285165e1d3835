package create_service_request

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TechService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	slotModels "github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqRand struct{ values []int }

func (r *seqRand) Intn(int) int {
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v
}

type offlineUsers struct{}

func (offlineUsers) GetUserWithGracefulDegradation(context.Context, int64) (*userservice.User, error) {
	return nil, userservice.ErrServiceDegraded
}

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	requests *memory.ServiceRequestRepository
	ledger   *timeslots.Service
	rnd      *seqRand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	requests := store.ServiceRequests()
	clock := fixedClock{now: now}
	log := logger.NewNop()

	ledger := timeslots.NewService(store.TimeSlots(), store, clock, nil, log)
	presenter := servicerequests.NewService(requests, store.TimeSlots(), offlineUsers{}, store, clock, log)
	rnd := &seqRand{values: []int{7}}

	return &fixture{
		uc:       NewUseCase(ledger, requests, presenter, store, clock, rnd, log),
		store:    store,
		requests: requests,
		ledger:   ledger,
		rnd:      rnd,
	}
}

func (f *fixture) slot(t *testing.T, capacity int) int64 {
	t.Helper()
	slot, err := f.ledger.Create(context.Background(), &slotModels.CreateSlotRequest{
		Date: "2026-03-11", StartTime: "09:00", EndTime: "10:00", MaxCapacity: ptr.Ptr(capacity),
	})
	require.NoError(t, err)
	return slot.ID
}

func (f *fixture) bookings(t *testing.T, slotID int64) int {
	t.Helper()
	slot, err := f.ledger.GetByID(context.Background(), slotID)
	require.NoError(t, err)
	return slot.CurrentBookings
}

func request(slotID int64) *Request {
	return &Request{
		UserID:      5,
		ServiceType: "repair",
		Description: "PC does not boot after BIOS update",
		DeviceInfo:  map[string]interface{}{"motherboard": "B650"},
		TimeSlotID:  ptr.Ptr(slotID),
	}
}

func TestExecute_ReservesSlot(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, 1)

	resp, err := f.uc.Execute(context.Background(), request(slotID))
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "medium", resp.Priority)
	assert.Equal(t, "SR-1773151200000-007", resp.RequestNumber)
	require.NotNil(t, resp.ScheduledDate)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), *resp.ScheduledDate)
	require.NotNil(t, resp.TimeSlot)
	assert.Equal(t, 1, resp.TimeSlot.CurrentBookings)
	assert.Equal(t, int64(5), resp.User.ID, "degraded user service still yields the owner id")
	assert.Equal(t, "B650", resp.DeviceInfo["motherboard"])

	assert.Equal(t, 1, f.bookings(t, slotID))
}

func TestExecute_SlotFull(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, 1)
	f.rnd.values = []int{1, 2}

	_, err := f.uc.Execute(context.Background(), request(slotID))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(slotID))
	assert.ErrorIs(t, err, timeslots.ErrSlotFull)
	assert.Equal(t, 1, f.bookings(t, slotID))
}

func TestExecute_LedgerErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	slotID := f.slot(t, 1)

	_, err := f.uc.Execute(ctx, request(999))
	assert.ErrorIs(t, err, timeslots.ErrSlotNotFound)

	_, err = f.ledger.Update(ctx, slotID, &slotModels.UpdateSlotRequest{IsAvailable: ptr.Ptr(false)})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request(slotID))
	assert.ErrorIs(t, err, timeslots.ErrSlotUnavailable)
}

func TestExecute_PersistFailureRollsBackReservation(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, 2)
	f.requests.FailNextCreates(errors.New("connection reset"))

	_, err := f.uc.Execute(context.Background(), request(slotID))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 0, f.bookings(t, slotID), "reservation must not outlive a failed insert")

	f.requests.FailNextCreates(nil)
	_, err = f.uc.Execute(context.Background(), request(slotID))
	require.NoError(t, err)
	assert.Equal(t, 1, f.bookings(t, slotID))
}

func TestExecute_RequestNumberCollision(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, 5)

	// 7 is used by the first request, the retry picks 8
	f.rnd.values = []int{7, 7, 8}
	_, err := f.uc.Execute(context.Background(), request(slotID))
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), request(slotID))
	require.NoError(t, err)
	assert.Equal(t, "SR-1773151200000-008", resp.RequestNumber)
	assert.Equal(t, 2, f.bookings(t, slotID))

	// every attempt collides
	f.rnd.values = []int{7}
	_, err = f.uc.Execute(context.Background(), request(slotID))
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 2, f.bookings(t, slotID))
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t)
	slotID := f.slot(t, 1)

	cases := map[string]struct {
		mutate func(r *Request)
		cause  error
	}{
		"missing slot":      {func(r *Request) { r.TimeSlotID = nil }, ErrTimeSlotRequired},
		"bad service type":  {func(r *Request) { r.ServiceType = "cleaning" }, ErrInvalidServiceType},
		"bad priority":      {func(r *Request) { r.Priority = ptr.Ptr("critical") }, ErrInvalidPriority},
		"empty description": {func(r *Request) { r.Description = "   " }, ErrDescriptionRequired},
		"long description":  {func(r *Request) { r.Description = strings.Repeat("ы", domain.MaxDescriptionLength+1) }, ErrDescriptionTooLong},
		"missing user":      {func(r *Request) { r.UserID = 0 }, ErrInvalidInput},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := request(slotID)
			tc.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, tc.cause)
		})
	}

	assert.Equal(t, 0, f.bookings(t, slotID))
}

func TestExecute_CustomPriority(t *testing.T) {
	f := newFixture(t)
	req := request(f.slot(t, 1))
	req.Priority = ptr.Ptr(string(domain.PriorityUrgent))

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "urgent", resp.Priority)
}
