package servicerequests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TechService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests/models"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/ptr"
)

type userClientMock struct {
	mock.Mock
}

func (m *userClientMock) GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*userservice.User)
	return user, args.Error(1)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	now      = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	owner    = domain.Actor{UserID: 5, Role: domain.RoleCustomer}
	stranger = domain.Actor{UserID: 6, Role: domain.RoleCustomer}
	admin    = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
)

type fixture struct {
	svc   *Service
	store *memory.Store
	users *userClientMock
	slot  *domain.TimeSlot
	req   *domain.ServiceRequest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	slot, err := store.TimeSlots().Create(ctx, &domain.TimeSlot{
		Date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "10:00",
		IsAvailable: true, MaxCapacity: 1, CurrentBookings: 1,
	})
	require.NoError(t, err)

	req, err := store.ServiceRequests().Create(ctx, &domain.ServiceRequest{
		RequestNumber: "SR-1-001",
		UserID:        owner.UserID,
		ServiceType:   domain.ServiceTypeRepair,
		Status:        domain.StatusPending,
		Priority:      domain.PriorityMedium,
		Description:   "GPU fans are noisy",
		TimeSlotID:    ptr.Ptr(slot.ID),
	})
	require.NoError(t, err)

	users := &userClientMock{}
	users.On("GetUserWithGracefulDegradation", mock.Anything, owner.UserID).
		Return(&userservice.User{ID: owner.UserID, FirstName: "Oleg", LastName: "Ivanov"}, nil).Maybe()

	svc := NewService(store.ServiceRequests(), store.TimeSlots(), users, store, fixedClock{now: now}, logger.NewNop())
	return &fixture{svc: svc, store: store, users: users, slot: slot, req: req}
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.GetByID(ctx, f.req.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Oleg Ivanov", resp.User.FullName)
	require.NotNil(t, resp.TimeSlot)
	assert.Equal(t, f.slot.ID, resp.TimeSlot.ID)

	_, err = f.svc.GetByID(ctx, f.req.ID, admin)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, f.req.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetByID(ctx, 999, admin)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestDescribe_UserServiceDegraded(t *testing.T) {
	store := memory.NewStore()
	users := &userClientMock{}
	users.On("GetUserWithGracefulDegradation", mock.Anything, int64(5)).
		Return(nil, userservice.ErrServiceDegraded)
	svc := NewService(store.ServiceRequests(), store.TimeSlots(), users, store, fixedClock{now: now}, logger.NewNop())

	resp := svc.Describe(context.Background(), &domain.ServiceRequest{ID: 1, UserID: 5, TimeSlotID: ptr.Ptr(int64(42))})

	assert.Equal(t, int64(5), resp.User.ID)
	assert.Empty(t, resp.User.FullName)
	assert.Nil(t, resp.TimeSlot, "missing slot is omitted")
	users.AssertExpectations(t)
}

func TestUpdate_OwnerPrivilegedFieldsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{
		Status:        ptr.Ptr("approved"),
		Priority:      ptr.Ptr("urgent"),
		EstimatedCost: ptr.Ptr(500.0),
		Notes:         ptr.Ptr("call before arrival"),
	}, owner)
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "medium", resp.Priority)
	assert.Nil(t, resp.EstimatedCost)
	assert.Equal(t, "call before arrival", *resp.Notes)
}

func TestUpdate_OwnerMalformedPrivilegedFieldsIgnored(t *testing.T) {
	cases := map[string]*models.UpdateRequest{
		"status":   {Status: ptr.Ptr("bogus"), Notes: ptr.Ptr("hi")},
		"priority": {Priority: ptr.Ptr("critical"), Notes: ptr.Ptr("hi")},
		"cost":     {EstimatedCost: ptr.Ptr(-5.0), Notes: ptr.Ptr("hi")},
	}

	for name, update := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			resp, err := f.svc.Update(context.Background(), f.req.ID, update, owner)
			require.NoError(t, err)

			assert.Equal(t, "pending", resp.Status)
			assert.Equal(t, "medium", resp.Priority)
			assert.Nil(t, resp.EstimatedCost)
			require.NotNil(t, resp.Notes)
			assert.Equal(t, "hi", *resp.Notes)
		})
	}
}

func TestUpdate_OnlyPrivilegedFromOwnerIsNoop(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Update(context.Background(), f.req.ID, &models.UpdateRequest{Status: ptr.Ptr("approved")}, owner)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestUpdate_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	scheduled := time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC)

	resp, err := f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{
		Status:        ptr.Ptr("in_review"),
		Priority:      ptr.Ptr("high"),
		EstimatedCost: ptr.Ptr(120.5),
		ScheduledDate: &scheduled,
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, "in_review", resp.Status)
	assert.Equal(t, "high", resp.Priority)
	assert.Equal(t, 120.5, *resp.EstimatedCost)
	assert.Equal(t, scheduled, *resp.ScheduledDate)

	stored, err := f.store.ServiceRequests().GetByID(ctx, f.req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, stored.Status)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 999, &models.UpdateRequest{Notes: ptr.Ptr("x")}, admin)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{Notes: ptr.Ptr("x")}, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{Status: ptr.Ptr("done")}, admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{Status: ptr.Ptr("cancelled")}, admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{EstimatedCost: ptr.Ptr(-1.0)}, admin)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, f.req.ID, &models.CompleteRequest{}, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Complete(ctx, 999, &models.CompleteRequest{}, admin)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	resp, err := f.svc.Complete(ctx, f.req.ID, &models.CompleteRequest{
		ActualCost:      ptr.Ptr(75.0),
		TechnicianNotes: ptr.Ptr("replaced fans"),
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 75.0, *resp.ActualCost)
	assert.Equal(t, "replaced fans", *resp.TechnicianNotes)
	require.NotNil(t, resp.CompletedDate)
	assert.True(t, now.Equal(*resp.CompletedDate))

	slot, err := f.store.TimeSlots().GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.CurrentBookings, "completion keeps the slot occupied")

	_, err = f.svc.Complete(ctx, f.req.ID, &models.CompleteRequest{}, admin)
	assert.ErrorIs(t, err, ErrCannotComplete)

	_, err = f.svc.Update(ctx, f.req.ID, &models.UpdateRequest{Notes: ptr.Ptr("late note")}, owner)
	assert.ErrorIs(t, err, ErrRequestFinalized)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.ServiceRequests().Create(ctx, &domain.ServiceRequest{
		RequestNumber: "SR-2-002", UserID: stranger.UserID, ServiceType: domain.ServiceTypeUpgrade,
		Status: domain.StatusCancelled, Priority: domain.PriorityLow, Description: "RAM upgrade",
	})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, owner, nil)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, f.req.ID, mine.Requests[0].ID)

	all, err := f.svc.ListAll(ctx, admin, &models.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	cancelled, err := f.svc.ListAll(ctx, admin, &models.ListRequest{Status: ptr.Ptr("cancelled")})
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled.Total)

	_, err = f.svc.ListAll(ctx, owner, &models.ListRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListMine(ctx, owner, ptr.Ptr("unknown"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
