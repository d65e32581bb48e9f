package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterly/internal/models"
	"rosterly/internal/store"
)

func newTestInvitationService() (*InvitationService, *fakeInvitationStore, *stubPropagator) {
	st := newFakeInvitationStore()
	prop := &stubPropagator{}
	return NewInvitationService(st, prop, testLogger()), st, prop
}

func TestCreateInvitationDefaults(t *testing.T) {
	svc, _, _ := newTestInvitationService()

	before := time.Now().UTC()
	inv, err := svc.Create(context.Background(), CreateInvitationInput{
		UserID:         "u1",
		OrganizationID: "o1",
		Message:        "join us",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, models.InvitationPending, inv.Status)
	assert.WithinDuration(t, before.Add(DefaultInvitationExpiry), inv.ExpirationDate, time.Minute)
	assert.WithinDuration(t, before, inv.CreatedAt, time.Minute)
}

func TestCreateInvitationHonorsExplicitExpiration(t *testing.T) {
	svc, _, _ := newTestInvitationService()

	expiration := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	inv, err := svc.Create(context.Background(), CreateInvitationInput{
		UserID:         "u1",
		OrganizationID: "o1",
		Message:        "join us",
		ExpirationDate: &expiration,
	})
	require.NoError(t, err)
	assert.True(t, inv.ExpirationDate.Equal(expiration))
}

func TestCreateInvitationValidation(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	cases := []struct {
		name string
		in   CreateInvitationInput
	}{
		{"missing ids", CreateInvitationInput{Message: "hi"}},
		{"blank message", CreateInvitationInput{UserID: "u1", OrganizationID: "o1"}},
		{"message too long", CreateInvitationInput{
			UserID: "u1", OrganizationID: "o1",
			Message: strings.Repeat("x", models.MaxInvitationMessageLen+1),
		}},
		{"expiration in the past", CreateInvitationInput{
			UserID: "u1", OrganizationID: "o1", Message: "hi", ExpirationDate: &past,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			var invalidArg *InvalidArgumentError
			assert.ErrorAs(t, err, &invalidArg)
		})
	}
}

func TestCreateInvitationMessageAtBoundIsAccepted(t *testing.T) {
	svc, _, _ := newTestInvitationService()

	_, err := svc.Create(context.Background(), CreateInvitationInput{
		UserID:         "u1",
		OrganizationID: "o1",
		Message:        strings.Repeat("y", models.MaxInvitationMessageLen),
	})
	assert.NoError(t, err)
}

func TestCreateInvitationDuplicatePending(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "join us"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "join us"})
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// A different pair is unaffected.
	_, err = svc.Create(ctx, CreateInvitationInput{UserID: "u2", OrganizationID: "o1", Message: "join us"})
	assert.NoError(t, err)
}

func TestReinvitationAfterTerminalStatusAllowed(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	for _, terminal := range []string{models.InvitationRejected, models.InvitationExpired} {
		inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u-" + terminal, OrganizationID: "o1", Message: "hi"})
		require.NoError(t, err)

		_, err = svc.Transition(ctx, inv.ID, terminal)
		require.NoError(t, err)

		again, err := svc.Create(ctx, CreateInvitationInput{UserID: "u-" + terminal, OrganizationID: "o1", Message: "hi again"})
		require.NoError(t, err)
		assert.NotEqual(t, inv.ID, again.ID)
	}
}

func TestTransitionToAcceptedPropagates(t *testing.T) {
	svc, _, prop := newTestInvitationService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)

	result, err := svc.Transition(ctx, inv.ID, models.InvitationAccepted)
	require.NoError(t, err)

	assert.Equal(t, models.InvitationAccepted, result.Invitation.Status)
	assert.Nil(t, result.PropagationErr)
	assert.Equal(t, 1, prop.callCount())
}

func TestTransitionToRejectedDoesNotPropagate(t *testing.T) {
	svc, _, prop := newTestInvitationService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)

	result, err := svc.Transition(ctx, inv.ID, models.InvitationRejected)
	require.NoError(t, err)

	assert.Equal(t, models.InvitationRejected, result.Invitation.Status)
	assert.Equal(t, 0, prop.callCount())
}

func TestTransitionAcceptedSurvivesPropagationFailure(t *testing.T) {
	st := newFakeInvitationStore()
	prop := &stubPropagator{err: &PropagationError{InvitationID: "x", Err: errors.New("connection refused")}}
	svc := NewInvitationService(st, prop, testLogger())
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)

	result, err := svc.Transition(ctx, inv.ID, models.InvitationAccepted)
	require.NoError(t, err)

	// Degraded success: ACCEPTED stands, the failure is reported alongside.
	assert.Equal(t, models.InvitationAccepted, result.Invitation.Status)
	assert.NotNil(t, result.PropagationErr)

	stored, err := st.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, stored.Status)
}

func TestTransitionFromTerminalStatusRejected(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, inv.ID, models.InvitationAccepted)
	require.NoError(t, err)

	for _, next := range []string{models.InvitationAccepted, models.InvitationRejected, models.InvitationExpired} {
		_, err := svc.Transition(ctx, inv.ID, next)
		var invalidTransition *InvalidTransitionError
		require.ErrorAs(t, err, &invalidTransition)
		assert.Equal(t, inv.ID, invalidTransition.InvitationID)
		assert.Equal(t, models.InvitationAccepted, invalidTransition.CurrentStatus)
	}
}

func TestTransitionUnknownInvitation(t *testing.T) {
	svc, _, _ := newTestInvitationService()

	_, err := svc.Transition(context.Background(), "nope", models.InvitationAccepted)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransitionRejectsBadTargetStatus(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)

	for _, target := range []string{models.InvitationPending, "CANCELLED", ""} {
		_, err := svc.Transition(ctx, inv.ID, target)
		var invalidArg *InvalidArgumentError
		assert.ErrorAs(t, err, &invalidArg)
	}
}

func TestExpireOldInvitations(t *testing.T) {
	svc, st, _ := newTestInvitationService()
	ctx := context.Background()

	past := &models.Invitation{
		ID: "past", UserID: "u1", OrganizationID: "o1", Message: "hi",
		Status:         models.InvitationPending,
		ExpirationDate: time.Now().UTC().Add(-time.Hour),
	}
	future := &models.Invitation{
		ID: "future", UserID: "u2", OrganizationID: "o1", Message: "hi",
		Status:         models.InvitationPending,
		ExpirationDate: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, st.Insert(ctx, past))
	require.NoError(t, st.Insert(ctx, future))

	expired, err := svc.ExpireOldInvitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	got, _ := st.GetByID(ctx, "past")
	assert.Equal(t, models.InvitationExpired, got.Status)
	got, _ = st.GetByID(ctx, "future")
	assert.Equal(t, models.InvitationPending, got.Status)

	// Re-running the sweep is a no-op, not an error.
	expired, err = svc.ExpireOldInvitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestSweepAndAcceptRaceResolvesToOneWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		svc, st, _ := newTestInvitationService()
		ctx := context.Background()

		inv := &models.Invitation{
			ID: "contested", UserID: "u1", OrganizationID: "o1", Message: "hi",
			Status:         models.InvitationPending,
			ExpirationDate: time.Now().UTC().Add(-time.Minute),
		}
		require.NoError(t, st.Insert(ctx, inv))

		var wg sync.WaitGroup
		var acceptErr error
		var expiredCount int
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, acceptErr = svc.Transition(ctx, inv.ID, models.InvitationAccepted)
		}()
		go func() {
			defer wg.Done()
			expiredCount, _ = svc.ExpireOldInvitations(ctx)
		}()
		wg.Wait()

		got, err := st.GetByID(ctx, inv.ID)
		require.NoError(t, err)

		accepted := acceptErr == nil
		expired := expiredCount == 1
		assert.True(t, accepted != expired, "exactly one writer must win")
		if accepted {
			assert.Equal(t, models.InvitationAccepted, got.Status)
		} else {
			assert.Equal(t, models.InvitationExpired, got.Status)
			var invalidTransition *InvalidTransitionError
			assert.ErrorAs(t, acceptErr, &invalidTransition)
		}
	}
}

func TestListInvitationsByStatus(t *testing.T) {
	svc, _, _ := newTestInvitationService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvitationInput{UserID: "u1", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInvitationInput{UserID: "u2", OrganizationID: "o1", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, inv.ID, models.InvitationRejected)
	require.NoError(t, err)

	pending, err := svc.List(ctx, models.InvitationPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, "BOGUS")
	var invalidArg *InvalidArgumentError
	assert.ErrorAs(t, err, &invalidArg)
}
