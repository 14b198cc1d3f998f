package planning_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type coopFixture struct {
	*planFixture
	coops       *planning.CooperationService
	coordinator uuid.UUID
	coop        planning.Cooperation
}

func newCoopFixture(t *testing.T) *coopFixture {
	t.Helper()
	base := newPlanFixture(t)
	coops := &planning.CooperationService{Store: base.store, Owners: base.store, Clock: base.clock}
	coordinator := uuid.New()
	coop, err := coops.CreateCooperation(context.Background(),
		"bakers", "bread of all kinds", coordinator, uuid.New())
	require.NoError(t, err)
	return &coopFixture{
		planFixture: base,
		coops:       coops,
		coordinator: coordinator,
		coop:        coop,
	}
}

// candidateCompany stores a company eligible to take over coordination.
func (f *coopFixture) candidateCompany(t *testing.T) uuid.UUID {
	t.Helper()
	company := ledger.Company{
		ID:               uuid.New(),
		Name:             "mill",
		MeansAccount:     uuid.New(),
		ResourcesAccount: uuid.New(),
		LabourAccount:    uuid.New(),
		ProductAccount:   uuid.New(),
		RegisteredOn:     testNow,
	}
	require.NoError(t, f.store.CreateCompany(context.Background(), company))
	return company.ID
}

func (f *coopFixture) requestedPlan(t *testing.T) planning.Plan {
	t.Helper()
	plan := f.activePlan(t)
	require.NoError(t, f.coops.RequestCooperation(context.Background(), f.planner, plan.ID, f.coop.ID))
	return plan
}

func (f *coopFixture) memberPlan(t *testing.T) planning.Plan {
	t.Helper()
	ctx := context.Background()
	plan := f.requestedPlan(t)
	require.NoError(t, f.coops.AcceptRequest(ctx, f.coordinator, plan.ID, f.coop.ID))
	stored, err := f.store.PlanByID(ctx, plan.ID)
	require.NoError(t, err)
	return stored
}

// =============================================================================
// MEMBERSHIP REQUESTS
// =============================================================================

func TestCooperation_RequestAndAccept_SetsMembership(t *testing.T) {
	// GIVEN: An active plan whose planner requested membership
	// WHEN: The coordinator accepts
	// THEN: The plan cooperates and the request field is cleared

	f := newCoopFixture(t)
	plan := f.memberPlan(t)

	require.NotNil(t, plan.Cooperation)
	assert.Equal(t, f.coop.ID, *plan.Cooperation)
	assert.Nil(t, plan.RequestedCooperation)
}

func TestCooperation_Request_Guards(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()

	t.Run("wrong planner", func(t *testing.T) {
		plan := f.activePlan(t)
		err := f.coops.RequestCooperation(ctx, uuid.New(), plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrNotAuthorized)
	})

	t.Run("public service plan", func(t *testing.T) {
		plan := f.activePlan(t)
		stored, err := f.store.PlanByID(ctx, plan.ID)
		require.NoError(t, err)
		stored.IsPublicService = true
		require.NoError(t, f.store.UpdatePlan(ctx, stored))

		err = f.coops.RequestCooperation(ctx, f.planner, plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrPublicServicePlan)
	})

	t.Run("inactive plan", func(t *testing.T) {
		plan := f.filedPlan(t)
		err := f.coops.RequestCooperation(ctx, f.planner, plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrPlanInactive)
	})

	t.Run("already cooperating", func(t *testing.T) {
		plan := f.memberPlan(t)
		err := f.coops.RequestCooperation(ctx, f.planner, plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrAlreadyCooperating)
	})

	t.Run("request already pending", func(t *testing.T) {
		plan := f.requestedPlan(t)
		err := f.coops.RequestCooperation(ctx, f.planner, plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrRequestPending)
	})

	t.Run("unknown cooperation", func(t *testing.T) {
		plan := f.activePlan(t)
		err := f.coops.RequestCooperation(ctx, f.planner, plan.ID, uuid.New())
		assert.ErrorIs(t, err, planning.ErrCooperationNotFound)
	})
}

func TestCooperation_Accept_OnlyCoordinator(t *testing.T) {
	f := newCoopFixture(t)
	plan := f.requestedPlan(t)

	err := f.coops.AcceptRequest(context.Background(), uuid.New(), plan.ID, f.coop.ID)
	assert.ErrorIs(t, err, planning.ErrNotAuthorized)
}

func TestCooperation_Deny_ClearsRequestOnly(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()
	plan := f.requestedPlan(t)

	require.NoError(t, f.coops.DenyRequest(ctx, f.coordinator, plan.ID, f.coop.ID))

	stored, err := f.store.PlanByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RequestedCooperation)
	assert.Nil(t, stored.Cooperation)
}

func TestCooperation_Cancel_ByRequester(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()
	plan := f.requestedPlan(t)

	require.NoError(t, f.coops.CancelRequest(ctx, f.planner, plan.ID))

	stored, err := f.store.PlanByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RequestedCooperation)

	// No pending request anymore
	err = f.coops.CancelRequest(ctx, f.planner, plan.ID)
	assert.ErrorIs(t, err, planning.ErrCooperationNotRequested)
}

func TestCooperation_End_ByPlannerOrCoordinator(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()

	t.Run("planner ends", func(t *testing.T) {
		plan := f.memberPlan(t)
		require.NoError(t, f.coops.EndCooperation(ctx, f.planner, plan.ID, f.coop.ID))
		stored, err := f.store.PlanByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Cooperation)
	})

	t.Run("coordinator ends", func(t *testing.T) {
		plan := f.memberPlan(t)
		require.NoError(t, f.coops.EndCooperation(ctx, f.coordinator, plan.ID, f.coop.ID))
	})

	t.Run("stranger cannot end", func(t *testing.T) {
		plan := f.memberPlan(t)
		err := f.coops.EndCooperation(ctx, uuid.New(), plan.ID, f.coop.ID)
		assert.ErrorIs(t, err, planning.ErrNotAuthorized)
	})
}

// =============================================================================
// EXPIRATION SWEEP
// =============================================================================

func TestCooperation_ExpireSweep_ClearsExpiredMembers_Idempotent(t *testing.T) {
	// GIVEN: A cooperating plan and a plan with a pending request, both expired
	// WHEN: The sweep runs twice
	// THEN: Both cooperation fields are cleared; the second run is a no-op

	f := newCoopFixture(t)
	ctx := context.Background()
	member := f.memberPlan(t)
	pending := f.requestedPlan(t)

	after := testNow.AddDate(0, 0, 60)
	require.NoError(t, f.coops.ExpireSweep(ctx, after))

	storedMember, err := f.store.PlanByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Nil(t, storedMember.Cooperation)

	storedPending, err := f.store.PlanByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, storedPending.RequestedCooperation)

	// Second run changes nothing and reports no error
	require.NoError(t, f.coops.ExpireSweep(ctx, after))
}

func TestCooperation_ExpireSweep_LeavesActivePlansAlone(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()
	member := f.memberPlan(t)

	require.NoError(t, f.coops.ExpireSweep(ctx, testNow.AddDate(0, 0, 1)))

	stored, err := f.store.PlanByID(ctx, member.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.Cooperation)
}

// =============================================================================
// COORDINATION TRANSFER
// =============================================================================

func TestCooperation_CoordinationTransfer_HandsOverOnAccept(t *testing.T) {
	// GIVEN: The coordinator requested a handover to a candidate
	// WHEN: The candidate accepts
	// THEN: The cooperation's coordinator changes, request marked accepted

	f := newCoopFixture(t)
	ctx := context.Background()
	candidate := f.candidateCompany(t)

	request, err := f.coops.RequestCoordinationTransfer(ctx, f.coordinator, f.coop.ID, candidate)
	require.NoError(t, err)

	require.NoError(t, f.coops.AcceptCoordinationTransfer(ctx, candidate, request.ID))

	coop, err := f.store.CooperationByID(ctx, f.coop.ID)
	require.NoError(t, err)
	assert.Equal(t, candidate, coop.Coordinator)

	// A second accept is rejected: the request was already consumed
	err = f.coops.AcceptCoordinationTransfer(ctx, candidate, request.ID)
	assert.ErrorIs(t, err, planning.ErrCooperationNotRequested)
}

func TestCooperation_CoordinationTransfer_OnlyCoordinatorRequests(t *testing.T) {
	f := newCoopFixture(t)

	_, err := f.coops.RequestCoordinationTransfer(context.Background(), uuid.New(), f.coop.ID, f.candidateCompany(t))
	assert.ErrorIs(t, err, planning.ErrNotAuthorized)
}

func TestCooperation_CoordinationTransfer_UnknownCandidateRejected(t *testing.T) {
	f := newCoopFixture(t)

	_, err := f.coops.RequestCoordinationTransfer(context.Background(), f.coordinator, f.coop.ID, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)
}

func TestCooperation_CoordinationTransfer_OnlyCandidateAccepts(t *testing.T) {
	f := newCoopFixture(t)
	ctx := context.Background()
	candidate := f.candidateCompany(t)

	request, err := f.coops.RequestCoordinationTransfer(ctx, f.coordinator, f.coop.ID, candidate)
	require.NoError(t, err)

	err = f.coops.AcceptCoordinationTransfer(ctx, uuid.New(), request.ID)
	assert.ErrorIs(t, err, planning.ErrNotAuthorized)
}
