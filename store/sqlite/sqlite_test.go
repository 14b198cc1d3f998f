package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/commonplan/certeconomy/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newGateway(t *testing.T) *sqlite.Gateway {
	t.Helper()
	gw, err := sqlite.New(filepath.Join(t.TempDir(), "economy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newAccount(t *testing.T, gw *sqlite.Gateway, accountType ledger.AccountType) ledger.Account {
	t.Helper()
	account := ledger.Account{ID: uuid.New(), Type: accountType, CreatedAt: testNow}
	require.NoError(t, gw.CreateAccount(context.Background(), account))
	return account
}

func storedPlan(t *testing.T, gw *sqlite.Gateway) planning.Plan {
	t.Helper()
	plan := planning.Plan{
		ID:             uuid.New(),
		Planner:        uuid.New(),
		Costs:          planning.ProductionCosts{Labour: dec("300"), Means: dec("100"), Resource: dec("50")},
		ProductName:    "bread",
		Description:    "daily bread",
		ProductionUnit: "loaf",
		Amount:         100,
		Timeframe:      30,
		CreatedAt:      testNow,
	}
	require.NoError(t, gw.CreatePlan(context.Background(), plan))
	return plan
}

// =============================================================================
// ACCOUNTS AND TRANSFERS
// =============================================================================

func TestGateway_AccountRoundTrip(t *testing.T) {
	gw := newGateway(t)
	account := newAccount(t, gw, ledger.AccountMember)

	stored, err := gw.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
	assert.Equal(t, ledger.AccountMember, stored.Type)
	assert.True(t, stored.CreatedAt.Equal(testNow))

	_, err = gw.AccountByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestGateway_TransfersOrderedByDate(t *testing.T) {
	// GIVEN: Transfers appended out of chronological order
	// WHEN: The account's transfers are listed
	// THEN: They come back ordered by date

	gw := newGateway(t)
	ctx := context.Background()
	a := newAccount(t, gw, ledger.AccountMember)
	b := newAccount(t, gw, ledger.AccountSocialAccounting)

	for _, offset := range []int{2, 0, 1} {
		require.NoError(t, gw.AppendTransfer(ctx, ledger.Transfer{
			ID:            uuid.New(),
			Date:          testNow.AddDate(0, 0, offset),
			DebitAccount:  b.ID,
			CreditAccount: a.ID,
			Value:         dec("10"),
			Type:          ledger.TransferWorkCertificates,
			Purpose:       "wages",
		}))
	}

	transfers, err := gw.TransfersByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	for i := 1; i < len(transfers); i++ {
		assert.False(t, transfers[i].Date.Before(transfers[i-1].Date))
	}
	assert.True(t, transfers[0].Value.Equal(dec("10")))
	assert.Equal(t, "wages", transfers[0].Purpose)
}

// =============================================================================
// OWNERS
// =============================================================================

func TestGateway_MemberAndCompanyRoundTrip(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	member := ledger.Member{
		ID:           uuid.New(),
		Name:         "ada",
		Account:      newAccount(t, gw, ledger.AccountMember).ID,
		RegisteredOn: testNow,
	}
	require.NoError(t, gw.CreateMember(ctx, member))
	storedMember, err := gw.MemberByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.Name, storedMember.Name)
	assert.Equal(t, member.Account, storedMember.Account)

	company := ledger.Company{
		ID:               uuid.New(),
		Name:             "bakery",
		MeansAccount:     newAccount(t, gw, ledger.AccountCompanyMeans).ID,
		ResourcesAccount: newAccount(t, gw, ledger.AccountCompanyResources).ID,
		LabourAccount:    newAccount(t, gw, ledger.AccountCompanyLabour).ID,
		ProductAccount:   newAccount(t, gw, ledger.AccountCompanyProduct).ID,
		RegisteredOn:     testNow,
	}
	require.NoError(t, gw.CreateCompany(ctx, company))
	storedCompany, err := gw.CompanyByID(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, company.LabourAccount, storedCompany.LabourAccount)

	_, err = gw.MemberByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrMemberNotFound)
	_, err = gw.CompanyByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)
}

func TestGateway_WorkerRegistrationIsIdempotent(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	company, member := uuid.New(), uuid.New()

	at, err := gw.WorkerIsAtCompany(ctx, company, member)
	require.NoError(t, err)
	assert.False(t, at)

	require.NoError(t, gw.RegisterWorker(ctx, company, member))
	require.NoError(t, gw.RegisterWorker(ctx, company, member))

	at, err = gw.WorkerIsAtCompany(ctx, company, member)
	require.NoError(t, err)
	assert.True(t, at)
}

func TestGateway_SocialAccountingIsASingleton(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	first, err := gw.SocialAccounting(ctx)
	require.NoError(t, err)
	second, err := gw.SocialAccounting(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Account, second.Account)

	account, err := gw.AccountByID(ctx, first.Account)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountSocialAccounting, account.Type)
}

// =============================================================================
// PLANS
// =============================================================================

func TestGateway_PlanUpdateAndTimeFilters(t *testing.T) {
	// GIVEN: A stored plan that gets approved and activated
	// WHEN: It is read back and filtered by time
	// THEN: The lifecycle fields survive and the filters agree with them

	gw := newGateway(t)
	ctx := context.Background()
	plan := storedPlan(t, gw)

	approved := testNow
	activated := testNow.Add(time.Hour)
	plan.ApprovedAt = &approved
	plan.ActivatedAt = &activated
	require.NoError(t, gw.UpdatePlan(ctx, plan))

	stored, err := gw.PlanByID(ctx, plan.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ApprovedAt)
	require.NotNil(t, stored.ActivatedAt)
	assert.True(t, stored.ActivatedAt.Equal(activated))
	assert.True(t, stored.Costs.Labour.Equal(dec("300")))

	active, err := gw.ActivePlans(ctx, activated.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 1)

	expired, err := gw.ExpiredPlans(ctx, activated.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expired)

	later := activated.AddDate(0, 0, 40)
	active, err = gw.ActivePlans(ctx, later)
	require.NoError(t, err)
	assert.Empty(t, active)
	expired, err = gw.ExpiredPlans(ctx, later)
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestGateway_ActivationQueue(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	plan := storedPlan(t, gw)
	storedPlan(t, gw) // undecided, must not appear

	approved := testNow
	plan.ApprovedAt = &approved
	require.NoError(t, gw.UpdatePlan(ctx, plan))

	pending, err := gw.ApprovedPlansAwaitingActivation(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, plan.ID, pending[0].ID)
}

func TestGateway_DeletePlan(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	plan := storedPlan(t, gw)

	require.NoError(t, gw.DeletePlan(ctx, plan.ID))
	_, err := gw.PlanByID(ctx, plan.ID)
	assert.ErrorIs(t, err, planning.ErrPlanNotFound)

	err = gw.UpdatePlan(ctx, plan)
	assert.ErrorIs(t, err, planning.ErrPlanNotFound)
}

func TestGateway_DraftRoundTrip(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	draft := planning.PlanDraft{
		ID:             uuid.New(),
		Planner:        uuid.New(),
		ProductName:    "bread",
		ProductionUnit: "loaf",
		Amount:         100,
		Costs:          planning.ProductionCosts{Labour: dec("300"), Means: dec("100"), Resource: dec("50")},
		Timeframe:      30,
		CreatedAt:      testNow,
	}
	require.NoError(t, gw.CreateDraft(ctx, draft))

	draft.ProductName = "sourdough"
	require.NoError(t, gw.UpdateDraft(ctx, draft))

	stored, err := gw.DraftByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "sourdough", stored.ProductName)
	assert.True(t, stored.Costs.Means.Equal(dec("100")))

	require.NoError(t, gw.DeleteDraft(ctx, draft.ID))
	_, err = gw.DraftByID(ctx, draft.ID)
	assert.ErrorIs(t, err, planning.ErrDraftNotFound)
}

// =============================================================================
// COOPERATIONS AND PAYOUTS
// =============================================================================

func TestGateway_CooperationRoundTrip(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	coop := planning.Cooperation{
		ID:          uuid.New(),
		Name:        "bakers",
		Definition:  "bread of all kinds",
		Coordinator: uuid.New(),
		Account:     uuid.New(),
		CreatedAt:   testNow,
	}
	require.NoError(t, gw.CreateCooperation(ctx, coop))

	coop.Coordinator = uuid.New()
	require.NoError(t, gw.UpdateCooperation(ctx, coop))

	stored, err := gw.CooperationByID(ctx, coop.ID)
	require.NoError(t, err)
	assert.Equal(t, coop.Coordinator, stored.Coordinator)
	assert.Equal(t, "bakers", stored.Name)
}

func TestGateway_CoordinationTransferRequestRoundTrip(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	request := planning.CoordinationTransferRequest{
		ID:          uuid.New(),
		Cooperation: uuid.New(),
		Candidate:   uuid.New(),
		RequestedAt: testNow,
	}
	require.NoError(t, gw.CreateCoordinationTransferRequest(ctx, request))

	accepted := testNow.Add(time.Hour)
	request.AcceptedAt = &accepted
	require.NoError(t, gw.UpdateCoordinationTransferRequest(ctx, request))

	stored, err := gw.CoordinationTransferRequestByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AcceptedAt)
	assert.True(t, stored.AcceptedAt.Equal(accepted))
}

func TestGateway_CertificatePayoutCount(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	plan := storedPlan(t, gw)

	count, err := gw.CountCertificatePayouts(ctx, plan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, gw.RecordCertificatePayout(ctx, plan.ID, uuid.New()))
	require.NoError(t, gw.RecordCertificatePayout(ctx, plan.ID, uuid.New()))

	count, err = gw.CountCertificatePayouts(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGateway_LatestPayoutFactor(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	_, ok, err := gw.LatestPayoutFactor(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, gw.StorePayoutFactor(ctx, payout.PayoutFactor{
		Value: dec("0.5"), CalculatedAt: testNow,
	}))
	require.NoError(t, gw.StorePayoutFactor(ctx, payout.PayoutFactor{
		Value: dec("0.75"), CalculatedAt: testNow.Add(time.Hour),
	}))

	factor, ok, err := gw.LatestPayoutFactor(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, factor.Value.Equal(dec("0.75")))
	assert.True(t, factor.CalculatedAt.Equal(testNow.Add(time.Hour)))
}
