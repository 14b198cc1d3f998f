package economy_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonplan/certeconomy/economy"
	"github.com/commonplan/certeconomy/giro"
	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/commonplan/certeconomy/pricing"
	"github.com/commonplan/certeconomy/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// econFixture wires the full use-case graph against the in-memory
// gateway, the way the composition root does it.
type econFixture struct {
	store     *memory.Gateway
	clock     *ledger.FixedClock
	book      *ledger.Ledger
	register  *economy.Registration
	drafts    *planning.DraftService
	lifecycle *planning.LifecycleService
	coops     *planning.CooperationService
	prices    *pricing.Calculator
	factors   *payout.Service

	hours      *economy.RegisterHoursWorked
	private    *economy.RegisterPrivateConsumption
	productive *economy.RegisterProductiveConsumption
	activate   *economy.ActivatePlans
	sweep      *economy.UpdatePlansAndPayout
}

func newEconFixture(t *testing.T) *econFixture {
	t.Helper()
	store := memory.NewGateway()
	clock := &ledger.FixedClock{Time: testNow}
	book := ledger.New(store)
	coops := &planning.CooperationService{Store: store, Owners: store, Clock: clock}
	prices := &pricing.Calculator{Store: store}
	factors := &payout.Service{Plans: store, Store: store}
	office := &giro.Office{Ledger: book, Clock: clock, AllowedOverdraw: decimal.Zero}
	lifecycle := &planning.LifecycleService{Store: store, Clock: clock}
	return &econFixture{
		store:     store,
		clock:     clock,
		book:      book,
		register:  &economy.Registration{Owners: store, Cooperations: coops, Clock: clock},
		drafts:    &planning.DraftService{Store: store, Clock: clock},
		lifecycle: lifecycle,
		coops:     coops,
		prices:    prices,
		factors:   factors,
		hours: &economy.RegisterHoursWorked{
			Owners: store, Ledger: book, Payout: factors, Clock: clock,
		},
		private: &economy.RegisterPrivateConsumption{
			Owners: store, Plans: store, Pricing: prices, Giro: office, Clock: clock,
		},
		productive: &economy.RegisterProductiveConsumption{
			Owners: store, Plans: store, Pricing: prices, Ledger: book, Clock: clock,
		},
		activate: &economy.ActivatePlans{
			Owners: store, Plans: store, Ledger: book, Lifecycle: lifecycle, Clock: clock,
		},
		sweep: &economy.UpdatePlansAndPayout{
			Owners: store, Plans: store, Ledger: book, Payout: factors,
			Cooperations: coops, Clock: clock,
		},
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (f *econFixture) member(t *testing.T, name string) ledger.Member {
	t.Helper()
	member, err := f.register.RegisterMember(context.Background(), name)
	require.NoError(t, err)
	return member
}

func (f *econFixture) company(t *testing.T, name string) ledger.Company {
	t.Helper()
	company, err := f.register.RegisterCompany(context.Background(), name)
	require.NoError(t, err)
	return company
}

func (f *econFixture) worker(t *testing.T, company ledger.Company, name string) ledger.Member {
	t.Helper()
	member := f.member(t, name)
	require.NoError(t, f.store.RegisterWorker(context.Background(), company.ID, member.ID))
	return member
}

// filedPlan creates and files a plan for the planner company.
func (f *econFixture) filedPlan(t *testing.T, planner uuid.UUID, costs planning.ProductionCosts, amount int64, timeframe int) planning.Plan {
	t.Helper()
	ctx := context.Background()
	draft, err := f.drafts.CreateDraft(ctx, planning.PlanDraft{
		Planner:        planner,
		ProductName:    "bread",
		Description:    "daily bread",
		ProductionUnit: "loaf",
		Amount:         amount,
		Costs:          costs,
		Timeframe:      timeframe,
	})
	require.NoError(t, err)
	plan, err := f.drafts.FilePlan(ctx, planner, draft.ID)
	require.NoError(t, err)
	return plan
}

// activePlan files, approves and activates a plan at the current clock.
func (f *econFixture) activePlan(t *testing.T, planner uuid.UUID, costs planning.ProductionCosts, amount int64, timeframe int) planning.Plan {
	t.Helper()
	ctx := context.Background()
	plan := f.filedPlan(t, planner, costs, amount, timeframe)
	_, err := f.lifecycle.Approve(ctx, plan.ID)
	require.NoError(t, err)
	plan, err = f.lifecycle.Activate(ctx, plan.ID)
	require.NoError(t, err)
	return plan
}

// fund credits an account from social accounting so a member can spend.
func (f *econFixture) fund(t *testing.T, account uuid.UUID, amount string) {
	t.Helper()
	ctx := context.Background()
	accounting, err := f.store.SocialAccounting(ctx)
	require.NoError(t, err)
	_, err = f.book.AppendTransfer(ctx, accounting.Account, account, dec(amount),
		ledger.TransferWorkCertificates, f.clock.Time, "test funding")
	require.NoError(t, err)
}

func (f *econFixture) balance(t *testing.T, account uuid.UUID) decimal.Decimal {
	t.Helper()
	balance, err := f.book.Balance(context.Background(), account)
	require.NoError(t, err)
	return balance
}

func bakeryCosts() planning.ProductionCosts {
	return planning.ProductionCosts{Labour: dec("300"), Means: dec("100"), Resource: dec("50")}
}

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRegistration_MemberGetsOneAccount(t *testing.T) {
	f := newEconFixture(t)
	member := f.member(t, "ada")

	account, err := f.store.AccountByID(context.Background(), member.Account)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountMember, account.Type)
	assert.True(t, f.balance(t, member.Account).IsZero())
}

func TestRegistration_CompanyGetsFourSubAccounts(t *testing.T) {
	f := newEconFixture(t)
	company := f.company(t, "bakery")
	ctx := context.Background()

	expected := map[uuid.UUID]ledger.AccountType{
		company.MeansAccount:     ledger.AccountCompanyMeans,
		company.ResourcesAccount: ledger.AccountCompanyResources,
		company.LabourAccount:    ledger.AccountCompanyLabour,
		company.ProductAccount:   ledger.AccountCompanyProduct,
	}
	for id, accountType := range expected {
		account, err := f.store.AccountByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, accountType, account.Type)
	}
}

func TestRegistration_CooperationGetsClearingAccount(t *testing.T) {
	f := newEconFixture(t)
	company := f.company(t, "bakery")

	coop, err := f.register.RegisterCooperation(context.Background(), "bakers", "bread", company.ID)
	require.NoError(t, err)

	account, err := f.store.AccountByID(context.Background(), coop.Account)
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountCooperation, account.Type)
	assert.Equal(t, company.ID, coop.Coordinator)
}

func TestRegistration_CooperationNeedsExistingCoordinator(t *testing.T) {
	f := newEconFixture(t)

	_, err := f.register.RegisterCooperation(context.Background(), "bakers", "bread", uuid.New())
	assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)
}

// =============================================================================
// HOURS WORKED
// =============================================================================

func TestRegisterHoursWorked_DiscountsByStoredFactor(t *testing.T) {
	// GIVEN: A stored payout factor of 0.75
	// WHEN: A worker registers 10.5 hours
	// THEN: 7.88 certificates move from the company's labour account

	f := newEconFixture(t)
	ctx := context.Background()
	company := f.company(t, "bakery")
	worker := f.worker(t, company, "ada")
	require.NoError(t, f.store.StorePayoutFactor(ctx, payout.PayoutFactor{
		Value: dec("0.75"), CalculatedAt: testNow,
	}))

	transfer, err := f.hours.Register(ctx, company.ID, worker.ID, dec("10.5"))
	require.NoError(t, err)

	assert.True(t, transfer.Value.Equal(dec("7.88")), "got %s", transfer.Value)
	assert.Equal(t, company.LabourAccount, transfer.DebitAccount)
	assert.Equal(t, worker.Account, transfer.CreditAccount)
	assert.Equal(t, ledger.TransferWorkCertificates, transfer.Type)
	assert.True(t, f.balance(t, worker.Account).Equal(dec("7.88")))
	assert.True(t, f.balance(t, company.LabourAccount).Equal(dec("-7.88")))
}

func TestRegisterHoursWorked_FullHoursWithoutStoredFactor(t *testing.T) {
	f := newEconFixture(t)
	company := f.company(t, "bakery")
	worker := f.worker(t, company, "ada")

	transfer, err := f.hours.Register(context.Background(), company.ID, worker.ID, dec("8"))
	require.NoError(t, err)
	assert.True(t, transfer.Value.Equal(dec("8")))
}

func TestRegisterHoursWorked_Rejections(t *testing.T) {
	f := newEconFixture(t)
	ctx := context.Background()
	company := f.company(t, "bakery")
	worker := f.worker(t, company, "ada")
	outsider := f.member(t, "eva")

	t.Run("zero hours", func(t *testing.T) {
		_, err := f.hours.Register(ctx, company.ID, worker.ID, decimal.Zero)
		assert.ErrorIs(t, err, economy.ErrHoursNotPositive)
	})

	t.Run("negative hours", func(t *testing.T) {
		_, err := f.hours.Register(ctx, company.ID, worker.ID, dec("-1"))
		assert.ErrorIs(t, err, economy.ErrHoursNotPositive)
	})

	t.Run("not a worker", func(t *testing.T) {
		_, err := f.hours.Register(ctx, company.ID, outsider.ID, dec("8"))
		assert.ErrorIs(t, err, economy.ErrWorkerNotAtCompany)
	})

	t.Run("unknown company", func(t *testing.T) {
		_, err := f.hours.Register(ctx, uuid.New(), worker.ID, dec("8"))
		assert.ErrorIs(t, err, ledger.ErrCompanyNotFound)
	})
}
