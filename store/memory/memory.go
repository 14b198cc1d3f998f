// Package memory provides an in-memory Gateway implementation
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/google/uuid"
)

// =============================================================================
// MEMORY GATEWAY - Implements ledger.OwnerStore, planning.Store, payout.Store
// =============================================================================

type Gateway struct {
	mu sync.RWMutex

	accounts  map[uuid.UUID]ledger.Account
	transfers []ledger.Transfer

	members   map[uuid.UUID]ledger.Member
	companies map[uuid.UUID]ledger.Company
	workers   map[uuid.UUID]map[uuid.UUID]bool // company -> member set
	social    *ledger.SocialAccounting

	drafts           map[uuid.UUID]planning.PlanDraft
	plans            map[uuid.UUID]planning.Plan
	cooperations     map[uuid.UUID]planning.Cooperation
	transferRequests map[uuid.UUID]planning.CoordinationTransferRequest
	payoutsByPlan    map[uuid.UUID][]uuid.UUID // plan -> payout transfer ids

	factors []payout.PayoutFactor
}

func NewGateway() *Gateway {
	return &Gateway{
		accounts:         make(map[uuid.UUID]ledger.Account),
		members:          make(map[uuid.UUID]ledger.Member),
		companies:        make(map[uuid.UUID]ledger.Company),
		workers:          make(map[uuid.UUID]map[uuid.UUID]bool),
		drafts:           make(map[uuid.UUID]planning.PlanDraft),
		plans:            make(map[uuid.UUID]planning.Plan),
		cooperations:     make(map[uuid.UUID]planning.Cooperation),
		transferRequests: make(map[uuid.UUID]planning.CoordinationTransferRequest),
		payoutsByPlan:    make(map[uuid.UUID][]uuid.UUID),
	}
}

// Interface checks
var (
	_ ledger.OwnerStore = (*Gateway)(nil)
	_ planning.Store    = (*Gateway)(nil)
	_ payout.Store      = (*Gateway)(nil)
)

// =============================================================================
// ACCOUNTS AND TRANSFERS
// =============================================================================

func (g *Gateway) CreateAccount(_ context.Context, account ledger.Account) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts[account.ID] = account
	return nil
}

func (g *Gateway) AccountByID(_ context.Context, id uuid.UUID) (ledger.Account, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	account, ok := g.accounts[id]
	if !ok {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	return account, nil
}

// AppendTransfer keeps the log ordered by date. Append-only.
func (g *Gateway) AppendTransfer(_ context.Context, transfer ledger.Transfer) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := sort.Search(len(g.transfers), func(i int) bool {
		return g.transfers[i].Date.After(transfer.Date)
	})
	g.transfers = append(g.transfers, ledger.Transfer{})
	copy(g.transfers[i+1:], g.transfers[i:])
	g.transfers[i] = transfer
	return nil
}

func (g *Gateway) TransfersByAccount(_ context.Context, account uuid.UUID) ([]ledger.Transfer, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []ledger.Transfer
	for _, t := range g.transfers {
		if t.DebitAccount == account || t.CreditAccount == account {
			result = append(result, t)
		}
	}
	return result, nil
}

// =============================================================================
// OWNERS
// =============================================================================

func (g *Gateway) CreateMember(_ context.Context, member ledger.Member) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[member.ID] = member
	return nil
}

func (g *Gateway) MemberByID(_ context.Context, id uuid.UUID) (ledger.Member, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	member, ok := g.members[id]
	if !ok {
		return ledger.Member{}, ledger.ErrMemberNotFound
	}
	return member, nil
}

func (g *Gateway) CreateCompany(_ context.Context, company ledger.Company) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.companies[company.ID] = company
	return nil
}

func (g *Gateway) CompanyByID(_ context.Context, id uuid.UUID) (ledger.Company, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	company, ok := g.companies[id]
	if !ok {
		return ledger.Company{}, ledger.ErrCompanyNotFound
	}
	return company, nil
}

// SocialAccounting creates the singleton with its account on first use.
func (g *Gateway) SocialAccounting(_ context.Context) (ledger.SocialAccounting, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.social == nil {
		account := ledger.Account{ID: uuid.New(), Type: ledger.AccountSocialAccounting}
		g.accounts[account.ID] = account
		g.social = &ledger.SocialAccounting{ID: uuid.New(), Account: account.ID}
	}
	return *g.social, nil
}

func (g *Gateway) WorkerIsAtCompany(_ context.Context, company, member uuid.UUID) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.workers[company][member], nil
}

func (g *Gateway) RegisterWorker(_ context.Context, company, member uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.workers[company] == nil {
		g.workers[company] = make(map[uuid.UUID]bool)
	}
	g.workers[company][member] = true
	return nil
}

// =============================================================================
// DRAFTS
// =============================================================================

func (g *Gateway) CreateDraft(_ context.Context, draft planning.PlanDraft) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.drafts[draft.ID] = draft
	return nil
}

func (g *Gateway) DraftByID(_ context.Context, id uuid.UUID) (planning.PlanDraft, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	draft, ok := g.drafts[id]
	if !ok {
		return planning.PlanDraft{}, planning.ErrDraftNotFound
	}
	return draft, nil
}

func (g *Gateway) UpdateDraft(_ context.Context, draft planning.PlanDraft) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.drafts[draft.ID]; !ok {
		return planning.ErrDraftNotFound
	}
	g.drafts[draft.ID] = draft
	return nil
}

func (g *Gateway) DeleteDraft(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.drafts, id)
	return nil
}

// =============================================================================
// PLANS
// =============================================================================

func (g *Gateway) CreatePlan(_ context.Context, plan planning.Plan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.plans[plan.ID] = plan
	return nil
}

func (g *Gateway) PlanByID(_ context.Context, id uuid.UUID) (planning.Plan, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	plan, ok := g.plans[id]
	if !ok {
		return planning.Plan{}, planning.ErrPlanNotFound
	}
	return plan, nil
}

func (g *Gateway) UpdatePlan(_ context.Context, plan planning.Plan) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.plans[plan.ID]; !ok {
		return planning.ErrPlanNotFound
	}
	g.plans[plan.ID] = plan
	return nil
}

func (g *Gateway) DeletePlan(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.plans, id)
	return nil
}

func (g *Gateway) PlansByPlanner(_ context.Context, planner uuid.UUID) ([]planning.Plan, error) {
	return g.filterPlans(func(p planning.Plan) bool { return p.Planner == planner }), nil
}

func (g *Gateway) PlansByCooperation(_ context.Context, cooperation uuid.UUID) ([]planning.Plan, error) {
	return g.filterPlans(func(p planning.Plan) bool {
		return p.Cooperation != nil && *p.Cooperation == cooperation
	}), nil
}

func (g *Gateway) ApprovedPlansAwaitingActivation(_ context.Context) ([]planning.Plan, error) {
	return g.filterPlans(func(p planning.Plan) bool {
		return p.IsApproved() && p.ActivatedAt == nil
	}), nil
}

func (g *Gateway) ActivePlans(_ context.Context, now time.Time) ([]planning.Plan, error) {
	return g.filterPlans(func(p planning.Plan) bool { return p.IsActiveAsOf(now) }), nil
}

func (g *Gateway) ExpiredPlans(_ context.Context, now time.Time) ([]planning.Plan, error) {
	return g.filterPlans(func(p planning.Plan) bool { return p.IsExpiredAsOf(now) }), nil
}

func (g *Gateway) filterPlans(keep func(planning.Plan) bool) []planning.Plan {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var result []planning.Plan
	for _, p := range g.plans {
		if keep(p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// =============================================================================
// COOPERATIONS
// =============================================================================

func (g *Gateway) CreateCooperation(_ context.Context, cooperation planning.Cooperation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cooperations[cooperation.ID] = cooperation
	return nil
}

func (g *Gateway) CooperationByID(_ context.Context, id uuid.UUID) (planning.Cooperation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	coop, ok := g.cooperations[id]
	if !ok {
		return planning.Cooperation{}, planning.ErrCooperationNotFound
	}
	return coop, nil
}

func (g *Gateway) UpdateCooperation(_ context.Context, cooperation planning.Cooperation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.cooperations[cooperation.ID]; !ok {
		return planning.ErrCooperationNotFound
	}
	g.cooperations[cooperation.ID] = cooperation
	return nil
}

func (g *Gateway) CreateCoordinationTransferRequest(_ context.Context, request planning.CoordinationTransferRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transferRequests[request.ID] = request
	return nil
}

func (g *Gateway) CoordinationTransferRequestByID(_ context.Context, id uuid.UUID) (planning.CoordinationTransferRequest, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	request, ok := g.transferRequests[id]
	if !ok {
		return planning.CoordinationTransferRequest{}, planning.ErrCooperationNotFound
	}
	return request, nil
}

func (g *Gateway) UpdateCoordinationTransferRequest(_ context.Context, request planning.CoordinationTransferRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transferRequests[request.ID] = request
	return nil
}

// =============================================================================
// CERTIFICATE PAYOUTS AND PAYOUT FACTORS
// =============================================================================

func (g *Gateway) RecordCertificatePayout(_ context.Context, plan, transfer uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payoutsByPlan[plan] = append(g.payoutsByPlan[plan], transfer)
	return nil
}

func (g *Gateway) CountCertificatePayouts(_ context.Context, plan uuid.UUID) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.payoutsByPlan[plan]), nil
}

func (g *Gateway) StorePayoutFactor(_ context.Context, factor payout.PayoutFactor) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.factors = append(g.factors, factor)
	return nil
}

func (g *Gateway) LatestPayoutFactor(_ context.Context) (payout.PayoutFactor, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.factors) == 0 {
		return payout.PayoutFactor{}, false, nil
	}
	latest := g.factors[0]
	for _, f := range g.factors[1:] {
		if f.CalculatedAt.After(latest.CalculatedAt) {
			latest = f
		}
	}
	return latest, true, nil
}
