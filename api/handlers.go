/*
handlers.go - HTTP API handlers for the planned economy accounting core

PURPOSE:
  Exposes the accounting core via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Members:
    POST   /api/members                  Register member
    GET    /api/members/{id}             Member with certificate balance
    GET    /api/members/{id}/transfers   Transfer history

  Companies:
    POST   /api/companies                Register company
    GET    /api/companies/{id}           Company with its four balances
    POST   /api/companies/{id}/workers   Add a worker
    POST   /api/companies/{id}/hours     Register hours worked

  Drafts and plans:
    POST   /api/drafts                   Create plan draft
    PUT    /api/drafts/{id}              Patch draft
    DELETE /api/drafts/{id}              Delete draft
    POST   /api/drafts/{id}/file         File draft as plan
    GET    /api/plans/{id}               Plan with status and price
    POST   /api/plans/{id}/approve       Approve plan
    POST   /api/plans/{id}/reject        Reject plan
    POST   /api/plans/{id}/hide          Hide rejected/expired plan
    POST   /api/plans/{id}/revoke        Revoke filing back to draft

  Cooperations:
    POST   /api/cooperations                        Register cooperation
    GET    /api/cooperations/{id}                   Cooperation details
    GET    /api/cooperations/{id}/plans             Member plans
    POST   /api/plans/{id}/cooperation/request      Request membership
    POST   /api/plans/{id}/cooperation/accept       Accept request
    POST   /api/plans/{id}/cooperation/deny         Deny request
    POST   /api/plans/{id}/cooperation/cancel       Cancel own request
    POST   /api/plans/{id}/cooperation/end          End membership
    POST   /api/cooperations/{id}/coordination      Request handover
    POST   /api/coordination-transfers/{id}/accept  Accept handover

  Consumption:
    POST   /api/consumption/private      Member consumes a plan's product
    POST   /api/consumption/productive   Company consumes a plan's product

  Economy:
    GET    /api/payout-factor            Current payout factor
    GET    /api/statistics               Economy summary
    POST   /api/admin/activate-plans     Process activation queue
    POST   /api/admin/update             Run the daily payout cycle

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 403: Actor is not authorized for the operation
  - 404: Resource not found
  - 409: Conflict (plan already decided, still active, insufficient balance)
  - 500: Internal errors

SECURITY NOTE:
  Actor identity comes from request bodies; there is no authentication
  layer. Deploy behind an authenticating proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/commonplan/certeconomy/economy"
	"github.com/commonplan/certeconomy/giro"
	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/commonplan/certeconomy/pricing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Gateway is the combined persistence surface the API needs.
type Gateway interface {
	ledger.OwnerStore
	planning.Store
	payout.Store
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Gateway
	Ledger *ledger.Ledger
	Clock  ledger.Clock

	Pricing      *pricing.Calculator
	Payout       *payout.Service
	Drafts       *planning.DraftService
	Lifecycle    *planning.LifecycleService
	Cooperations *planning.CooperationService

	Registration          *economy.Registration
	HoursWorked           *economy.RegisterHoursWorked
	PrivateConsumption    *economy.RegisterPrivateConsumption
	ProductiveConsumption *economy.RegisterProductiveConsumption
	ActivatePlans         *economy.ActivatePlans
	PayoutCycle           *economy.UpdatePlansAndPayout
}

// NewHandler wires every service on top of the given gateway.
func NewHandler(store Gateway, clock ledger.Clock, allowedOverdraw decimal.Decimal) *Handler {
	led := ledger.New(store)
	payoutSvc := &payout.Service{Plans: store, Store: store}
	calculator := &pricing.Calculator{Store: store}
	lifecycle := &planning.LifecycleService{Store: store, Clock: clock}
	cooperations := &planning.CooperationService{Store: store, Owners: store, Clock: clock}
	office := &giro.Office{Ledger: led, Clock: clock, AllowedOverdraw: allowedOverdraw}

	return &Handler{
		Store:        store,
		Ledger:       led,
		Clock:        clock,
		Pricing:      calculator,
		Payout:       payoutSvc,
		Drafts:       &planning.DraftService{Store: store, Clock: clock},
		Lifecycle:    lifecycle,
		Cooperations: cooperations,
		Registration: &economy.Registration{Owners: store, Cooperations: cooperations, Clock: clock},
		HoursWorked:  &economy.RegisterHoursWorked{Owners: store, Ledger: led, Payout: payoutSvc, Clock: clock},
		PrivateConsumption: &economy.RegisterPrivateConsumption{
			Owners: store, Plans: store, Pricing: calculator, Giro: office, Clock: clock,
		},
		ProductiveConsumption: &economy.RegisterProductiveConsumption{
			Owners: store, Plans: store, Pricing: calculator, Ledger: led, Clock: clock,
		},
		ActivatePlans: &economy.ActivatePlans{
			Owners: store, Plans: store, Ledger: led, Lifecycle: lifecycle, Clock: clock,
		},
		PayoutCycle: &economy.UpdatePlansAndPayout{
			Owners: store, Plans: store, Ledger: led, Payout: payoutSvc,
			Cooperations: cooperations, Clock: clock,
		},
	}
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// RegisterMember creates a member with a certificate account.
func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	member, err := h.Registration.RegisterMember(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register member", err)
		return
	}

	writeJSON(w, http.StatusCreated, MemberDTO{
		ID:           member.ID.String(),
		Name:         member.Name,
		Account:      member.Account.String(),
		RegisteredOn: member.RegisteredOn.Format(time.RFC3339),
	})
}

// GetMember returns a member with their certificate balance.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.Store.MemberByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get member", err)
		return
	}
	balance, err := h.Ledger.Balance(r.Context(), member.Account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate balance", err)
		return
	}

	writeJSON(w, http.StatusOK, MemberDTO{
		ID:           member.ID.String(),
		Name:         member.Name,
		Account:      member.Account.String(),
		Balance:      balance.String(),
		RegisteredOn: member.RegisteredOn.Format(time.RFC3339),
	})
}

// GetMemberTransfers returns a member's transfer history.
func (h *Handler) GetMemberTransfers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.Store.MemberByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get member", err)
		return
	}
	transfers, err := h.Ledger.Transfers(r.Context(), member.Account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transfers", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransferDTOs(transfers))
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// RegisterCompany creates a company with its four accounts.
func (h *Handler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req RegisterCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	company, err := h.Registration.RegisterCompany(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register company", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.companyDTO(r, company, false))
}

// GetCompany returns a company with its four account balances.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	company, err := h.Store.CompanyByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get company", err)
		return
	}

	writeJSON(w, http.StatusOK, h.companyDTO(r, company, true))
}

func (h *Handler) companyDTO(r *http.Request, company ledger.Company, withBalances bool) CompanyDTO {
	dto := CompanyDTO{
		ID:   company.ID.String(),
		Name: company.Name,
		Accounts: map[string]string{
			"means":     company.MeansAccount.String(),
			"resources": company.ResourcesAccount.String(),
			"labour":    company.LabourAccount.String(),
			"product":   company.ProductAccount.String(),
		},
		RegisteredOn: company.RegisteredOn.Format(time.RFC3339),
	}
	if !withBalances {
		return dto
	}
	dto.Balances = make(map[string]string, 4)
	for name, account := range map[string]uuid.UUID{
		"means":     company.MeansAccount,
		"resources": company.ResourcesAccount,
		"labour":    company.LabourAccount,
		"product":   company.ProductAccount,
	} {
		balance, err := h.Ledger.Balance(r.Context(), account)
		if err != nil {
			continue
		}
		dto.Balances[name] = balance.String()
	}
	return dto
}

// AddWorker registers a member as part of a company's workforce.
func (h *Handler) AddWorker(w http.ResponseWriter, r *http.Request) {
	companyID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req RegisterWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	memberID, err := uuid.Parse(req.Member)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id", err)
		return
	}

	if _, err := h.Store.CompanyByID(r.Context(), companyID); err != nil {
		writeDomainError(w, "Failed to get company", err)
		return
	}
	if _, err := h.Store.MemberByID(r.Context(), memberID); err != nil {
		writeDomainError(w, "Failed to get member", err)
		return
	}
	if err := h.Store.RegisterWorker(r.Context(), companyID, memberID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register worker", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "registered"})
}

// RegisterHours posts a work-certificates transfer for hours worked.
func (h *Handler) RegisterHours(w http.ResponseWriter, r *http.Request) {
	companyID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req RegisterHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	workerID, err := uuid.Parse(req.Worker)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid worker id", err)
		return
	}
	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours value", err)
		return
	}

	transfer, err := h.HoursWorked.Register(r.Context(), companyID, workerID, hours)
	if err != nil {
		writeDomainError(w, "Failed to register hours", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransferDTO(transfer))
}

// =============================================================================
// DRAFT HANDLERS
// =============================================================================

// CreateDraft stores a new plan draft.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	planner, err := uuid.Parse(req.Planner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid planner id", err)
		return
	}
	costs, err := parseCosts(req.Costs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid costs", err)
		return
	}
	if req.Timeframe <= 0 {
		writeError(w, http.StatusBadRequest, "Timeframe must be positive", nil)
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive", nil)
		return
	}

	draft, err := h.Drafts.CreateDraft(r.Context(), planning.PlanDraft{
		Planner:         planner,
		ProductName:     req.ProductName,
		Description:     req.Description,
		ProductionUnit:  req.ProductionUnit,
		Amount:          req.Amount,
		Costs:           costs,
		Timeframe:       req.Timeframe,
		IsPublicService: req.IsPublicService,
	})
	if err != nil {
		writeDomainError(w, "Failed to create draft", err)
		return
	}

	writeJSON(w, http.StatusCreated, toDraftDTO(draft))
}

// UpdateDraft patches a draft's fields.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	planner, err := uuid.Parse(req.Planner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid planner id", err)
		return
	}

	patch := planning.DraftPatch{
		ProductName:     req.ProductName,
		Description:     req.Description,
		ProductionUnit:  req.ProductionUnit,
		Amount:          req.Amount,
		Timeframe:       req.Timeframe,
		IsPublicService: req.IsPublicService,
	}
	if req.Costs != nil {
		costs, err := parseCosts(*req.Costs)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid costs", err)
			return
		}
		patch.LabourCost = &costs.Labour
		patch.MeansCost = &costs.Means
		patch.ResourceCost = &costs.Resource
	}

	draft, err := h.Drafts.UpdateDraft(r.Context(), planner, draftID, patch)
	if err != nil {
		writeDomainError(w, "Failed to update draft", err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftDTO(draft))
}

// DeleteDraft removes a draft.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	planner, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return
	}

	if err := h.Drafts.DeleteDraft(r.Context(), planner, draftID); err != nil {
		writeDomainError(w, "Failed to delete draft", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// FileDraft converts a draft into a filed plan awaiting approval.
func (h *Handler) FileDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	planner, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return
	}

	plan, err := h.Drafts.FilePlan(r.Context(), planner, draftID)
	if err != nil {
		writeDomainError(w, "Failed to file plan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlanDTO(plan, h.Clock.Now()))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// GetPlan returns a plan with its lifecycle status and current price.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	plan, err := h.Store.PlanByID(r.Context(), planID)
	if err != nil {
		writeDomainError(w, "Failed to get plan", err)
		return
	}

	now := h.Clock.Now()
	dto := toPlanDTO(plan, now)
	if plan.IsActiveAsOf(now) {
		price, err := h.Pricing.Price(r.Context(), plan, now)
		if err == nil {
			dto.Price = price.String()
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// ApprovePlan marks a filed plan as approved.
func (h *Handler) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	h.decidePlan(w, r, h.Lifecycle.Approve)
}

// RejectPlan marks a filed plan as rejected.
func (h *Handler) RejectPlan(w http.ResponseWriter, r *http.Request) {
	h.decidePlan(w, r, h.Lifecycle.Reject)
}

func (h *Handler) decidePlan(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id uuid.UUID) (planning.Plan, error)) {
	planID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	plan, err := decide(r.Context(), planID)
	if err != nil {
		writeDomainError(w, "Failed to decide plan", err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanDTO(plan, h.Clock.Now()))
}

// HidePlan flags a rejected or expired plan as hidden.
func (h *Handler) HidePlan(w http.ResponseWriter, r *http.Request) {
	planID, actor, ok := parsePlanActor(w, r)
	if !ok {
		return
	}

	if err := h.Lifecycle.Hide(r.Context(), actor, planID); err != nil {
		writeDomainError(w, "Failed to hide plan", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "hidden"})
}

// RevokePlan converts an undecided or approved-but-inactive plan back
// into a draft.
func (h *Handler) RevokePlan(w http.ResponseWriter, r *http.Request) {
	planID, actor, ok := parsePlanActor(w, r)
	if !ok {
		return
	}

	draft, err := h.Lifecycle.RevokeFiling(r.Context(), actor, planID)
	if err != nil {
		writeDomainError(w, "Failed to revoke filing", err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftDTO(draft))
}

// =============================================================================
// COOPERATION HANDLERS
// =============================================================================

// CreateCooperation registers a cooperation coordinated by a company.
func (h *Handler) CreateCooperation(w http.ResponseWriter, r *http.Request) {
	var req CreateCooperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	coordinator, err := uuid.Parse(req.Coordinator)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid coordinator id", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	coop, err := h.Registration.RegisterCooperation(r.Context(), req.Name, req.Definition, coordinator)
	if err != nil {
		writeDomainError(w, "Failed to create cooperation", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCooperationDTO(coop))
}

// GetCooperation returns a cooperation.
func (h *Handler) GetCooperation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	coop, err := h.Store.CooperationByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get cooperation", err)
		return
	}

	writeJSON(w, http.StatusOK, toCooperationDTO(coop))
}

// GetCooperationPlans returns the plans currently in a cooperation.
func (h *Handler) GetCooperationPlans(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.Store.CooperationByID(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get cooperation", err)
		return
	}
	plans, err := h.Store.PlansByCooperation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}

	now := h.Clock.Now()
	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanDTO(p, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RequestCooperation asks a cooperation to admit a plan.
func (h *Handler) RequestCooperation(w http.ResponseWriter, r *http.Request) {
	h.cooperationAction(w, r, h.Cooperations.RequestCooperation, "requested")
}

// AcceptCooperation admits a plan that requested membership.
func (h *Handler) AcceptCooperation(w http.ResponseWriter, r *http.Request) {
	h.cooperationAction(w, r, h.Cooperations.AcceptRequest, "accepted")
}

// DenyCooperation denies a plan's membership request.
func (h *Handler) DenyCooperation(w http.ResponseWriter, r *http.Request) {
	h.cooperationAction(w, r, h.Cooperations.DenyRequest, "denied")
}

// EndCooperation removes a plan from its cooperation.
func (h *Handler) EndCooperation(w http.ResponseWriter, r *http.Request) {
	h.cooperationAction(w, r, h.Cooperations.EndCooperation, "ended")
}

func (h *Handler) cooperationAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, actor, plan, cooperation uuid.UUID) error,
	status string,
) {
	planID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req CooperationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actor, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return
	}
	coopID, err := uuid.Parse(req.Cooperation)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cooperation id", err)
		return
	}

	if err := action(r.Context(), actor, planID, coopID); err != nil {
		writeDomainError(w, "Cooperation action failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

// CancelCooperationRequest withdraws a plan's pending membership request.
func (h *Handler) CancelCooperationRequest(w http.ResponseWriter, r *http.Request) {
	planID, actor, ok := parsePlanActor(w, r)
	if !ok {
		return
	}

	if err := h.Cooperations.CancelRequest(r.Context(), actor, planID); err != nil {
		writeDomainError(w, "Failed to cancel request", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "cancelled"})
}

// RequestCoordinationTransfer asks a company to take over coordination.
func (h *Handler) RequestCoordinationTransfer(w http.ResponseWriter, r *http.Request) {
	coopID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Actor     string `json:"actor"`
		Candidate string `json:"candidate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actor, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return
	}
	candidate, err := uuid.Parse(req.Candidate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid candidate id", err)
		return
	}

	request, err := h.Cooperations.RequestCoordinationTransfer(r.Context(), actor, coopID, candidate)
	if err != nil {
		writeDomainError(w, "Failed to request coordination transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, CoordinationTransferRequestDTO{
		ID:          request.ID.String(),
		Cooperation: request.Cooperation.String(),
		Candidate:   request.Candidate.String(),
		RequestedAt: request.RequestedAt.Format(time.RFC3339),
	})
}

// AcceptCoordinationTransfer completes a coordination handover.
func (h *Handler) AcceptCoordinationTransfer(w http.ResponseWriter, r *http.Request) {
	requestID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	actor, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return
	}

	if err := h.Cooperations.AcceptCoordinationTransfer(r.Context(), actor, requestID); err != nil {
		writeDomainError(w, "Failed to accept coordination transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "accepted"})
}

// =============================================================================
// CONSUMPTION HANDLERS
// =============================================================================

// RegisterPrivateConsumption posts a member's consumption of a plan's
// product through the giro office.
func (h *Handler) RegisterPrivateConsumption(w http.ResponseWriter, r *http.Request) {
	var req PrivateConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	consumer, err := uuid.Parse(req.Consumer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid consumer id", err)
		return
	}
	planID, err := uuid.Parse(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan id", err)
		return
	}

	transaction, err := h.PrivateConsumption.Register(r.Context(), consumer, planID, req.Amount)
	if err != nil {
		writeDomainError(w, "Failed to register consumption", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sent_leg":     toTransferDTO(transaction.SentLeg),
		"received_leg": toTransferDTO(transaction.ReceivedLeg),
	})
}

// RegisterProductiveConsumption posts a company's consumption of a
// plan's product as means of production or raw materials.
func (h *Handler) RegisterProductiveConsumption(w http.ResponseWriter, r *http.Request) {
	var req ProductiveConsumptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	consumer, err := uuid.Parse(req.Consumer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid consumer id", err)
		return
	}
	planID, err := uuid.Parse(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan id", err)
		return
	}
	var purpose economy.ConsumptionPurpose
	switch req.Purpose {
	case "means_of_production":
		purpose = economy.PurposeMeansOfProduction
	case "raw_materials":
		purpose = economy.PurposeRawMaterials
	default:
		writeError(w, http.StatusBadRequest, "Purpose must be means_of_production or raw_materials", nil)
		return
	}

	transfer, err := h.ProductiveConsumption.Register(r.Context(), consumer, planID, req.Amount, purpose)
	if err != nil {
		writeDomainError(w, "Failed to register consumption", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransferDTO(transfer))
}

// =============================================================================
// ECONOMY HANDLERS
// =============================================================================

// GetPayoutFactor returns the most recently calculated payout factor.
func (h *Handler) GetPayoutFactor(w http.ResponseWriter, r *http.Request) {
	factor, ok, err := h.Store.LatestPayoutFactor(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payout factor", err)
		return
	}
	if !ok {
		// Nothing calculated yet: hours pay out one to one.
		writeJSON(w, http.StatusOK, PayoutFactorDTO{Value: "1"})
		return
	}

	writeJSON(w, http.StatusOK, PayoutFactorDTO{
		Value:        factor.Value.String(),
		CalculatedAt: factor.CalculatedAt.Format(time.RFC3339),
	})
}

// GetStatistics returns a summary of the economy's state.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	now := h.Clock.Now()
	plans, err := h.Store.ActivePlans(r.Context(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list active plans", err)
		return
	}
	factor, err := h.Payout.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payout factor", err)
		return
	}

	writeJSON(w, http.StatusOK, StatisticsDTO{
		ActivePlans:  len(plans),
		PayoutFactor: factor.String(),
		AsOf:         now.Format(time.RFC3339),
	})
}

// TriggerActivation processes the activation queue, granting credit to
// each approved plan.
func (h *Handler) TriggerActivation(w http.ResponseWriter, r *http.Request) {
	count, err := h.ActivatePlans.Activate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to activate plans", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activated": count})
}

// TriggerPayoutCycle recalculates the payout factor, pays out due
// certificates and sweeps expired cooperations.
func (h *Handler) TriggerPayoutCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.PayoutCycle.Run(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to run payout cycle", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "completed"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

func parsePlanActor(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	planID, ok := parseID(w, r, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return uuid.Nil, uuid.Nil, false
	}
	actor, err := uuid.Parse(req.Actor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid actor id", err)
		return uuid.Nil, uuid.Nil, false
	}
	return planID, actor, true
}

func parseCosts(dto CostsDTO) (planning.ProductionCosts, error) {
	labour, err := decimal.NewFromString(dto.Labour)
	if err != nil {
		return planning.ProductionCosts{}, err
	}
	means, err := decimal.NewFromString(dto.Means)
	if err != nil {
		return planning.ProductionCosts{}, err
	}
	resource, err := decimal.NewFromString(dto.Resource)
	if err != nil {
		return planning.ProductionCosts{}, err
	}
	return planning.ProductionCosts{Labour: labour, Means: means, Resource: resource}, nil
}

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err),
		errors.Is(err, planning.ErrPlanNotFound),
		errors.Is(err, planning.ErrDraftNotFound),
		errors.Is(err, planning.ErrCooperationNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, planning.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, planning.ErrPlanIsActive),
		errors.Is(err, planning.ErrPlanIsExpired),
		errors.Is(err, planning.ErrPlanAlreadyDecided),
		errors.Is(err, planning.ErrAlreadyCooperating),
		errors.Is(err, planning.ErrRequestPending),
		errors.Is(err, planning.ErrCooperationNotRequested):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, planning.ErrPlanInactive),
		errors.Is(err, planning.ErrPublicServicePlan),
		errors.Is(err, planning.ErrInvalidDraft),
		errors.Is(err, economy.ErrHoursNotPositive),
		errors.Is(err, economy.ErrAmountNotPositive),
		errors.Is(err, economy.ErrWorkerNotAtCompany),
		errors.Is(err, economy.ErrConsumerIsPlanner),
		errors.Is(err, economy.ErrCannotConsumePublicService):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
