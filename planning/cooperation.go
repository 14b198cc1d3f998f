/*
cooperation.go - Cooperation membership and the expiration sweep

A plan joins a cooperation by mutual consent: the planner requests, the
cooperation's current coordinator accepts. Membership ends on explicit
termination or on the plan's own expiration - the periodic sweep clears
cooperation fields of expired plans and is idempotent.
*/
package planning

import (
	"context"
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/google/uuid"
)

// CooperationService manages cooperation membership.
type CooperationService struct {
	Store  Store
	Owners ledger.OwnerStore
	Clock  ledger.Clock
}

// CreateCooperation registers a new cooperation coordinated by the
// founding company. The cooperation's account must already exist.
func (s *CooperationService) CreateCooperation(ctx context.Context, name, definition string, coordinator, account uuid.UUID) (Cooperation, error) {
	coop := Cooperation{
		ID:          uuid.New(),
		Name:        name,
		Definition:  definition,
		Coordinator: coordinator,
		Account:     account,
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Store.CreateCooperation(ctx, coop); err != nil {
		return Cooperation{}, err
	}
	return coop, nil
}

// RequestCooperation files a membership request. Only a non-public,
// currently active, not-already-cooperating plan without a pending
// request may request, and only through its own planner.
func (s *CooperationService) RequestCooperation(ctx context.Context, planner, planID, cooperationID uuid.UUID) error {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Planner != planner {
		return ErrNotAuthorized
	}
	if plan.IsPublicService {
		return ErrPublicServicePlan
	}
	if !plan.IsActiveAsOf(s.Clock.Now()) {
		return ErrPlanInactive
	}
	if plan.IsCooperating() {
		return ErrAlreadyCooperating
	}
	if plan.RequestedCooperation != nil {
		return ErrRequestPending
	}
	if _, err := s.Store.CooperationByID(ctx, cooperationID); err != nil {
		return err
	}
	plan.RequestedCooperation = &cooperationID
	return s.Store.UpdatePlan(ctx, plan)
}

// AcceptRequest lets the cooperation's coordinator accept a pending
// request. The request is cleared and the cooperation id set in one
// atomic plan update.
func (s *CooperationService) AcceptRequest(ctx context.Context, coordinator, planID, cooperationID uuid.UUID) error {
	plan, coop, err := s.pendingRequest(ctx, coordinator, planID, cooperationID)
	if err != nil {
		return err
	}
	if plan.IsCooperating() {
		return ErrAlreadyCooperating
	}
	plan.RequestedCooperation = nil
	plan.Cooperation = &coop.ID
	return s.Store.UpdatePlan(ctx, plan)
}

// DenyRequest lets the coordinator reject a pending request.
func (s *CooperationService) DenyRequest(ctx context.Context, coordinator, planID, cooperationID uuid.UUID) error {
	plan, _, err := s.pendingRequest(ctx, coordinator, planID, cooperationID)
	if err != nil {
		return err
	}
	plan.RequestedCooperation = nil
	return s.Store.UpdatePlan(ctx, plan)
}

// CancelRequest lets the requesting planner withdraw a pending request.
// No other side effects.
func (s *CooperationService) CancelRequest(ctx context.Context, planner, planID uuid.UUID) error {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Planner != planner {
		return ErrNotAuthorized
	}
	if plan.RequestedCooperation == nil {
		return ErrCooperationNotRequested
	}
	plan.RequestedCooperation = nil
	return s.Store.UpdatePlan(ctx, plan)
}

// EndCooperation terminates a plan's membership. Either the planner or
// the cooperation's coordinator may end it.
func (s *CooperationService) EndCooperation(ctx context.Context, requester, planID, cooperationID uuid.UUID) error {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Cooperation == nil || *plan.Cooperation != cooperationID {
		return ErrCooperationNotRequested
	}
	coop, err := s.Store.CooperationByID(ctx, cooperationID)
	if err != nil {
		return err
	}
	if requester != plan.Planner && requester != coop.Coordinator {
		return ErrNotAuthorized
	}
	plan.Cooperation = nil
	return s.Store.UpdatePlan(ctx, plan)
}

// ExpireSweep clears cooperation and cooperation-request fields of
// every plan expired as of now. Expired plans cannot remain members.
// Re-running on already-cleared plans is a no-op.
func (s *CooperationService) ExpireSweep(ctx context.Context, now time.Time) error {
	expired, err := s.Store.ExpiredPlans(ctx, now)
	if err != nil {
		return err
	}
	for _, plan := range expired {
		if plan.Cooperation == nil && plan.RequestedCooperation == nil {
			continue
		}
		plan.Cooperation = nil
		plan.RequestedCooperation = nil
		if err := s.Store.UpdatePlan(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}

// pendingRequest loads the plan and cooperation and validates that the
// coordinator owns a pending request targeting the cooperation.
func (s *CooperationService) pendingRequest(ctx context.Context, coordinator, planID, cooperationID uuid.UUID) (Plan, Cooperation, error) {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return Plan{}, Cooperation{}, err
	}
	coop, err := s.Store.CooperationByID(ctx, cooperationID)
	if err != nil {
		return Plan{}, Cooperation{}, err
	}
	if coop.Coordinator != coordinator {
		return Plan{}, Cooperation{}, ErrNotAuthorized
	}
	if plan.RequestedCooperation == nil || *plan.RequestedCooperation != cooperationID {
		return Plan{}, Cooperation{}, ErrCooperationNotRequested
	}
	return plan, coop, nil
}

// =============================================================================
// COORDINATION TRANSFER
// =============================================================================

// RequestCoordinationTransfer asks a candidate company to take over
// coordination. Only the current coordinator may ask.
func (s *CooperationService) RequestCoordinationTransfer(ctx context.Context, coordinator, cooperationID, candidate uuid.UUID) (CoordinationTransferRequest, error) {
	coop, err := s.Store.CooperationByID(ctx, cooperationID)
	if err != nil {
		return CoordinationTransferRequest{}, err
	}
	if coop.Coordinator != coordinator {
		return CoordinationTransferRequest{}, ErrNotAuthorized
	}
	if _, err := s.Owners.CompanyByID(ctx, candidate); err != nil {
		return CoordinationTransferRequest{}, err
	}
	request := CoordinationTransferRequest{
		ID:          uuid.New(),
		Cooperation: cooperationID,
		Candidate:   candidate,
		RequestedAt: s.Clock.Now(),
	}
	if err := s.Store.CreateCoordinationTransferRequest(ctx, request); err != nil {
		return CoordinationTransferRequest{}, err
	}
	return request, nil
}

// AcceptCoordinationTransfer lets the candidate accept and become the
// cooperation's coordinator.
func (s *CooperationService) AcceptCoordinationTransfer(ctx context.Context, candidate, requestID uuid.UUID) error {
	request, err := s.Store.CoordinationTransferRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Candidate != candidate {
		return ErrNotAuthorized
	}
	if request.AcceptedAt != nil {
		return ErrCooperationNotRequested
	}
	coop, err := s.Store.CooperationByID(ctx, request.Cooperation)
	if err != nil {
		return err
	}
	now := s.Clock.Now()
	request.AcceptedAt = &now
	if err := s.Store.UpdateCoordinationTransferRequest(ctx, request); err != nil {
		return err
	}
	coop.Coordinator = candidate
	return s.Store.UpdateCooperation(ctx, coop)
}
