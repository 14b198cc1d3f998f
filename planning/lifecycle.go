/*
lifecycle.go - Approve / reject / activate / revoke

TRANSITIONS:
  Filed -> Approved | Rejected   single timestamped decision
  Approved -> Active             at activation, credit is granted by the
                                 economy package
  Filed or Approved-not-active -> Draft   revocation by the planner

Revocation is refused once a plan is active-and-unexpired or expired.
A revoked filing becomes an editable draft again with the original
costs, name, unit, amount, timeframe and public-service flag unchanged.
*/
package planning

import (
	"context"
	"fmt"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/google/uuid"
)

// LifecycleService drives plan state transitions.
type LifecycleService struct {
	Store Store
	Clock ledger.Clock
}

// Approve marks a filed plan as approved. A plan that was already
// decided is rejected with ErrPlanAlreadyDecided.
func (s *LifecycleService) Approve(ctx context.Context, planID uuid.UUID) (Plan, error) {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if plan.ApprovedAt != nil || plan.RejectedAt != nil {
		return Plan{}, ErrPlanAlreadyDecided
	}
	now := s.Clock.Now()
	plan.ApprovedAt = &now
	if err := s.Store.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Reject marks a filed plan as rejected.
func (s *LifecycleService) Reject(ctx context.Context, planID uuid.UUID) (Plan, error) {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if plan.ApprovedAt != nil || plan.RejectedAt != nil {
		return Plan{}, ErrPlanAlreadyDecided
	}
	now := s.Clock.Now()
	plan.RejectedAt = &now
	if err := s.Store.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Activate sets the activation date of an approved plan. The expiration
// date follows deterministically from it.
func (s *LifecycleService) Activate(ctx context.Context, planID uuid.UUID) (Plan, error) {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if !plan.IsApproved() {
		// Activation is only reachable through the approval queue.
		panic(fmt.Sprintf("planning: activating unapproved plan %s", plan.ID))
	}
	if plan.ActivatedAt != nil {
		return plan, nil
	}
	now := s.Clock.Now()
	plan.ActivatedAt = &now
	if err := s.Store.UpdatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Hide flags a rejected or expired plan as hidden from the planner's
// lists. Active plans cannot be hidden.
func (s *LifecycleService) Hide(ctx context.Context, planner, planID uuid.UUID) error {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Planner != planner {
		return ErrNotAuthorized
	}
	now := s.Clock.Now()
	if plan.IsActiveAsOf(now) {
		return ErrPlanIsActive
	}
	plan.HiddenByUser = true
	return s.Store.UpdatePlan(ctx, plan)
}

// RevokeFiling turns a filed plan back into an editable draft. Only the
// planner may revoke, and only while the plan is neither currently
// active-and-unexpired nor already expired: that is, filed-but-not-yet-
// approved, or approved-but-not-yet-activated. The draft carries the
// original costs and product data verbatim; the plan is deleted.
func (s *LifecycleService) RevokeFiling(ctx context.Context, planner, planID uuid.UUID) (PlanDraft, error) {
	plan, err := s.Store.PlanByID(ctx, planID)
	if err != nil {
		return PlanDraft{}, err
	}
	if plan.Planner != planner {
		return PlanDraft{}, ErrNotAuthorized
	}
	now := s.Clock.Now()
	if plan.IsExpiredAsOf(now) {
		return PlanDraft{}, ErrPlanIsExpired
	}
	if plan.IsActiveAsOf(now) {
		return PlanDraft{}, ErrPlanIsActive
	}
	draft := PlanDraft{
		ID:              uuid.New(),
		Planner:         plan.Planner,
		ProductName:     plan.ProductName,
		Description:     plan.Description,
		ProductionUnit:  plan.ProductionUnit,
		Amount:          plan.Amount,
		Costs:           plan.Costs,
		Timeframe:       plan.Timeframe,
		IsPublicService: plan.IsPublicService,
		CreatedAt:       now,
	}
	if err := s.Store.CreateDraft(ctx, draft); err != nil {
		return PlanDraft{}, err
	}
	if err := s.Store.DeletePlan(ctx, planID); err != nil {
		return PlanDraft{}, err
	}
	return draft, nil
}
