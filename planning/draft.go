/*
draft.go - Draft creation, patch-style editing, and filing

A draft is the only mutable stage of a plan. Filing promotes it into a
filed (pending) plan: costs are copied, the creation timestamp is fixed,
and the draft is deleted.
*/
package planning

import (
	"context"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/google/uuid"
)

// DraftService manages plan drafts for their planning company.
type DraftService struct {
	Store Store
	Clock ledger.Clock
}

// CreateDraft stores a new draft owned by the planner.
func (s *DraftService) CreateDraft(ctx context.Context, draft PlanDraft) (PlanDraft, error) {
	if draft.Amount <= 0 || draft.Timeframe <= 0 {
		return PlanDraft{}, ErrInvalidDraft
	}
	draft.ID = uuid.New()
	draft.CreatedAt = s.Clock.Now()
	if err := s.Store.CreateDraft(ctx, draft); err != nil {
		return PlanDraft{}, err
	}
	return draft, nil
}

// UpdateDraft applies a patch field-by-field and writes the result in
// one atomic update. Only the owning planner may edit.
func (s *DraftService) UpdateDraft(ctx context.Context, planner, draftID uuid.UUID, patch DraftPatch) (PlanDraft, error) {
	draft, err := s.Store.DraftByID(ctx, draftID)
	if err != nil {
		return PlanDraft{}, err
	}
	if draft.Planner != planner {
		return PlanDraft{}, ErrNotAuthorized
	}
	if patch.ProductName != nil {
		draft.ProductName = *patch.ProductName
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	if patch.ProductionUnit != nil {
		draft.ProductionUnit = *patch.ProductionUnit
	}
	if patch.Amount != nil {
		draft.Amount = *patch.Amount
	}
	if patch.LabourCost != nil {
		draft.Costs.Labour = *patch.LabourCost
	}
	if patch.MeansCost != nil {
		draft.Costs.Means = *patch.MeansCost
	}
	if patch.ResourceCost != nil {
		draft.Costs.Resource = *patch.ResourceCost
	}
	if patch.Timeframe != nil {
		draft.Timeframe = *patch.Timeframe
	}
	if patch.IsPublicService != nil {
		draft.IsPublicService = *patch.IsPublicService
	}
	if draft.Amount <= 0 || draft.Timeframe <= 0 {
		return PlanDraft{}, ErrInvalidDraft
	}
	if err := s.Store.UpdateDraft(ctx, draft); err != nil {
		return PlanDraft{}, err
	}
	return draft, nil
}

// DeleteDraft discards a draft. Only the owning planner may discard.
func (s *DraftService) DeleteDraft(ctx context.Context, planner, draftID uuid.UUID) error {
	draft, err := s.Store.DraftByID(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Planner != planner {
		return ErrNotAuthorized
	}
	return s.Store.DeleteDraft(ctx, draftID)
}

// FilePlan promotes a draft into a filed plan pending review. The
// draft's costs are copied verbatim and the draft is discarded.
func (s *DraftService) FilePlan(ctx context.Context, planner, draftID uuid.UUID) (Plan, error) {
	draft, err := s.Store.DraftByID(ctx, draftID)
	if err != nil {
		return Plan{}, err
	}
	if draft.Planner != planner {
		return Plan{}, ErrNotAuthorized
	}
	plan := Plan{
		ID:              uuid.New(),
		Planner:         draft.Planner,
		Costs:           draft.Costs,
		ProductName:     draft.ProductName,
		Description:     draft.Description,
		ProductionUnit:  draft.ProductionUnit,
		Amount:          draft.Amount,
		Timeframe:       draft.Timeframe,
		IsPublicService: draft.IsPublicService,
		CreatedAt:       s.Clock.Now(),
	}
	if err := s.Store.CreatePlan(ctx, plan); err != nil {
		return Plan{}, err
	}
	if err := s.Store.DeleteDraft(ctx, draftID); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
