/*
Package planning implements the production-plan lifecycle: drafts,
filing, approval, activation, expiration, and cooperation membership.

PURPOSE:
  Plans gate every other rule in the economy. The payout factor only
  counts approved, active, unexpired plans; prices depend on cooperation
  membership and expiration; consumption is only valid against an active
  plan. This package owns the records and the state machine, expressed
  as explicit predicates over injected timestamps.

STATES:
  Draft -> Filed(pending) -> {Approved, Rejected}
  Approved -> Active (at activation date) -> Expired (activation + timeframe)
  Orthogonal on an active plan:
  NotCooperating <-> RequestingCooperation -> Cooperating

SEE ALSO:
  - draft.go: Draft editing and filing
  - lifecycle.go: Approve / reject / activate / revoke
  - cooperation.go: Cooperation membership and the expiration sweep
*/
package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCTION COSTS
// =============================================================================

// ProductionCosts holds the three non-negative cost components of a plan.
// Immutable once the plan is filed.
type ProductionCosts struct {
	Labour   decimal.Decimal
	Means    decimal.Decimal
	Resource decimal.Decimal
}

func (c ProductionCosts) Total() decimal.Decimal {
	return c.Labour.Add(c.Means).Add(c.Resource)
}

func ZeroCosts() ProductionCosts {
	return ProductionCosts{Labour: decimal.Zero, Means: decimal.Zero, Resource: decimal.Zero}
}

// =============================================================================
// PLAN DRAFT
// =============================================================================

// PlanDraft is a mutable proposal. It is either discarded or promoted
// into a filed Plan, at which point the costs become immutable.
type PlanDraft struct {
	ID              uuid.UUID
	Planner         uuid.UUID
	ProductName     string
	Description     string
	ProductionUnit  string
	Amount          int64
	Costs           ProductionCosts
	Timeframe       int // days
	IsPublicService bool
	CreatedAt       time.Time
}

// DraftPatch applies optional field updates to a draft. Nil fields are
// left untouched.
type DraftPatch struct {
	ProductName     *string
	Description     *string
	ProductionUnit  *string
	Amount          *int64
	LabourCost      *decimal.Decimal
	MeansCost       *decimal.Decimal
	ResourceCost    *decimal.Decimal
	Timeframe       *int
	IsPublicService *bool
}

// =============================================================================
// PLAN
// =============================================================================

type Plan struct {
	ID              uuid.UUID
	Planner         uuid.UUID
	Costs           ProductionCosts
	ProductName     string
	Description     string
	ProductionUnit  string
	Amount          int64
	Timeframe       int // days
	IsPublicService bool
	CreatedAt       time.Time

	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	ActivatedAt *time.Time

	Cooperation          *uuid.UUID
	RequestedCooperation *uuid.UUID

	HiddenByUser            bool
	LastCertificatePayoutAt *time.Time
}

// ExpectedSalesValue is the value the plan is expected to sell for.
// Public services give their product away and expect no sales.
func (p Plan) ExpectedSalesValue() decimal.Decimal {
	if p.IsPublicService {
		return decimal.Zero
	}
	return p.Costs.Total()
}

func (p Plan) IsApproved() bool {
	return p.ApprovedAt != nil && p.RejectedAt == nil
}

func (p Plan) IsRejected() bool {
	return p.RejectedAt != nil && p.ApprovedAt == nil
}

// ExpirationDate is the activation date truncated to its UTC day plus
// the plan's timeframe. Nil while the plan has not been activated.
func (p Plan) ExpirationDate() *time.Time {
	if p.ActivatedAt == nil {
		return nil
	}
	day := p.ActivatedAt.UTC().Truncate(24 * time.Hour)
	exp := day.AddDate(0, 0, p.Timeframe)
	return &exp
}

// IsActiveAsOf reports whether the plan is approved, activated at or
// before t, and not yet expired at t.
func (p Plan) IsActiveAsOf(t time.Time) bool {
	return p.IsApproved() &&
		p.ActivatedAt != nil &&
		!p.ActivatedAt.After(t) &&
		!p.IsExpiredAsOf(t)
}

// IsExpiredAsOf reports whether the plan's expiration date has passed.
func (p Plan) IsExpiredAsOf(t time.Time) bool {
	exp := p.ExpirationDate()
	return exp != nil && !t.Before(*exp)
}

// ActiveDays returns the full days the plan has been active at t,
// capped at the timeframe. Nil when the plan was never activated.
func (p Plan) ActiveDays(t time.Time) *int {
	if p.ActivatedAt == nil {
		return nil
	}
	days := int(t.Sub(*p.ActivatedAt).Hours() / 24)
	if days > p.Timeframe {
		days = p.Timeframe
	}
	if days < 0 {
		days = 0
	}
	return &days
}

// IsCooperating reports whether the plan is currently a cooperation member.
func (p Plan) IsCooperating() bool {
	return p.Cooperation != nil
}

// =============================================================================
// COOPERATION
// =============================================================================

// Cooperation is a named group of mutually agreeing productive plans
// sharing one computed price. The coordinator is a company.
type Cooperation struct {
	ID          uuid.UUID
	Name        string
	Definition  string
	Coordinator uuid.UUID
	Account     uuid.UUID
	CreatedAt   time.Time
}

// CoordinationTransferRequest asks a candidate company to take over
// coordination of a cooperation.
type CoordinationTransferRequest struct {
	ID          uuid.UUID
	Cooperation uuid.UUID
	Candidate   uuid.UUID
	RequestedAt time.Time
	AcceptedAt  *time.Time
}
