/*
store.go - Persistence interface for plans, drafts and cooperations

The lifecycle services depend only on the results of these explicit
query functions; how an implementation builds the queries (SQL, maps)
is its own business. Updates are single atomic whole-record writes.
*/
package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists plans, drafts, cooperations and certificate payouts.
type Store interface {
	// Drafts
	CreateDraft(ctx context.Context, draft PlanDraft) error
	DraftByID(ctx context.Context, id uuid.UUID) (PlanDraft, error)
	UpdateDraft(ctx context.Context, draft PlanDraft) error
	DeleteDraft(ctx context.Context, id uuid.UUID) error

	// Plans
	CreatePlan(ctx context.Context, plan Plan) error
	PlanByID(ctx context.Context, id uuid.UUID) (Plan, error)
	// UpdatePlan replaces the stored record in one atomic write.
	UpdatePlan(ctx context.Context, plan Plan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	PlansByPlanner(ctx context.Context, planner uuid.UUID) ([]Plan, error)

	// PlansByCooperation returns every plan whose cooperation id matches.
	PlansByCooperation(ctx context.Context, cooperation uuid.UUID) ([]Plan, error)

	// ApprovedPlansAwaitingActivation returns approved plans without an
	// activation date.
	ApprovedPlansAwaitingActivation(ctx context.Context) ([]Plan, error)

	// ActivePlans returns plans approved, activated at or before now,
	// and not expired as of now.
	ActivePlans(ctx context.Context, now time.Time) ([]Plan, error)

	// ExpiredPlans returns activated plans whose expiration date is at
	// or before now.
	ExpiredPlans(ctx context.Context, now time.Time) ([]Plan, error)

	// Cooperations
	CreateCooperation(ctx context.Context, cooperation Cooperation) error
	CooperationByID(ctx context.Context, id uuid.UUID) (Cooperation, error)
	UpdateCooperation(ctx context.Context, cooperation Cooperation) error

	// Coordination transfers
	CreateCoordinationTransferRequest(ctx context.Context, request CoordinationTransferRequest) error
	CoordinationTransferRequestByID(ctx context.Context, id uuid.UUID) (CoordinationTransferRequest, error)
	UpdateCoordinationTransferRequest(ctx context.Context, request CoordinationTransferRequest) error

	// Certificate payouts: one row per paid-out active day of a plan.
	RecordCertificatePayout(ctx context.Context, plan, transfer uuid.UUID) error
	CountCertificatePayouts(ctx context.Context, plan uuid.UUID) (int, error)
}
