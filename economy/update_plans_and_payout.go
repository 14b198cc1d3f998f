/*
update_plans_and_payout.go - The periodic payout-and-expire sweep

Run at least once per day, preferably more often. The sweep recomputes
and stores the payout factor, pays work certificates for every active
plan day that has not been paid yet, settles overdue payouts of expired
plans, and clears cooperation membership of expired plans.

The sweep is idempotent: the per-plan payout count caps how many daily
payouts are still owed, so re-running on the same "now" pays nothing
twice and re-clearing cooperation fields is a no-op.
*/
package economy

import (
	"context"
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/commonplan/certeconomy/planning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdatePlansAndPayout is the periodic maintenance sweep.
type UpdatePlansAndPayout struct {
	Owners       ledger.OwnerStore
	Plans        planning.Store
	Ledger       *ledger.Ledger
	Payout       *payout.Service
	Cooperations *planning.CooperationService
	Clock        ledger.Clock
}

// Run executes one sweep as of the injected clock's now.
func (uc *UpdatePlansAndPayout) Run(ctx context.Context) error {
	now := uc.Clock.Now()
	factor, err := uc.Payout.CalculateAndStore(ctx, now)
	if err != nil {
		return err
	}
	accounting, err := uc.Owners.SocialAccounting(ctx)
	if err != nil {
		return err
	}

	active, err := uc.Plans.ActivePlans(ctx, now)
	if err != nil {
		return err
	}
	for _, plan := range active {
		if err := uc.payoutDuePayments(ctx, plan, factor, accounting.Account, now); err != nil {
			return err
		}
	}

	// Expired plans first get their overdue wages, then lose their
	// cooperation membership.
	expired, err := uc.Plans.ExpiredPlans(ctx, now)
	if err != nil {
		return err
	}
	for _, plan := range expired {
		if err := uc.payoutDuePayments(ctx, plan, factor, accounting.Account, now); err != nil {
			return err
		}
	}
	return uc.Cooperations.ExpireSweep(ctx, now)
}

// payoutDuePayments pays one work-certificates transfer per elapsed
// active day that has not been paid yet. The daily amount is
// factor * labour cost / timeframe.
func (uc *UpdatePlansAndPayout) payoutDuePayments(ctx context.Context, plan planning.Plan, factor decimal.Decimal, accountingAccount uuid.UUID, now time.Time) error {
	activeDays := plan.ActiveDays(now)
	if activeDays == nil {
		return nil
	}
	paid, err := uc.Plans.CountCertificatePayouts(ctx, plan.ID)
	if err != nil {
		return err
	}
	due := *activeDays - paid
	if due <= 0 {
		return nil
	}
	planner, err := uc.Owners.CompanyByID(ctx, plan.Planner)
	if err != nil {
		return err
	}
	timeframe := decimal.NewFromInt(int64(plan.Timeframe))
	amount := factor.Mul(plan.Costs.Labour).Div(timeframe).Round(2)
	for i := 0; i < due; i++ {
		transfer, err := uc.Ledger.AppendTransfer(ctx,
			accountingAccount, planner.LabourAccount, amount,
			ledger.TransferWorkCertificates, now, planPurpose(plan.ID))
		if err != nil {
			return err
		}
		if err := uc.Plans.RecordCertificatePayout(ctx, plan.ID, transfer.ID); err != nil {
			return err
		}
	}
	plan.LastCertificatePayoutAt = &now
	return uc.Plans.UpdatePlan(ctx, plan)
}
