/*
register_productive_consumption.go - A company consumes means of production

A company buys fixed means or raw materials from another plan at the
cooperative price. The consumer's means or raw-materials account is
debited; companies are not subject to the member overdraft policy, so
the legs are posted directly.
*/
package economy

import (
	"context"
	"fmt"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
	"github.com/commonplan/certeconomy/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterProductiveConsumption posts a company's purchase of means of
// production.
type RegisterProductiveConsumption struct {
	Owners  ledger.OwnerStore
	Plans   planning.Store
	Pricing *pricing.Calculator
	Ledger  *ledger.Ledger
	Clock   ledger.Clock
}

// Register authorizes and posts the consumption. Rejections:
// ErrAmountNotPositive, ledger.ErrCompanyNotFound,
// planning.ErrPlanNotFound, planning.ErrPlanInactive,
// ErrCannotConsumePublicService, ErrConsumerIsPlanner.
func (uc *RegisterProductiveConsumption) Register(ctx context.Context, consumerID, planID uuid.UUID, amount int64, purpose ConsumptionPurpose) (ledger.Transfer, error) {
	if amount <= 0 {
		return ledger.Transfer{}, ErrAmountNotPositive
	}
	consumer, err := uc.Owners.CompanyByID(ctx, consumerID)
	if err != nil {
		return ledger.Transfer{}, err
	}
	now := uc.Clock.Now()
	plan, err := uc.Plans.PlanByID(ctx, planID)
	if err != nil {
		return ledger.Transfer{}, err
	}
	if !plan.IsActiveAsOf(now) {
		return ledger.Transfer{}, planning.ErrPlanInactive
	}
	if plan.IsPublicService {
		return ledger.Transfer{}, ErrCannotConsumePublicService
	}
	if plan.Planner == consumerID {
		return ledger.Transfer{}, ErrConsumerIsPlanner
	}
	planner, err := uc.Owners.CompanyByID(ctx, plan.Planner)
	if err != nil {
		panic(fmt.Sprintf("economy: plan %s has no planner company: %v", plan.ID, err))
	}
	price, err := uc.Pricing.Price(ctx, plan, now)
	if err != nil {
		return ledger.Transfer{}, err
	}
	debit := consumer.MeansAccount
	if purpose == PurposeRawMaterials {
		debit = consumer.ResourcesAccount
	}
	value := price.Mul(decimal.NewFromInt(amount)).Round(2)
	return uc.Ledger.AppendTransfer(ctx,
		debit, planner.ProductAccount, value,
		ledger.TransferProductiveConsumption, now, planPurpose(plan.ID))
}
