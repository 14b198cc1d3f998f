/*
register_private_consumption.go - A member consumes a plan's product

The member pays the cooperative price per unit; the planner's product
account accrues the plan's individual price per unit. When the plan
cooperates, the gap between the two sits on the cooperation's account
(the clearing leg); otherwise both amounts are equal and the legs are
routed through social accounting, which nets to zero.
*/
package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/commonplan/certeconomy/giro"
	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
	"github.com/commonplan/certeconomy/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterPrivateConsumption posts a member's purchase of consumer goods.
type RegisterPrivateConsumption struct {
	Owners  ledger.OwnerStore
	Plans   planning.Store
	Pricing *pricing.Calculator
	Giro    *giro.Office
	Clock   ledger.Clock
}

// Register authorizes and posts the consumption. Rejections:
// ErrAmountNotPositive, ledger.ErrMemberNotFound,
// planning.ErrPlanNotFound, planning.ErrPlanInactive,
// ledger.ErrInsufficientBalance.
func (uc *RegisterPrivateConsumption) Register(ctx context.Context, consumerID, planID uuid.UUID, amount int64) (giro.Transaction, error) {
	if amount <= 0 {
		return giro.Transaction{}, ErrAmountNotPositive
	}
	consumer, err := uc.Owners.MemberByID(ctx, consumerID)
	if err != nil {
		return giro.Transaction{}, err
	}
	now := uc.Clock.Now()
	plan, err := uc.activePlan(ctx, planID, now)
	if err != nil {
		return giro.Transaction{}, err
	}
	planner, err := uc.Owners.CompanyByID(ctx, plan.Planner)
	if err != nil {
		// Each plan has a planner.
		panic(fmt.Sprintf("economy: plan %s has no planner company: %v", plan.ID, err))
	}
	coopPrice, err := uc.Pricing.Price(ctx, plan, now)
	if err != nil {
		return giro.Transaction{}, err
	}
	clearing, err := uc.clearingAccount(ctx, plan)
	if err != nil {
		return giro.Transaction{}, err
	}
	units := decimal.NewFromInt(amount)
	return uc.Giro.RecordTransactionFromMember(ctx, consumer.Account, giro.TransactionRequest{
		ReceivingAccount: planner.ProductAccount,
		ClearingAccount:  clearing,
		AmountSent:       coopPrice.Mul(units),
		AmountReceived:   uc.Pricing.IndividualPrice(plan).Mul(units),
		Type:             ledger.TransferPrivateConsumption,
		Purpose:          planPurpose(plan.ID),
	})
}

func (uc *RegisterPrivateConsumption) activePlan(ctx context.Context, planID uuid.UUID, now time.Time) (planning.Plan, error) {
	plan, err := uc.Plans.PlanByID(ctx, planID)
	if err != nil {
		return planning.Plan{}, err
	}
	if !plan.IsActiveAsOf(now) {
		return planning.Plan{}, planning.ErrPlanInactive
	}
	return plan, nil
}

// clearingAccount picks the cooperation account when the plan
// cooperates, social accounting otherwise.
func (uc *RegisterPrivateConsumption) clearingAccount(ctx context.Context, plan planning.Plan) (uuid.UUID, error) {
	if plan.Cooperation != nil {
		coop, err := uc.Plans.CooperationByID(ctx, *plan.Cooperation)
		if err != nil {
			return uuid.Nil, err
		}
		return coop.Account, nil
	}
	accounting, err := uc.Owners.SocialAccounting(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return accounting.Account, nil
}

func planPurpose(id uuid.UUID) string {
	return fmt.Sprintf("Plan-Id: %s", id)
}
