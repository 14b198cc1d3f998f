/*
activate_plans.go - Granting credit and activating approved plans

On activation the planner is granted the credit to produce: the means
cost is credited to the means account and the resource cost to the
raw-materials account, both from social accounting. The product account
is debited by the expected sales value - the plan starts "in debt" to
society for the product it promised.
*/
package economy

import (
	"context"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
)

// ActivatePlans grants credit to and activates every approved plan that
// is still awaiting activation.
type ActivatePlans struct {
	Owners    ledger.OwnerStore
	Plans     planning.Store
	Ledger    *ledger.Ledger
	Lifecycle *planning.LifecycleService
	Clock     ledger.Clock
}

// Activate processes the activation queue. Each plan is credited once
// and activated; already-active plans are not in the queue.
func (uc *ActivatePlans) Activate(ctx context.Context) (int, error) {
	pending, err := uc.Plans.ApprovedPlansAwaitingActivation(ctx)
	if err != nil {
		return 0, err
	}
	accounting, err := uc.Owners.SocialAccounting(ctx)
	if err != nil {
		return 0, err
	}
	activated := 0
	for _, plan := range pending {
		if err := uc.grantCredit(ctx, plan, accounting); err != nil {
			return activated, err
		}
		if _, err := uc.Lifecycle.Activate(ctx, plan.ID); err != nil {
			return activated, err
		}
		activated++
	}
	return activated, nil
}

func (uc *ActivatePlans) grantCredit(ctx context.Context, plan planning.Plan, accounting ledger.SocialAccounting) error {
	planner, err := uc.Owners.CompanyByID(ctx, plan.Planner)
	if err != nil {
		return err
	}
	now := uc.Clock.Now()
	purpose := planPurpose(plan.ID)
	if _, err := uc.Ledger.AppendTransfer(ctx,
		accounting.Account, planner.MeansAccount, plan.Costs.Means.Round(2),
		ledger.TransferCreditForMeans, now, purpose); err != nil {
		return err
	}
	if _, err := uc.Ledger.AppendTransfer(ctx,
		accounting.Account, planner.ResourcesAccount, plan.Costs.Resource.Round(2),
		ledger.TransferCreditForResources, now, purpose); err != nil {
		return err
	}
	// The product account owes society the expected sales value.
	if _, err := uc.Ledger.AppendTransfer(ctx,
		planner.ProductAccount, accounting.Account, plan.ExpectedSalesValue().Round(2),
		ledger.TransferExpectedSales, now, purpose); err != nil {
		return err
	}
	return nil
}
