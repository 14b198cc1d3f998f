/*
Package pricing derives the per-unit price consumers pay for a plan's
product.

PURPOSE:
  Two prices exist for a plan. The individual price covers the plan's
  own costs: total cost divided by planned amount. The cooperative price
  is shared by all plans of a cooperation: a duration-normalized weighted
  average, so plans with different timeframes contribute comparably.

  Public-service products are never priced - both entry points return 0.

COOPERATIVE PRICE:
  Given the non-expired cooperating plans P:

    price = sum(total_cost(p) / timeframe(p))  /  sum(amount(p) / timeframe(p))

  Dividing by each plan's own timeframe converts totals into per-day
  rates before aggregating. The ratio of cost rate to output rate is the
  single price every member shares. A zero aggregate output rate is
  special-cased to a divisor of 1, yielding price 0.
*/
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/commonplan/certeconomy/planning"
	"github.com/shopspring/decimal"
)

// Calculator computes plan prices from the current cooperation state.
type Calculator struct {
	Store planning.Store
}

// IndividualPrice is the cost-covering price of a plan on its own:
// 0 for public services, else total cost / amount.
func (c *Calculator) IndividualPrice(plan planning.Plan) decimal.Decimal {
	if plan.IsPublicService {
		return decimal.Zero
	}
	return plan.Costs.Total().Div(decimal.NewFromInt(plan.Amount))
}

// Price is the price consumers pay as of now: the cooperative price if
// the plan cooperates with other non-expired plans, the individual
// price otherwise.
func (c *Calculator) Price(ctx context.Context, plan planning.Plan, now time.Time) (decimal.Decimal, error) {
	if plan.IsPublicService {
		return decimal.Zero, nil
	}
	if plan.Cooperation == nil {
		return c.IndividualPrice(plan), nil
	}
	members, err := c.Store.PlansByCooperation(ctx, *plan.Cooperation)
	if err != nil {
		return decimal.Zero, err
	}
	cooperating := make([]planning.Plan, 0, len(members))
	for _, m := range members {
		if m.IsExpiredAsOf(now) {
			continue
		}
		if m.IsPublicService {
			// Public plans never enter cooperations; a member here means
			// a corrupted cooperation assignment.
			panic(fmt.Sprintf("pricing: public service plan %s in cooperation %s", m.ID, *plan.Cooperation))
		}
		cooperating = append(cooperating, m)
	}
	if len(cooperating) == 0 {
		return c.IndividualPrice(plan), nil
	}
	return cooperativePrice(cooperating), nil
}

// cooperativePrice aggregates per-day cost and output rates.
func cooperativePrice(plans []planning.Plan) decimal.Decimal {
	costRate := decimal.Zero
	outputRate := decimal.Zero
	for _, p := range plans {
		timeframe := decimal.NewFromInt(int64(p.Timeframe))
		costRate = costRate.Add(p.Costs.Total().Div(timeframe))
		outputRate = outputRate.Add(decimal.NewFromInt(p.Amount).Div(timeframe))
	}
	if outputRate.IsZero() {
		outputRate = decimal.NewFromInt(1)
	}
	return costRate.Div(outputRate)
}
