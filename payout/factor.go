/*
Package payout computes the economy-wide certificate discount factor
("payout factor", FIC).

PURPOSE:
  Labour certificates are discounted by the share of society's labour
  absorbed by public (non-market) production. The factor multiplies
  every labour-certificate credit in the economy.

FORMULA:
  Over the plans approved, active and not expired as of "now",
  partitioned into productive and public plans:

    L  = total labour cost of productive plans
    Lo = total labour cost of public plans
    Po = total means cost of public plans
    Ro = total resource cost of public plans

    fic = (L - (Po + Ro)) / (L + Lo)    clamped to [0, 1]

EDGE CASES:
  No labour planned at all (L + Lo == 0): the factor is 1 when there is
  no public cost either (empty economy), otherwise 0 (public cost with
  no productive base fully discounts certificates). The formula cannot
  exceed 1, but the result is clamped anyway.
*/
package payout

import (
	"context"
	"time"

	"github.com/commonplan/certeconomy/planning"
	"github.com/shopspring/decimal"
)

// PayoutFactor is a stored factor value with its calculation time.
type PayoutFactor struct {
	Value        decimal.Decimal
	CalculatedAt time.Time
}

// Store persists calculated payout factors.
type Store interface {
	// StorePayoutFactor appends a calculated factor.
	StorePayoutFactor(ctx context.Context, factor PayoutFactor) error

	// LatestPayoutFactor returns the most recently calculated factor.
	// ok is false when none has been stored yet.
	LatestPayoutFactor(ctx context.Context) (factor PayoutFactor, ok bool, err error)
}

// Service calculates and stores the payout factor.
type Service struct {
	Plans planning.Store
	Store Store
}

var one = decimal.NewFromInt(1)

// Calculate computes the factor from the plans active as of now.
func (s *Service) Calculate(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	plans, err := s.Plans.ActivePlans(ctx, now)
	if err != nil {
		return decimal.Zero, err
	}
	productiveLabour := decimal.Zero
	publicLabour := decimal.Zero
	publicMeans := decimal.Zero
	publicResource := decimal.Zero
	for _, p := range plans {
		if p.IsPublicService {
			publicLabour = publicLabour.Add(p.Costs.Labour)
			publicMeans = publicMeans.Add(p.Costs.Means)
			publicResource = publicResource.Add(p.Costs.Resource)
		} else {
			productiveLabour = productiveLabour.Add(p.Costs.Labour)
		}
	}

	denominator := productiveLabour.Add(publicLabour)
	publicNonLabour := publicMeans.Add(publicResource)
	if denominator.IsZero() {
		if publicNonLabour.IsZero() {
			return one, nil
		}
		return decimal.Zero, nil
	}

	factor := productiveLabour.Sub(publicNonLabour).Div(denominator)
	if factor.IsNegative() {
		return decimal.Zero, nil
	}
	if factor.GreaterThan(one) {
		return one, nil
	}
	return factor, nil
}

// CalculateAndStore computes the factor and persists it with the
// calculation timestamp.
func (s *Service) CalculateAndStore(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	factor, err := s.Calculate(ctx, now)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.Store.StorePayoutFactor(ctx, PayoutFactor{Value: factor, CalculatedAt: now}); err != nil {
		return decimal.Zero, err
	}
	return factor, nil
}

// Latest returns the most recently stored factor, defaulting to 1 when
// none has been calculated yet.
func (s *Service) Latest(ctx context.Context) (decimal.Decimal, error) {
	factor, ok, err := s.Store.LatestPayoutFactor(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return one, nil
	}
	return factor.Value, nil
}
