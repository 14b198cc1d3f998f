/*
Package economy contains the orchestrating use cases of the certificate
economy. Each use case composes the four core pieces - ledger, giro
office, price calculator, payout factor service - with the plan
lifecycle and the data-access gateway.

These are thin: eligibility is computed from current state, then a
single atomic update (or transfer append) is performed. True atomicity
across concurrent callers is the store's concern.
*/
package economy

import "errors"

// =============================================================================
// REJECTION REASONS
// =============================================================================

var (
	// ErrHoursNotPositive rejects registering zero or negative worked hours.
	ErrHoursNotPositive = errors.New("hours worked must be positive")

	// ErrWorkerNotAtCompany rejects paying a member who does not work at
	// the paying company.
	ErrWorkerNotAtCompany = errors.New("worker not at company")

	// ErrAmountNotPositive rejects consuming zero or negative units.
	ErrAmountNotPositive = errors.New("consumption amount must be positive")

	// ErrConsumerIsPlanner rejects productive consumption of a company's
	// own plan.
	ErrConsumerIsPlanner = errors.New("consumer is the planner")

	// ErrCannotConsumePublicService rejects productive consumption of a
	// public-service product.
	ErrCannotConsumePublicService = errors.New("cannot consume a public service productively")
)

// ConsumptionPurpose distinguishes what a productive consumption is for.
type ConsumptionPurpose string

const (
	// PurposeMeansOfProduction debits the consumer's fixed-means account.
	PurposeMeansOfProduction ConsumptionPurpose = "means_of_production"

	// PurposeRawMaterials debits the consumer's raw-materials account.
	PurposeRawMaterials ConsumptionPurpose = "raw_materials"
)
