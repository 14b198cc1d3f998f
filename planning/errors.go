/*
errors.go - The closed set of plan lifecycle rejection reasons

Every expected business rejection is a sentinel error checked with
errors.Is. Callers translate these into user-facing messages; none of
them indicate a bug. States that are impossible to reach through the
public operations panic instead.
*/
package planning

import "errors"

var (
	// ErrPlanNotFound is returned when a referenced plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrDraftNotFound is returned when a referenced draft doesn't exist.
	ErrDraftNotFound = errors.New("plan draft not found")

	// ErrInvalidDraft rejects a draft whose amount or timeframe is not
	// positive. Both are divisors once the plan is priced and paid out.
	ErrInvalidDraft = errors.New("draft amount and timeframe must be positive")

	// ErrCooperationNotFound is returned when a referenced cooperation doesn't exist.
	ErrCooperationNotFound = errors.New("cooperation not found")

	// ErrNotAuthorized is returned when the acting party is not the
	// planner or coordinator the operation requires.
	ErrNotAuthorized = errors.New("requester not authorized")

	// ErrPlanIsActive rejects revocation of a plan that is currently
	// active and unexpired.
	ErrPlanIsActive = errors.New("plan is active")

	// ErrPlanIsExpired rejects operations on an expired plan.
	ErrPlanIsExpired = errors.New("plan is expired")

	// ErrPlanInactive rejects consumption against a plan that is not
	// active as of now.
	ErrPlanInactive = errors.New("plan is not active")

	// ErrPlanAlreadyDecided rejects a second approve/reject decision.
	ErrPlanAlreadyDecided = errors.New("plan already approved or rejected")

	// ErrAlreadyCooperating rejects a cooperation request from a plan
	// that is already a member.
	ErrAlreadyCooperating = errors.New("plan is already cooperating")

	// ErrRequestPending rejects a cooperation request while another is pending.
	ErrRequestPending = errors.New("cooperation request already pending")

	// ErrPublicServicePlan rejects cooperation of public-service plans.
	ErrPublicServicePlan = errors.New("public service plans cannot cooperate")

	// ErrCooperationNotRequested is returned when accept/deny/cancel
	// targets a plan with no matching pending request.
	ErrCooperationNotRequested = errors.New("cooperation was not requested")
)
