/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// MemberDTO represents a member in API responses.
type MemberDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Account      string `json:"account"`
	Balance      string `json:"balance,omitempty"`
	RegisteredOn string `json:"registered_on"`
}

// RegisterMemberRequest is the request to register a member.
type RegisterMemberRequest struct {
	Name string `json:"name"`
}

// CompanyDTO represents a company with its four account balances.
type CompanyDTO struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Accounts     map[string]string `json:"accounts"`
	Balances     map[string]string `json:"balances,omitempty"`
	RegisteredOn string            `json:"registered_on"`
}

// RegisterCompanyRequest is the request to register a company.
type RegisterCompanyRequest struct {
	Name string `json:"name"`
}

// RegisterWorkerRequest adds a member to a company's workforce.
type RegisterWorkerRequest struct {
	Member string `json:"member"`
}

// RegisterHoursRequest posts hours worked by a member at a company.
type RegisterHoursRequest struct {
	Worker string `json:"worker"`
	Hours  string `json:"hours"`
}

// TransferDTO represents a posted transfer.
type TransferDTO struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	Value         string `json:"value"`
	Type          string `json:"type"`
	Purpose       string `json:"purpose,omitempty"`
}

// CostsDTO carries the three production cost components.
type CostsDTO struct {
	Labour   string `json:"labour"`
	Means    string `json:"means"`
	Resource string `json:"resource"`
}

// DraftDTO represents a plan draft.
type DraftDTO struct {
	ID              string   `json:"id"`
	Planner         string   `json:"planner"`
	ProductName     string   `json:"product_name"`
	Description     string   `json:"description,omitempty"`
	ProductionUnit  string   `json:"production_unit,omitempty"`
	Amount          int64    `json:"amount"`
	Costs           CostsDTO `json:"costs"`
	Timeframe       int      `json:"timeframe"`
	IsPublicService bool     `json:"is_public_service"`
	CreatedAt       string   `json:"created_at"`
}

// CreateDraftRequest is the request to create a plan draft.
type CreateDraftRequest struct {
	Planner         string   `json:"planner"`
	ProductName     string   `json:"product_name"`
	Description     string   `json:"description,omitempty"`
	ProductionUnit  string   `json:"production_unit,omitempty"`
	Amount          int64    `json:"amount"`
	Costs           CostsDTO `json:"costs"`
	Timeframe       int      `json:"timeframe"`
	IsPublicService bool     `json:"is_public_service"`
}

// UpdateDraftRequest patches a draft. Absent fields keep their value.
type UpdateDraftRequest struct {
	Planner         string    `json:"planner"`
	ProductName     *string   `json:"product_name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	ProductionUnit  *string   `json:"production_unit,omitempty"`
	Amount          *int64    `json:"amount,omitempty"`
	Costs           *CostsDTO `json:"costs,omitempty"`
	Timeframe       *int      `json:"timeframe,omitempty"`
	IsPublicService *bool     `json:"is_public_service,omitempty"`
}

// PlanDTO represents a filed plan with its lifecycle state.
type PlanDTO struct {
	ID              string   `json:"id"`
	Planner         string   `json:"planner"`
	ProductName     string   `json:"product_name"`
	Description     string   `json:"description,omitempty"`
	ProductionUnit  string   `json:"production_unit,omitempty"`
	Amount          int64    `json:"amount"`
	Costs           CostsDTO `json:"costs"`
	Timeframe       int      `json:"timeframe"`
	IsPublicService bool     `json:"is_public_service"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at"`
	ApprovedAt      *string  `json:"approved_at,omitempty"`
	RejectedAt      *string  `json:"rejected_at,omitempty"`
	ActivatedAt     *string  `json:"activated_at,omitempty"`
	ExpirationDate  *string  `json:"expiration_date,omitempty"`
	ActiveDays      *int     `json:"active_days,omitempty"`
	Cooperation     *string  `json:"cooperation,omitempty"`
	Price           string   `json:"price,omitempty"`
}

// ActorRequest names the authenticated actor of an operation.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// CooperationDTO represents a cooperation.
type CooperationDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Definition  string `json:"definition,omitempty"`
	Coordinator string `json:"coordinator"`
	Account     string `json:"account"`
	CreatedAt   string `json:"created_at"`
}

// CreateCooperationRequest is the request to register a cooperation.
type CreateCooperationRequest struct {
	Name        string `json:"name"`
	Definition  string `json:"definition,omitempty"`
	Coordinator string `json:"coordinator"`
}

// CooperationActionRequest carries an actor and the cooperation acted on.
type CooperationActionRequest struct {
	Actor       string `json:"actor"`
	Cooperation string `json:"cooperation"`
}

// CoordinationTransferRequestDTO represents a coordination handover.
type CoordinationTransferRequestDTO struct {
	ID          string  `json:"id"`
	Cooperation string  `json:"cooperation"`
	Candidate   string  `json:"candidate"`
	RequestedAt string  `json:"requested_at"`
	AcceptedAt  *string `json:"accepted_at,omitempty"`
}

// PrivateConsumptionRequest registers a member's consumption of a plan.
type PrivateConsumptionRequest struct {
	Consumer string `json:"consumer"`
	Plan     string `json:"plan"`
	Amount   int64  `json:"amount"`
}

// ProductiveConsumptionRequest registers a company's consumption.
type ProductiveConsumptionRequest struct {
	Consumer string `json:"consumer"`
	Plan     string `json:"plan"`
	Amount   int64  `json:"amount"`
	Purpose  string `json:"purpose"` // "means_of_production" or "raw_materials"
}

// PayoutFactorDTO is the current certificate payout factor.
type PayoutFactorDTO struct {
	Value        string `json:"value"`
	CalculatedAt string `json:"calculated_at,omitempty"`
}

// StatisticsDTO summarizes the state of the economy.
type StatisticsDTO struct {
	ActivePlans  int    `json:"active_plans"`
	PayoutFactor string `json:"payout_factor"`
	AsOf         string `json:"as_of"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTransferDTO(t ledger.Transfer) TransferDTO {
	return TransferDTO{
		ID:            t.ID.String(),
		Date:          t.Date.Format(time.RFC3339),
		DebitAccount:  t.DebitAccount.String(),
		CreditAccount: t.CreditAccount.String(),
		Value:         t.Value.String(),
		Type:          string(t.Type),
		Purpose:       t.Purpose,
	}
}

func toTransferDTOs(transfers []ledger.Transfer) []TransferDTO {
	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	return dtos
}

func toCostsDTO(costs planning.ProductionCosts) CostsDTO {
	return CostsDTO{
		Labour:   costs.Labour.String(),
		Means:    costs.Means.String(),
		Resource: costs.Resource.String(),
	}
}

func toDraftDTO(d planning.PlanDraft) DraftDTO {
	return DraftDTO{
		ID:              d.ID.String(),
		Planner:         d.Planner.String(),
		ProductName:     d.ProductName,
		Description:     d.Description,
		ProductionUnit:  d.ProductionUnit,
		Amount:          d.Amount,
		Costs:           toCostsDTO(d.Costs),
		Timeframe:       d.Timeframe,
		IsPublicService: d.IsPublicService,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
}

func toPlanDTO(p planning.Plan, now time.Time) PlanDTO {
	dto := PlanDTO{
		ID:              p.ID.String(),
		Planner:         p.Planner.String(),
		ProductName:     p.ProductName,
		Description:     p.Description,
		ProductionUnit:  p.ProductionUnit,
		Amount:          p.Amount,
		Costs:           toCostsDTO(p.Costs),
		Timeframe:       p.Timeframe,
		IsPublicService: p.IsPublicService,
		Status:          planStatus(p, now),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		ApprovedAt:      formatTimePtr(p.ApprovedAt),
		RejectedAt:      formatTimePtr(p.RejectedAt),
		ActivatedAt:     formatTimePtr(p.ActivatedAt),
		ActiveDays:      p.ActiveDays(now),
	}
	dto.ExpirationDate = formatTimePtr(p.ExpirationDate())
	if p.Cooperation != nil {
		coop := p.Cooperation.String()
		dto.Cooperation = &coop
	}
	return dto
}

func planStatus(p planning.Plan, now time.Time) string {
	switch {
	case p.IsRejected():
		return "rejected"
	case p.IsExpiredAsOf(now):
		return "expired"
	case p.IsActiveAsOf(now):
		return "active"
	case p.IsApproved():
		return "approved"
	default:
		return "filed"
	}
}

func toCooperationDTO(c planning.Cooperation) CooperationDTO {
	return CooperationDTO{
		ID:          c.ID.String(),
		Name:        c.Name,
		Definition:  c.Definition,
		Coordinator: c.Coordinator.String(),
		Account:     c.Account.String(),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
