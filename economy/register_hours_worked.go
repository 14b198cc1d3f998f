/*
register_hours_worked.go - Crediting labour certificates for hours worked

A company pays a worker for hours worked: the company's labour account
is debited and the member's account credited with the hours discounted
by the latest stored payout factor.
*/
package economy

import (
	"context"
	"fmt"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/payout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterHoursWorked credits discounted labour certificates to a worker.
type RegisterHoursWorked struct {
	Owners ledger.OwnerStore
	Ledger *ledger.Ledger
	Payout *payout.Service
	Clock  ledger.Clock
}

// Register posts the work-certificates transfer. Rejections:
// ErrHoursNotPositive, ErrWorkerNotAtCompany, ledger.ErrCompanyNotFound,
// ledger.ErrMemberNotFound.
func (uc *RegisterHoursWorked) Register(ctx context.Context, companyID, workerID uuid.UUID, hours decimal.Decimal) (ledger.Transfer, error) {
	if !hours.IsPositive() {
		return ledger.Transfer{}, ErrHoursNotPositive
	}
	company, err := uc.Owners.CompanyByID(ctx, companyID)
	if err != nil {
		return ledger.Transfer{}, err
	}
	worker, err := uc.Owners.MemberByID(ctx, workerID)
	if err != nil {
		return ledger.Transfer{}, err
	}
	atCompany, err := uc.Owners.WorkerIsAtCompany(ctx, companyID, workerID)
	if err != nil {
		return ledger.Transfer{}, err
	}
	if !atCompany {
		return ledger.Transfer{}, ErrWorkerNotAtCompany
	}
	factor, err := uc.Payout.Latest(ctx)
	if err != nil {
		return ledger.Transfer{}, err
	}
	amount := hours.Mul(factor).Round(2)
	return uc.Ledger.AppendTransfer(ctx,
		company.LabourAccount, worker.Account, amount,
		ledger.TransferWorkCertificates, uc.Clock.Now(),
		fmt.Sprintf("hours worked: %s", hours))
}
