/*
registration.go - Creating members, companies and cooperation accounts

Accounts are created alongside their owner and are never deleted. A
member gets one certificate account; a company gets its four
sub-accounts; a cooperation gets the clearing account that absorbs
price compensation.
*/
package economy

import (
	"context"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/planning"
	"github.com/google/uuid"
)

// Registration creates account owners together with their accounts.
type Registration struct {
	Owners       ledger.OwnerStore
	Cooperations *planning.CooperationService
	Clock        ledger.Clock
}

// RegisterMember creates a member with one certificate account.
func (uc *Registration) RegisterMember(ctx context.Context, name string) (ledger.Member, error) {
	now := uc.Clock.Now()
	account := ledger.Account{ID: uuid.New(), Type: ledger.AccountMember, CreatedAt: now}
	if err := uc.Owners.CreateAccount(ctx, account); err != nil {
		return ledger.Member{}, err
	}
	member := ledger.Member{
		ID:           uuid.New(),
		Name:         name,
		Account:      account.ID,
		RegisteredOn: now,
	}
	if err := uc.Owners.CreateMember(ctx, member); err != nil {
		return ledger.Member{}, err
	}
	return member, nil
}

// RegisterCompany creates a company with its four sub-accounts.
func (uc *Registration) RegisterCompany(ctx context.Context, name string) (ledger.Company, error) {
	now := uc.Clock.Now()
	types := []ledger.AccountType{
		ledger.AccountCompanyMeans,
		ledger.AccountCompanyResources,
		ledger.AccountCompanyLabour,
		ledger.AccountCompanyProduct,
	}
	ids := make([]uuid.UUID, len(types))
	for i, t := range types {
		account := ledger.Account{ID: uuid.New(), Type: t, CreatedAt: now}
		if err := uc.Owners.CreateAccount(ctx, account); err != nil {
			return ledger.Company{}, err
		}
		ids[i] = account.ID
	}
	company := ledger.Company{
		ID:               uuid.New(),
		Name:             name,
		MeansAccount:     ids[0],
		ResourcesAccount: ids[1],
		LabourAccount:    ids[2],
		ProductAccount:   ids[3],
		RegisteredOn:     now,
	}
	if err := uc.Owners.CreateCompany(ctx, company); err != nil {
		return ledger.Company{}, err
	}
	return company, nil
}

// RegisterCooperation creates a cooperation together with its clearing
// account, coordinated by the founding company.
func (uc *Registration) RegisterCooperation(ctx context.Context, name, definition string, coordinator uuid.UUID) (planning.Cooperation, error) {
	if _, err := uc.Owners.CompanyByID(ctx, coordinator); err != nil {
		return planning.Cooperation{}, err
	}
	account := ledger.Account{ID: uuid.New(), Type: ledger.AccountCooperation, CreatedAt: uc.Clock.Now()}
	if err := uc.Owners.CreateAccount(ctx, account); err != nil {
		return planning.Cooperation{}, err
	}
	return uc.Cooperations.CreateCooperation(ctx, name, definition, coordinator, account.ID)
}
