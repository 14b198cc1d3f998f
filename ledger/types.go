/*
Package ledger provides the account store and the double-entry transfer
log for the certificate economy.

PURPOSE:
  This package contains the "dumb" accounting substrate: accounts, their
  owners, and an append-only log of transfers between accounts. A balance
  is never stored - it is always the signed sum of the transfers touching
  an account.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: An identity with a type tag (member, company sub-accounts,
    social accounting, cooperation)
  - Transfer: An immutable ledger entry moving certificates between
    exactly one debit and one credit account
  - Owners: Member, Company, SocialAccounting, Cooperation - the holders
    behind accounts

DESIGN PRINCIPLES:
  1. Immutability: Transfers are never modified or deleted
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Double entry: Every transfer debits one account and credits another
  4. No business rules here: authorization lives in the giro package

SEE ALSO:
  - ledger.go: Balance calculation and transfer appending
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountType string

const (
	AccountMember           AccountType = "member"
	AccountCompanyMeans     AccountType = "company_means"
	AccountCompanyResources AccountType = "company_resources"
	AccountCompanyLabour    AccountType = "company_labour"
	AccountCompanyProduct   AccountType = "company_product"
	AccountSocialAccounting AccountType = "social_accounting"
	AccountCooperation      AccountType = "cooperation"
)

// Account is created alongside its owner and never deleted.
// Its balance is derived from the transfer log, never stored.
type Account struct {
	ID        uuid.UUID
	Type      AccountType
	CreatedAt time.Time
}

// =============================================================================
// ACCOUNT OWNERS
// =============================================================================

// Member holds a single certificate account.
type Member struct {
	ID           uuid.UUID
	Name         string
	Account      uuid.UUID
	RegisteredOn time.Time
}

// Company holds four accounts: fixed means (p), raw materials (r),
// labour (a) and product (prd).
type Company struct {
	ID               uuid.UUID
	Name             string
	MeansAccount     uuid.UUID
	ResourcesAccount uuid.UUID
	LabourAccount    uuid.UUID
	ProductAccount   uuid.UUID
	RegisteredOn     time.Time
}

// Accounts returns all four company accounts.
func (c Company) Accounts() []uuid.UUID {
	return []uuid.UUID{c.MeansAccount, c.ResourcesAccount, c.LabourAccount, c.ProductAccount}
}

// SocialAccounting is the economy's clearing account. Credit issuance,
// certificate payouts and non-cooperative member transactions are routed
// through it.
type SocialAccounting struct {
	ID      uuid.UUID
	Account uuid.UUID
}

// =============================================================================
// TRANSFERS
// =============================================================================

type TransferType string

const (
	TransferWorkCertificates        TransferType = "work_certificates"
	TransferTaxes                   TransferType = "taxes"
	TransferCreditForMeans          TransferType = "credit_for_means"
	TransferCreditForResources      TransferType = "credit_for_resources"
	TransferExpectedSales           TransferType = "expected_sales"
	TransferPrivateConsumption      TransferType = "private_consumption"
	TransferProductiveConsumption   TransferType = "productive_consumption"
	TransferCompensation            TransferType = "compensation"
	TransferTransferredCertificates TransferType = "transferred_certificates"
)

// Transfer is an immutable ledger entry. Exactly one debit and one
// credit account, non-negative value. Once written it is never touched.
type Transfer struct {
	ID            uuid.UUID
	Date          time.Time
	DebitAccount  uuid.UUID
	CreditAccount uuid.UUID
	Value         decimal.Decimal
	Type          TransferType
	Purpose       string
}

// =============================================================================
// CLOCK
// =============================================================================

// Clock supplies "now" to everything time-sensitive. Passed in as a
// capability so predicates stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
