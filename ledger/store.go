/*
store.go - Persistence interface for accounts, owners and transfers

PURPOSE:
  Defines the interface between the accounting substrate and the
  database. Different implementations can use SQLite or in-memory
  storage; the domain packages depend only on this interface.

APPEND-ONLY CONTRACT:
  Transfers have a single write operation, AppendTransfer. There is no
  update and no delete. Accounts are created once and never removed.

SEE ALSO:
  - ledger.go: Balance calculation on top of Store
  - store/memory: In-memory implementation
  - store/sqlite: SQLite implementation
*/
package ledger

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// STORE - Accounts and the append-only transfer log
// =============================================================================

// Store persists accounts, their owners and the transfer log.
// Transfers are APPEND-ONLY: no update, no delete, ever.
type Store interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, account Account) error

	// AccountByID returns the account or ErrAccountNotFound.
	AccountByID(ctx context.Context, id uuid.UUID) (Account, error)

	// AppendTransfer persists a transfer. The ONLY write to the log.
	AppendTransfer(ctx context.Context, transfer Transfer) error

	// TransfersByAccount returns every transfer debiting or crediting
	// the account, ordered by date.
	TransfersByAccount(ctx context.Context, account uuid.UUID) ([]Transfer, error)
}

// OwnerStore extends Store with account-owner records.
type OwnerStore interface {
	Store

	CreateMember(ctx context.Context, member Member) error
	MemberByID(ctx context.Context, id uuid.UUID) (Member, error)

	CreateCompany(ctx context.Context, company Company) error
	CompanyByID(ctx context.Context, id uuid.UUID) (Company, error)

	// SocialAccounting returns the singleton clearing authority.
	// Implementations create it on first use.
	SocialAccounting(ctx context.Context) (SocialAccounting, error)

	// WorkerIsAtCompany reports whether the member works at the company.
	WorkerIsAtCompany(ctx context.Context, company, member uuid.UUID) (bool, error)

	// RegisterWorker adds a member to a company's workforce.
	RegisterWorker(ctx context.Context, company, member uuid.UUID) error
}
