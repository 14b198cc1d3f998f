/*
ledger.go - Balance calculation over the append-only transfer log

PURPOSE:
  The transfer log is the immutable source of truth for every account
  balance. A balance is always computed by folding the log - there is no
  stored "balance" column that can drift out of sync.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: transfers are never updated or deleted
  2. NON-NEGATIVE: a transfer value below zero is a programming error,
     not a business outcome - AppendTransfer panics on it
  3. DERIVED BALANCE: balance = sum(credits) - sum(debits)

This layer is intentionally dumb. Overdraft policy and every other
business rule live in the giro package above it.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Balance folds the transfer log of a single account:
// credits add, debits subtract.
func (l *Ledger) Balance(ctx context.Context, account uuid.UUID) (decimal.Decimal, error) {
	transfers, err := l.store.TransfersByAccount(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, t := range transfers {
		if t.CreditAccount == account {
			balance = balance.Add(t.Value)
		}
		if t.DebitAccount == account {
			balance = balance.Sub(t.Value)
		}
	}
	return balance, nil
}

// AppendTransfer writes a transfer to the log and returns it.
// A negative value is a contract violation and panics.
func (l *Ledger) AppendTransfer(ctx context.Context, debit, credit uuid.UUID, value decimal.Decimal, transferType TransferType, date time.Time, purpose string) (Transfer, error) {
	if value.IsNegative() {
		panic(fmt.Sprintf("ledger: negative transfer value %s (%s)", value, transferType))
	}
	transfer := Transfer{
		ID:            uuid.New(),
		Date:          date,
		DebitAccount:  debit,
		CreditAccount: credit,
		Value:         value,
		Type:          transferType,
		Purpose:       purpose,
	}
	if err := l.store.AppendTransfer(ctx, transfer); err != nil {
		return Transfer{}, err
	}
	return transfer, nil
}

// Transfers returns the full history of an account, ordered by date.
func (l *Ledger) Transfers(ctx context.Context, account uuid.UUID) ([]Transfer, error) {
	return l.store.TransfersByAccount(ctx, account)
}
