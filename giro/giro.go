/*
Package giro is the only path through which member-initiated certificate
movement is authorized.

PURPOSE:
  The giro office enforces the overdraft policy and posts member
  transactions as two transfers routed through a clearing account:

    sent leg:     sender account  -> clearing account   (amount sent)
    received leg: clearing account -> receiving account (amount received)

  The clearing account is the cooperation's account when the consumed
  plan cooperates, social accounting otherwise. The two amounts diverge
  exactly when the cooperative price differs from the plan's individual
  cost-covering price; the gap stays on the cooperation account as
  solidarity compensation. The ledger itself always nets to zero.

FAILURE SEMANTICS:
  The only expected rejection is an insufficient balance. A non-positive
  sent amount skips the overdraft check entirely; a negative amount is a
  refund and posts its leg in the opposite direction, so the ledger only
  ever sees non-negative transfer values.
*/
package giro

import (
	"context"
	"time"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Office authorizes and posts member transactions.
type Office struct {
	Ledger *ledger.Ledger
	Clock  ledger.Clock

	// AllowedOverdraw permits the sender's balance to go negative up to
	// this threshold before the transaction is rejected. Non-negative.
	AllowedOverdraw decimal.Decimal
}

// TransactionRequest describes one member transaction.
type TransactionRequest struct {
	ReceivingAccount uuid.UUID
	ClearingAccount  uuid.UUID
	AmountSent       decimal.Decimal
	AmountReceived   decimal.Decimal
	Type             ledger.TransferType
	Purpose          string
}

// Transaction is the posted pair of transfers.
type Transaction struct {
	SentLeg     ledger.Transfer
	ReceivedLeg ledger.Transfer
}

// RecordTransactionFromMember checks the overdraft policy against the
// sender's current balance and posts both legs. The expected rejection
// is ledger.ErrInsufficientBalance; everything else is a store failure.
func (o *Office) RecordTransactionFromMember(ctx context.Context, senderAccount uuid.UUID, req TransactionRequest) (Transaction, error) {
	if req.AmountSent.IsPositive() {
		balance, err := o.Ledger.Balance(ctx, senderAccount)
		if err != nil {
			return Transaction{}, err
		}
		if req.AmountSent.GreaterThan(balance.Add(o.AllowedOverdraw)) {
			return Transaction{}, &ledger.InsufficientBalanceError{
				Account:   senderAccount,
				Available: balance,
				Requested: req.AmountSent,
			}
		}
	}

	// Atomicity across the two legs is the store's concern: if the
	// received leg fails to append, the sent leg stays posted.
	now := o.Clock.Now()
	sent, err := o.postLeg(ctx, senderAccount, req.ClearingAccount, req.AmountSent, req.Type, now, req.Purpose)
	if err != nil {
		return Transaction{}, err
	}
	received, err := o.postLeg(ctx, req.ClearingAccount, req.ReceivingAccount, req.AmountReceived, req.Type, now, req.Purpose)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{SentLeg: sent, ReceivedLeg: received}, nil
}

// postLeg appends one leg. A negative amount reverses the leg's
// direction instead of reaching the ledger's non-negative assertion.
func (o *Office) postLeg(ctx context.Context, debit, credit uuid.UUID, amount decimal.Decimal, transferType ledger.TransferType, now time.Time, purpose string) (ledger.Transfer, error) {
	if amount.IsNegative() {
		return o.Ledger.AppendTransfer(ctx, credit, debit, amount.Neg(), transferType, now, purpose)
	}
	return o.Ledger.AppendTransfer(ctx, debit, credit, amount, transferType, now, purpose)
}
