package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonplan/certeconomy/ledger"
	"github.com/commonplan/certeconomy/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*ledger.Ledger, *memory.Gateway) {
	t.Helper()
	store := memory.NewGateway()
	return ledger.New(store), store
}

func newAccount(t *testing.T, store *memory.Gateway, accountType ledger.AccountType) uuid.UUID {
	t.Helper()
	account := ledger.Account{ID: uuid.New(), Type: accountType, CreatedAt: time.Now()}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account.ID
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// BALANCE CALCULATION
// =============================================================================

func TestLedger_Balance_EmptyAccount_IsZero(t *testing.T) {
	// GIVEN: An account with no transfers
	// WHEN: Calculating its balance
	// THEN: The balance is zero

	led, store := newTestLedger(t)
	ctx := context.Background()
	account := newAccount(t, store, ledger.AccountMember)

	balance, err := led.Balance(ctx, account)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestLedger_Balance_IsFoldOfTransfers(t *testing.T) {
	// GIVEN: An account credited 10 and 5 and debited 3
	// WHEN: Calculating its balance
	// THEN: Balance = 10 + 5 - 3 = 12, and the counter-account mirrors it

	led, store := newTestLedger(t)
	ctx := context.Background()
	a := newAccount(t, store, ledger.AccountMember)
	b := newAccount(t, store, ledger.AccountSocialAccounting)
	now := time.Now()

	_, err := led.AppendTransfer(ctx, b, a, dec("10"), ledger.TransferWorkCertificates, now, "")
	require.NoError(t, err)
	_, err = led.AppendTransfer(ctx, b, a, dec("5"), ledger.TransferWorkCertificates, now, "")
	require.NoError(t, err)
	_, err = led.AppendTransfer(ctx, a, b, dec("3"), ledger.TransferPrivateConsumption, now, "")
	require.NoError(t, err)

	balanceA, err := led.Balance(ctx, a)
	require.NoError(t, err)
	assert.True(t, balanceA.Equal(dec("12")), "got %s", balanceA)

	balanceB, err := led.Balance(ctx, b)
	require.NoError(t, err)
	assert.True(t, balanceB.Equal(dec("-12")), "ledger must net to zero, got %s", balanceB)
}

func TestLedger_Balance_SelfTransferNetsZero(t *testing.T) {
	// GIVEN: A transfer debiting and crediting the same account
	// WHEN: Calculating the balance
	// THEN: The transfer contributes nothing

	led, store := newTestLedger(t)
	ctx := context.Background()
	a := newAccount(t, store, ledger.AccountMember)

	_, err := led.AppendTransfer(ctx, a, a, dec("7"), ledger.TransferCompensation, time.Now(), "")
	require.NoError(t, err)

	balance, err := led.Balance(ctx, a)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// =============================================================================
// APPEND CONTRACT
// =============================================================================

func TestLedger_AppendTransfer_NegativeValue_Panics(t *testing.T) {
	// GIVEN: A negative transfer value
	// WHEN: Appending it
	// THEN: The ledger panics - callers must flip direction instead

	led, store := newTestLedger(t)
	a := newAccount(t, store, ledger.AccountMember)
	b := newAccount(t, store, ledger.AccountSocialAccounting)

	assert.Panics(t, func() {
		led.AppendTransfer(context.Background(), a, b, dec("-1"),
			ledger.TransferWorkCertificates, time.Now(), "")
	})
}

func TestLedger_AppendTransfer_ZeroValue_Allowed(t *testing.T) {
	led, store := newTestLedger(t)
	ctx := context.Background()
	a := newAccount(t, store, ledger.AccountMember)
	b := newAccount(t, store, ledger.AccountSocialAccounting)

	transfer, err := led.AppendTransfer(ctx, a, b, decimal.Zero,
		ledger.TransferPrivateConsumption, time.Now(), "free goods")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, transfer.ID)
}

func TestLedger_Transfers_OrderedByDate(t *testing.T) {
	// GIVEN: Transfers appended out of date order
	// WHEN: Reading the account history
	// THEN: Transfers come back ordered by date

	led, store := newTestLedger(t)
	ctx := context.Background()
	a := newAccount(t, store, ledger.AccountMember)
	b := newAccount(t, store, ledger.AccountSocialAccounting)

	day1 := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	_, err := led.AppendTransfer(ctx, b, a, dec("1"), ledger.TransferWorkCertificates, day3, "")
	require.NoError(t, err)
	_, err = led.AppendTransfer(ctx, b, a, dec("2"), ledger.TransferWorkCertificates, day1, "")
	require.NoError(t, err)
	_, err = led.AppendTransfer(ctx, b, a, dec("3"), ledger.TransferWorkCertificates, day2, "")
	require.NoError(t, err)

	transfers, err := led.Transfers(ctx, a)
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	assert.True(t, transfers[0].Date.Equal(day1))
	assert.True(t, transfers[1].Date.Equal(day2))
	assert.True(t, transfers[2].Date.Equal(day3))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestStore_AccountByID_Missing_ReturnsSentinel(t *testing.T) {
	_, store := newTestLedger(t)

	_, err := store.AccountByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

func TestInsufficientBalanceError_UnwrapsToSentinel(t *testing.T) {
	err := &ledger.InsufficientBalanceError{
		Account:   uuid.New(),
		Available: dec("3"),
		Requested: dec("10"),
	}
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Contains(t, err.Error(), "available 3")
	assert.Contains(t, err.Error(), "requested 10")
}
