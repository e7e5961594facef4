package minibank_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/minibank"
)

func newState(balance int64) minibank.State {
	return minibank.State{
		Balance:       decimal.New(balance, 0),
		Limit:         minibank.DefaultWithdrawalLimit,
		WithdrawalCap: minibank.DefaultWithdrawalCap,
	}
}

func TestDeposit(t *testing.T) {
	t.Run("credits the amount and appends a history line", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)

		next, msg, err := minibank.Deposit(newState(0), decimal.New(50, 0))
		reqrd.Nil(err)
		as.True(decimal.New(50, 0).Equal(next.Balance))
		reqrd.Len(next.History, 1)
		as.Equal("Deposit: 50.00", next.History[0].String())
		as.Equal("Deposit of 50.00 completed successfully.", msg)
	})

	t.Run("rejects non-positive amounts without touching state", func(tt *testing.T) {
		as := assert.New(tt)
		st := newState(10)
		for _, amt := range []decimal.Decimal{decimal.Zero, decimal.New(-1, 0), decimal.New(-1, -2)} {
			next, msg, err := minibank.Deposit(st, amt)
			as.ErrorIs(err, minibank.ErrInvalidAmount)
			as.Equal("Operation failed: the informed amount is invalid.", msg)
			as.True(st.Balance.Equal(next.Balance))
			as.Empty(next.History)
		}
	})

	t.Run("two deposits reach the same balance as their sum", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		a, b := decimal.RequireFromString("12.34"), decimal.RequireFromString("0.66")

		st, _, err := minibank.Deposit(newState(0), a)
		reqrd.Nil(err)
		st, _, err = minibank.Deposit(st, b)
		reqrd.Nil(err)
		once, _, err := minibank.Deposit(newState(0), a.Add(b))
		reqrd.Nil(err)

		as.True(once.Balance.Equal(st.Balance))
		as.Len(st.History, 2)
		as.Len(once.History, 1)
	})

	t.Run("does not write into the caller's history", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		hist := make([]minibank.Entry, 1, 4)
		hist[0] = minibank.Entry{Kind: minibank.KindDeposit, Amount: decimal.New(1, 0)}
		st := newState(1)
		st.History = hist

		next, _, err := minibank.Deposit(st, decimal.New(2, 0))
		reqrd.Nil(err)
		as.Len(hist, 1)
		as.Len(next.History, 2)
		as.Equal(minibank.Entry{}, hist[:2][1])
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("debits, appends and counts on success", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)

		next, msg, err := minibank.Withdraw(newState(100), decimal.RequireFromString("40.5"))
		reqrd.Nil(err)
		as.Equal("59.5", next.Balance.String())
		as.Equal(1, next.Withdrawals)
		reqrd.Len(next.History, 1)
		as.Equal("Withdrawal: 40.50", next.History[0].String())
		as.Equal("Withdrawal of 40.50 completed successfully.", msg)
	})

	t.Run("rejects non-positive amounts", func(tt *testing.T) {
		as := assert.New(tt)
		st := newState(100)
		for _, amt := range []decimal.Decimal{decimal.Zero, decimal.New(-5, 0)} {
			next, msg, err := minibank.Withdraw(st, amt)
			as.ErrorIs(err, minibank.ErrInvalidAmount)
			as.Equal("Operation failed: the informed amount is invalid.", msg)
			as.Equal(st, next)
		}
	})

	t.Run("balance check precedes limit and cap", func(tt *testing.T) {
		as := assert.New(tt)
		st := newState(100)
		st.Withdrawals = st.WithdrawalCap

		next, msg, err := minibank.Withdraw(st, decimal.New(150, 0))
		as.ErrorIs(err, minibank.ErrInsufficientFunds)
		as.Equal("Operation failed: you do not have enough balance.", msg)
		as.Equal(st, next)

		next, _, err = minibank.Withdraw(st, decimal.New(600, 0))
		as.ErrorIs(err, minibank.ErrInsufficientFunds)
		as.Equal(st, next)
	})

	t.Run("rejects amounts above the per-operation limit", func(tt *testing.T) {
		as := assert.New(tt)
		st := newState(1000)
		next, msg, err := minibank.Withdraw(st, decimal.New(600, 0))
		as.ErrorIs(err, minibank.ErrLimitExceeded)
		as.Equal("Operation failed: the withdrawal amount exceeds the limit.", msg)
		as.Equal(st, next)
	})

	t.Run("stops at the withdrawal cap", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		st := newState(1000)
		amt := decimal.New(100, 0)

		var err error
		for i := 0; i < minibank.DefaultWithdrawalCap; i++ {
			st, _, err = minibank.Withdraw(st, amt)
			reqrd.Nil(err)
		}
		as.Equal(minibank.DefaultWithdrawalCap, st.Withdrawals)
		as.Equal("700", st.Balance.String())

		next, msg, err := minibank.Withdraw(st, decimal.New(1, 0))
		as.ErrorIs(err, minibank.ErrWithdrawalCapExceeded)
		as.Equal("Operation failed: maximum number of withdrawals exceeded.", msg)
		as.Equal(st, next)
	})

	t.Run("allows withdrawing the full balance", func(tt *testing.T) {
		as := assert.New(tt)
		next, _, err := minibank.Withdraw(newState(500), decimal.New(500, 0))
		as.Nil(err)
		as.True(next.Balance.IsZero())
	})
}

func TestMessage(t *testing.T) {
	as := assert.New(t)
	as.Equal("", minibank.Message(nil))
	as.Equal("Account not found.", minibank.Message(minibank.ErrNotFound{Branch: "0001", Number: 9}))
	as.Equal("Invalid value.", minibank.Message(minibank.ErrBadRequest{Fields: map[string]string{"amount": "not a number"}}))
	as.Equal("User not found for the informed identifier.", minibank.Message(minibank.ErrUserNotFound))
	as.Equal("Operation failed.", minibank.Message(assert.AnError))
}

func TestIsRejection(t *testing.T) {
	as := assert.New(t)
	as.True(minibank.IsRejection(minibank.ErrLimitExceeded))
	as.True(minibank.IsRejection(fmt.Errorf("seeding: %w", minibank.ErrDuplicateIdentifier)))
	as.True(minibank.IsRejection(minibank.ErrNotFound{Branch: "0001", Number: 1}))
	as.True(minibank.IsRejection(minibank.ErrBadRequest{}))
	as.False(minibank.IsRejection(nil))
	as.False(minibank.IsRejection(minibank.ErrBusy))
	as.False(minibank.IsRejection(assert.AnError))
}
