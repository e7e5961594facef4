package minibank

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	KindDeposit    EntryKind = "Deposit"
	KindWithdrawal EntryKind = "Withdrawal"
)

// Entry is one line of an account's history. Ref and At are zero until the entry is committed to
// a stored account.
type Entry struct {
	Ref    snowflake.ID    `json:"ref"`
	Kind   EntryKind       `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
	At     time.Time       `json:"at"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Amount.StringFixed(2))
}

// State is the part of an account the transaction engine reads and produces.
type State struct {
	Balance       decimal.Decimal
	History       []Entry
	Limit         decimal.Decimal
	Withdrawals   int
	WithdrawalCap int
}

func (st State) appendEntry(kind EntryKind, amount decimal.Decimal) []Entry {
	hist := make([]Entry, len(st.History), len(st.History)+1)
	copy(hist, st.History)
	return append(hist, Entry{Kind: kind, Amount: amount})
}

// Deposit credits amount to st and returns the resulting state with a confirmation message. On
// failure st is returned as given.
func Deposit(st State, amount decimal.Decimal) (State, string, error) {
	if !amount.IsPositive() {
		return st, Message(ErrInvalidAmount), ErrInvalidAmount
	}

	next := st
	next.Balance = st.Balance.Add(amount)
	next.History = st.appendEntry(KindDeposit, amount)
	return next, fmt.Sprintf("Deposit of %s completed successfully.", amount.StringFixed(2)), nil
}

// Withdraw debits amount from st. Checks run in a fixed order and stop at the first failure:
// non-positive amount, insufficient balance, per-operation limit, withdrawal count.
func Withdraw(st State, amount decimal.Decimal) (State, string, error) {
	var err error
	switch {
	case !amount.IsPositive():
		err = ErrInvalidAmount
	case amount.GreaterThan(st.Balance):
		err = ErrInsufficientFunds
	case amount.GreaterThan(st.Limit):
		err = ErrLimitExceeded
	case st.Withdrawals >= st.WithdrawalCap:
		err = ErrWithdrawalCapExceeded
	}
	if err != nil {
		return st, Message(err), err
	}

	next := st
	next.Balance = st.Balance.Sub(amount)
	next.History = st.appendEntry(KindWithdrawal, amount)
	next.Withdrawals = st.Withdrawals + 1
	return next, fmt.Sprintf("Withdrawal of %s completed successfully.", amount.StringFixed(2)), nil
}
