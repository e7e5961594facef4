package minibank

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrLimitExceeded         = errors.New("withdrawal limit exceeded")
	ErrWithdrawalCapExceeded = errors.New("maximum number of withdrawals exceeded")
	ErrInvalidIdentifier     = errors.New("identifier must contain 11 digits")
	ErrDuplicateIdentifier   = errors.New("identifier already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrBusy                  = errors.New("ledger busy")
)

// ErrBadRequest reports input that could not be parsed. The core never returns it; it is raised
// at the console boundary and by config validation.
type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

type ErrNotFound struct {
	Branch string `json:"branch"`
	Number int    `json:"number"`
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("account %s/%d not found", e.Branch, e.Number)
}

var messages = []struct {
	err error
	msg string
}{
	{ErrInvalidAmount, "Operation failed: the informed amount is invalid."},
	{ErrInsufficientFunds, "Operation failed: you do not have enough balance."},
	{ErrLimitExceeded, "Operation failed: the withdrawal amount exceeds the limit."},
	{ErrWithdrawalCapExceeded, "Operation failed: maximum number of withdrawals exceeded."},
	{ErrInvalidIdentifier, "Invalid identifier: it must contain 11 digits."},
	{ErrDuplicateIdentifier, "A user with this identifier already exists."},
	{ErrUserNotFound, "User not found for the informed identifier."},
	{ErrBusy, "The ledger is busy, please try again."},
}

// IsRejection reports whether err is the ledger refusing an operation by its rules, as opposed to
// the ledger being busy or failing.
func IsRejection(err error) bool {
	if err == nil || errors.Is(err, ErrBusy) {
		return false
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return errors.As(err, &ErrNotFound{}) || errors.As(err, &ErrBadRequest{})
}

// Message returns the text shown to the person operating the ledger for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	if errors.As(err, &ErrNotFound{}) {
		return "Account not found."
	}
	if errors.As(err, &ErrBadRequest{}) {
		return "Invalid value."
	}
	return "Operation failed."
}
