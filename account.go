package minibank

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultBranch        = "0001"
	DefaultWithdrawalCap = 3
)

var DefaultWithdrawalLimit = decimal.New(500, 0)

type Account struct {
	Branch        string          `json:"branch"`
	Number        int             `json:"number"`
	Owner         *User           `json:"owner"`
	Balance       decimal.Decimal `json:"balance"`
	Limit         decimal.Decimal `json:"limit"`
	History       []Entry         `json:"history"`
	Withdrawals   int             `json:"withdrawals"`
	WithdrawalCap int             `json:"withdrawal_cap"`
}

func (a *Account) state() State {
	return State{
		Balance:       a.Balance,
		History:       a.History,
		Limit:         a.Limit,
		Withdrawals:   a.Withdrawals,
		WithdrawalCap: a.WithdrawalCap,
	}
}

// snapshot returns a copy that shares the owner but not the history backing array.
func (a *Account) snapshot() Account {
	cp := *a
	cp.History = make([]Entry, len(a.History))
	copy(cp.History, a.History)
	return cp
}

// AccountDefaults are the values every newly opened account starts with.
type AccountDefaults struct {
	Branch          string
	WithdrawalLimit decimal.Decimal
	WithdrawalCap   int
}

// AccountRegistry stores accounts in opening order and hands out account numbers from a counter
// that only moves on successful opens.
type AccountRegistry struct {
	users    *UserRegistry
	defaults AccountDefaults
	accounts []*Account
	next     int
}

func NewAccountRegistry(users *UserRegistry, defaults AccountDefaults) *AccountRegistry {
	if defaults.Branch == "" {
		defaults.Branch = DefaultBranch
	}
	return &AccountRegistry{
		users:    users,
		defaults: defaults,
		next:     1,
	}
}

func (r *AccountRegistry) Open(identifier string) (*Account, error) {
	owner, ok := r.users.FindByIdentifier(identifier)
	if !ok {
		return nil, ErrUserNotFound
	}

	acct := &Account{
		Branch:        r.defaults.Branch,
		Number:        r.next,
		Owner:         owner,
		Balance:       decimal.Zero,
		Limit:         r.defaults.WithdrawalLimit,
		WithdrawalCap: r.defaults.WithdrawalCap,
	}
	r.accounts = append(r.accounts, acct)
	r.next++
	return acct, nil
}

func (r *AccountRegistry) List() []Account {
	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a.snapshot())
	}
	return out
}

func (r *AccountRegistry) Find(branch string, number int) (*Account, bool) {
	for _, a := range r.accounts {
		if a.Branch == branch && a.Number == number {
			return a, true
		}
	}
	return nil, false
}

func (r *AccountRegistry) Len() int {
	return len(r.accounts)
}
