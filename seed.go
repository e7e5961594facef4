package minibank

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Seed lists users, their accounts, and opening deposits to load into a fresh ledger.
type Seed struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	RegisterUserReq `yaml:",inline"`
	Accounts        []SeedAccount `yaml:"accounts"`
}

type SeedAccount struct {
	Deposits []decimal.Decimal `yaml:"deposits"`
}

// ApplySeed replays seed through svc, so fixtures obey the same rules as console input. It stops
// at the first rejected operation.
func ApplySeed(svc Service, seed Seed) ([]Account, error) {
	var opened []Account
	for _, su := range seed.Users {
		u, err := svc.RegisterUser(su.RegisterUserReq)
		if err != nil {
			return opened, fmt.Errorf("seeding user %q: %w", su.Identifier, err)
		}
		for _, sa := range su.Accounts {
			acct, err := svc.OpenAccount(OpenAccountReq{Identifier: u.Identifier})
			if err != nil {
				return opened, fmt.Errorf("seeding account for %q: %w", u.Identifier, err)
			}
			for _, amt := range sa.Deposits {
				if err := checkAmount(amt); err != nil {
					return opened, fmt.Errorf("seeding deposit into %s/%d: %w", acct.Branch, acct.Number, err)
				}
				_, err := svc.Deposit(ChargeReq{Amount: amt, Branch: acct.Branch, Number: acct.Number})
				if err != nil {
					return opened, fmt.Errorf("seeding deposit into %s/%d: %w", acct.Branch, acct.Number, err)
				}
			}
			if acct, err = svc.SelectAccount(SelectReq{Branch: acct.Branch, Number: acct.Number}); err != nil {
				return opened, err
			}
			opened = append(opened, *acct)
		}
	}
	return opened, nil
}
