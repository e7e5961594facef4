package minibank

// SelectAccount resolves a branch and account number against the registry. An empty registry and
// an unmatched pair both yield ErrNotFound; reporting it is left to the caller.
func SelectAccount(branch string, number int, accounts *AccountRegistry) (*Account, error) {
	if accounts == nil {
		return nil, ErrNotFound{Branch: branch, Number: number}
	}
	acct, ok := accounts.Find(branch, number)
	if !ok {
		return nil, ErrNotFound{Branch: branch, Number: number}
	}
	return acct, nil
}
