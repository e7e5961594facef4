package minibank

import (
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RegisterUserReq struct {
	Name       string `yaml:"name"`
	BirthDate  string `yaml:"birth_date"`
	Identifier string `yaml:"identifier"`
	Address    string `yaml:"address"`
}

type OpenAccountReq struct {
	Identifier string
}

type SelectReq struct {
	Branch string
	Number int
}

type ChargeReq struct {
	Amount decimal.Decimal `json:"amount"`
	Branch string
	Number int
}

type StatementReq struct {
	Branch string
	Number int
	Format StatementFormat
}

// Receipt describes a committed deposit or withdrawal.
type Receipt struct {
	Balance decimal.Decimal `json:"balance"`
	Entry   Entry           `json:"entry"`
	Message string          `json:"message"`
}

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type Service interface {
	RegisterUser(RegisterUserReq) (*User, error)
	OpenAccount(OpenAccountReq) (*Account, error)
	ListAccounts() ([]Account, error)
	SelectAccount(SelectReq) (*Account, error)
	Deposit(ChargeReq) (*Receipt, error)
	Withdraw(ChargeReq) (*Receipt, error)
	Statement(io.Writer, StatementReq) error
}

var (
	_ Service = (*serviceImpl)(nil)
)

// NewService builds an empty ledger. The registries it owns are not safe for concurrent use; wrap
// the service with NewLimitMiddleware when more than one caller shares it.
func NewService(cfg LedgerConfig) (*serviceImpl, error) {
	node, err := snowflake.NewNode(cfg.Node)
	if err != nil {
		return nil, err
	}
	users := NewUserRegistry()
	accounts := NewAccountRegistry(users, AccountDefaults{
		Branch:          cfg.Branch,
		WithdrawalLimit: cfg.WithdrawalLimit,
		WithdrawalCap:   cfg.WithdrawalCap,
	})
	return &serviceImpl{
		users:    users,
		accounts: accounts,
		node:     node,
		now:      time.Now,
	}, nil
}

type serviceImpl struct {
	users    *UserRegistry
	accounts *AccountRegistry
	node     *snowflake.Node
	now      func() time.Time
}

func (s *serviceImpl) RegisterUser(req RegisterUserReq) (*User, error) {
	u, err := s.users.Register(req.Name, req.BirthDate, req.Identifier, req.Address)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (s *serviceImpl) OpenAccount(req OpenAccountReq) (*Account, error) {
	acct, err := s.accounts.Open(req.Identifier)
	if err != nil {
		return nil, err
	}
	cp := acct.snapshot()
	return &cp, nil
}

func (s *serviceImpl) ListAccounts() ([]Account, error) {
	return s.accounts.List(), nil
}

func (s *serviceImpl) SelectAccount(req SelectReq) (*Account, error) {
	acct, err := SelectAccount(req.Branch, req.Number, s.accounts)
	if err != nil {
		return nil, err
	}
	cp := acct.snapshot()
	return &cp, nil
}

func (s *serviceImpl) Deposit(req ChargeReq) (*Receipt, error) {
	acct, err := SelectAccount(req.Branch, req.Number, s.accounts)
	if err != nil {
		return nil, err
	}
	next, msg, err := Deposit(acct.state(), req.Amount)
	if err != nil {
		return nil, err
	}
	entry := s.commit(acct, next)
	return &Receipt{Balance: acct.Balance, Entry: entry, Message: msg}, nil
}

func (s *serviceImpl) Withdraw(req ChargeReq) (*Receipt, error) {
	acct, err := SelectAccount(req.Branch, req.Number, s.accounts)
	if err != nil {
		return nil, err
	}
	next, msg, err := Withdraw(acct.state(), req.Amount)
	if err != nil {
		return nil, err
	}
	entry := s.commit(acct, next)
	return &Receipt{Balance: acct.Balance, Entry: entry, Message: msg}, nil
}

func (s *serviceImpl) Statement(w io.Writer, req StatementReq) error {
	acct, err := SelectAccount(req.Branch, req.Number, s.accounts)
	if err != nil {
		return err
	}
	switch req.Format {
	case FormatText:
		_, err = io.WriteString(w, FormatStatement(acct.Balance, acct.History))
		return err
	case FormatPDF:
		return WriteStatementPDF(w, acct.snapshot())
	default:
		return ErrBadRequest{Fields: map[string]string{"format": "unsupported statement format"}}
	}
}

// commit writes an engine result back onto the stored account, stamping the entries the engine
// appended, and returns the last one.
func (s *serviceImpl) commit(acct *Account, next State) Entry {
	fresh := next.History[len(acct.History):]
	for i := range fresh {
		fresh[i].Ref = s.node.Generate()
		fresh[i].At = s.now()
	}
	acct.Balance = next.Balance
	acct.History = next.History
	acct.Withdrawals = next.Withdrawals
	return next.History[len(next.History)-1]
}
