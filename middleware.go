package minibank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

// Chain wraps svc so that the first middleware is the outermost.
func Chain(svc Service, mws ...Middleware) Service {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}

//
// Logging middleware
//

var (
	_ Service = (*loggingMiddleware)(nil)
)

type loggingMiddleware struct {
	next Service
	log  *zerolog.Logger
}

func NewLoggingMiddleware(log *zerolog.Logger) Middleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			next: next,
			log:  log,
		}
	}
}

// event logs rejections at debug next to successful calls; only ErrBusy and unexpected errors
// reach warn.
func (l *loggingMiddleware) event(method string, begin time.Time, err error) *zerolog.Event {
	var ev *zerolog.Event
	switch {
	case err == nil:
		ev = l.log.Debug()
	case IsRejection(err):
		ev = l.log.Debug().Err(err)
	default:
		ev = l.log.Warn().Err(err)
	}
	return ev.Str("method", method).Dur("took", time.Since(begin))
}

func (l *loggingMiddleware) RegisterUser(req RegisterUserReq) (u *User, err error) {
	defer func(begin time.Time) {
		l.event("register_user", begin, err).Msg("call")
	}(time.Now())
	return l.next.RegisterUser(req)
}

func (l *loggingMiddleware) OpenAccount(req OpenAccountReq) (acct *Account, err error) {
	defer func(begin time.Time) {
		ev := l.event("open_account", begin, err)
		if acct != nil {
			ev = ev.Str("branch", acct.Branch).Int("number", acct.Number)
		}
		ev.Msg("call")
	}(time.Now())
	return l.next.OpenAccount(req)
}

func (l *loggingMiddleware) ListAccounts() (accts []Account, err error) {
	defer func(begin time.Time) {
		l.event("list_accounts", begin, err).Int("count", len(accts)).Msg("call")
	}(time.Now())
	return l.next.ListAccounts()
}

func (l *loggingMiddleware) SelectAccount(req SelectReq) (acct *Account, err error) {
	defer func(begin time.Time) {
		l.event("select_account", begin, err).
			Str("branch", req.Branch).
			Int("number", req.Number).
			Msg("call")
	}(time.Now())
	return l.next.SelectAccount(req)
}

func (l *loggingMiddleware) Deposit(req ChargeReq) (rcpt *Receipt, err error) {
	defer func(begin time.Time) {
		l.event("deposit", begin, err).
			Str("branch", req.Branch).
			Int("number", req.Number).
			Str("amount", req.Amount.String()).
			Msg("call")
	}(time.Now())
	return l.next.Deposit(req)
}

func (l *loggingMiddleware) Withdraw(req ChargeReq) (rcpt *Receipt, err error) {
	defer func(begin time.Time) {
		l.event("withdraw", begin, err).
			Str("branch", req.Branch).
			Int("number", req.Number).
			Str("amount", req.Amount.String()).
			Msg("call")
	}(time.Now())
	return l.next.Withdraw(req)
}

func (l *loggingMiddleware) Statement(w io.Writer, req StatementReq) (err error) {
	defer func(begin time.Time) {
		l.event("statement", begin, err).
			Str("branch", req.Branch).
			Int("number", req.Number).
			Msg("call")
	}(time.Now())
	return l.next.Statement(w, req)
}

//
// Rate limiting middlewares
//

// limitMiddleware admits one call at a time into the wrapped service by holding a weighted
// semaphore for the duration of the call. Callers that cannot acquire it within the timeout get
// ErrBusy. The registries behind serviceImpl hold no locks of their own, so this is what makes a
// shared ledger safe.
type limitMiddleware struct {
	next    Service
	sem     *semaphore.Weighted
	timeout time.Duration
}

var (
	_ Service = (*limitMiddleware)(nil)
)

func NewLimitMiddleware(sem *semaphore.Weighted, timeout time.Duration) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:    next,
			sem:     sem,
			timeout: timeout,
		}
	}
}

func (l *limitMiddleware) acquire() (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return func() { l.sem.Release(1) }, nil
}

func (l *limitMiddleware) RegisterUser(req RegisterUserReq) (*User, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.RegisterUser(req)
}

func (l *limitMiddleware) OpenAccount(req OpenAccountReq) (*Account, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.OpenAccount(req)
}

func (l *limitMiddleware) ListAccounts() ([]Account, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.ListAccounts()
}

func (l *limitMiddleware) SelectAccount(req SelectReq) (*Account, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.SelectAccount(req)
}

func (l *limitMiddleware) Deposit(req ChargeReq) (*Receipt, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Withdraw(req ChargeReq) (*Receipt, error) {
	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Withdraw(req)
}

func (l *limitMiddleware) Statement(w io.Writer, req StatementReq) error {
	release, err := l.acquire()
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(w, req)
}

type ServiceBreaker struct {
	RegisterUser  *gobreaker.CircuitBreaker[*User]
	OpenAccount   *gobreaker.CircuitBreaker[*Account]
	ListAccounts  *gobreaker.CircuitBreaker[[]Account]
	SelectAccount *gobreaker.CircuitBreaker[*Account]
	Deposit       *gobreaker.CircuitBreaker[*Receipt]
	Withdraw      *gobreaker.CircuitBreaker[*Receipt]
	Statement     *gobreaker.CircuitBreaker[interface{}]
}

// NewServiceBreaker builds one breaker per operation. Only ErrBusy counts as a failure: a
// rejected deposit is the ledger working, not the ledger struggling.
func NewServiceBreaker(cfg BreakerConfig, log *zerolog.Logger) *ServiceBreaker {
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return !errors.Is(err, ErrBusy)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}
	}
	return &ServiceBreaker{
		RegisterUser:  gobreaker.NewCircuitBreaker[*User](settings("register_user")),
		OpenAccount:   gobreaker.NewCircuitBreaker[*Account](settings("open_account")),
		ListAccounts:  gobreaker.NewCircuitBreaker[[]Account](settings("list_accounts")),
		SelectAccount: gobreaker.NewCircuitBreaker[*Account](settings("select_account")),
		Deposit:       gobreaker.NewCircuitBreaker[*Receipt](settings("deposit")),
		Withdraw:      gobreaker.NewCircuitBreaker[*Receipt](settings("withdraw")),
		Statement:     gobreaker.NewCircuitBreaker[interface{}](settings("statement")),
	}
}

// circuitBreakMiddleware works in conjunction with limitMiddleware: when callers keep timing out
// on the limit semaphore the breaker opens and sheds calls immediately instead of queueing them.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

// shed marks breaker rejections as ErrBusy so callers handle them like a limit timeout.
func shed(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return err
}

func (c *circuitBreakMiddleware) RegisterUser(req RegisterUserReq) (*User, error) {
	u, err := c.brkrs.RegisterUser.Execute(func() (*User, error) {
		return c.next.RegisterUser(req)
	})
	return u, shed(err)
}

func (c *circuitBreakMiddleware) OpenAccount(req OpenAccountReq) (*Account, error) {
	acct, err := c.brkrs.OpenAccount.Execute(func() (*Account, error) {
		return c.next.OpenAccount(req)
	})
	return acct, shed(err)
}

func (c *circuitBreakMiddleware) ListAccounts() ([]Account, error) {
	accts, err := c.brkrs.ListAccounts.Execute(c.next.ListAccounts)
	return accts, shed(err)
}

func (c *circuitBreakMiddleware) SelectAccount(req SelectReq) (*Account, error) {
	acct, err := c.brkrs.SelectAccount.Execute(func() (*Account, error) {
		return c.next.SelectAccount(req)
	})
	return acct, shed(err)
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (*Receipt, error) {
	rcpt, err := c.brkrs.Deposit.Execute(func() (*Receipt, error) {
		return c.next.Deposit(req)
	})
	return rcpt, shed(err)
}

func (c *circuitBreakMiddleware) Withdraw(req ChargeReq) (*Receipt, error) {
	rcpt, err := c.brkrs.Withdraw.Execute(func() (*Receipt, error) {
		return c.next.Withdraw(req)
	})
	return rcpt, shed(err)
}

func (c *circuitBreakMiddleware) Statement(w io.Writer, req StatementReq) error {
	_, err := c.brkrs.Statement.Execute(func() (interface{}, error) {
		return nil, c.next.Statement(w, req)
	})
	return shed(err)
}
