package minibank_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/minibank"
)

func TestLoadConfig(t *testing.T) {
	t.Run("returns the defaults for an empty path", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		cfg, err := minibank.LoadConfig("")
		reqrd.Nil(err)
		as.Equal("0001", cfg.Ledger.Branch)
		as.True(decimal.New(500, 0).Equal(cfg.Ledger.WithdrawalLimit))
		as.Equal(3, cfg.Ledger.WithdrawalCap)
		as.Equal("info", cfg.Log.Level)
		as.Nil(cfg.Validate())
	})

	t.Run("decodes every section", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		cfg, err := minibank.LoadConfig(filepath.Join("testdata", "config.yml"))
		reqrd.Nil(err)

		as.Equal("0042", cfg.Ledger.Branch)
		as.Equal("250.5", cfg.Ledger.WithdrawalLimit.String())
		as.Equal(5, cfg.Ledger.WithdrawalCap)
		as.Equal(int64(7), cfg.Ledger.Node)
		as.Equal("debug", cfg.Log.Level)
		as.Equal(150*time.Millisecond, cfg.Limits.AcquireTimeout)
		as.Equal(uint32(2), cfg.Breaker.MaxRequests)
		as.Equal(10*time.Second, cfg.Breaker.Interval)
		as.Equal(5*time.Second, cfg.Breaker.Timeout)
		as.Equal(uint32(3), cfg.Breaker.ConsecutiveFailures)

		reqrd.Len(cfg.Seed.Users, 2)
		as.Equal("Ada Lovelace", cfg.Seed.Users[0].Name)
		as.Equal("123.456.789-09", cfg.Seed.Users[0].Identifier)
		reqrd.Len(cfg.Seed.Users[0].Accounts, 2)
		reqrd.Len(cfg.Seed.Users[0].Accounts[0].Deposits, 2)
		as.Equal("25.5", cfg.Seed.Users[0].Accounts[0].Deposits[1].String())
	})

	t.Run("keeps the defaults for an empty file", func(tt *testing.T) {
		as := assert.New(tt)
		cfg, err := minibank.LoadConfig(filepath.Join("testdata", "empty_config.yml"))
		as.Nil(err)
		as.Equal(minibank.DefaultConfig().Ledger.Branch, cfg.Ledger.Branch)
	})

	t.Run("reports every invalid field", func(tt *testing.T) {
		as := assert.New(tt)
		_, err := minibank.LoadConfig(filepath.Join("testdata", "invalid_config.yml"))
		errbr := minibank.ErrBadRequest{}
		as.ErrorAs(err, &errbr)
		for _, f := range []string{
			"ledger.branch",
			"ledger.withdrawal_limit",
			"ledger.withdrawal_cap",
			"ledger.node",
			"log.level",
			"limits.acquire_timeout",
			"breaker.consecutive_failures",
		} {
			as.Contains(errbr.Fields, f)
		}
	})

	t.Run("returns an error for a missing file", func(tt *testing.T) {
		as := assert.New(tt)
		_, err := minibank.LoadConfig(filepath.Join("testdata", "nope.yml"))
		as.NotNil(err)
	})
}

func TestApplySeed(t *testing.T) {
	t.Run("replays users, accounts and deposits", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		cfg, err := minibank.LoadConfig(filepath.Join("testdata", "config.yml"))
		reqrd.Nil(err)
		svc, err := minibank.NewService(cfg.Ledger)
		reqrd.Nil(err)

		opened, err := minibank.ApplySeed(svc, cfg.Seed)
		reqrd.Nil(err)
		reqrd.Len(opened, 3)
		as.Equal([]int{1, 2, 3}, []int{opened[0].Number, opened[1].Number, opened[2].Number})
		as.Equal("0042", opened[0].Branch)
		as.Equal("125.5", opened[0].Balance.String())
		as.Len(opened[0].History, 2)
		as.True(opened[1].Balance.IsZero())
		as.Equal("11122233344", opened[2].Owner.Identifier)
		as.Equal("10", opened[2].Balance.String())
	})

	t.Run("stops at the first rejected operation", func(tt *testing.T) {
		as := assert.New(tt)
		svc := newTestService(tt)
		seed := minibank.Seed{Users: []minibank.SeedUser{
			{RegisterUserReq: minibank.RegisterUserReq{Name: "A", Identifier: "12345678909"}},
			{RegisterUserReq: minibank.RegisterUserReq{Name: "B", Identifier: "123.456.789-09"}},
		}}
		_, err := minibank.ApplySeed(svc, seed)
		as.ErrorIs(err, minibank.ErrDuplicateIdentifier)
	})

	t.Run("rejects invalid opening deposits", func(tt *testing.T) {
		as := assert.New(tt)
		svc := newTestService(tt)
		seed := minibank.Seed{Users: []minibank.SeedUser{{
			RegisterUserReq: minibank.RegisterUserReq{Name: "A", Identifier: "12345678909"},
			Accounts:        []minibank.SeedAccount{{Deposits: []decimal.Decimal{decimal.New(-1, 0)}}},
		}}}
		_, err := minibank.ApplySeed(svc, seed)
		as.ErrorIs(err, minibank.ErrInvalidAmount)
	})
	t.Run("rejects opening deposits outside the supported range", func(tt *testing.T) {
		as := assert.New(tt)
		svc := newTestService(tt)
		seed := minibank.Seed{Users: []minibank.SeedUser{{
			RegisterUserReq: minibank.RegisterUserReq{Name: "A", Identifier: "12345678909"},
			Accounts:        []minibank.SeedAccount{{Deposits: []decimal.Decimal{decimal.New(1, 400000000)}}},
		}}}
		opened, err := minibank.ApplySeed(svc, seed)
		as.ErrorAs(err, &minibank.ErrBadRequest{})
		as.Empty(opened)
	})
}
