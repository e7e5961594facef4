package minibank

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Ledger LedgerConfig `yaml:"ledger"`
	Log    struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Limits  LimitsConfig  `yaml:"limits"`
	Breaker BreakerConfig `yaml:"breaker"`
	Seed    Seed          `yaml:"seed"`
}

type LedgerConfig struct {
	Branch          string          `yaml:"branch"`
	WithdrawalLimit decimal.Decimal `yaml:"withdrawal_limit"`
	WithdrawalCap   int             `yaml:"withdrawal_cap"`
	// Node is the snowflake node number used for entry references.
	Node int64 `yaml:"node"`
}

// LimitsConfig bounds how long a caller waits for the ledger when it is shared.
type LimitsConfig struct {
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Ledger = LedgerConfig{
		Branch:          DefaultBranch,
		WithdrawalLimit: DefaultWithdrawalLimit,
		WithdrawalCap:   DefaultWithdrawalCap,
		Node:            1,
	}
	cfg.Log.Level = zerolog.InfoLevel.String()
	cfg.Limits = LimitsConfig{
		AcquireTimeout: 2 * time.Second,
	}
	cfg.Breaker = BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
	return cfg
}

// LoadConfig decodes the YAML file at path over DefaultConfig. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err = yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	fields := map[string]string{}
	if c.Ledger.Branch == "" {
		fields["ledger.branch"] = "must not be empty"
	}
	if c.Ledger.WithdrawalLimit.IsNegative() {
		fields["ledger.withdrawal_limit"] = "must not be negative"
	}
	if c.Ledger.WithdrawalCap < 0 {
		fields["ledger.withdrawal_cap"] = "must not be negative"
	}
	if c.Ledger.Node < 0 || c.Ledger.Node > 1023 {
		fields["ledger.node"] = "must be between 0 and 1023"
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		fields["log.level"] = err.Error()
	}
	if c.Limits.AcquireTimeout <= 0 {
		fields["limits.acquire_timeout"] = "must be positive"
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		fields["breaker.consecutive_failures"] = "must be at least 1"
	}
	if len(fields) > 0 {
		return ErrBadRequest{Fields: fields}
	}
	return nil
}
