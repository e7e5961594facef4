package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/arhyth/minibank"
)

// version is set at build time.
var version = "dev"

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfp := flag.String("config", "", "path to configuration file (defaults are used when empty)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := minibank.LoadConfig(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *cfp).Msg("error loading config file")
	}
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatal().Err(err).Msg("error parsing log level")
	}
	zerolog.SetGlobalLevel(lvl)

	core, err := minibank.NewService(cfg.Ledger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting service")
	}
	svc := minibank.Chain(core,
		minibank.NewLoggingMiddleware(&logger),
		minibank.NewCircuitBreakMiddleware(minibank.NewServiceBreaker(cfg.Breaker, &logger)),
		minibank.NewLimitMiddleware(semaphore.NewWeighted(1), cfg.Limits.AcquireTimeout),
	)

	if len(cfg.Seed.Users) > 0 {
		accts, err := minibank.ApplySeed(svc, cfg.Seed)
		if err != nil {
			logger.Fatal().Err(err).Msg("error applying seed")
		}
		logger.Info().Int("accounts", len(accts)).Msg("seed applied")
	}

	console := minibank.NewConsole(svc, os.Stdin, os.Stdout, &logger)
	if err = console.Run(); err != nil {
		logger.Error().Err(err).Msg("console stopped")
	}
}
