// Command binopt prices European and American options on a Cox-Ross-Rubinstein binomial lattice.
// Jobs come from a YAML file, from command-line flags or from the interactive wizard,
// and the same pricer can be served over HTTP.
//
// Usage:
//
//	binopt --config jobs.yaml
//	binopt --spot 50 --years 2 --volatility 0.174012 --steps 2 --strike 52 --rate 0.05 --type put
//	binopt --setup [--config jobs.yaml]
//	binopt --serve :8080
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/binopt/config"
	"github.com/vadiminshakov/binopt/internal"
	"github.com/vadiminshakov/binopt/internal/report"
	"github.com/vadiminshakov/binopt/internal/setup"
	"github.com/vadiminshakov/binopt/internal/web"
)

func main() {
	settings, err := config.Get(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	logger, err := newLogger(settings.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if settings.Setup {
		if err := setup.RunTUI(settings.SetupPath); err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		settings, err = config.Get([]string{"--config", settings.SetupPath})
		if err != nil {
			logger.Fatal("failed to load generated config", zap.Error(err))
		}
	}

	if settings.ServeAddr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := web.NewServer(settings.ServeAddr, logger).Start(ctx); err != nil {
			logger.Fatal("pricing endpoint stopped", zap.Error(err))
		}
		return
	}

	results := make([]report.Result, 0, len(settings.Jobs))
	failed := 0
	for _, job := range settings.Jobs {
		result, err := internal.Evaluate(logger, job)
		if err != nil {
			logger.Error("failed to price job", zap.String("job", job.Name), zap.Error(err))
			failed++
			continue
		}
		results = append(results, result)
	}

	if err := report.Write(os.Stdout, results); err != nil {
		logger.Fatal("failed to write report", zap.Error(err))
	}
	if failed > 0 {
		logger.Fatal("some jobs were not priced", zap.Int("failed", failed), zap.Int("total", len(settings.Jobs)))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
