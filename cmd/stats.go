package cmd

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/naka-gawa/merged-pr-stats/internal/config"
	"github.com/naka-gawa/merged-pr-stats/internal/gateway"
	"github.com/naka-gawa/merged-pr-stats/internal/report"
	"github.com/naka-gawa/merged-pr-stats/internal/usecase"
)

// reportedError marks a failure that was already explained on stdout.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// newLogger logs progress to w, adding debug output when verbose is set.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func runStats(ctx context.Context, out, errOut io.Writer, v *viper.Viper) error {
	printer := report.NewPrinter(out)

	cfg, err := config.Load(v, time.Now())
	if err != nil {
		printer.ConfigFailed(err)
		return &reportedError{err: err}
	}
	logger := newLogger(errOut, cfg.Verbose)

	// Inject dependencies and run the main business logic.
	fetcher, err := gateway.New(cfg.GatewayOptions(), logger)
	if err != nil {
		printer.ConfigFailed(err)
		return &reportedError{err: err}
	}
	aggregator := usecase.NewAggregator(fetcher, logger, cfg.Concurrency)

	printer.Header(cfg.Repositories, cfg.Since)
	result, err := aggregator.Aggregate(ctx, cfg.Repositories, cfg.Since)
	if err != nil {
		printer.FetchFailed(err)
		return &reportedError{err: err}
	}
	if len(result.PullRequests) == 0 {
		printer.NoneFound(cfg.Repositories)
		return nil
	}

	printer.Report(result)
	return nil
}
