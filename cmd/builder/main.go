// Command builder loads a strategy configuration, validates it, renders
// grid/DCA previews and optionally submits it for backtesting or saves
// it through the persistence service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ducminhle1904/bot-builder/cmd/common"
	"github.com/ducminhle1904/bot-builder/internal/backtest"
	"github.com/ducminhle1904/bot-builder/internal/catalog"
	builderrors "github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/logger"
	"github.com/ducminhle1904/bot-builder/internal/monitoring"
	"github.com/ducminhle1904/bot-builder/internal/persistence"
	"github.com/ducminhle1904/bot-builder/internal/session"
	"github.com/ducminhle1904/bot-builder/pkg/reporting"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

func main() {
	flags := common.RegisterCommonFlags()
	runBacktest := flag.Bool("backtest", false, "Submit the configuration for backtesting")
	saveStrategy := flag.Bool("save", false, "Save the configuration through the persistence service")
	initialBalance := flag.Float64("balance", 1000, "Initial balance for backtesting")
	feeRate := flag.Float64("fee", 0.001, "Fee rate for backtesting")
	reportJSON := flag.String("report-json", "", "Write backtest report to this JSON file")
	reportXLSX := flag.String("report-xlsx", "", "Write backtest report to this Excel file")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics and /health on this address (e.g. :9100)")
	flag.Parse()

	if *flags.Version {
		common.PrintVersion("builder")
		return
	}
	if *flags.Help || *flags.ConfigFile == "" {
		flag.Usage()
		if *flags.ConfigFile == "" && !*flags.Help {
			os.Exit(2)
		}
		return
	}

	if err := flags.LoadEnvironment(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(*flags.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ could not create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(flags, log, runOptions{
		backtest:       *runBacktest,
		save:           *saveStrategy,
		initialBalance: *initialBalance,
		feeRate:        *feeRate,
		reportJSON:     *reportJSON,
		reportXLSX:     *reportXLSX,
		metricsAddr:    *metricsAddr,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		var berr *builderrors.BuilderError
		if errors.As(err, &berr) && berr.IsRetryable() {
			fmt.Fprintln(os.Stderr, "The collaborator call failed; you can retry the command.")
		}
		os.Exit(1)
	}
}

type runOptions struct {
	backtest       bool
	save           bool
	initialBalance float64
	feeRate        float64
	reportJSON     string
	reportXLSX     string
	metricsAddr    string
}

func newLogger(verbose bool) (*logger.Logger, error) {
	if verbose {
		return logger.NewDevelopment()
	}
	return logger.New()
}

func run(flags *common.CommonFlags, log *logger.Logger, opts runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(*flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := strategy.UnmarshalConfig(data)
	if err != nil {
		return err
	}

	health := monitoring.NewHealthChecker()
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.Handler())
		mux.Handle("/health", health)
		go func() {
			if err := http.ListenAndServe(opts.metricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	drafts, err := persistence.NewDraftStore(*flags.DraftDir)
	if err != nil {
		return err
	}

	sessOpts := session.Options{
		Logger:     log,
		DraftStore: drafts,
		Health:     health,
	}
	if url := common.Endpoint(flags.CatalogURL, common.EnvCatalogURL); url != "" {
		sessOpts.Catalogs = catalog.NewClient(url, log)
	}
	if url := common.Endpoint(flags.BacktestURL, common.EnvBacktestURL); url != "" {
		sessOpts.Backtest = backtest.NewClient(url, log)
	}
	if url := common.Endpoint(flags.PersistenceURL, common.EnvPersistenceURL); url != "" {
		sessOpts.Persist = persistence.NewClient(url, log)
	}

	sess := session.New(sessOpts)
	sess.Start(ctx)
	sess.SetDraft(cfg)

	console := reporting.NewConsoleReporter()

	if violations := sess.Validate(); len(violations) > 0 {
		fmt.Printf("Configuration is not submittable (%d violations):\n", len(violations))
		console.PrintViolations(violations)
		return fmt.Errorf("validation failed")
	}
	fmt.Println("✅ Configuration is valid")

	switch cfg.Type() {
	case strategy.BotTypeGrid:
		levels, amount, err := sess.GridPreview()
		if err != nil {
			return err
		}
		console.PrintGridPreview(levels, amount)
	case strategy.BotTypeDCA:
		dcaCfg := cfg.(*strategy.DCAConfig)
		plan, maxCapital, err := sess.DCAPreview()
		if err != nil {
			return err
		}
		console.PrintDCAPlan(dcaCfg.Spec, plan)
		fmt.Printf("Worst-case capital requirement: %.2f\n", maxCapital)
		if warning := dcaCfg.Spec.CapitalWarning(opts.initialBalance); warning != "" {
			fmt.Printf("⚠️  %s\n", warning)
		}
	}

	if opts.backtest {
		result, err := sess.SubmitBacktest(ctx, opts.initialBalance, opts.feeRate)
		if err != nil {
			return err
		}
		console.PrintBacktestResult(result)

		if opts.reportJSON != "" {
			if err := reporting.NewJSONReporter().WriteBacktestReport(cfg, result, opts.reportJSON); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", opts.reportJSON)
		}
		if opts.reportXLSX != "" {
			levels, _, _ := sess.GridPreview()
			plan, _, _ := sess.DCAPreview()
			if err := reporting.NewExcelReporter().WriteBacktestXLSX(result, levels, plan, opts.reportXLSX); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", opts.reportXLSX)
		}
	}

	if opts.save {
		if err := sess.SaveStrategy(ctx); err != nil {
			return err
		}
		fmt.Println("✅ Strategy saved")
	}

	return nil
}
