package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/invoicer/internal/billing"
	"github.com/alexanderramin/invoicer/internal/cli"
	"github.com/alexanderramin/invoicer/internal/cli/formatter"
	"github.com/alexanderramin/invoicer/internal/clockify"
	"github.com/alexanderramin/invoicer/internal/config"
	"github.com/alexanderramin/invoicer/internal/db"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/export"
	"github.com/alexanderramin/invoicer/internal/httpclient"
	"github.com/alexanderramin/invoicer/internal/logger"
	"github.com/alexanderramin/invoicer/internal/repository"
	"github.com/alexanderramin/invoicer/internal/service"
	"github.com/alexanderramin/invoicer/internal/wise"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprint(os.Stderr, formatter.FormatError(err))
		os.Exit(exitCode(err))
	}
}

// exitCode lets scripts tell a broken setup from a flaky upstream.
func exitCode(err error) int {
	switch {
	case ierr.IsConfiguration(err):
		return 2
	case ierr.IsUpstreamFetch(err):
		return 3
	case ierr.IsDataShape(err):
		return 4
	default:
		return 1
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrConfiguration)
	}

	log, err := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Console: isTerminal(os.Stderr)})
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrConfiguration)
	}
	defer log.Sync()

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	observer := service.NewLogUseCaseObserver(log)
	counter := service.NewCounterService(
		repository.NewSQLiteInvoiceCounterRepo(database),
		db.NewSQLiteUnitOfWork(database),
		observer,
	)

	httpClient := httpclient.NewDefaultClient(httpclient.ClientConfig{
		Timeout:      cfg.HTTP.Timeout(),
		MaxRetries:   cfg.HTTP.MaxRetries,
		RetryWaitMin: cfg.HTTP.RetryWaitMin(),
		RetryWaitMax: cfg.HTTP.RetryWaitMax(),
	}, log.With("component", "http"))

	app := &cli.App{
		Counter:       counter,
		DefaultOutDir: cfg.OutDir,
		NewInvoicing: func(outDir string) (service.InvoicingService, error) {
			profile, err := config.LoadProfile(cfg.ProfilePath)
			if err != nil {
				return nil, err
			}
			if profile.Clockify.APIKey == "" {
				return nil, ierr.NewError("no Clockify API key").
					WithHint("set clockify.api_key in the profile or INVOICER_CLOCKIFY_API_KEY").
					Mark(ierr.ErrConfiguration)
			}
			accounts, err := profile.Accounts()
			if err != nil {
				return nil, err
			}

			source := clockify.NewClient(httpClient, clockify.Config{
				BaseURL:         profile.Clockify.BaseURL,
				WorkspaceID:     profile.Clockify.WorkspaceID,
				UserID:          profile.Clockify.UserID,
				APIKey:          profile.Clockify.APIKey,
				UninvoicedTagID: profile.Clockify.UninvoicedTagID,
			})
			rates := wise.NewClient(httpClient, wise.Config{
				BaseURL: profile.Wise.BaseURL,
				APIKey:  profile.Wise.APIKey,
			})
			builder := billing.NewBuilder(rates, profile.SenderIdentity(), accounts)

			var exporter export.Exporter
			if outDir != "" {
				exporter = export.NewJSONExporter(outDir)
			}
			return service.NewInvoicingService(source, profile, builder, counter, exporter, log, observer), nil
		},
		IsInteractive: func() bool {
			return isTerminal(os.Stdin) && isTerminal(os.Stdout)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
