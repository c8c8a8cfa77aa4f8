package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/invoicer/internal/service"
)

// App holds what CLI commands need.
type App struct {
	Counter service.CounterService

	// NewInvoicing builds the pipeline that exports into outDir. It is
	// called lazily so counter commands work without a profile.
	NewInvoicing func(outDir string) (service.InvoicingService, error)

	DefaultOutDir string

	// IsInteractive reports whether a confirmation prompt can be shown.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)
}

// NewRootCmd creates the top-level "invoicer" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicer",
		Short:         "Turn uninvoiced time entries into numbered invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCmd(app),
		newPreviewCmd(app),
		newCounterCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}
