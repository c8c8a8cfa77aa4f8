package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/invoicer/internal/cli/formatter"
	"github.com/alexanderramin/invoicer/internal/domain"
)

func newCounterCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Inspect or set the invoice number counter",
	}

	cmd.AddCommand(
		newCounterShowCmd(app),
		newCounterInitCmd(app),
		newCounterImportCmd(app),
	)

	return cmd
}

func newCounterShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the next invoice number and the last one issued",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := app.Counter.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCounterStatus(status))
			return nil
		},
	}
}

func newCounterInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <next-number>",
		Short: "Set the next invoice number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid next number %q: %w", args[0], err)
			}
			if err := app.Counter.Init(cmd.Context(), next, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next invoice number set to %s\n", formatter.Bold(domain.InvoiceNumber(next).String()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an initialized counter")

	return cmd
}

func newCounterImportCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import the next number from a legacy next_invoice_num.json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := app.Counter.ImportLegacy(cmd.Context(), args[0], force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported next invoice number %s from %s\n", formatter.Bold(next.String()), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an initialized counter")

	return cmd
}
