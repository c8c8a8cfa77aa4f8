package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/invoicer/internal/cli/formatter"
	"github.com/alexanderramin/invoicer/internal/service"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		outDir string
		date   string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Issue invoice numbers and export an invoice per client",
		RunE: func(cmd *cobra.Command, args []string) error {
			invoiceDate, err := parseInvoiceDate(date)
			if err != nil {
				return err
			}
			svc, err := app.NewInvoicing(outDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			req := service.RunRequest{InvoiceDate: invoiceDate}
			if !yes && app.interactive() {
				req.Confirm = func(plan *service.RunPlan) (bool, error) {
					if len(plan.Clients) == 0 {
						return true, nil
					}
					fmt.Fprint(out, formatter.FormatPlan(plan))
					return app.confirm(fmt.Sprintf("Issue %d invoice number(s) starting at %s?", len(plan.Clients), plan.NextNumber))
				}
			}

			report, err := svc.Run(cmd.Context(), req)
			if report != nil {
				fmt.Fprint(out, formatter.FormatRunReport(report))
			}
			if err != nil {
				return err
			}
			if failed := len(report.Failed()); failed > 0 {
				return fmt.Errorf("%d of %d invoice(s) failed", failed, len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", app.DefaultOutDir, "Directory for exported invoices")
	cmd.Flags().StringVar(&date, "date", "", "Invoice date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newPreviewCmd(app *App) *cobra.Command {
	var (
		date   string
		detail bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the invoices a run would produce without issuing numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			invoiceDate, err := parseInvoiceDate(date)
			if err != nil {
				return err
			}
			svc, err := app.NewInvoicing("")
			if err != nil {
				return err
			}

			report, err := svc.Preview(cmd.Context(), service.RunRequest{InvoiceDate: invoiceDate})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatRunReport(report))
			if detail {
				for _, res := range report.Succeeded() {
					fmt.Fprintln(out)
					fmt.Fprint(out, formatter.FormatInvoiceDetail(res.Record))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Invoice date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&detail, "detail", true, "Show the lines of each invoice")

	return cmd
}

func parseInvoiceDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
