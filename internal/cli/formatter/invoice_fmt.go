package formatter

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/service"
)

// FormatRunReport renders the outcome of a run or preview.
func FormatRunReport(r *service.RunReport) string {
	var b strings.Builder

	title := "Invoices"
	if r.Preview {
		title = "Preview"
	}
	b.WriteString(Header(title))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("Invoice date %s · run %s", Date(r.InvoiceDate), r.RunID)))
	b.WriteString("\n\n")

	if r.Cancelled {
		b.WriteString(StyleYellow.Render("Cancelled. No invoice numbers were issued."))
		b.WriteString("\n")
		return b.String()
	}
	if len(r.Results) == 0 {
		b.WriteString(Dim("No uninvoiced time entries."))
		b.WriteString("\n")
		return b.String()
	}

	headers := []string{"NUMBER", "CLIENT", "ITEMS", "HOURS", "TOTAL", "BILLED", "STATUS"}
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, resultRow(res, r.Preview))
	}
	b.WriteString(RenderTable(headers, rows, 2, 3, 4, 5))

	if failed := r.Failed(); len(failed) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleRed.Render(fmt.Sprintf("%d client(s) failed:", len(failed))))
		b.WriteString("\n")
		for _, res := range failed {
			name := lo.Ternary(res.Client == "", "(no client)", res.Client)
			b.WriteString(fmt.Sprintf("  %s  %s %s\n", Bold(name), Dim("["+ierr.Kind(res.Err)+"]"), res.Err.Error()))
			if hint := ierr.Hint(res.Err); hint != "" {
				b.WriteString(Dim("      hint: " + hint))
				b.WriteString("\n")
			}
		}
	}

	if gaps := r.Gaps(); len(gaps) > 0 {
		nums := lo.Map(gaps, func(n domain.InvoiceNumber, _ int) string { return n.String() })
		b.WriteString("\n")
		b.WriteString(StyleYellow.Render("Issued without an invoice: " + strings.Join(nums, ", ")))
		b.WriteString("\n")
	}

	if !r.Preview {
		if ok := r.Succeeded(); len(ok) > 0 {
			b.WriteString("\n")
			for _, res := range ok {
				b.WriteString(Dim("wrote " + res.Path))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func resultRow(res service.ClientResult, preview bool) []string {
	number := Dim("—")
	if res.Issued || (preview && res.Record != nil) {
		number = res.Number.String()
	}
	name := lo.Ternary(res.Client == "", "(no client)", res.Client)

	if res.Record == nil {
		return []string{number, name, "", "", "", "", StatusMark(false)}
	}
	rec := res.Record
	hours := decimal.Zero
	for _, item := range rec.WorkItems {
		h, err := item.RoundedHours()
		if err == nil {
			hours = hours.Add(h)
		}
	}
	return []string{
		number,
		name,
		fmt.Sprintf("%d", len(rec.WorkItems)),
		Hours(hours),
		Money(rec.WorkTotal, domain.BaseCurrency),
		Money(rec.WorkTotalConverted, rec.Client.Terms.Currency),
		StatusMark(res.OK()),
	}
}

// FormatInvoiceDetail renders the lines of one invoice record.
func FormatInvoiceDetail(rec *domain.InvoiceRecord) string {
	var b strings.Builder
	c := rec.Client

	b.WriteString(Bold(fmt.Sprintf("%s  #%s", c.Name, c.InvoiceNum)))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("due %s · %s · step %d min", Date(rec.InvoiceDue), c.Terms.Currency.Code(), c.Terms.BillTimeStep)))
	b.WriteString("\n")

	headers := []string{"DESCRIPTION", "PROJECT", "HOURS", "BILLED", "RATE", "TOTAL"}
	rows := make([][]string, 0, len(rec.WorkItems))
	for _, item := range rec.WorkItems {
		rounded, _ := item.RoundedHours()
		total, _ := item.Total()
		rows = append(rows, []string{
			item.Description,
			Dim(item.Project),
			Hours(item.Hours),
			Hours(rounded),
			Money(item.Rate, domain.BaseCurrency),
			Money(total, domain.BaseCurrency),
		})
	}
	b.WriteString(RenderTable(headers, rows, 2, 3, 4, 5))

	b.WriteString(fmt.Sprintf("Work total  %s\n", Money(rec.WorkTotal, domain.BaseCurrency)))
	if !c.Terms.Currency.IsBase() {
		b.WriteString(fmt.Sprintf("Rate        %s\n", rec.ExchangeRate.String()))
		b.WriteString(fmt.Sprintf("Billed      %s\n", Bold(Money(rec.WorkTotalConverted, c.Terms.Currency))))
	}
	return b.String()
}

// FormatPlan renders what a run is about to issue.
func FormatPlan(plan *service.RunPlan) string {
	var b strings.Builder
	b.WriteString(Header("About to invoice"))
	b.WriteString("\n")

	rows := make([][]string, 0, len(plan.Clients))
	for i, pc := range plan.Clients {
		rows = append(rows, []string{
			(plan.NextNumber + domain.InvoiceNumber(i)).String(),
			pc.Name,
			fmt.Sprintf("%d", len(pc.WorkItems)),
			pc.Terms.Currency.Code(),
		})
	}
	b.WriteString(RenderTable([]string{"NUMBER", "CLIENT", "ITEMS", "CURRENCY"}, rows, 2))

	if len(plan.Rejected) > 0 {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("%d client(s) skipped for malformed records", len(plan.Rejected))))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatCounterStatus renders the invoice counter state.
func FormatCounterStatus(s *service.CounterStatus) string {
	var b strings.Builder
	b.WriteString(Header("Invoice counter"))
	b.WriteString("\n")
	if !s.Initialized {
		b.WriteString(StyleYellow.Render("Not initialized."))
		b.WriteString("\n")
		b.WriteString(Dim("Run `invoicer counter init <next-number>` or `invoicer counter import <file>`."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Next number  %s\n", Bold(s.Next.String())))
	if s.LastIssue != nil {
		b.WriteString(fmt.Sprintf("Last issued  %s to %s on %s\n",
			domain.InvoiceNumber(s.LastIssue.Number),
			lo.Ternary(s.LastIssue.ClientName == "", "(manual)", s.LastIssue.ClientName),
			Date(s.LastIssue.IssuedAt)))
	}
	return b.String()
}

// FormatError renders an error with its kind and any hints.
func FormatError(err error) string {
	var b strings.Builder
	b.WriteString(StyleRed.Render("Error: "))
	b.WriteString(err.Error())
	b.WriteString("\n")
	if hint := ierr.Hint(err); hint != "" {
		for _, line := range strings.Split(hint, "\n") {
			b.WriteString(Dim("hint: " + line))
			b.WriteString("\n")
		}
	}
	return b.String()
}
