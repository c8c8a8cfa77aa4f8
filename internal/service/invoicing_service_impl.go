package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/alexanderramin/invoicer/internal/billing"
	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/export"
	"github.com/alexanderramin/invoicer/internal/logger"
)

type invoicingService struct {
	source   TimeTrackingSource
	profiles ClientProfiles
	builder  *billing.Builder
	counter  CounterService
	exporter export.Exporter
	log      *logger.Logger
	observer UseCaseObserver
	now      func() time.Time
}

func NewInvoicingService(
	source TimeTrackingSource,
	profiles ClientProfiles,
	builder *billing.Builder,
	counter CounterService,
	exporter export.Exporter,
	log *logger.Logger,
	observers ...UseCaseObserver,
) InvoicingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &invoicingService{
		source:   source,
		profiles: profiles,
		builder:  builder,
		counter:  counter,
		exporter: exporter,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

// Run validates every client, then issues one number per well-formed client
// in name order and builds and exports its invoice. Configuration problems
// abort before any number is issued. A client that fails after its number
// was issued leaves a gap and the run moves on.
func (s *invoicingService) Run(ctx context.Context, req RunRequest) (report *RunReport, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "invoicing.run", started, err, reportFields(report))
	}()

	plan, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	report = &RunReport{RunID: plan.RunID, InvoiceDate: plan.InvoiceDate}

	if req.Confirm != nil {
		ok, err := req.Confirm(plan)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Cancelled = true
			return report, nil
		}
	}

	report.Results = append(report.Results, plan.Rejected...)
	log := s.log.With("run_id", plan.RunID)

	for _, pc := range plan.Clients {
		num, err := s.counter.Issue(ctx, pc.Name, plan.RunID)
		if err != nil {
			// The counter is shared by every client; nothing after this
			// point can be numbered safely.
			return report, fmt.Errorf("issuing number for %q: %w", pc.Name, err)
		}
		result := s.invoice(ctx, pc, num, plan.InvoiceDate, true)
		if result.OK() {
			log.Infow("invoice issued", "client", pc.Name, "number", num.String(), "path", result.Path)
		} else {
			log.Warnw("invoice failed after number was issued",
				"client", pc.Name, "number", num.String(), "error", result.Err, "error_kind", ierr.Kind(result.Err))
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// Preview numbers clients as Run would, starting from the counter's current
// value, without consuming numbers or writing files.
func (s *invoicingService) Preview(ctx context.Context, req RunRequest) (report *RunReport, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "invoicing.preview", started, err, reportFields(report))
	}()

	plan, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	report = &RunReport{RunID: plan.RunID, InvoiceDate: plan.InvoiceDate, Preview: true}
	report.Results = append(report.Results, plan.Rejected...)

	for i, pc := range plan.Clients {
		num := plan.NextNumber + domain.InvoiceNumber(i)
		report.Results = append(report.Results, s.invoice(ctx, pc, num, plan.InvoiceDate, false))
	}
	return report, nil
}

// plan fetches records and validates every client before anything is issued.
func (s *invoicingService) plan(ctx context.Context, req RunRequest) (*RunPlan, error) {
	if err := s.counter.Check(ctx); err != nil {
		return nil, err
	}
	next, err := s.counter.Peek(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.source.UninvoicedEntries(ctx)
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("fetching time entries").Mark(ierr.ErrUpstreamFetch)
	}
	projects, err := s.source.Projects(ctx)
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("fetching projects").Mark(ierr.ErrUpstreamFetch)
	}
	projects = referencedProjects(projects, entries)

	plan := &RunPlan{
		RunID:       uuid.New().String(),
		InvoiceDate: s.invoiceDate(req.InvoiceDate),
		NextNumber:  next,
	}

	if orphans := len(entries) - countReferencing(entries, projects); orphans > 0 {
		s.log.Warnw("ignoring entries of unknown projects", "entries", orphans)
	}

	var configErrs []error
	for _, name := range billing.ClientNames(projects, entries) {
		if name == "" {
			plan.Rejected = append(plan.Rejected, ClientResult{
				Err: ierr.NewError("uninvoiced entries belong to projects without a client").
					WithHint("assign a client to the project in the time tracker").
					Mark(ierr.ErrDataShape),
			})
			continue
		}

		terms, err := s.profiles.ClientTerms(name)
		if err != nil {
			configErrs = append(configErrs, err)
			continue
		}
		if _, err := s.builder.BankAccount(terms.Currency); err != nil {
			configErrs = append(configErrs, ierr.WithError(err).WithMessagef("client %q", name).Mark(ierr.ErrConfiguration))
			continue
		}

		items, err := billing.Aggregate(projects, entries, name)
		if err != nil {
			plan.Rejected = append(plan.Rejected, ClientResult{Client: name, Err: err})
			continue
		}
		// Items are priced here so a bad item rejects its client before a
		// number is issued. NewClient reapplies the same step as a no-op.
		if err := priceItems(items, terms.BillTimeStep); err != nil {
			plan.Rejected = append(plan.Rejected, ClientResult{
				Client: name,
				Err:    ierr.WithError(err).WithMessagef("client %q", name).Mark(ierr.ErrDataShape),
			})
			continue
		}
		plan.Clients = append(plan.Clients, PlannedClient{Name: name, Terms: terms, WorkItems: items})
	}

	if len(configErrs) > 0 {
		return nil, combineConfigErrors(configErrs)
	}
	return plan, nil
}

// invoice prices, builds and (when export is set) writes one client's invoice.
func (s *invoicingService) invoice(ctx context.Context, pc PlannedClient, num domain.InvoiceNumber, date time.Time, issued bool) ClientResult {
	result := ClientResult{Client: pc.Name, Number: num, Issued: issued}

	client, err := domain.NewClient(pc.Name, pc.Terms, pc.WorkItems, num)
	if err != nil {
		result.Err = ierr.WithError(err).Mark(ierr.ErrDataShape)
		return result
	}
	rec, err := s.builder.Build(ctx, client, date)
	if err != nil {
		result.Err = err
		return result
	}
	result.Record = rec

	if issued && s.exporter != nil {
		path, err := s.exporter.Export(rec)
		if err != nil {
			result.Err = fmt.Errorf("exporting invoice %s: %w", num, err)
			return result
		}
		result.Path = path
	}
	return result
}

func priceItems(items []*domain.WorkItem, stepMinutes int) error {
	for _, item := range items {
		if err := item.Apply(stepMinutes); err != nil {
			return err
		}
	}
	return nil
}

func (s *invoicingService) invoiceDate(requested time.Time) time.Time {
	d := requested
	if d.IsZero() {
		d = s.now()
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// referencedProjects keeps the projects that at least one entry points to.
func referencedProjects(projects []domain.ProjectRecord, entries []domain.TimeEntry) []domain.ProjectRecord {
	ids := lo.SliceToMap(entries, func(e domain.TimeEntry) (string, struct{}) { return e.ProjectID, struct{}{} })
	return lo.Filter(projects, func(p domain.ProjectRecord, _ int) bool {
		_, ok := ids[p.ID]
		return ok
	})
}

func countReferencing(entries []domain.TimeEntry, projects []domain.ProjectRecord) int {
	ids := lo.SliceToMap(projects, func(p domain.ProjectRecord) (string, struct{}) { return p.ID, struct{}{} })
	return lo.CountBy(entries, func(e domain.TimeEntry) bool {
		_, ok := ids[e.ProjectID]
		return ok
	})
}

func combineConfigErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := lo.Map(errs, func(e error, _ int) string { return e.Error() })
	hints := lo.Uniq(lo.FilterMap(errs, func(e error, _ int) (string, bool) {
		h := ierr.Hint(e)
		return h, h != ""
	}))
	b := ierr.NewErrorf("%d configuration problems: %s", len(errs), strings.Join(msgs, "; "))
	if len(hints) > 0 {
		b = b.WithHint(strings.Join(hints, "\n"))
	}
	return b.Mark(ierr.ErrConfiguration)
}

func reportFields(r *RunReport) map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"run_id":    r.RunID,
		"clients":   len(r.Results),
		"succeeded": len(r.Succeeded()),
		"failed":    len(r.Failed()),
		"gaps":      len(r.Gaps()),
		"cancelled": r.Cancelled,
	}
}
