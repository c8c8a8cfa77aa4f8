package billing

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// groupKey identifies one work item. Entries of different projects never
// merge, even when their descriptions are identical.
type groupKey struct {
	description string
	projectID   string
}

// ClientNames returns the distinct, sorted client names of the projects that
// have at least one entry.
func ClientNames(projects []domain.ProjectRecord, entries []domain.TimeEntry) []string {
	referenced := lo.SliceToMap(entries, func(e domain.TimeEntry) (string, struct{}) {
		return e.ProjectID, struct{}{}
	})
	names := lo.FilterMap(projects, func(p domain.ProjectRecord, _ int) (string, bool) {
		_, ok := referenced[p.ID]
		return p.ClientName, ok
	})
	names = lo.Uniq(names)
	slices.Sort(names)
	return names
}

// Aggregate groups the client's entries by description and sums their
// durations into unpriced work items, ordered by description.
func Aggregate(projects []domain.ProjectRecord, entries []domain.TimeEntry, clientName string) ([]*domain.WorkItem, error) {
	clientProjects := lo.KeyBy(
		lo.Filter(projects, func(p domain.ProjectRecord, _ int) bool { return p.ClientName == clientName }),
		func(p domain.ProjectRecord) string { return p.ID },
	)
	clientEntries := lo.Filter(entries, func(e domain.TimeEntry, _ int) bool {
		_, ok := clientProjects[e.ProjectID]
		return ok
	})

	groups := lo.GroupBy(clientEntries, func(e domain.TimeEntry) groupKey {
		return groupKey{description: e.Description, projectID: e.ProjectID}
	})

	keys := lo.Keys(groups)
	slices.SortFunc(keys, func(a, b groupKey) int {
		return cmp.Or(
			cmp.Compare(a.description, b.description),
			cmp.Compare(clientProjects[a.projectID].Name, clientProjects[b.projectID].Name),
			cmp.Compare(a.projectID, b.projectID),
		)
	})

	items := make([]*domain.WorkItem, 0, len(keys))
	for _, key := range keys {
		project := clientProjects[key.projectID]
		item, err := mergeEntries(project, key.description, groups[key])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func mergeEntries(project domain.ProjectRecord, description string, group []domain.TimeEntry) (*domain.WorkItem, error) {
	rate, err := projectRate(project)
	if err != nil {
		return nil, dataShapeError(err, project, description, "")
	}

	var elapsed time.Duration
	for _, entry := range group {
		if entry.Duration == "" {
			return nil, dataShapeError(
				ierr.NewError("time entry has no duration").
					WithHint("stop the running timer before invoicing").
					Error(),
				project, description, entry.ID)
		}
		d, err := ParseDuration(entry.Duration)
		if err != nil {
			return nil, dataShapeError(err, project, description, entry.ID)
		}
		var ok bool
		if elapsed, ok = addDuration(elapsed, d); !ok {
			return nil, dataShapeError(
				ierr.NewErrorf("total duration exceeds %s", time.Duration(math.MaxInt64)).Error(),
				project, description, entry.ID)
		}
	}

	return domain.NewWorkItem(project.Name, project.ID, description, rate, Hours(elapsed)), nil
}

// projectRate converts the project's rate from minor units to currency units.
func projectRate(project domain.ProjectRecord) (decimal.Decimal, error) {
	if project.HourlyRate == nil {
		return decimal.Zero, ierr.NewError("project has no hourly rate").
			WithHintf("set an hourly rate on project %q", project.Name).
			Error()
	}
	if code := project.HourlyRate.Currency; code != "" {
		c, err := domain.ParseCurrency(code)
		if err != nil || !c.IsBase() {
			return decimal.Zero, ierr.NewErrorf("hourly rate is in %q, expected %s", code, domain.BaseCurrency.Code()).Error()
		}
	}
	return decimal.New(project.HourlyRate.Amount, -2), nil
}

func dataShapeError(err error, project domain.ProjectRecord, description, entryID string) error {
	details := map[string]any{
		"description": description,
		"project_id":  project.ID,
		"project":     project.Name,
	}
	if entryID != "" {
		details["entry_id"] = entryID
	}
	return ierr.WithError(err).
		WithMessagef("work item %q of project %q", description, project.Name).
		WithReportableDetails(details).
		Mark(ierr.ErrDataShape)
}
