// Package clockify reads uninvoiced time entries and projects from a
// Clockify workspace.
package clockify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/httpclient"
)

const (
	DefaultBaseURL  = "https://api.clockify.me/api/v1"
	DefaultPageSize = 200
	maxPages        = 1000
)

// Config identifies the workspace, user and tag to read.
type Config struct {
	BaseURL         string
	WorkspaceID     string
	UserID          string
	APIKey          string
	UninvoicedTagID string
	PageSize        int
}

// Client talks to the Clockify REST API.
type Client struct {
	http httpclient.Client
	cfg  Config
}

func NewClient(http httpclient.Client, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Client{http: http, cfg: cfg}
}

type timeEntryDTO struct {
	ID           string   `json:"id"`
	ProjectID    *string  `json:"projectId"`
	Description  string   `json:"description"`
	TagIDs       []string `json:"tagIds"`
	TimeInterval struct {
		Duration *string `json:"duration"`
	} `json:"timeInterval"`
}

type projectDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
	HourlyRate *struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"hourlyRate"`
}

// UninvoicedEntries returns the user's time entries carrying the
// uninvoiced tag. Entries without a project cannot be billed and are
// dropped.
func (c *Client) UninvoicedEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries",
		url.PathEscape(c.cfg.WorkspaceID), url.PathEscape(c.cfg.UserID))
	query := url.Values{"tags": {c.cfg.UninvoicedTagID}}

	dtos, err := fetchAll[timeEntryDTO](ctx, c, path, query)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimeEntry, 0, len(dtos))
	for _, d := range dtos {
		if d.ProjectID == nil || *d.ProjectID == "" {
			continue
		}
		e := domain.TimeEntry{
			ID:          d.ID,
			ProjectID:   *d.ProjectID,
			Description: d.Description,
			TagIDs:      d.TagIDs,
		}
		if d.TimeInterval.Duration != nil {
			e.Duration = *d.TimeInterval.Duration
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Projects returns every project in the workspace.
func (c *Client) Projects(ctx context.Context) ([]domain.ProjectRecord, error) {
	path := fmt.Sprintf("/workspaces/%s/projects", url.PathEscape(c.cfg.WorkspaceID))

	dtos, err := fetchAll[projectDTO](ctx, c, path, url.Values{})
	if err != nil {
		return nil, err
	}

	projects := make([]domain.ProjectRecord, len(dtos))
	for i, d := range dtos {
		projects[i] = domain.ProjectRecord{
			ID:         d.ID,
			Name:       d.Name,
			ClientName: d.ClientName,
		}
		if d.HourlyRate != nil {
			projects[i].HourlyRate = &domain.HourlyRate{
				Amount:   d.HourlyRate.Amount,
				Currency: d.HourlyRate.Currency,
			}
		}
	}
	return projects, nil
}

// fetchAll walks pages until one comes back short.
func fetchAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	headers := map[string]string{"x-api-key": c.cfg.APIKey}
	query.Set("page-size", strconv.Itoa(c.cfg.PageSize))

	var all []T
	for page := 1; page <= maxPages; page++ {
		query.Set("page", strconv.Itoa(page))
		var batch []T
		if err := httpclient.GetJSON(ctx, c.http, c.cfg.BaseURL+path+"?"+query.Encode(), headers, &batch); err != nil {
			return nil, ierr.WithError(err).
				WithMessagef("clockify %s page %d", path, page).
				Mark(ierr.ErrUpstreamFetch)
		}
		all = append(all, batch...)
		if len(batch) < c.cfg.PageSize {
			return all, nil
		}
	}
	return nil, ierr.NewErrorf("clockify %s: more than %d pages", path, maxPages).
		Mark(ierr.ErrUpstreamFetch)
}
