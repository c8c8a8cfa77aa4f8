package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/invoicer/internal/db"
	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/repository"
)

type counterService struct {
	counter  repository.InvoiceCounterRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewCounterService(counter repository.InvoiceCounterRepo, uow db.UnitOfWork, observers ...UseCaseObserver) CounterService {
	return &counterService{counter: counter, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *counterService) Next(ctx context.Context) (domain.InvoiceNumber, error) {
	return s.Issue(ctx, "", uuid.New().String())
}

func (s *counterService) Issue(ctx context.Context, clientName, runID string) (num domain.InvoiceNumber, err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "counter.issue", started, err, map[string]any{
			"client": clientName, "run_id": runID, "number": int64(num),
		})
	}()

	var issued int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCounter := repository.NewSQLiteInvoiceCounterRepo(tx)

		n, err := txCounter.Allocate(ctx)
		if err != nil {
			return err
		}
		if err := txCounter.RecordIssue(ctx, repository.IssuedNumber{
			Number:     n,
			ClientName: clientName,
			RunID:      runID,
			IssuedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
		issued = n
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return 0, ierr.WithError(err).
				WithHint("the counter is behind the issue log; run `invoicer counter show` and re-initialize it above the last issued number").
				Mark(ierr.ErrConfiguration)
		}
		return 0, err
	}
	return domain.InvoiceNumber(issued), nil
}

func (s *counterService) Check(ctx context.Context) error {
	next, err := s.counter.Current(ctx)
	if err != nil {
		return err
	}
	last, err := s.counter.LastIssue(ctx)
	if err != nil {
		return err
	}
	if last != nil && next <= last.Number {
		return ierr.NewErrorf("invoice counter %d is not above the last issued number %d", next, last.Number).
			WithHintf("run `invoicer counter init %d --force`", last.Number+1).
			Mark(ierr.ErrConfiguration)
	}
	return nil
}

func (s *counterService) Peek(ctx context.Context) (domain.InvoiceNumber, error) {
	next, err := s.counter.Current(ctx)
	if err != nil {
		return 0, err
	}
	return domain.InvoiceNumber(next), nil
}

func (s *counterService) Status(ctx context.Context) (*CounterStatus, error) {
	status := &CounterStatus{}
	next, err := s.counter.Current(ctx)
	switch {
	case err == nil:
		status.Initialized = true
		status.Next = domain.InvoiceNumber(next)
	case errors.Is(err, repository.ErrCounterMissing):
	default:
		return nil, err
	}
	status.LastIssue, err = s.counter.LastIssue(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Init sets the next number. An initialized counter is only overwritten
// with force, and never to a number that was already issued.
func (s *counterService) Init(ctx context.Context, next int64, force bool) (err error) {
	started := time.Now()
	defer func() {
		observe(ctx, s.observer, "counter.init", started, err, map[string]any{"next": next, "force": force})
	}()

	if next < 0 {
		return ierr.NewErrorf("invoice counter must not be negative, got %d", next).Mark(ierr.ErrConfiguration)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCounter := repository.NewSQLiteInvoiceCounterRepo(tx)

		current, err := txCounter.Current(ctx)
		switch {
		case err == nil:
			if !force {
				return ierr.NewErrorf("invoice counter is already initialized at %d", current).
					WithHint("pass --force to overwrite it").
					Mark(ierr.ErrConfiguration)
			}
		case errors.Is(err, repository.ErrCounterMissing):
		case errors.Is(err, repository.ErrCounterCorrupt):
			if !force {
				return err
			}
		default:
			return err
		}

		last, err := txCounter.LastIssue(ctx)
		if err != nil {
			return err
		}
		if last != nil && next <= last.Number {
			return ierr.NewErrorf("number %d was already issued to %q", last.Number, last.ClientName).
				WithHintf("choose a value above %d", last.Number).
				Mark(ierr.ErrConfiguration)
		}
		return txCounter.Set(ctx, next)
	})
}

// ImportLegacy reads a file holding a single JSON integer, the format the
// counter used before it moved into the database.
func (s *counterService) ImportLegacy(ctx context.Context, path string, force bool) (domain.InvoiceNumber, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, ierr.WithError(err).WithMessagef("reading %s", path).Mark(ierr.ErrConfiguration)
	}

	var next int64
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&next); err != nil || dec.More() {
		return 0, ierr.NewErrorf("%s does not hold a single integer", path).
			WithHintf("expected content like 42, got %q", strings.TrimSpace(truncate(string(data), 32))).
			Mark(ierr.ErrConfiguration)
	}
	if err := s.Init(ctx, next, force); err != nil {
		return 0, err
	}
	return domain.InvoiceNumber(next), nil
}

func (s *counterService) IssuesByRun(ctx context.Context, runID string) ([]repository.IssuedNumber, error) {
	issues, err := s.counter.ListIssuesByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing issues of run %s: %w", runID, err)
	}
	return issues, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
