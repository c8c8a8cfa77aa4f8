package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/repository"
	"github.com/alexanderramin/invoicer/internal/testutil"
)

func newCounterService(t *testing.T, next int64) (CounterService, func() int64) {
	t.Helper()
	database := testutil.NewCounterDB(t, next)
	svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))
	return svc, func() int64 { return testutil.CounterValue(t, database) }
}

func TestCounterNext_FormatsAndIncrements(t *testing.T) {
	tests := []struct {
		start int64
		want  string
	}{
		{7, "000 007"},
		{123456, "123 456"},
		{0, "000 000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			svc, stored := newCounterService(t, tt.start)

			num, err := svc.Next(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, num.String())
			assert.Equal(t, tt.start+1, stored())
		})
	}
}

func TestCounterIssue_RecordsRun(t *testing.T) {
	svc, _ := newCounterService(t, 10)
	ctx := context.Background()

	a, err := svc.Issue(ctx, "Acme", "run-1")
	require.NoError(t, err)
	b, err := svc.Issue(ctx, "Globex", "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceNumber(10), a)
	assert.Equal(t, domain.InvoiceNumber(11), b)

	issues, err := svc.IssuesByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "Acme", issues[0].ClientName)
	assert.Equal(t, int64(11), issues[1].Number)
}

func TestCounterIssue_RollbackOnRecordFailure(t *testing.T) {
	database := testutil.NewCounterDB(t, 5)
	repo := repository.NewSQLiteInvoiceCounterRepo(database)

	// Allocate goes through QueryRowContext; ExecContext #1 is the issue insert.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     database,
		FailOn: 1,
		Err:    fmt.Errorf("injected issue log failure"),
	}
	svc := NewCounterService(repo, failUoW)

	_, err := svc.Issue(context.Background(), "Acme", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected issue log failure")

	assert.Equal(t, int64(5), testutil.CounterValue(t, database), "counter should be unchanged after rollback")
	last, err := repo.LastIssue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestCounterIssue_DuplicateIsConfigurationError(t *testing.T) {
	database := testutil.NewCounterDB(t, 5)
	repo := repository.NewSQLiteInvoiceCounterRepo(database)
	svc := NewCounterService(repo, testutil.NewTestUoW(database))
	ctx := context.Background()

	_, err := svc.Issue(ctx, "Acme", "run-1")
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, 5))

	_, err = svc.Issue(ctx, "Acme", "run-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateNumber)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Equal(t, int64(5), testutil.CounterValue(t, database))
}

func TestCounterCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))
		err := svc.Check(ctx)
		require.Error(t, err)
		assert.True(t, ierr.IsConfiguration(err))
		assert.ErrorIs(t, err, repository.ErrCounterMissing)
	})

	t.Run("behind issue log", func(t *testing.T) {
		database := testutil.NewCounterDB(t, 5)
		repo := repository.NewSQLiteInvoiceCounterRepo(database)
		svc := NewCounterService(repo, testutil.NewTestUoW(database))
		_, err := svc.Next(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Set(ctx, 3))

		err = svc.Check(ctx)
		require.Error(t, err)
		assert.True(t, ierr.IsConfiguration(err))
		assert.Contains(t, ierr.Hint(err), "counter init 6 --force")
	})

	t.Run("healthy", func(t *testing.T) {
		svc, _ := newCounterService(t, 5)
		require.NoError(t, svc.Check(ctx))
	})
}

func TestCounterInit(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Initialized)

	require.NoError(t, svc.Init(ctx, 100, false))
	assert.Equal(t, int64(100), testutil.CounterValue(t, database))

	err = svc.Init(ctx, 200, false)
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))
	assert.Contains(t, ierr.Hint(err), "--force")

	require.NoError(t, svc.Init(ctx, 200, true))
	num, err := svc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceNumber(200), num)

	err = svc.Init(ctx, 150, true)
	require.Error(t, err, "re-initializing below an issued number must be refused")
	assert.Equal(t, int64(201), testutil.CounterValue(t, database))

	err = svc.Init(ctx, -1, true)
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))

	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Initialized)
	assert.Equal(t, domain.InvoiceNumber(201), status.Next)
	require.NotNil(t, status.LastIssue)
	assert.Equal(t, int64(200), status.LastIssue.Number)
}

func TestCounterInit_OverwritesCorruptOnlyWithForce(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	_, err := database.Exec(`INSERT INTO invoice_counter (id, next_num, updated_at) VALUES (1, 'abc', '')`)
	require.NoError(t, err)
	svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))

	err = svc.Init(ctx, 10, false)
	require.ErrorIs(t, err, repository.ErrCounterCorrupt)

	require.NoError(t, svc.Init(ctx, 10, true))
	assert.Equal(t, int64(10), testutil.CounterValue(t, database))
}

func TestCounterImportLegacy(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	t.Run("integer file", func(t *testing.T) {
		database := testutil.NewTestDB(t)
		svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))

		num, err := svc.ImportLegacy(ctx, write("next_invoice_num.json", "42"), false)
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceNumber(42), num)
		assert.Equal(t, int64(42), testutil.CounterValue(t, database))
	})

	for name, content := range map[string]string{
		"fraction": "42.5",
		"array":    "[42]",
		"text":     "forty-two",
		"two ints": "42 43",
	} {
		t.Run(name, func(t *testing.T) {
			database := testutil.NewTestDB(t)
			svc := NewCounterService(repository.NewSQLiteInvoiceCounterRepo(database), testutil.NewTestUoW(database))

			_, err := svc.ImportLegacy(ctx, write(name+".json", content), false)
			require.Error(t, err)
			assert.True(t, ierr.IsConfiguration(err))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		svc, _ := newCounterService(t, 1)
		_, err := svc.ImportLegacy(ctx, filepath.Join(dir, "nope.json"), true)
		require.Error(t, err)
		assert.True(t, ierr.IsConfiguration(err))
	})
}
