package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nimasrn/order-import/internal/lock"
	"github.com/nimasrn/order-import/internal/repository"
	"github.com/nimasrn/order-import/internal/services"
	"github.com/nimasrn/order-import/internal/tsv"
	"github.com/nimasrn/order-import/pkg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customersTSV = "Name\tCreditLimit\n" +
	"Acme\t1,000.00\n" +
	"Globex\t$250\n" +
	"Initech\t-5\n"

const ordersTSV = "CustomerName\tOrderDate\tOrderValue\n" +
	"Acme\t2024-01-05\t400.00\n" +
	"Globex\t1/6/2024\t200\n" +
	"Globex\t1/7/2024\t75.50\n" +
	"Nobody\t1/8/2024\t10\n"

type env struct {
	db        *pg.DB
	deps      Deps
	customers string
	orders    string
	dir       string
}

func setup(t *testing.T) *env {
	dir := t.TempDir()
	cfg := pg.Config{Driver: pg.DriverSQLite, Database: filepath.Join(dir, "orders.db")}

	db, err := pg.Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		db:        db,
		dir:       dir,
		customers: writeFile(t, dir, "customers.tsv", customersTSV),
		orders:    writeFile(t, dir, "orders.tsv", ordersTSV),
	}
	e.deps = Deps{
		Service: services.NewOrderImportService(
			repository.NewCustomerRepository(db),
			repository.NewOrderRepository(db),
			2,
		),
		Locker:      lock.Noop{},
		Migrate:     func(ctx context.Context) error { return pg.Migrate(cfg) },
		AutoMigrate: true,
	}
	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *env) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr, func(ctx context.Context, inv *Invocation) (Deps, func(), error) {
		return e.deps, nil, nil
	})
	return code, stdout.String(), stderr.String()
}

func (e *env) counts(t *testing.T) (int64, int64) {
	ctx := context.Background()
	customers, err := repository.NewCustomerRepository(e.db).Count(ctx)
	require.NoError(t, err)
	orders, err := repository.NewOrderRepository(e.db).Count(ctx)
	require.NoError(t, err)
	return customers, orders
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *Invocation
		wantErr bool
	}{
		{"import", []string{"import", "c.tsv", "o.tsv"}, &Invocation{Name: Import, CustomersFile: "c.tsv", OrdersFile: "o.tsv"}, false},
		{"full", []string{"full", "c.tsv", "o.tsv"}, &Invocation{Name: Full, CustomersFile: "c.tsv", OrdersFile: "o.tsv"}, false},
		{"clean", []string{"clean"}, &Invocation{Name: Clean}, false},
		{"check", []string{"check"}, &Invocation{Name: Check}, false},
		{"migrate", []string{"migrate"}, &Invocation{Name: Migrate}, false},
		{"env flag ignored", []string{"--env=.env.test", "check"}, &Invocation{Name: Check}, false},
		{"no args", nil, nil, true},
		{"import without files", []string{"import"}, nil, true},
		{"clean with files", []string{"clean", "c.tsv", "o.tsv"}, nil, true},
		{"two args", []string{"import", "c.tsv"}, nil, true},
		{"unknown command", []string{"load", "c.tsv", "o.tsv"}, nil, true},
		{"case sensitive", []string{"CHECK"}, nil, true},
		{"too many", []string{"full", "a", "b", "c"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownArguments)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRun_UnknownArguments(t *testing.T) {
	e := setup(t)

	code, stdout, stderr := e.run("import", "only-one.tsv")
	assert.Equal(t, ExitUsage, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Unknown Command-line Arguments\n", stderr)
}

func TestRun_Setup(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	t.Run("not called for unknown arguments", func(t *testing.T) {
		called := false
		code := Run(ctx, []string{"nope"}, &bytes.Buffer{}, &bytes.Buffer{}, func(ctx context.Context, inv *Invocation) (Deps, func(), error) {
			called = true
			return e.deps, nil, nil
		})
		assert.Equal(t, ExitUsage, code)
		assert.False(t, called)
	})

	t.Run("failure exits with status 1", func(t *testing.T) {
		code := Run(ctx, []string{"check"}, &bytes.Buffer{}, &bytes.Buffer{}, func(ctx context.Context, inv *Invocation) (Deps, func(), error) {
			return Deps{}, nil, errors.New("database unreachable")
		})
		assert.Equal(t, ExitFailure, code)
	})

	t.Run("teardown runs after the command", func(t *testing.T) {
		var seen *Invocation
		tornDown := false
		code := Run(ctx, []string{"--env=x.env", "check"}, &bytes.Buffer{}, &bytes.Buffer{}, func(ctx context.Context, inv *Invocation) (Deps, func(), error) {
			seen = inv
			return e.deps, func() { tornDown = true }, nil
		})
		assert.Equal(t, ExitOK, code)
		assert.Equal(t, &Invocation{Name: Check}, seen)
		assert.True(t, tornDown)
	})

	t.Run("teardown runs after a failed command", func(t *testing.T) {
		tornDown := false
		code := Run(ctx, []string{"import", filepath.Join(e.dir, "missing.tsv"), e.orders}, &bytes.Buffer{}, &bytes.Buffer{}, func(ctx context.Context, inv *Invocation) (Deps, func(), error) {
			return e.deps, func() { tornDown = true }, nil
		})
		assert.Equal(t, ExitFailure, code)
		assert.True(t, tornDown)
	})
}

func TestRun_Full(t *testing.T) {
	e := setup(t)

	code, stdout, _ := e.run("full", e.customers, e.orders)
	require.Equal(t, ExitOK, code)

	// Globex: 275.50 > 250, Initech: 0 > -5
	assert.Equal(t,
		"Customer 2 has exceeded their credit limit.\n"+
			"Customer 3 has exceeded their credit limit.\n",
		stdout)

	customers, orders := e.counts(t)
	assert.Equal(t, int64(3), customers)
	assert.Equal(t, int64(3), orders)

	// running again replaces the data and ids start over
	code, stdout2, _ := e.run("full", e.customers, e.orders)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, stdout, stdout2)
}

func TestRun_ImportCleanCheck(t *testing.T) {
	e := setup(t)

	code, stdout, _ := e.run("import", e.customers, e.orders)
	require.Equal(t, ExitOK, code)
	assert.Empty(t, stdout)

	code, stdout, _ = e.run("check")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "Customer 2 has exceeded their credit limit.")

	// importing the same customers again hits the unique name
	code, _, _ = e.run("import", e.customers, e.orders)
	assert.Equal(t, ExitFailure, code)

	code, _, _ = e.run("clean")
	require.Equal(t, ExitOK, code)
	customers, orders := e.counts(t)
	assert.Zero(t, customers)
	assert.Zero(t, orders)

	code, stdout, _ = e.run("check")
	require.Equal(t, ExitOK, code)
	assert.Empty(t, stdout)
}

func TestRun_FullBadInputKeepsData(t *testing.T) {
	e := setup(t)

	code, _, _ := e.run("import", e.customers, e.orders)
	require.Equal(t, ExitOK, code)

	bad := writeFile(t, e.dir, "bad.tsv", "CustomerName\tOrderDate\tOrderValue\nAcme\tyesterday\t1\n")
	code, stdout, _ := e.run("full", e.customers, bad)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)

	customers, orders := e.counts(t)
	assert.Equal(t, int64(3), customers)
	assert.Equal(t, int64(3), orders)
}

func TestRun_MissingFile(t *testing.T) {
	e := setup(t)

	code, _, _ := e.run("import", filepath.Join(e.dir, "missing.tsv"), e.orders)
	assert.Equal(t, ExitFailure, code)
}

type stubLocker struct {
	err      error
	acquired int
}

func (s *stubLocker) Acquire(ctx context.Context) (*lock.Lease, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	return &lock.Lease{}, nil
}

func TestExecute_Lock(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	t.Run("held lock stops a mutating command", func(t *testing.T) {
		e.deps.Locker = &stubLocker{err: lock.ErrLocked}
		err := Execute(ctx, &Invocation{Name: Clean}, &bytes.Buffer{}, e.deps)
		assert.ErrorIs(t, err, lock.ErrLocked)
	})

	t.Run("check runs without the lock", func(t *testing.T) {
		locker := &stubLocker{err: lock.ErrLocked}
		e.deps.Locker = locker
		err := Execute(ctx, &Invocation{Name: Check}, &bytes.Buffer{}, e.deps)
		assert.NoError(t, err)
	})

	t.Run("lock taken once per run", func(t *testing.T) {
		locker := &stubLocker{}
		e.deps.Locker = locker
		require.NoError(t, Execute(ctx, &Invocation{Name: Migrate}, &bytes.Buffer{}, e.deps))
		assert.Equal(t, 1, locker.acquired)
	})
}

func TestExecute_ParseErrorBeforeLock(t *testing.T) {
	e := setup(t)
	locker := &stubLocker{}
	e.deps.Locker = locker

	bad := writeFile(t, e.dir, "bad.tsv", "Name\tCreditLimit\nAcme\tlots\n")
	err := Execute(context.Background(), &Invocation{Name: Import, CustomersFile: bad, OrdersFile: e.orders}, &bytes.Buffer{}, e.deps)

	var perr *tsv.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.ErrorIs(t, err, tsv.ErrInvalidDecimal)
	assert.Zero(t, locker.acquired)
}

func TestExecute_MigrateFailure(t *testing.T) {
	e := setup(t)
	boom := errors.New("no schema for you")
	e.deps.Migrate = func(ctx context.Context) error { return boom }

	err := Execute(context.Background(), &Invocation{Name: Clean}, &bytes.Buffer{}, e.deps)
	assert.ErrorIs(t, err, boom)
}
