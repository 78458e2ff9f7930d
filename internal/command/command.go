// Package command turns the command line into one loader run.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nimasrn/order-import/internal/lock"
	"github.com/nimasrn/order-import/internal/model"
	"github.com/nimasrn/order-import/internal/tsv"
	"github.com/nimasrn/order-import/pkg/logger"
	"github.com/nimasrn/order-import/pkg/prom"
)

const (
	Import  = "import"
	Full    = "full"
	Clean   = "clean"
	Check   = "check"
	Migrate = "migrate"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const UnknownArgumentsMessage = "Unknown Command-line Arguments"

var ErrUnknownArguments = errors.New("unknown command-line arguments")

type Invocation struct {
	Name          string
	CustomersFile string
	OrdersFile    string
}

// Mutating reports whether the command writes to the database.
func (i *Invocation) Mutating() bool {
	return i.Name != Check
}

type Service interface {
	Import(ctx context.Context, customers []model.CustomerRow, orders []model.OrderRow) (*model.ImportResult, error)
	Clean(ctx context.Context) (*model.CleanResult, error)
	Check(ctx context.Context) ([]*model.CreditViolation, error)
	Full(ctx context.Context, customers []model.CustomerRow, orders []model.OrderRow) (*model.ImportResult, []*model.CreditViolation, error)
}

type Deps struct {
	Service Service
	Locker  lock.Locker
	// Migrate applies pending schema migrations.
	Migrate     func(ctx context.Context) error
	AutoMigrate bool
}

// Parse reads the positional arguments. Flags of the form --name=value are
// ignored here; the caller handles them.
func Parse(args []string) (*Invocation, error) {
	var positional []string
	for _, a := range args {
		if strings.HasPrefix(a, "--") && strings.Contains(a, "=") {
			continue
		}
		positional = append(positional, a)
	}

	switch len(positional) {
	case 3:
		switch positional[0] {
		case Import, Full:
			return &Invocation{
				Name:          positional[0],
				CustomersFile: positional[1],
				OrdersFile:    positional[2],
			}, nil
		}
	case 1:
		switch positional[0] {
		case Clean, Check, Migrate:
			return &Invocation{Name: positional[0]}, nil
		}
	}
	return nil, ErrUnknownArguments
}

// Setup prepares the dependencies of a parsed command. The returned func,
// if any, releases them once the command is done.
type Setup func(ctx context.Context, inv *Invocation) (Deps, func(), error)

// Run parses args, builds the dependencies, executes the command and
// returns the process exit code. Nothing is set up for unknown arguments.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, setup Setup) int {
	inv, err := Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, UnknownArgumentsMessage)
		return ExitUsage
	}

	deps, teardown, err := setup(ctx, inv)
	if err != nil {
		logger.Error("setup failed", "command", inv.Name, "error", err)
		return ExitFailure
	}
	if teardown != nil {
		defer teardown()
	}

	if err := Execute(ctx, inv, stdout, deps); err != nil {
		logger.Error("command failed", "command", inv.Name, "error", err)
		return ExitFailure
	}
	return ExitOK
}

// Execute runs one parsed command. Input files are read before the lock is
// taken or anything is written.
func Execute(ctx context.Context, inv *Invocation, stdout io.Writer, deps Deps) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		prom.AddCommandDuration(time.Since(start).Seconds(), inv.Name, status)
	}()

	var customers []model.CustomerRow
	var orders []model.OrderRow
	if inv.Name == Import || inv.Name == Full {
		if customers, err = tsv.ReadCustomersFile(inv.CustomersFile); err != nil {
			return err
		}
		if orders, err = tsv.ReadOrdersFile(inv.OrdersFile); err != nil {
			return err
		}
		logger.Info("input files read", "customers", len(customers), "orders", len(orders))
	}

	locker := deps.Locker
	if locker == nil {
		locker = lock.Noop{}
	}
	if inv.Mutating() {
		lease, err := locker.Acquire(ctx)
		if err != nil {
			return err
		}
		logger.Debug("run lock held", "command", inv.Name, "token", lease.Token())
		defer func() {
			// released even when ctx is already cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if rerr := lease.Release(releaseCtx); rerr != nil {
				logger.Warn("failed to release run lock", "error", rerr)
			}
		}()
	}

	if deps.Migrate != nil && (inv.Name == Migrate || deps.AutoMigrate) {
		if err := deps.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	switch inv.Name {
	case Migrate:
		return nil
	case Import:
		_, err = deps.Service.Import(ctx, customers, orders)
		return err
	case Clean:
		_, err = deps.Service.Clean(ctx)
		return err
	case Check:
		violations, err := deps.Service.Check(ctx)
		if err != nil {
			return err
		}
		return report(stdout, violations)
	case Full:
		_, violations, err := deps.Service.Full(ctx, customers, orders)
		if err != nil {
			return err
		}
		return report(stdout, violations)
	}
	return ErrUnknownArguments
}

func report(w io.Writer, violations []*model.CreditViolation) error {
	for _, v := range violations {
		if _, err := fmt.Fprintf(w, "Customer %d has exceeded their credit limit.\n", v.CustomerID); err != nil {
			return err
		}
	}
	return nil
}
