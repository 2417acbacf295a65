package report

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/core/student"
)

type (
	Students interface {
		QueryAll(ctx context.Context, owner core.OwnerID) ([]student.Student, error)
	}

	Groups interface {
		QueryAll(ctx context.Context, owner core.OwnerID) ([]group.Group, error)
	}

	Payments interface {
		QueryAll(ctx context.Context, owner core.OwnerID) ([]payment.Payment, error)
	}

	Expenses interface {
		QueryAll(ctx context.Context, owner core.OwnerID) ([]expense.Expense, error)
	}

	// Service derives read-only aggregates from the owner's rows. Nothing is cached.
	Service struct {
		students Students
		groups   Groups
		payments Payments
		expenses Expenses
	}
)

func NewService(students Students, groups Groups, payments Payments, expenses Expenses) *Service {
	return &Service{
		students: students,
		groups:   groups,
		payments: payments,
		expenses: expenses,
	}
}

// Snapshot is every collection of an owner, loaded together.
type Snapshot struct {
	Students []student.Student `json:"students"`
	Groups   []group.Group     `json:"groups"`
	Payments []payment.Payment `json:"payments"`
	Expenses []expense.Expense `json:"expenses"`
}

// Snapshot loads the four collections concurrently. If any load fails the whole snapshot fails.
func (svc *Service) Snapshot(ctx context.Context, owner core.OwnerID) (Snapshot, error) {
	if err := owner.Check(); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Students, err = svc.students.QueryAll(gctx, owner)
		return errors.Wrap(err, "loading students")
	})
	g.Go(func() error {
		var err error
		snap.Groups, err = svc.groups.QueryAll(gctx, owner)
		return errors.Wrap(err, "loading groups")
	})
	g.Go(func() error {
		var err error
		snap.Payments, err = svc.payments.QueryAll(gctx, owner)
		return errors.Wrap(err, "loading payments")
	})
	g.Go(func() error {
		var err error
		snap.Expenses, err = svc.expenses.QueryAll(gctx, owner)
		return errors.Wrap(err, "loading expenses")
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (svc *Service) Dashboard(ctx context.Context, owner core.OwnerID, month int) (Dashboard, error) {
	if err := checkMonth(month); err != nil {
		return Dashboard{}, err
	}
	snap, err := svc.Snapshot(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(snap, month), nil
}

func (svc *Service) Monthly(ctx context.Context, owner core.OwnerID) (Monthly, error) {
	snap, err := svc.Snapshot(ctx, owner)
	if err != nil {
		return Monthly{}, err
	}
	return BuildMonthly(snap), nil
}

func (svc *Service) Insights(ctx context.Context, owner core.OwnerID) ([]Insight, error) {
	snap, err := svc.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return BuildInsights(snap.Payments, snap.Expenses, core.Now()), nil
}

// GuestSummary only reads payments, so it skips the snapshot.
func (svc *Service) GuestSummary(ctx context.Context, owner core.OwnerID, month int) (GuestSummary, error) {
	if err := owner.Check(); err != nil {
		return GuestSummary{}, err
	}
	if err := checkMonth(month); err != nil {
		return GuestSummary{}, err
	}
	payments, err := svc.payments.QueryAll(ctx, owner)
	if err != nil {
		return GuestSummary{}, errors.Wrap(err, "loading payments")
	}
	return BuildGuestSummary(payments, month), nil
}

func checkMonth(month int) error {
	if month < 0 || month > 12 {
		return core.NewFieldError("month", "month must be between 0 (all) and 12")
	}
	return nil
}
