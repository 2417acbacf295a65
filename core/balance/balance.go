package balance

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/payment"
)

// Balance is a group's due total against what was paid towards it.
// Remaining is never negative; overpayment shows as PaidTotal > DueTotal.
type Balance struct {
	GroupID   string          `json:"group_id"`
	DueTotal  decimal.Decimal `json:"due_total"`
	PaidTotal decimal.Decimal `json:"paid_total"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Compute derives the balance from a due total and a paid total.
func Compute(due, paid decimal.Decimal) Balance {
	return Balance{
		DueTotal:  due,
		PaidTotal: paid,
		Remaining: core.NonNegative(due.Sub(paid)),
	}
}

type (
	Groups interface {
		GetByID(ctx context.Context, owner core.OwnerID, id string) (group.Group, error)
	}

	Payments interface {
		SumGroup(ctx context.Context, owner core.OwnerID, groupID string) (decimal.Decimal, error)
		Create(ctx context.Context, owner core.OwnerID, np payment.NewPayment) (payment.Payment, error)
	}

	Service struct {
		groups   Groups
		payments Payments
		validate *validator.Validate
	}
)

func NewService(groups Groups, payments Payments, validate *validator.Validate) *Service {
	return &Service{groups: groups, payments: payments, validate: validate}
}

// Get recomputes the group's balance from current data. A group the owner does not have counts as due 0.
func (svc *Service) Get(ctx context.Context, owner core.OwnerID, groupID string) (Balance, error) {
	if err := owner.Check(); err != nil {
		return Balance{}, err
	}

	due := decimal.Zero
	grp, err := svc.groups.GetByID(ctx, owner, groupID)
	switch {
	case err == nil:
		due = grp.DueTotal
	case !errors.Is(err, group.ErrNotFound):
		return Balance{}, errors.Wrap(err, "getting group")
	}

	paid, err := svc.payments.SumGroup(ctx, owner, groupID)
	if err != nil {
		return Balance{}, err
	}

	bal := Compute(due, paid)
	bal.GroupID = groupID
	return bal, nil
}
