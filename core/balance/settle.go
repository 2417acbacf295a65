package balance

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
)

type Mode string

// Settlement modes
const (
	ModeFull    Mode = "full"    // pay off the whole remaining balance
	ModePartial Mode = "partial" // pay a part of it
)

// Notes written on settlement payments
const (
	NoteFull    = "تسديد دين كامل"
	NotePartial = "تسديد دين جزئي"
)

// Settlement describes a payment against a group's debt.
// Amount is ignored in full mode. Method defaults to cash and PaidAt to today.
type Settlement struct {
	GroupID   string          `json:"-"`
	Mode      Mode            `json:"mode" validate:"required,oneof=full partial"`
	Amount    decimal.Decimal `json:"amount"`
	StudentID string          `json:"student_id" validate:"omitempty,uuid"`
	Method    payment.Method  `json:"method" validate:"omitempty,oneof=cash card transfer"`
	PaidAt    core.Date       `json:"paid_at"`
}

func (s *Settlement) Validate(validate *validator.Validate) error {
	s.Mode = Mode(core.CleanString(string(s.Mode), true /* lower */))
	s.StudentID = core.CleanString(s.StudentID)
	return validate.Struct(s)
}

// Result is the settlement payment with the balance read back after writing it.
type Result struct {
	Payment payment.Payment `json:"payment"`
	Balance Balance         `json:"balance"`
}

// Settle pays off part or all of the group's remaining balance.
// The amount is checked against the balance read at call time, before anything is written;
// a concurrent payment landing between that read and the write is not detected.
func (svc *Service) Settle(ctx context.Context, owner core.OwnerID, s Settlement) (Result, error) {
	if err := owner.Check(); err != nil {
		return Result{}, err
	}
	if err := s.Validate(svc.validate); err != nil {
		return Result{}, err
	}
	if _, err := svc.groups.GetByID(ctx, owner, s.GroupID); err != nil {
		return Result{}, err
	}

	current, err := svc.Get(ctx, owner, s.GroupID)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting balance")
	}

	amount, note := s.Amount, NotePartial
	if s.Mode == ModeFull {
		amount, note = current.Remaining, NoteFull
	}
	if !amount.IsPositive() {
		return Result{}, core.NewFieldError("amount", "amount must be greater than 0")
	}
	if amount.GreaterThan(current.Remaining) {
		return Result{}, core.NewFieldError("amount", "amount cannot exceed the remaining balance of "+current.Remaining.StringFixed(2))
	}

	p, err := svc.payments.Create(ctx, owner, payment.NewPayment{
		StudentID: s.StudentID,
		GroupID:   s.GroupID,
		Amount:    amount,
		Method:    s.Method,
		PaidAt:    s.PaidAt,
		Note:      note,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "creating settlement payment")
	}

	bal, err := svc.Get(ctx, owner, s.GroupID)
	if err != nil {
		return Result{}, errors.Wrap(err, "getting balance")
	}
	return Result{Payment: p, Balance: bal}, nil
}
