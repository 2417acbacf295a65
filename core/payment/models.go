package payment

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
)

type Method string

// Methods
const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

var Methods = []Method{MethodCash, MethodCard, MethodTransfer}

func (m Method) IsValid() bool {
	for _, method := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

type Payment struct {
	ID        string          `json:"id"`
	StudentID null.String     `json:"student_id"`
	GroupID   null.String     `json:"group_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    Method          `json:"method"`
	PaidAt    core.Date       `json:"paid_at"`
	Note      null.String     `json:"note"`
	OwnerID   core.OwnerID    `json:"owner_id"`
}

// NewPayment contains information needed to create a new Payment.
// Method defaults to cash and PaidAt to today.
type NewPayment struct {
	StudentID string          `json:"student_id" validate:"omitempty,uuid"`
	GroupID   string          `json:"group_id" validate:"omitempty,uuid"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Method    Method          `json:"method" validate:"omitempty,oneof=cash card transfer"`
	PaidAt    core.Date       `json:"paid_at"`
	Note      string          `json:"note" validate:"max=500"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.GroupID = core.CleanString(np.GroupID)
	np.Method = Method(core.CleanString(string(np.Method), true /* lower */))
	np.Note = core.CleanString(np.Note)
	if np.Method == "" {
		np.Method = MethodCash
	}
	if np.PaidAt.IsZero() {
		np.PaidAt = core.Today()
	}
	return validate.Struct(np)
}

// UpdatePayment defines what information may be provided to modify an existing Payment.
// Only supplied fields change.
type UpdatePayment struct {
	StudentID core.OptString   `json:"student_id"`
	GroupID   core.OptString   `json:"group_id"`
	Amount    *decimal.Decimal `json:"amount"`
	Method    *Method          `json:"method"`
	PaidAt    *core.Date       `json:"paid_at"`
	Note      core.OptString   `json:"note"`
}

func (up *UpdatePayment) IsEmpty() bool {
	return !up.StudentID.Set && !up.GroupID.Set && up.Amount == nil && up.Method == nil && up.PaidAt == nil && !up.Note.Set
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	if up.Amount != nil && !up.Amount.IsPositive() {
		return core.NewFieldError("amount", "amount must be greater than 0")
	}
	if up.Method != nil {
		method := Method(core.CleanString(string(*up.Method), true /* lower */))
		if !method.IsValid() {
			return core.NewFieldError("method", "method must be one of [cash card transfer]")
		}
		up.Method = &method
	}
	if up.PaidAt != nil && up.PaidAt.IsZero() {
		return core.NewFieldError("paid_at", "this field is required")
	}
	if up.Note.Set && up.Note.Value.Valid {
		if err := validate.Var(up.Note.Value.String, "max=500"); err != nil {
			return core.NewFieldError("note", "note must be a maximum of 500 characters in length")
		}
	}
	for field, ref := range map[string]core.OptString{"student_id": up.StudentID, "group_id": up.GroupID} {
		if ref.Set && ref.Value.Valid {
			if err := validate.Var(ref.Value.String, "uuid"); err != nil {
				return core.NewFieldError(field, field+" must be a valid UUID")
			}
		}
	}
	return nil
}

// Apply returns a copy of p with the supplied fields of up set.
func (up UpdatePayment) Apply(p Payment) Payment {
	if up.StudentID.Set {
		p.StudentID = up.StudentID.Value
	}
	if up.GroupID.Set {
		p.GroupID = up.GroupID.Value
	}
	if up.Amount != nil {
		p.Amount = *up.Amount
	}
	if up.Method != nil {
		p.Method = *up.Method
	}
	if up.PaidAt != nil {
		p.PaidAt = *up.PaidAt
	}
	if up.Note.Set {
		p.Note = up.Note.Value
	}
	return p
}

// Replace returns an UpdatePayment that overwrites every field with np's.
func Replace(np NewPayment) UpdatePayment {
	return UpdatePayment{
		StudentID: core.SetString(np.StudentID),
		GroupID:   core.SetString(np.GroupID),
		Amount:    &np.Amount,
		Method:    &np.Method,
		PaidAt:    &np.PaidAt,
		Note:      core.SetString(np.Note),
	}
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	GroupID   string    `query:"group_id"`
	From      core.Date `query:"from"`
	To        core.Date `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.GroupID = core.CleanString(qf.GroupID)
}

// Total sums the amounts of payments.
func Total(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
