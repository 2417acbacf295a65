package expense

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
)

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SpentAt     core.Date       `json:"spent_at"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	OwnerID     core.OwnerID    `json:"owner_id"`
}

// NewExpense contains information needed to create a new Expense. SpentAt defaults to today.
type NewExpense struct {
	Description string          `json:"description" validate:"notblank,max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	SpentAt     core.Date       `json:"spent_at"`
}

func (ne *NewExpense) Validate(validate *validator.Validate) error {
	ne.Description = core.CleanString(ne.Description)
	if ne.SpentAt.IsZero() {
		ne.SpentAt = core.Today()
	}
	return validate.Struct(ne)
}

// UpdateExpense defines what information may be provided to modify an existing Expense.
type UpdateExpense struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	SpentAt     *core.Date       `json:"spent_at"`
}

func (ue *UpdateExpense) IsEmpty() bool {
	return ue.Description == nil && ue.Amount == nil && ue.SpentAt == nil
}

func (ue *UpdateExpense) Validate() error {
	if ue.Description != nil {
		desc := core.CleanString(*ue.Description)
		if desc == "" {
			return core.NewFieldError("description", "this field cannot be blank")
		}
		ue.Description = &desc
	}
	if ue.Amount != nil && !ue.Amount.IsPositive() {
		return core.NewFieldError("amount", "amount must be greater than 0")
	}
	if ue.SpentAt != nil && ue.SpentAt.IsZero() {
		return core.NewFieldError("spent_at", "this field is required")
	}
	return nil
}

// Apply returns a copy of exp with the supplied fields of ue set.
func (ue UpdateExpense) Apply(exp Expense) Expense {
	if ue.Description != nil {
		exp.Description = *ue.Description
	}
	if ue.Amount != nil {
		exp.Amount = *ue.Amount
	}
	if ue.SpentAt != nil {
		exp.SpentAt = *ue.SpentAt
	}
	return exp
}

type QueryFilter struct {
	Search string    `query:"search"`
	From   core.Date `query:"from"`
	To     core.Date `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Total sums the amounts of expenses.
func Total(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total
}
