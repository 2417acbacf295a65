package group

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
)

type Group struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description null.String     `json:"description"`
	DueTotal    decimal.Decimal `json:"due_total"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	OwnerID     core.OwnerID    `json:"owner_id"`
}

// NewGroup contains information needed to create a new Group. DueTotal defaults to 0.
type NewGroup struct {
	Name        string          `json:"name" validate:"notblank,max=200"`
	Description string          `json:"description"`
	DueTotal    decimal.Decimal `json:"due_total" validate:"gte=0"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=200"`
	Description core.OptString   `json:"description"`
	DueTotal    *decimal.Decimal `json:"due_total" validate:"omitempty,gte=0"`
}

func (ug *UpdateGroup) IsEmpty() bool {
	return ug.Name == nil && !ug.Description.Set && ug.DueTotal == nil
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	if ug.Name != nil {
		name := core.CleanString(*ug.Name)
		if name == "" {
			return core.NewFieldError("name", "this field cannot be blank")
		}
		ug.Name = &name
	}
	return validate.Struct(ug)
}

// Apply returns a copy of grp with the supplied fields of ug set.
func (ug UpdateGroup) Apply(grp Group) Group {
	if ug.Name != nil {
		grp.Name = *ug.Name
	}
	if ug.Description.Set {
		grp.Description = ug.Description.Value
	}
	if ug.DueTotal != nil {
		grp.DueTotal = *ug.DueTotal
	}
	return grp
}

type QueryFilter struct {
	Search string `query:"search"`
	Limit  int    `query:"-"` // 0: no limit
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
