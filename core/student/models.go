package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
)

type Student struct {
	ID        string       `json:"id"`
	FullName  string       `json:"full_name"`
	Phone     null.String  `json:"phone"`
	GroupID   null.String  `json:"group_id"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"` // UTC
	OwnerID   core.OwnerID `json:"owner_id"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FullName string `json:"full_name" validate:"notblank,max=200"`
	Phone    string `json:"phone" validate:"max=50"`
	GroupID  string `json:"group_id" validate:"omitempty,uuid"`
	Active   *bool  `json:"active"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Phone = core.CleanString(ns.Phone)
	ns.GroupID = core.CleanString(ns.GroupID)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Only supplied fields change.
type UpdateStudent struct {
	FullName *string        `json:"full_name" validate:"omitempty,notblank,max=200"`
	Phone    core.OptString `json:"phone"`
	GroupID  core.OptString `json:"group_id"`
	Active   *bool          `json:"active"`
}

func (us *UpdateStudent) IsEmpty() bool {
	return us.FullName == nil && !us.Phone.Set && !us.GroupID.Set && us.Active == nil
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	if us.FullName != nil {
		name := core.CleanString(*us.FullName)
		if name == "" {
			return core.NewFieldError("full_name", "this field cannot be blank")
		}
		if err := validate.Var(name, "max=200"); err != nil {
			return core.NewFieldError("full_name", "full_name must be a maximum of 200 characters in length")
		}
		us.FullName = &name
	}
	if us.Phone.Set && us.Phone.Value.Valid {
		phone := core.CleanString(us.Phone.Value.String)
		if err := validate.Var(phone, "max=50"); err != nil {
			return core.NewFieldError("phone", "phone must be a maximum of 50 characters in length")
		}
		us.Phone.Value = core.NullString(phone)
	}
	if us.GroupID.Set && us.GroupID.Value.Valid {
		if err := validate.Var(us.GroupID.Value.String, "uuid"); err != nil {
			return core.NewFieldError("group_id", "group_id must be a valid UUID")
		}
	}
	return validate.Struct(us)
}

// Apply returns a copy of stu with the supplied fields of us set.
func (us UpdateStudent) Apply(stu Student) Student {
	if us.FullName != nil {
		stu.FullName = *us.FullName
	}
	if us.Phone.Set {
		stu.Phone = us.Phone.Value
	}
	if us.GroupID.Set {
		stu.GroupID = us.GroupID.Value
	}
	if us.Active != nil {
		stu.Active = *us.Active
	}
	return stu
}

type QueryFilter struct {
	Search  string `query:"search"`
	GroupID string `query:"group_id"`
	Limit   int    `query:"-"` // 0: no limit
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.GroupID = core.CleanString(qf.GroupID)
}
