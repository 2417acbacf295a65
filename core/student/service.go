package student

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/group"
)

var (
	// errors
	ErrNotFound = fmt.Errorf("student %w", core.ErrNotFound)
)

type (
	Repository interface {
		// QueryStudents returns the owner's students ordered by name.
		// QueryFilter.Search does a case-insensitive substring match on Student.FullName.
		QueryStudents(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, owner core.OwnerID, id string) (Student, error)
		// GetStudentByName matches FullName exactly.
		GetStudentByName(ctx context.Context, owner core.OwnerID, name string) (Student, error)
		CreateStudent(ctx context.Context, stu Student) (Student, error)
		UpdateStudent(ctx context.Context, owner core.OwnerID, id string, us UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, owner core.OwnerID, id string) error
		// ClearGroup detaches every student of the group.
		ClearGroup(ctx context.Context, owner core.OwnerID, groupID string) error
		// SetGroup attaches the given students to the group.
		SetGroup(ctx context.Context, owner core.OwnerID, groupID string, ids []string) error
	}

	// Groups resolves the group a student is attached to.
	Groups interface {
		GetGroupByID(ctx context.Context, owner core.OwnerID, id string) (group.Group, error)
	}

	Service struct {
		repo     Repository
		groups   Groups
		validate *validator.Validate
		search   core.SearchConfig
	}
)

func NewService(repo Repository, groups Groups, validate *validator.Validate, search core.SearchConfig) *Service {
	return &Service{repo: repo, groups: groups, validate: validate, search: search}
}

// Search returns at most a page of the owner's students whose name contains query, in collation order.
func (svc *Service) Search(ctx context.Context, owner core.OwnerID, query string) ([]Student, error) {
	return svc.Filter(ctx, owner, QueryFilter{Search: query})
}

// QueryAll is Search with an empty query.
func (svc *Service) QueryAll(ctx context.Context, owner core.OwnerID) ([]Student, error) {
	return svc.Search(ctx, owner, "")
}

func (svc *Service) Filter(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Student, error) {
	if err := owner.Check(); err != nil {
		return nil, err
	}
	filter.Clean()
	filter.Limit = svc.search.PageSize

	students, err := svc.repo.QueryStudents(ctx, owner, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	core.SortByName(svc.search.Locale, students, func(i int) string { return students[i].FullName })
	return students, nil
}

func (svc *Service) GetByID(ctx context.Context, owner core.OwnerID, id string) (Student, error) {
	if err := owner.Check(); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudentByID(ctx, owner, id)
}

func (svc *Service) Create(ctx context.Context, owner core.OwnerID, ns NewStudent) (Student, error) {
	if err := owner.Check(); err != nil {
		return Student{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if err := svc.checkGroup(ctx, owner, ns.GroupID); err != nil {
		return Student{}, err
	}

	active := true
	if ns.Active != nil {
		active = *ns.Active
	}
	stu := Student{
		FullName:  ns.FullName,
		Phone:     core.NullString(ns.Phone),
		GroupID:   core.NullString(ns.GroupID),
		Active:    active,
		CreatedAt: time.Now().UTC(),
		OwnerID:   owner,
	}
	stu, err := svc.repo.CreateStudent(ctx, stu)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	return stu, nil
}

// CreateIfNotExists returns the owner's student named exactly `name` (once trimmed), creating it if there is none.
// Two concurrent calls with the same name may both create.
func (svc *Service) CreateIfNotExists(ctx context.Context, owner core.OwnerID, name, phone string) (Student, error) {
	if err := owner.Check(); err != nil {
		return Student{}, err
	}
	name = core.CleanString(name)
	if name == "" {
		return Student{}, core.NewFieldError("full_name", "this field cannot be blank")
	}

	stu, err := svc.repo.GetStudentByName(ctx, owner, name)
	switch {
	case err == nil:
		return stu, nil
	case !errors.Is(err, ErrNotFound):
		return Student{}, errors.Wrap(err, "finding student by name")
	}
	return svc.Create(ctx, owner, NewStudent{FullName: name, Phone: phone})
}

// Update applies the supplied fields. An empty update returns the current row.
func (svc *Service) Update(ctx context.Context, owner core.OwnerID, id string, us UpdateStudent) (Student, error) {
	if err := owner.Check(); err != nil {
		return Student{}, err
	}
	if us.IsEmpty() {
		return svc.repo.GetStudentByID(ctx, owner, id)
	}
	if err := us.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if us.GroupID.Set {
		if err := svc.checkGroup(ctx, owner, us.GroupID.Value.String); err != nil {
			return Student{}, err
		}
	}
	return svc.repo.UpdateStudent(ctx, owner, id, us)
}

func (svc *Service) Delete(ctx context.Context, owner core.OwnerID, id string) error {
	if err := owner.Check(); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, owner, id)
}

// checkGroup rejects a group id that is not one of the owner's groups. An empty id detaches.
func (svc *Service) checkGroup(ctx context.Context, owner core.OwnerID, groupID string) error {
	if groupID == "" {
		return nil
	}
	if _, err := svc.groups.GetGroupByID(ctx, owner, groupID); err != nil {
		return core.ReferenceError("group_id", err)
	}
	return nil
}
