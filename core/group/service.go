package group

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
)

var (
	// errors
	ErrNotFound = fmt.Errorf("group %w", core.ErrNotFound)
)

type (
	Repository interface {
		// QueryGroups returns the owner's groups ordered by name.
		// QueryFilter.Search does a case-insensitive substring match on Group.Name.
		QueryGroups(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Group, error)
		GetGroupByID(ctx context.Context, owner core.OwnerID, id string) (Group, error)
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		UpdateGroup(ctx context.Context, owner core.OwnerID, id string, ug UpdateGroup) (Group, error)
		DeleteGroup(ctx context.Context, owner core.OwnerID, id string) error
	}

	// Members moves students in and out of groups.
	Members interface {
		ClearGroup(ctx context.Context, owner core.OwnerID, groupID string) error
		SetGroup(ctx context.Context, owner core.OwnerID, groupID string, studentIDs []string) error
	}

	Service struct {
		repo     Repository
		members  Members
		tx       core.Transactor
		validate *validator.Validate
		search   core.SearchConfig
	}
)

func NewService(repo Repository, members Members, tx core.Transactor, validate *validator.Validate, search core.SearchConfig) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		tx:       tx,
		validate: validate,
		search:   search,
	}
}

// Search returns at most a page of the owner's groups whose name contains query, in collation order.
func (svc *Service) Search(ctx context.Context, owner core.OwnerID, query string) ([]Group, error) {
	if err := owner.Check(); err != nil {
		return nil, err
	}
	filter := QueryFilter{Search: query, Limit: svc.search.PageSize}
	filter.Clean()

	groups, err := svc.repo.QueryGroups(ctx, owner, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	core.SortByName(svc.search.Locale, groups, func(i int) string { return groups[i].Name })
	return groups, nil
}

func (svc *Service) QueryAll(ctx context.Context, owner core.OwnerID) ([]Group, error) {
	return svc.Search(ctx, owner, "")
}

func (svc *Service) GetByID(ctx context.Context, owner core.OwnerID, id string) (Group, error) {
	if err := owner.Check(); err != nil {
		return Group{}, err
	}
	return svc.repo.GetGroupByID(ctx, owner, id)
}

func (svc *Service) Create(ctx context.Context, owner core.OwnerID, ng NewGroup) (Group, error) {
	if err := owner.Check(); err != nil {
		return Group{}, err
	}
	if err := ng.Validate(svc.validate); err != nil {
		return Group{}, err
	}

	grp := Group{
		Name:        ng.Name,
		Description: core.NullString(ng.Description),
		DueTotal:    ng.DueTotal,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     owner,
	}
	grp, err := svc.repo.CreateGroup(ctx, grp)
	if err != nil {
		return Group{}, errors.Wrap(err, "creating group")
	}
	return grp, nil
}

// Update applies the supplied fields. An empty update returns the current row.
func (svc *Service) Update(ctx context.Context, owner core.OwnerID, id string, ug UpdateGroup) (Group, error) {
	if err := owner.Check(); err != nil {
		return Group{}, err
	}
	if ug.IsEmpty() {
		return svc.repo.GetGroupByID(ctx, owner, id)
	}
	if err := ug.Validate(svc.validate); err != nil {
		return Group{}, err
	}
	return svc.repo.UpdateGroup(ctx, owner, id, ug)
}

// Delete detaches the group's students and deletes the group as one unit of work.
func (svc *Service) Delete(ctx context.Context, owner core.OwnerID, id string) error {
	if err := owner.Check(); err != nil {
		return err
	}
	return svc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := svc.members.ClearGroup(ctx, owner, id); err != nil {
			return errors.Wrap(err, "detaching group students")
		}
		if err := svc.repo.DeleteGroup(ctx, owner, id); err != nil {
			return errors.Wrap(err, "deleting group")
		}
		return nil
	})
}

// AssignStudents makes studentIDs the exact member set of the group: current members are cleared first,
// then the given students are attached. Ids of students the owner does not have are ignored.
func (svc *Service) AssignStudents(ctx context.Context, owner core.OwnerID, groupID string, studentIDs []string) error {
	if err := owner.Check(); err != nil {
		return err
	}
	if _, err := svc.repo.GetGroupByID(ctx, owner, groupID); err != nil {
		return err
	}
	ids := cleanIDs(studentIDs)

	return svc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := svc.members.ClearGroup(ctx, owner, groupID); err != nil {
			return errors.Wrap(err, "clearing group students")
		}
		if len(ids) == 0 {
			return nil
		}
		if err := svc.members.SetGroup(ctx, owner, groupID, ids); err != nil {
			return errors.Wrap(err, "setting group students")
		}
		return nil
	})
}

func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = core.CleanString(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, id)
	}
	return cleaned
}
