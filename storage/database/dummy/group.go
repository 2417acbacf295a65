package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) QueryGroups(ctx context.Context, owner core.OwnerID, filter group.QueryFilter) ([]group.Group, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("QueryGroups"); err != nil {
		return nil, err
	}

	groups := make([]group.Group, 0)
	for _, grp := range repo.db.groups {
		if grp.OwnerID != owner {
			continue
		}
		if filter.Search != "" && !core.ContainsFold(grp.Name, filter.Search) {
			continue
		}
		groups = append(groups, grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return repo.db.seq[groups[i].ID] < repo.db.seq[groups[j].ID]
	})
	if filter.Limit > 0 && len(groups) > filter.Limit {
		groups = groups[:filter.Limit]
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, owner core.OwnerID, id string) (group.Group, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetGroupByID"); err != nil {
		return group.Group{}, err
	}

	if grp, ok := repo.db.groups[id]; ok && grp.OwnerID == owner {
		return grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("CreateGroup"); err != nil {
		return group.Group{}, err
	}

	grp.ID = repo.db.insert()
	repo.db.groups[grp.ID] = grp
	return grp, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, owner core.OwnerID, id string, ug group.UpdateGroup) (group.Group, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("UpdateGroup"); err != nil {
		return group.Group{}, err
	}

	grp, ok := repo.db.groups[id]
	if !ok || grp.OwnerID != owner {
		return group.Group{}, group.ErrNotFound
	}
	grp = ug.Apply(grp)
	repo.db.groups[id] = grp
	return grp, nil
}

// DeleteGroup only deletes the group row; it fails like the Postgres foreign key if students still reference it.
func (repo *groupRepository) DeleteGroup(ctx context.Context, owner core.OwnerID, id string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("DeleteGroup"); err != nil {
		return err
	}

	grp, ok := repo.db.groups[id]
	if !ok || grp.OwnerID != owner {
		return nil
	}
	for _, stu := range repo.db.students {
		if stu.OwnerID == owner && stu.GroupID.Valid && stu.GroupID.String == id {
			return core.NewStoreError("DeleteGroup", errGroupReferenced)
		}
	}
	delete(repo.db.groups, id)
	return nil
}
