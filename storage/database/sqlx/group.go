package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/group"
)

var groupColumns = []string{"id", "owner_id", "name", "description", "due_total", "created_at"}

type groupRow struct {
	ID          string          `db:"id"`
	OwnerID     string          `db:"owner_id"`
	Name        string          `db:"name"`
	Description null.String     `db:"description"`
	DueTotal    decimal.Decimal `db:"due_total"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (row groupRow) toGroup() group.Group {
	return group.Group{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		DueTotal:    row.DueTotal,
		CreatedAt:   row.CreatedAt.UTC(),
		OwnerID:     core.OwnerID(row.OwnerID),
	}
}

type groupRepository struct {
	repo
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{repo{db: db}}
}

func (r *groupRepository) QueryGroups(ctx context.Context, owner core.OwnerID, filter group.QueryFilter) ([]group.Group, error) {
	q := psql.Select(groupColumns...).
		From("groups").
		Where(sq.Eq{"owner_id": string(owner)}).
		OrderBy("name ASC", "created_at ASC")
	if filter.Search != "" {
		q = q.Where(sq.ILike{"name": core.ContainsPattern(filter.Search)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	var rows []groupRow
	if err := r.selekt(ctx, "querying groups", &rows, q); err != nil {
		return nil, err
	}
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toGroup())
	}
	return groups, nil
}

func (r *groupRepository) GetGroupByID(ctx context.Context, owner core.OwnerID, id string) (group.Group, error) {
	if !isUUID(id) {
		return group.Group{}, group.ErrNotFound
	}
	q := psql.Select(groupColumns...).
		From("groups").
		Where(sq.Eq{"owner_id": string(owner), "id": id})

	var row groupRow
	if err := r.get(ctx, "getting group", &row, q); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound)
	}
	return row.toGroup(), nil
}

func (r *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	q := psql.Insert("groups").
		Columns("owner_id", "name", "description", "due_total", "created_at").
		Values(string(grp.OwnerID), grp.Name, grp.Description, grp.DueTotal, grp.CreatedAt).
		Suffix("RETURNING " + strings.Join(groupColumns, ", "))

	var row groupRow
	if err := r.get(ctx, "inserting group", &row, q); err != nil {
		return group.Group{}, err
	}
	return row.toGroup(), nil
}

func (r *groupRepository) UpdateGroup(ctx context.Context, owner core.OwnerID, id string, ug group.UpdateGroup) (group.Group, error) {
	if !isUUID(id) {
		return group.Group{}, group.ErrNotFound
	}
	set := make(map[string]interface{}, 3)
	if ug.Name != nil {
		set["name"] = *ug.Name
	}
	if ug.Description.Set {
		set["description"] = ug.Description.Value
	}
	if ug.DueTotal != nil {
		set["due_total"] = *ug.DueTotal
	}
	if len(set) == 0 {
		return r.GetGroupByID(ctx, owner, id)
	}

	q := psql.Update("groups").
		SetMap(set).
		Where(sq.Eq{"owner_id": string(owner), "id": id}).
		Suffix("RETURNING " + strings.Join(groupColumns, ", "))

	var row groupRow
	if err := r.get(ctx, "updating group", &row, q); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound)
	}
	return row.toGroup(), nil
}

func (r *groupRepository) DeleteGroup(ctx context.Context, owner core.OwnerID, id string) error {
	if !isUUID(id) {
		return nil
	}
	q := psql.Delete("groups").Where(sq.Eq{"owner_id": string(owner), "id": id})
	return r.run(ctx, "deleting group", q)
}
