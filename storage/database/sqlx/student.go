package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/student"
)

var studentColumns = []string{"id", "owner_id", "full_name", "phone", "group_id", "active", "created_at"}

type studentRow struct {
	ID        string      `db:"id"`
	OwnerID   string      `db:"owner_id"`
	FullName  string      `db:"full_name"`
	Phone     null.String `db:"phone"`
	GroupID   null.String `db:"group_id"`
	Active    bool        `db:"active"`
	CreatedAt time.Time   `db:"created_at"`
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:        row.ID,
		FullName:  row.FullName,
		Phone:     row.Phone,
		GroupID:   row.GroupID,
		Active:    row.Active,
		CreatedAt: row.CreatedAt.UTC(),
		OwnerID:   core.OwnerID(row.OwnerID),
	}
}

type studentRepository struct {
	repo
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{repo{db: db}}
}

func (r *studentRepository) QueryStudents(ctx context.Context, owner core.OwnerID, filter student.QueryFilter) ([]student.Student, error) {
	q := psql.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"owner_id": string(owner)}).
		OrderBy("full_name ASC", "created_at ASC")
	if filter.Search != "" {
		q = q.Where(sq.ILike{"full_name": core.ContainsPattern(filter.Search)})
	}
	if filter.GroupID != "" {
		if !isUUID(filter.GroupID) {
			return []student.Student{}, nil
		}
		q = q.Where(sq.Eq{"group_id": filter.GroupID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	var rows []studentRow
	if err := r.selekt(ctx, "querying students", &rows, q); err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (r *studentRepository) GetStudentByID(ctx context.Context, owner core.OwnerID, id string) (student.Student, error) {
	if !isUUID(id) {
		return student.Student{}, student.ErrNotFound
	}
	q := psql.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"owner_id": string(owner), "id": id})

	var row studentRow
	if err := r.get(ctx, "getting student", &row, q); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (r *studentRepository) GetStudentByName(ctx context.Context, owner core.OwnerID, name string) (student.Student, error) {
	q := psql.Select(studentColumns...).
		From("students").
		Where(sq.Eq{"owner_id": string(owner), "full_name": name}).
		OrderBy("created_at ASC").
		Limit(1)

	var row studentRow
	if err := r.get(ctx, "getting student by name", &row, q); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (r *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	q := psql.Insert("students").
		Columns("owner_id", "full_name", "phone", "group_id", "active", "created_at").
		Values(string(stu.OwnerID), stu.FullName, stu.Phone, stu.GroupID, stu.Active, stu.CreatedAt).
		Suffix("RETURNING " + strings.Join(studentColumns, ", "))

	var row studentRow
	if err := r.get(ctx, "inserting student", &row, q); err != nil {
		return student.Student{}, referenceErr(err)
	}
	return row.toStudent(), nil
}

func (r *studentRepository) UpdateStudent(ctx context.Context, owner core.OwnerID, id string, us student.UpdateStudent) (student.Student, error) {
	if !isUUID(id) {
		return student.Student{}, student.ErrNotFound
	}
	set := make(map[string]interface{}, 4)
	if us.FullName != nil {
		set["full_name"] = *us.FullName
	}
	if us.Phone.Set {
		set["phone"] = us.Phone.Value
	}
	if us.GroupID.Set {
		set["group_id"] = us.GroupID.Value
	}
	if us.Active != nil {
		set["active"] = *us.Active
	}
	if len(set) == 0 {
		return r.GetStudentByID(ctx, owner, id)
	}

	q := psql.Update("students").
		SetMap(set).
		Where(sq.Eq{"owner_id": string(owner), "id": id}).
		Suffix("RETURNING " + strings.Join(studentColumns, ", "))

	var row studentRow
	if err := r.get(ctx, "updating student", &row, q); err != nil {
		return student.Student{}, referenceErr(trapNoRowsErr(err, student.ErrNotFound))
	}
	return row.toStudent(), nil
}

func (r *studentRepository) DeleteStudent(ctx context.Context, owner core.OwnerID, id string) error {
	if !isUUID(id) {
		return nil
	}
	q := psql.Delete("students").Where(sq.Eq{"owner_id": string(owner), "id": id})
	return r.run(ctx, "deleting student", q)
}

func (r *studentRepository) ClearGroup(ctx context.Context, owner core.OwnerID, groupID string) error {
	if !isUUID(groupID) {
		return nil
	}
	q := psql.Update("students").
		Set("group_id", nil).
		Where(sq.Eq{"owner_id": string(owner), "group_id": groupID})
	return r.run(ctx, "clearing group students", q)
}

func (r *studentRepository) SetGroup(ctx context.Context, owner core.OwnerID, groupID string, ids []string) error {
	ids = validUUIDs(ids)
	if len(ids) == 0 || !isUUID(groupID) {
		return nil
	}
	q := psql.Update("students").
		Set("group_id", groupID).
		Where(sq.Eq{"owner_id": string(owner), "id": ids})
	return r.run(ctx, "setting group students", q)
}
