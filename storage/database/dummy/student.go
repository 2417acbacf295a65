package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) owned(owner core.OwnerID) []student.Student {
	students := make([]student.Student, 0)
	for _, stu := range repo.db.students {
		if stu.OwnerID == owner {
			students = append(students, stu)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return repo.db.seq[students[i].ID] < repo.db.seq[students[j].ID]
	})
	return students
}

func (repo *studentRepository) QueryStudents(ctx context.Context, owner core.OwnerID, filter student.QueryFilter) ([]student.Student, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("QueryStudents"); err != nil {
		return nil, err
	}

	students := make([]student.Student, 0)
	for _, stu := range repo.owned(owner) {
		if filter.Search != "" && !core.ContainsFold(stu.FullName, filter.Search) {
			continue
		}
		if filter.GroupID != "" && stu.GroupID.String != filter.GroupID {
			continue
		}
		students = append(students, stu)
		if filter.Limit > 0 && len(students) == filter.Limit {
			break
		}
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, owner core.OwnerID, id string) (student.Student, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetStudentByID"); err != nil {
		return student.Student{}, err
	}

	if stu, ok := repo.db.students[id]; ok && stu.OwnerID == owner {
		return stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByName(ctx context.Context, owner core.OwnerID, name string) (student.Student, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetStudentByName"); err != nil {
		return student.Student{}, err
	}

	var (
		found   student.Student
		foundOk bool
	)
	for _, stu := range repo.db.students {
		if stu.OwnerID != owner || stu.FullName != name {
			continue
		}
		if !foundOk || repo.db.seq[stu.ID] < repo.db.seq[found.ID] {
			found, foundOk = stu, true
		}
	}
	if !foundOk {
		return student.Student{}, student.ErrNotFound
	}
	return found, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("CreateStudent"); err != nil {
		return student.Student{}, err
	}
	if stu.GroupID.Valid {
		if !repo.db.ownsGroup(stu.OwnerID, stu.GroupID.String) {
			return student.Student{}, core.NewFieldError("group_id", "group_id does not reference an existing row")
		}
	}

	stu.ID = repo.db.insert()
	repo.db.students[stu.ID] = stu
	return stu, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, owner core.OwnerID, id string, us student.UpdateStudent) (student.Student, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("UpdateStudent"); err != nil {
		return student.Student{}, err
	}

	stu, ok := repo.db.students[id]
	if !ok || stu.OwnerID != owner {
		return student.Student{}, student.ErrNotFound
	}
	if us.GroupID.Set && us.GroupID.Value.Valid {
		if !repo.db.ownsGroup(owner, us.GroupID.Value.String) {
			return student.Student{}, core.NewFieldError("group_id", "group_id does not reference an existing row")
		}
	}

	stu = us.Apply(stu)
	repo.db.students[id] = stu
	return stu, nil
}

// DeleteStudent detaches the student's payments like the Postgres foreign key does.
func (repo *studentRepository) DeleteStudent(ctx context.Context, owner core.OwnerID, id string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("DeleteStudent"); err != nil {
		return err
	}

	stu, ok := repo.db.students[id]
	if !ok || stu.OwnerID != owner {
		return nil
	}
	delete(repo.db.students, id)
	for pid, p := range repo.db.payments {
		if p.OwnerID == owner && p.StudentID.Valid && p.StudentID.String == id {
			p.StudentID = core.NullString("")
			repo.db.payments[pid] = p
		}
	}
	return nil
}

func (repo *studentRepository) ClearGroup(ctx context.Context, owner core.OwnerID, groupID string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("ClearGroup"); err != nil {
		return err
	}

	for id, stu := range repo.db.students {
		if stu.OwnerID == owner && stu.GroupID.Valid && stu.GroupID.String == groupID {
			stu.GroupID = core.NullString("")
			repo.db.students[id] = stu
		}
	}
	return nil
}

func (repo *studentRepository) SetGroup(ctx context.Context, owner core.OwnerID, groupID string, ids []string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("SetGroup"); err != nil {
		return err
	}

	if !repo.db.ownsGroup(owner, groupID) {
		return nil
	}
	for _, id := range ids {
		if stu, ok := repo.db.students[id]; ok && stu.OwnerID == owner {
			stu.GroupID = core.NullString(groupID)
			repo.db.students[id] = stu
		}
	}
	return nil
}
