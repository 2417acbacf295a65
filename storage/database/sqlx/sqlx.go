package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/storage/database"
)

// Postgres error codes
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// foreign keys mapped to the input field that sets them
	foreignKeyFields = map[string]string{
		"students_group_fkey":   "group_id",
		"payments_student_fkey": "student_id",
	}
)

type repo struct {
	db *sqlx.DB
}

func (r repo) exec(ctx context.Context) sqlx.ExtContext {
	return database.Executor(ctx, r.db)
}

func (r repo) get(ctx context.Context, op string, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, r.exec(ctx), dest, query, args...); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (r repo) selekt(ctx context.Context, op string, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if err = sqlx.SelectContext(ctx, r.exec(ctx), dest, query, args...); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (r repo) run(ctx context.Context, op string, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = r.exec(ctx).ExecContext(ctx, query, args...); err != nil {
		return storeErr(op, err)
	}
	return nil
}

// storeErr maps a driver error to the core error taxonomy. sql.ErrNoRows passes through for trapNoRowsErr.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return core.NewStoreError(op+": conflicting concurrent write", err)
	}
	return core.NewStoreError(op, err)
}

// referenceErr turns a foreign key violation raised while writing the referencing row into an error on
// the input field that set it. The keys include owner_id, so a row of another owner does not resolve either.
// A violation raised by a delete on the referenced side stays a StoreError.
func referenceErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		if field, ok := foreignKeyFields[pqErr.Constraint]; ok {
			return core.NewValidationError(err, core.FieldError{Field: field, Error: field + " does not reference an existing row"})
		}
	}
	return err
}

func trapNoRowsErr(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}
