package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/guestcode"
)

var guestCodeColumns = []string{"id", "owner_id", "code", "active", "created_at", "updated_at", "expires_at"}

type guestCodeRow struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Code      string    `db:"code"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	ExpiresAt null.Time `db:"expires_at"`
}

func (row guestCodeRow) toGuestCode() guestcode.GuestCode {
	gc := guestcode.GuestCode{
		ID:        row.ID,
		Code:      row.Code,
		Active:    row.Active,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
		ExpiresAt: row.ExpiresAt,
		OwnerID:   core.OwnerID(row.OwnerID),
	}
	if gc.ExpiresAt.Valid {
		gc.ExpiresAt.Time = gc.ExpiresAt.Time.UTC()
	}
	return gc
}

type guestCodeRepository struct {
	repo
}

var _ guestcode.Repository = (*guestCodeRepository)(nil) // interface compliance check

func NewGuestCodeRepository(db *sqlx.DB) guestcode.Repository {
	return &guestCodeRepository{repo{db: db}}
}

func (r *guestCodeRepository) GetActiveCode(ctx context.Context, owner core.OwnerID) (guestcode.GuestCode, error) {
	q := psql.Select(guestCodeColumns...).
		From("guest_codes").
		Where(sq.Eq{"owner_id": string(owner), "active": true}).
		OrderBy("updated_at DESC").
		Limit(1)

	var row guestCodeRow
	if err := r.get(ctx, "getting active guest code", &row, q); err != nil {
		return guestcode.GuestCode{}, trapNoRowsErr(err, guestcode.ErrNotFound)
	}
	return row.toGuestCode(), nil
}

func (r *guestCodeRepository) DeactivateAll(ctx context.Context, owner core.OwnerID) error {
	q := psql.Update("guest_codes").
		Set("active", false).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"owner_id": string(owner), "active": true})
	return r.run(ctx, "deactivating guest codes", q)
}

func (r *guestCodeRepository) CreateCode(ctx context.Context, gc guestcode.GuestCode) (guestcode.GuestCode, error) {
	q := psql.Insert("guest_codes").
		Columns("owner_id", "code", "active", "created_at", "updated_at", "expires_at").
		Values(string(gc.OwnerID), gc.Code, gc.Active, gc.CreatedAt, gc.UpdatedAt, gc.ExpiresAt).
		Suffix("RETURNING " + strings.Join(guestCodeColumns, ", "))

	var row guestCodeRow
	if err := r.get(ctx, "inserting guest code", &row, q); err != nil {
		return guestcode.GuestCode{}, err
	}
	return row.toGuestCode(), nil
}

func (r *guestCodeRepository) FindActiveByCode(ctx context.Context, code string) (guestcode.GuestCode, error) {
	q := psql.Select(guestCodeColumns...).
		From("guest_codes").
		Where(sq.Eq{"code": code, "active": true}).
		OrderBy("updated_at DESC").
		Limit(1)

	var row guestCodeRow
	if err := r.get(ctx, "finding guest code", &row, q); err != nil {
		return guestcode.GuestCode{}, trapNoRowsErr(err, guestcode.ErrNotFound)
	}
	return row.toGuestCode(), nil
}
