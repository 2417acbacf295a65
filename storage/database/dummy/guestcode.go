package dummydb

import (
	"context"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/guestcode"
)

type guestCodeRepository struct {
	db *DB
}

var _ guestcode.Repository = (*guestCodeRepository)(nil) // interface compliance check

func NewGuestCodeRepository(db *DB) guestcode.Repository {
	return &guestCodeRepository{db: db}
}

// latest returns the active code matching `match` with the latest UpdatedAt.
func (repo *guestCodeRepository) latest(match func(gc guestcode.GuestCode) bool) (guestcode.GuestCode, bool) {
	var (
		found   guestcode.GuestCode
		foundOk bool
	)
	for _, gc := range repo.db.guestCodes {
		if !gc.Active || !match(gc) {
			continue
		}
		if !foundOk || gc.UpdatedAt.After(found.UpdatedAt) ||
			(gc.UpdatedAt.Equal(found.UpdatedAt) && repo.db.seq[gc.ID] > repo.db.seq[found.ID]) {
			found, foundOk = gc, true
		}
	}
	return found, foundOk
}

func (repo *guestCodeRepository) GetActiveCode(ctx context.Context, owner core.OwnerID) (guestcode.GuestCode, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetActiveCode"); err != nil {
		return guestcode.GuestCode{}, err
	}

	if gc, ok := repo.latest(func(gc guestcode.GuestCode) bool { return gc.OwnerID == owner }); ok {
		return gc, nil
	}
	return guestcode.GuestCode{}, guestcode.ErrNotFound
}

func (repo *guestCodeRepository) DeactivateAll(ctx context.Context, owner core.OwnerID) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("DeactivateAll"); err != nil {
		return err
	}

	now := core.Now().UTC()
	for id, gc := range repo.db.guestCodes {
		if gc.OwnerID == owner && gc.Active {
			gc.Active = false
			gc.UpdatedAt = now
			repo.db.guestCodes[id] = gc
		}
	}
	return nil
}

// CreateCode enforces one active code per owner like the Postgres partial unique index.
func (repo *guestCodeRepository) CreateCode(ctx context.Context, gc guestcode.GuestCode) (guestcode.GuestCode, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("CreateCode"); err != nil {
		return guestcode.GuestCode{}, err
	}
	if gc.Active {
		if _, ok := repo.latest(func(other guestcode.GuestCode) bool { return other.OwnerID == gc.OwnerID }); ok {
			return guestcode.GuestCode{}, core.NewStoreError("CreateCode", errActiveCodeExists)
		}
	}

	gc.ID = repo.db.insert()
	repo.db.guestCodes[gc.ID] = gc
	return gc, nil
}

func (repo *guestCodeRepository) FindActiveByCode(ctx context.Context, code string) (guestcode.GuestCode, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("FindActiveByCode"); err != nil {
		return guestcode.GuestCode{}, err
	}

	if gc, ok := repo.latest(func(gc guestcode.GuestCode) bool { return gc.Code == code }); ok {
		return gc, nil
	}
	return guestcode.GuestCode{}, guestcode.ErrNotFound
}
