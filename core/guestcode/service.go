package guestcode

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
)

const maxCodeLen = 64

var (
	// errors
	ErrNotFound = fmt.Errorf("guest code %w", core.ErrNotFound)
)

type (
	Repository interface {
		// GetActiveCode returns the owner's active code with the latest UpdatedAt.
		GetActiveCode(ctx context.Context, owner core.OwnerID) (GuestCode, error)
		DeactivateAll(ctx context.Context, owner core.OwnerID) error
		CreateCode(ctx context.Context, gc GuestCode) (GuestCode, error)
		// FindActiveByCode looks the code up across every owner.
		FindActiveByCode(ctx context.Context, code string) (GuestCode, error)
	}

	Service struct {
		repo Repository
		tx   core.Transactor
		ttl  time.Duration
	}
)

// NewService returns a guest code Service. Generated codes expire after ttl, or never if ttl is 0.
func NewService(repo Repository, tx core.Transactor, ttl time.Duration) *Service {
	return &Service{repo: repo, tx: tx, ttl: ttl}
}

// FetchActive returns the owner's active code, or nil if there is none.
func (svc *Service) FetchActive(ctx context.Context, owner core.OwnerID) (*GuestCode, error) {
	if err := owner.Check(); err != nil {
		return nil, err
	}
	gc, err := svc.repo.GetActiveCode(ctx, owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting active guest code")
	}
	return &gc, nil
}

// Generate makes `raw` the owner's only active code. Deactivating the previous codes and
// inserting the new one happen in one unit of work.
func (svc *Service) Generate(ctx context.Context, owner core.OwnerID, raw string) (GuestCode, error) {
	if err := owner.Check(); err != nil {
		return GuestCode{}, err
	}
	code := Normalize(raw)
	if code == "" {
		return GuestCode{}, core.NewFieldError("code", "this field cannot be blank")
	}
	if len(code) > maxCodeLen {
		return GuestCode{}, core.NewFieldError("code", fmt.Sprintf("code must be a maximum of %d characters in length", maxCodeLen))
	}

	now := core.Now().UTC()
	gc := GuestCode{
		Code:      code,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   owner,
	}
	if svc.ttl > 0 {
		gc.ExpiresAt = null.TimeFrom(now.Add(svc.ttl))
	}

	err := svc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := svc.repo.DeactivateAll(ctx, owner); err != nil {
			return errors.Wrap(err, "deactivating guest codes")
		}
		var err error
		gc, err = svc.repo.CreateCode(ctx, gc)
		return errors.Wrap(err, "creating guest code")
	})
	if err != nil {
		return GuestCode{}, err
	}
	return gc, nil
}

// DeactivateAll revokes every active code of the owner.
func (svc *Service) DeactivateAll(ctx context.Context, owner core.OwnerID) error {
	if err := owner.Check(); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeactivateAll(ctx, owner), "deactivating guest codes")
}

// Verify reports whether code is an active, unexpired code of any owner.
func (svc *Service) Verify(ctx context.Context, code string) (bool, error) {
	if _, err := svc.Lookup(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Lookup returns the active, unexpired record for code. Like Verify it is not scoped to an owner.
func (svc *Service) Lookup(ctx context.Context, code string) (GuestCode, error) {
	code = Normalize(code)
	if code == "" {
		return GuestCode{}, ErrNotFound
	}
	gc, err := svc.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return GuestCode{}, err
		}
		return GuestCode{}, errors.Wrap(err, "finding guest code")
	}
	if gc.Expired(core.Now()) {
		return GuestCode{}, ErrNotFound
	}
	return gc, nil
}
