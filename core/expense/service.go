package expense

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
	ErrNotFound = fmt.Errorf("expense %w", core.ErrNotFound)
)

type (
	Repository interface {
		// QueryExpenses returns the owner's expenses, most recent SpentAt first.
		// QueryFilter.Search does a case-insensitive substring match on Expense.Description.
		QueryExpenses(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Expense, error)
		GetExpenseByID(ctx context.Context, owner core.OwnerID, id string) (Expense, error)
		CreateExpense(ctx context.Context, exp Expense) (Expense, error)
		UpdateExpense(ctx context.Context, owner core.OwnerID, id string, ue UpdateExpense) (Expense, error)
		DeleteExpense(ctx context.Context, owner core.OwnerID, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Search(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Expense, error) {
	if err := owner.Check(); err != nil {
		return nil, err
	}
	filter.Clean()
	expenses, err := svc.repo.QueryExpenses(ctx, owner, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying expenses")
	}
	return expenses, nil
}

func (svc *Service) QueryAll(ctx context.Context, owner core.OwnerID) ([]Expense, error) {
	return svc.Search(ctx, owner, QueryFilter{})
}

func (svc *Service) GetByID(ctx context.Context, owner core.OwnerID, id string) (Expense, error) {
	if err := owner.Check(); err != nil {
		return Expense{}, err
	}
	return svc.repo.GetExpenseByID(ctx, owner, id)
}

func (svc *Service) Create(ctx context.Context, owner core.OwnerID, ne NewExpense) (Expense, error) {
	if err := owner.Check(); err != nil {
		return Expense{}, err
	}
	if err := ne.Validate(svc.validate); err != nil {
		return Expense{}, err
	}

	exp := Expense{
		Description: ne.Description,
		Amount:      ne.Amount,
		SpentAt:     ne.SpentAt,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     owner,
	}
	exp, err := svc.repo.CreateExpense(ctx, exp)
	if err != nil {
		return Expense{}, errors.Wrap(err, "creating expense")
	}
	return exp, nil
}

// Update applies the supplied fields. An empty update returns the current row.
func (svc *Service) Update(ctx context.Context, owner core.OwnerID, id string, ue UpdateExpense) (Expense, error) {
	if err := owner.Check(); err != nil {
		return Expense{}, err
	}
	if ue.IsEmpty() {
		return svc.repo.GetExpenseByID(ctx, owner, id)
	}
	if err := ue.Validate(); err != nil {
		return Expense{}, err
	}
	return svc.repo.UpdateExpense(ctx, owner, id, ue)
}

// Replace overwrites every field of the expense.
func (svc *Service) Replace(ctx context.Context, owner core.OwnerID, id string, ne NewExpense) (Expense, error) {
	if err := owner.Check(); err != nil {
		return Expense{}, err
	}
	if err := ne.Validate(svc.validate); err != nil {
		return Expense{}, err
	}
	return svc.repo.UpdateExpense(ctx, owner, id, UpdateExpense{
		Description: &ne.Description,
		Amount:      &ne.Amount,
		SpentAt:     &ne.SpentAt,
	})
}

func (svc *Service) Delete(ctx context.Context, owner core.OwnerID, id string) error {
	if err := owner.Check(); err != nil {
		return err
	}
	return svc.repo.DeleteExpense(ctx, owner, id)
}
