package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
)

type expenseRepository struct {
	db *DB
}

var _ expense.Repository = (*expenseRepository)(nil) // interface compliance check

func NewExpenseRepository(db *DB) expense.Repository {
	return &expenseRepository{db: db}
}

func (repo *expenseRepository) QueryExpenses(ctx context.Context, owner core.OwnerID, filter expense.QueryFilter) ([]expense.Expense, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("QueryExpenses"); err != nil {
		return nil, err
	}

	expenses := make([]expense.Expense, 0)
	for _, exp := range repo.db.expenses {
		if exp.OwnerID != owner {
			continue
		}
		if filter.Search != "" && !core.ContainsFold(exp.Description, filter.Search) {
			continue
		}
		if !filter.From.IsZero() && exp.SpentAt.Before(filter.From.Time) {
			continue
		}
		if !filter.To.IsZero() && exp.SpentAt.After(filter.To.Time) {
			continue
		}
		expenses = append(expenses, exp)
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].SpentAt.Equal(expenses[j].SpentAt.Time) {
			return expenses[i].SpentAt.After(expenses[j].SpentAt.Time)
		}
		return repo.db.seq[expenses[i].ID] > repo.db.seq[expenses[j].ID]
	})
	return expenses, nil
}

func (repo *expenseRepository) GetExpenseByID(ctx context.Context, owner core.OwnerID, id string) (expense.Expense, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetExpenseByID"); err != nil {
		return expense.Expense{}, err
	}

	if exp, ok := repo.db.expenses[id]; ok && exp.OwnerID == owner {
		return exp, nil
	}
	return expense.Expense{}, expense.ErrNotFound
}

func (repo *expenseRepository) CreateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("CreateExpense"); err != nil {
		return expense.Expense{}, err
	}

	exp.ID = repo.db.insert()
	repo.db.expenses[exp.ID] = exp
	return exp, nil
}

func (repo *expenseRepository) UpdateExpense(ctx context.Context, owner core.OwnerID, id string, ue expense.UpdateExpense) (expense.Expense, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("UpdateExpense"); err != nil {
		return expense.Expense{}, err
	}

	exp, ok := repo.db.expenses[id]
	if !ok || exp.OwnerID != owner {
		return expense.Expense{}, expense.ErrNotFound
	}
	exp = ue.Apply(exp)
	repo.db.expenses[id] = exp
	return exp, nil
}

func (repo *expenseRepository) DeleteExpense(ctx context.Context, owner core.OwnerID, id string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("DeleteExpense"); err != nil {
		return err
	}

	if exp, ok := repo.db.expenses[id]; ok && exp.OwnerID == owner {
		delete(repo.db.expenses, id)
	}
	return nil
}
