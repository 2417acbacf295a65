package sqlxrepos

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
)

var expenseColumns = []string{"id", "owner_id", "description", "amount", "spent_at", "created_at"}

type expenseRow struct {
	ID          string          `db:"id"`
	OwnerID     string          `db:"owner_id"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	SpentAt     core.Date       `db:"spent_at"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (row expenseRow) toExpense() expense.Expense {
	return expense.Expense{
		ID:          row.ID,
		Description: row.Description,
		Amount:      row.Amount,
		SpentAt:     row.SpentAt,
		CreatedAt:   row.CreatedAt.UTC(),
		OwnerID:     core.OwnerID(row.OwnerID),
	}
}

type expenseRepository struct {
	repo
}

var _ expense.Repository = (*expenseRepository)(nil) // interface compliance check

func NewExpenseRepository(db *sqlx.DB) expense.Repository {
	return &expenseRepository{repo{db: db}}
}

func (r *expenseRepository) QueryExpenses(ctx context.Context, owner core.OwnerID, filter expense.QueryFilter) ([]expense.Expense, error) {
	q := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"owner_id": string(owner)}).
		OrderBy("spent_at DESC", "created_at DESC")
	if filter.Search != "" {
		q = q.Where(sq.ILike{"description": core.ContainsPattern(filter.Search)})
	}
	if !filter.From.IsZero() {
		q = q.Where(sq.GtOrEq{"spent_at": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(sq.LtOrEq{"spent_at": filter.To})
	}

	var rows []expenseRow
	if err := r.selekt(ctx, "querying expenses", &rows, q); err != nil {
		return nil, err
	}
	expenses := make([]expense.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, row.toExpense())
	}
	return expenses, nil
}

func (r *expenseRepository) GetExpenseByID(ctx context.Context, owner core.OwnerID, id string) (expense.Expense, error) {
	if !isUUID(id) {
		return expense.Expense{}, expense.ErrNotFound
	}
	q := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"owner_id": string(owner), "id": id})

	var row expenseRow
	if err := r.get(ctx, "getting expense", &row, q); err != nil {
		return expense.Expense{}, trapNoRowsErr(err, expense.ErrNotFound)
	}
	return row.toExpense(), nil
}

func (r *expenseRepository) CreateExpense(ctx context.Context, exp expense.Expense) (expense.Expense, error) {
	q := psql.Insert("expenses").
		Columns("owner_id", "description", "amount", "spent_at", "created_at").
		Values(string(exp.OwnerID), exp.Description, exp.Amount, exp.SpentAt, exp.CreatedAt).
		Suffix("RETURNING " + strings.Join(expenseColumns, ", "))

	var row expenseRow
	if err := r.get(ctx, "inserting expense", &row, q); err != nil {
		return expense.Expense{}, err
	}
	return row.toExpense(), nil
}

func (r *expenseRepository) UpdateExpense(ctx context.Context, owner core.OwnerID, id string, ue expense.UpdateExpense) (expense.Expense, error) {
	if !isUUID(id) {
		return expense.Expense{}, expense.ErrNotFound
	}
	set := make(map[string]interface{}, 3)
	if ue.Description != nil {
		set["description"] = *ue.Description
	}
	if ue.Amount != nil {
		set["amount"] = *ue.Amount
	}
	if ue.SpentAt != nil {
		set["spent_at"] = *ue.SpentAt
	}
	if len(set) == 0 {
		return r.GetExpenseByID(ctx, owner, id)
	}

	q := psql.Update("expenses").
		SetMap(set).
		Where(sq.Eq{"owner_id": string(owner), "id": id}).
		Suffix("RETURNING " + strings.Join(expenseColumns, ", "))

	var row expenseRow
	if err := r.get(ctx, "updating expense", &row, q); err != nil {
		return expense.Expense{}, trapNoRowsErr(err, expense.ErrNotFound)
	}
	return row.toExpense(), nil
}

func (r *expenseRepository) DeleteExpense(ctx context.Context, owner core.OwnerID, id string) error {
	if !isUUID(id) {
		return nil
	}
	q := psql.Delete("expenses").Where(sq.Eq{"owner_id": string(owner), "id": id})
	return r.run(ctx, "deleting expense", q)
}
