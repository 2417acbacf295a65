package sqlxrepos_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
	sqlxrepos "github.com/trezcool/daftar/storage/database/sqlx"
)

const expenseID = "3b2d8c61-5a0e-4f7e-8d4c-2e9a7b1f0c22"

var expenseCols = []string{"id", "owner_id", "description", "amount", "spent_at", "created_at"}

func TestExpenseRepository(t *testing.T) {
	created := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	march1 := core.NewDate(2024, time.March, 1)
	march31 := core.NewDate(2024, time.March, 31)
	rent := expense.Expense{
		ID:          expenseID,
		Description: "Rent",
		Amount:      decimal.NewFromInt(300),
		SpentAt:     march1,
		CreatedAt:   created,
		OwnerID:     owner,
	}
	rentRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(expenseCols).AddRow(expenseID, string(owner), "Rent", "300", march1.Time, created)
	}
	isNotFound := func(err error) bool { return errors.Is(err, expense.ErrNotFound) }
	desc := "Rent"
	amount := decimal.NewFromInt(300)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		call    func(repo expense.Repository) (interface{}, error)
		want    interface{}
		wantErr func(err error) bool
	}{
		{
			name: "query",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM expenses WHERE owner_id = $1 AND description ILIKE $2 AND spent_at >= $3 AND spent_at <= $4 ORDER BY spent_at DESC, created_at DESC")).
					WithArgs(string(owner), "%ren%", march1, march31).
					WillReturnRows(rentRow())
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.QueryExpenses(context.Background(), owner, expense.QueryFilter{Search: "ren", From: march1, To: march31})
			},
			want: []expense.Expense{rent},
		},
		{
			name: "query failure",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM expenses").WithArgs(string(owner)).WillReturnError(errors.New("connection reset"))
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.QueryExpenses(context.Background(), owner, expense.QueryFilter{})
			},
			wantErr: core.IsStoreError,
		},
		{
			name: "get",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM expenses WHERE id = $1 AND owner_id = $2")).
					WithArgs(expenseID, string(owner)).
					WillReturnRows(rentRow())
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.GetExpenseByID(context.Background(), owner, expenseID)
			},
			want: rent,
		},
		{
			name: "get missing or foreign",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM expenses").WithArgs(expenseID, string(owner)).WillReturnError(sql.ErrNoRows)
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.GetExpenseByID(context.Background(), owner, expenseID)
			},
			wantErr: isNotFound,
		},
		{
			name: "get malformed id",
			mock: func(mock sqlmock.Sqlmock) {},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.GetExpenseByID(context.Background(), owner, "rent")
			},
			wantErr: isNotFound,
		},
		{
			name: "create",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO expenses (owner_id,description,amount,spent_at,created_at) VALUES ($1,$2,$3,$4,$5) RETURNING")).
					WithArgs(string(owner), "Rent", "300", march1, created).
					WillReturnRows(rentRow())
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.CreateExpense(context.Background(), expense.Expense{
					Description: "Rent", Amount: amount, SpentAt: march1, CreatedAt: created, OwnerID: owner,
				})
			},
			want: rent,
		},
		{
			name: "update",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE expenses SET amount = $1, description = $2 WHERE id = $3 AND owner_id = $4 RETURNING")).
					WithArgs("300", "Rent", expenseID, string(owner)).
					WillReturnRows(rentRow())
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.UpdateExpense(context.Background(), owner, expenseID, expense.UpdateExpense{Description: &desc, Amount: &amount})
			},
			want: rent,
		},
		{
			name: "update missing or foreign",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE expenses").WithArgs(march1, expenseID, string(owner)).WillReturnError(sql.ErrNoRows)
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return repo.UpdateExpense(context.Background(), owner, expenseID, expense.UpdateExpense{SpentAt: &march1})
			},
			wantErr: isNotFound,
		},
		{
			name: "delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expenses WHERE id = $1 AND owner_id = $2")).
					WithArgs(expenseID, string(owner)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			call: func(repo expense.Repository) (interface{}, error) {
				return nil, repo.DeleteExpense(context.Background(), owner, expenseID)
			},
		},
		{
			name: "delete malformed id",
			mock: func(mock sqlmock.Sqlmock) {},
			call: func(repo expense.Repository) (interface{}, error) {
				return nil, repo.DeleteExpense(context.Background(), owner, "rent")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setup(t)
			tt.mock(mock)
			repo := sqlxrepos.NewExpenseRepository(db)

			got, err := tt.call(repo)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
			} else {
				require.NoError(t, err)
				if tt.want != nil {
					assert.Equal(t, tt.want, got)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
