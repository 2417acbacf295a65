package sqlxrepos_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
	sqlxrepos "github.com/trezcool/daftar/storage/database/sqlx"
)

const paymentID = "9e4a0f3b-6c1d-4b8e-a2f5-7d3c9b1e4a33"

var paymentCols = []string{"id", "owner_id", "student_id", "group_id", "amount", "method", "paid_at", "note"}

func TestPaymentRepository(t *testing.T) {
	march5 := core.NewDate(2024, time.March, 5)
	fees := payment.Payment{
		ID:        paymentID,
		StudentID: core.NullString(studentID),
		GroupID:   core.NullString(""),
		Amount:    decimal.NewFromInt(100),
		Method:    payment.MethodCash,
		PaidAt:    march5,
		Note:      core.NullString("march fees"),
		OwnerID:   owner,
	}
	feesRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(paymentCols).
			AddRow(paymentID, string(owner), studentID, nil, "100", "cash", march5.Time, "march fees")
	}
	isNotFound := func(err error) bool { return errors.Is(err, payment.ErrNotFound) }
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		call    func(repo payment.Repository) (interface{}, error)
		want    interface{}
		wantErr func(err error) bool
	}{
		{
			name: "query",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE owner_id = $1 AND student_id = $2 AND paid_at >= $3 ORDER BY paid_at DESC, created_at DESC")).
					WithArgs(string(owner), studentID, march5).
					WillReturnRows(feesRow())
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.QueryPayments(context.Background(), owner, payment.QueryFilter{StudentID: studentID, From: march5})
			},
			want: []payment.Payment{fees},
		},
		{
			name: "query by group",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE owner_id = $1 AND group_id = $2 AND paid_at <= $3")).
					WithArgs(string(owner), groupID, march5).
					WillReturnRows(sqlmock.NewRows(paymentCols))
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.QueryPayments(context.Background(), owner, payment.QueryFilter{GroupID: groupID, To: march5})
			},
			want: []payment.Payment{},
		},
		{
			name: "query malformed student",
			mock: func(mock sqlmock.Sqlmock) {},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.QueryPayments(context.Background(), owner, payment.QueryFilter{StudentID: "sara"})
			},
			want: []payment.Payment{},
		},
		{
			name: "update",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET amount = $1, note = $2 WHERE id = $3 AND owner_id = $4 RETURNING")).
					WithArgs("100", "march fees", paymentID, string(owner)).
					WillReturnRows(feesRow())
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.UpdatePayment(context.Background(), owner, paymentID, payment.UpdatePayment{
					Amount: &amount, Note: core.SetString("march fees"),
				})
			},
			want: fees,
		},
		{
			name: "update clears the student",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET student_id = $1 WHERE id = $2 AND owner_id = $3")).
					WithArgs(nil, paymentID, string(owner)).
					WillReturnRows(feesRow())
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.UpdatePayment(context.Background(), owner, paymentID, payment.UpdatePayment{StudentID: core.ClearString()})
			},
			want: fees,
		},
		{
			name: "update missing or foreign",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE payments").WithArgs("100", paymentID, string(owner)).WillReturnError(sql.ErrNoRows)
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.UpdatePayment(context.Background(), owner, paymentID, payment.UpdatePayment{Amount: &amount})
			},
			wantErr: isNotFound,
		},
		{
			name: "update to an unknown student",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE payments").
					WithArgs(studentID, paymentID, string(owner)).
					WillReturnError(&pq.Error{Code: "23503", Constraint: "payments_student_fkey"})
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.UpdatePayment(context.Background(), owner, paymentID, payment.UpdatePayment{StudentID: core.SetString(studentID)})
			},
			wantErr: func(err error) bool {
				var vErr *core.ValidationError
				return errors.As(err, &vErr) && vErr.Fields[0].Field == "student_id"
			},
		},
		{
			name: "update malformed id",
			mock: func(mock sqlmock.Sqlmock) {},
			call: func(repo payment.Repository) (interface{}, error) {
				return repo.UpdatePayment(context.Background(), owner, "42", payment.UpdatePayment{Amount: &amount})
			},
			wantErr: isNotFound,
		},
		{
			name: "delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM payments WHERE id = $1 AND owner_id = $2")).
					WithArgs(paymentID, string(owner)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return nil, repo.DeletePayment(context.Background(), owner, paymentID)
			},
		},
		{
			name: "delete failure",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM payments").
					WithArgs(paymentID, string(owner)).
					WillReturnError(errors.New("connection reset"))
			},
			call: func(repo payment.Repository) (interface{}, error) {
				return nil, repo.DeletePayment(context.Background(), owner, paymentID)
			},
			wantErr: core.IsStoreError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setup(t)
			tt.mock(mock)
			repo := sqlxrepos.NewPaymentRepository(db)

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
