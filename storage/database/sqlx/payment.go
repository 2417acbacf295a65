package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
)

var paymentColumns = []string{"id", "owner_id", "student_id", "group_id", "amount", "method", "paid_at", "note"}

type paymentRow struct {
	ID        string          `db:"id"`
	OwnerID   string          `db:"owner_id"`
	StudentID null.String     `db:"student_id"`
	GroupID   null.String     `db:"group_id"`
	Amount    decimal.Decimal `db:"amount"`
	Method    string          `db:"method"`
	PaidAt    core.Date       `db:"paid_at"`
	Note      null.String     `db:"note"`
}

func (row paymentRow) toPayment() payment.Payment {
	return payment.Payment{
		ID:        row.ID,
		StudentID: row.StudentID,
		GroupID:   row.GroupID,
		Amount:    row.Amount,
		Method:    payment.Method(row.Method),
		PaidAt:    row.PaidAt,
		Note:      row.Note,
		OwnerID:   core.OwnerID(row.OwnerID),
	}
}

type paymentRepository struct {
	repo
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{repo{db: db}}
}

func (r *paymentRepository) QueryPayments(ctx context.Context, owner core.OwnerID, filter payment.QueryFilter) ([]payment.Payment, error) {
	q := psql.Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"owner_id": string(owner)}).
		OrderBy("paid_at DESC", "created_at DESC")
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []payment.Payment{}, nil
		}
		q = q.Where(sq.Eq{"student_id": filter.StudentID})
	}
	if filter.GroupID != "" {
		if !isUUID(filter.GroupID) {
			return []payment.Payment{}, nil
		}
		q = q.Where(sq.Eq{"group_id": filter.GroupID})
	}
	if !filter.From.IsZero() {
		q = q.Where(sq.GtOrEq{"paid_at": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(sq.LtOrEq{"paid_at": filter.To})
	}

	var rows []paymentRow
	if err := r.selekt(ctx, "querying payments", &rows, q); err != nil {
		return nil, err
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.toPayment())
	}
	return payments, nil
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, owner core.OwnerID, id string) (payment.Payment, error) {
	if !isUUID(id) {
		return payment.Payment{}, payment.ErrNotFound
	}
	q := psql.Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"owner_id": string(owner), "id": id})

	var row paymentRow
	if err := r.get(ctx, "getting payment", &row, q); err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound)
	}
	return row.toPayment(), nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	q := psql.Insert("payments").
		Columns("owner_id", "student_id", "group_id", "amount", "method", "paid_at", "note").
		Values(string(p.OwnerID), p.StudentID, p.GroupID, p.Amount, string(p.Method), p.PaidAt, p.Note).
		Suffix("RETURNING " + strings.Join(paymentColumns, ", "))

	var row paymentRow
	if err := r.get(ctx, "inserting payment", &row, q); err != nil {
		return payment.Payment{}, referenceErr(err)
	}
	return row.toPayment(), nil
}

func (r *paymentRepository) UpdatePayment(ctx context.Context, owner core.OwnerID, id string, up payment.UpdatePayment) (payment.Payment, error) {
	if !isUUID(id) {
		return payment.Payment{}, payment.ErrNotFound
	}
	set := make(map[string]interface{}, 6)
	if up.StudentID.Set {
		set["student_id"] = up.StudentID.Value
	}
	if up.GroupID.Set {
		set["group_id"] = up.GroupID.Value
	}
	if up.Amount != nil {
		set["amount"] = *up.Amount
	}
	if up.Method != nil {
		set["method"] = string(*up.Method)
	}
	if up.PaidAt != nil {
		set["paid_at"] = *up.PaidAt
	}
	if up.Note.Set {
		set["note"] = up.Note.Value
	}
	if len(set) == 0 {
		return r.GetPaymentByID(ctx, owner, id)
	}

	q := psql.Update("payments").
		SetMap(set).
		Where(sq.Eq{"owner_id": string(owner), "id": id}).
		Suffix("RETURNING " + strings.Join(paymentColumns, ", "))

	var row paymentRow
	if err := r.get(ctx, "updating payment", &row, q); err != nil {
		return payment.Payment{}, referenceErr(trapNoRowsErr(err, payment.ErrNotFound))
	}
	return row.toPayment(), nil
}

func (r *paymentRepository) DeletePayment(ctx context.Context, owner core.OwnerID, id string) error {
	if !isUUID(id) {
		return nil
	}
	q := psql.Delete("payments").Where(sq.Eq{"owner_id": string(owner), "id": id})
	return r.run(ctx, "deleting payment", q)
}

// SumGroupPayments reads the group_paid_totals view; a group without payments has no row there.
func (r *paymentRepository) SumGroupPayments(ctx context.Context, owner core.OwnerID, groupID string) (decimal.Decimal, error) {
	if !isUUID(groupID) {
		return decimal.Zero, nil
	}
	q := psql.Select("paid_total").
		From("group_paid_totals").
		Where(sq.Eq{"owner_id": string(owner), "group_id": groupID})

	var total decimal.Decimal
	if err := r.get(ctx, "summing group payments", &total, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return total, nil
}
