package dummydb

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, owner core.OwnerID, filter payment.QueryFilter) ([]payment.Payment, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("QueryPayments"); err != nil {
		return nil, err
	}

	payments := make([]payment.Payment, 0)
	for _, p := range repo.db.payments {
		if p.OwnerID != owner {
			continue
		}
		if filter.StudentID != "" && p.StudentID.String != filter.StudentID {
			continue
		}
		if filter.GroupID != "" && p.GroupID.String != filter.GroupID {
			continue
		}
		if !filter.From.IsZero() && p.PaidAt.Before(filter.From.Time) {
			continue
		}
		if !filter.To.IsZero() && p.PaidAt.After(filter.To.Time) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaidAt.Equal(payments[j].PaidAt.Time) {
			return payments[i].PaidAt.After(payments[j].PaidAt.Time)
		}
		return repo.db.seq[payments[i].ID] > repo.db.seq[payments[j].ID]
	})
	return payments, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, owner core.OwnerID, id string) (payment.Payment, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("GetPaymentByID"); err != nil {
		return payment.Payment{}, err
	}

	if p, ok := repo.db.payments[id]; ok && p.OwnerID == owner {
		return p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("CreatePayment"); err != nil {
		return payment.Payment{}, err
	}
	if p.StudentID.Valid {
		if !repo.db.ownsStudent(p.OwnerID, p.StudentID.String) {
			return payment.Payment{}, core.NewFieldError("student_id", "student_id does not reference an existing row")
		}
	}

	p.ID = repo.db.insert()
	repo.db.payments[p.ID] = p
	return p, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, owner core.OwnerID, id string, up payment.UpdatePayment) (payment.Payment, error) {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("UpdatePayment"); err != nil {
		return payment.Payment{}, err
	}

	p, ok := repo.db.payments[id]
	if !ok || p.OwnerID != owner {
		return payment.Payment{}, payment.ErrNotFound
	}
	if up.StudentID.Set && up.StudentID.Value.Valid {
		if !repo.db.ownsStudent(owner, up.StudentID.Value.String) {
			return payment.Payment{}, core.NewFieldError("student_id", "student_id does not reference an existing row")
		}
	}
	p = up.Apply(p)
	repo.db.payments[id] = p
	return p, nil
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, owner core.OwnerID, id string) error {
	defer repo.db.lock(ctx)()
	if err := repo.db.fault("DeletePayment"); err != nil {
		return err
	}

	if p, ok := repo.db.payments[id]; ok && p.OwnerID == owner {
		delete(repo.db.payments, id)
	}
	return nil
}

func (repo *paymentRepository) SumGroupPayments(ctx context.Context, owner core.OwnerID, groupID string) (decimal.Decimal, error) {
	defer repo.db.rlock(ctx)()
	if err := repo.db.fault("SumGroupPayments"); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range repo.db.payments {
		if p.OwnerID == owner && p.GroupID.Valid && p.GroupID.String == groupID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
