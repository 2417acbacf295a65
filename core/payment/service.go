package payment

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/student"
)

var (
	// errors
	ErrNotFound = fmt.Errorf("payment %w", core.ErrNotFound)
)

type (
	Repository interface {
		// QueryPayments returns the owner's payments, most recent PaidAt first.
		// The From/To bounds are inclusive.
		QueryPayments(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Payment, error)
		GetPaymentByID(ctx context.Context, owner core.OwnerID, id string) (Payment, error)
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		UpdatePayment(ctx context.Context, owner core.OwnerID, id string, up UpdatePayment) (Payment, error)
		DeletePayment(ctx context.Context, owner core.OwnerID, id string) error
		// SumGroupPayments sums the amounts of the owner's payments whose GroupID is groupID.
		SumGroupPayments(ctx context.Context, owner core.OwnerID, groupID string) (decimal.Decimal, error)
	}

	// Students resolves the student a payment is made by.
	Students interface {
		GetStudentByID(ctx context.Context, owner core.OwnerID, id string) (student.Student, error)
	}

	Service struct {
		repo     Repository
		students Students
		validate *validator.Validate
	}
)

func NewService(repo Repository, students Students, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, validate: validate}
}

func (svc *Service) Search(ctx context.Context, owner core.OwnerID, filter QueryFilter) ([]Payment, error) {
	if err := owner.Check(); err != nil {
		return nil, err
	}
	filter.Clean()
	payments, err := svc.repo.QueryPayments(ctx, owner, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}

func (svc *Service) QueryAll(ctx context.Context, owner core.OwnerID) ([]Payment, error) {
	return svc.Search(ctx, owner, QueryFilter{})
}

func (svc *Service) GetByID(ctx context.Context, owner core.OwnerID, id string) (Payment, error) {
	if err := owner.Check(); err != nil {
		return Payment{}, err
	}
	return svc.repo.GetPaymentByID(ctx, owner, id)
}

func (svc *Service) Create(ctx context.Context, owner core.OwnerID, np NewPayment) (Payment, error) {
	if err := owner.Check(); err != nil {
		return Payment{}, err
	}
	if err := np.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	if err := svc.checkStudent(ctx, owner, np.StudentID); err != nil {
		return Payment{}, err
	}

	p := Payment{
		StudentID: core.NullString(np.StudentID),
		GroupID:   core.NullString(np.GroupID),
		Amount:    np.Amount,
		Method:    np.Method,
		PaidAt:    np.PaidAt,
		Note:      core.NullString(np.Note),
		OwnerID:   owner,
	}
	p, err := svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}
	return p, nil
}

// Update applies the supplied fields. An empty update returns the current row.
func (svc *Service) Update(ctx context.Context, owner core.OwnerID, id string, up UpdatePayment) (Payment, error) {
	if err := owner.Check(); err != nil {
		return Payment{}, err
	}
	if up.IsEmpty() {
		return svc.repo.GetPaymentByID(ctx, owner, id)
	}
	if err := up.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	if up.StudentID.Set {
		if err := svc.checkStudent(ctx, owner, up.StudentID.Value.String); err != nil {
			return Payment{}, err
		}
	}
	return svc.repo.UpdatePayment(ctx, owner, id, up)
}

// Replace overwrites every field of the payment.
func (svc *Service) Replace(ctx context.Context, owner core.OwnerID, id string, np NewPayment) (Payment, error) {
	if err := owner.Check(); err != nil {
		return Payment{}, err
	}
	if err := np.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	if err := svc.checkStudent(ctx, owner, np.StudentID); err != nil {
		return Payment{}, err
	}
	return svc.repo.UpdatePayment(ctx, owner, id, Replace(np))
}

func (svc *Service) Delete(ctx context.Context, owner core.OwnerID, id string) error {
	if err := owner.Check(); err != nil {
		return err
	}
	return svc.repo.DeletePayment(ctx, owner, id)
}

// SumGroup sums the owner's payments made directly against the group.
// Payments carrying only a student are not rolled up to the student's group.
func (svc *Service) SumGroup(ctx context.Context, owner core.OwnerID, groupID string) (decimal.Decimal, error) {
	if err := owner.Check(); err != nil {
		return decimal.Zero, err
	}
	total, err := svc.repo.SumGroupPayments(ctx, owner, groupID)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "summing group payments")
	}
	return total, nil
}

// checkStudent rejects a student id that is not one of the owner's students. An empty id is allowed.
func (svc *Service) checkStudent(ctx context.Context, owner core.OwnerID, studentID string) error {
	if studentID == "" {
		return nil
	}
	if _, err := svc.students.GetStudentByID(ctx, owner, studentID); err != nil {
		return core.ReferenceError("student_id", err)
	}
	return nil
}
