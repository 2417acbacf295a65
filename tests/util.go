package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/balance"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/core/report"
	"github.com/trezcool/daftar/core/student"
	dummydb "github.com/trezcool/daftar/storage/database/dummy"
)

// Services wires every domain service over one in-memory store.
type Services struct {
	DB       *dummydb.DB
	Validate *validator.Validate

	StudentRepo   student.Repository
	GroupRepo     group.Repository
	PaymentRepo   payment.Repository
	ExpenseRepo   expense.Repository
	GuestCodeRepo guestcode.Repository

	Students  *student.Service
	Groups    *group.Service
	Payments  *payment.Service
	Expenses  *expense.Service
	Balances  *balance.Service
	GuestCode *guestcode.Service
	Reports   *report.Service
}

func TestConfig() *core.Config {
	return &core.Config{
		Env:       "test",
		TestMode:  true,
		AppName:   "Daftar",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
		Database:  core.DatabaseConfig{Driver: core.DriverMemory},
		Search:    core.SearchConfig{PageSize: 50, Locale: "ar"},
		GuestCode: core.GuestCodeConfig{},
	}
}

func NewServices(conf *core.Config) *Services {
	db := dummydb.Open()
	validate, _ := core.NewValidator()

	s := &Services{
		DB:            db,
		Validate:      validate,
		StudentRepo:   dummydb.NewStudentRepository(db),
		GroupRepo:     dummydb.NewGroupRepository(db),
		PaymentRepo:   dummydb.NewPaymentRepository(db),
		ExpenseRepo:   dummydb.NewExpenseRepository(db),
		GuestCodeRepo: dummydb.NewGuestCodeRepository(db),
	}
	s.Students = student.NewService(s.StudentRepo, s.GroupRepo, validate, conf.Search)
	s.Groups = group.NewService(s.GroupRepo, s.StudentRepo, db, validate, conf.Search)
	s.Payments = payment.NewService(s.PaymentRepo, s.StudentRepo, validate)
	s.Expenses = expense.NewService(s.ExpenseRepo, validate)
	s.Balances = balance.NewService(s.Groups, s.Payments, validate)
	s.GuestCode = guestcode.NewService(s.GuestCodeRepo, db, conf.GuestCode.TTL)
	s.Reports = report.NewService(s.Students, s.Groups, s.Payments, s.Expenses)
	return s
}

func CreateStudent(t *testing.T, repo student.Repository, owner core.OwnerID, name string, groupID ...string) student.Student {
	stu := student.Student{
		FullName:  name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		OwnerID:   owner,
	}
	if len(groupID) > 0 && groupID[0] != "" {
		stu.GroupID = null.StringFrom(groupID[0])
	}
	stu, err := repo.CreateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateGroup(t *testing.T, repo group.Repository, owner core.OwnerID, name string, due int64) group.Group {
	grp := group.Group{
		Name:      name,
		DueTotal:  decimal.NewFromInt(due),
		CreatedAt: time.Now().UTC(),
		OwnerID:   owner,
	}
	grp, err := repo.CreateGroup(context.Background(), grp)
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

// CreatePayment inserts a cash payment. Empty ids are stored as null.
func CreatePayment(t *testing.T, repo payment.Repository, owner core.OwnerID, studentID, groupID string, amount int64, paidAt core.Date) payment.Payment {
	p := payment.Payment{
		StudentID: core.NullString(studentID),
		GroupID:   core.NullString(groupID),
		Amount:    decimal.NewFromInt(amount),
		Method:    payment.MethodCash,
		PaidAt:    paidAt,
		OwnerID:   owner,
	}
	p, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func CreateExpense(t *testing.T, repo expense.Repository, owner core.OwnerID, desc string, amount int64, spentAt core.Date) expense.Expense {
	exp := expense.Expense{
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		SpentAt:     spentAt,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     owner,
	}
	exp, err := repo.CreateExpense(context.Background(), exp)
	if err != nil {
		t.Fatalf("CreateExpense() failed: %v", err)
	}
	return exp
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("Date(%q) failed: %v", s, err)
	}
	return d
}
