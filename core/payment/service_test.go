package payment_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/tests"
)

const owner core.OwnerID = "own-1"

func TestService_Create(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	stu := testutil.CreateStudent(t, svcs.StudentRepo, owner, "Sara")
	march := testutil.Date(t, "2024-03-05")

	tests := []struct {
		name    string
		owner   core.OwnerID
		np      payment.NewPayment
		check   func(t *testing.T, p payment.Payment)
		wantErr func(err error) bool
	}{
		{
			name: "defaults", owner: owner, np: payment.NewPayment{Amount: decimal.NewFromInt(100)},
			check: func(t *testing.T, p payment.Payment) {
				assert.Equal(t, payment.MethodCash, p.Method)
				assert.Equal(t, core.Today(), p.PaidAt)
				assert.False(t, p.StudentID.Valid)
				assert.False(t, p.GroupID.Valid)
				assert.False(t, p.Note.Valid)
			},
		},
		{
			name:  "full",
			owner: owner,
			np: payment.NewPayment{
				StudentID: stu.ID, Amount: decimal.RequireFromString("99.5"), Method: " Card ", PaidAt: march, Note: "march fees",
			},
			check: func(t *testing.T, p payment.Payment) {
				assert.Equal(t, stu.ID, p.StudentID.String)
				assert.Equal(t, payment.MethodCard, p.Method)
				assert.Equal(t, march, p.PaidAt)
				assert.Equal(t, "march fees", p.Note.String)
				assert.True(t, p.Amount.Equal(decimal.RequireFromString("99.5")))
			},
		},
		{name: "zero amount", owner: owner, np: payment.NewPayment{}, wantErr: core.IsValidationError},
		{name: "negative amount", owner: owner, np: payment.NewPayment{Amount: decimal.NewFromInt(-5)}, wantErr: core.IsValidationError},
		{name: "bad method", owner: owner, np: payment.NewPayment{Amount: decimal.NewFromInt(5), Method: "cheque"}, wantErr: core.IsValidationError},
		{
			name: "unknown student", owner: owner,
			np:      payment.NewPayment{Amount: decimal.NewFromInt(5), StudentID: "7f1c1c2e-7c55-4a55-9b4d-8f2f0b4c1a11"},
			wantErr: core.IsValidationError,
		},
		{
			name: "no owner", np: payment.NewPayment{Amount: decimal.NewFromInt(5)},
			wantErr: func(err error) bool { return errors.Is(err, core.ErrUnauthorized) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svcs.Payments.Create(ctx, tt.owner, tt.np)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, p.OwnerID)
			tt.check(t, p)
		})
	}
}

func TestService_Search(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	grp := testutil.CreateGroup(t, svcs.GroupRepo, owner, "Physics", 1000)
	stu := testutil.CreateStudent(t, svcs.StudentRepo, owner, "Sara", grp.ID)

	feb := testutil.CreatePayment(t, svcs.PaymentRepo, owner, stu.ID, "", 100, testutil.Date(t, "2024-02-10"))
	mar1 := testutil.CreatePayment(t, svcs.PaymentRepo, owner, "", grp.ID, 200, testutil.Date(t, "2024-03-01"))
	mar2 := testutil.CreatePayment(t, svcs.PaymentRepo, owner, stu.ID, grp.ID, 300, testutil.Date(t, "2024-03-01"))
	testutil.CreatePayment(t, svcs.PaymentRepo, "own-2", "", "", 999, testutil.Date(t, "2024-03-01"))

	tests := []struct {
		name   string
		filter payment.QueryFilter
		want   []payment.Payment
	}{
		{name: "all, latest first", want: []payment.Payment{mar2, mar1, feb}},
		{name: "by student", filter: payment.QueryFilter{StudentID: stu.ID}, want: []payment.Payment{mar2, feb}},
		{name: "by group", filter: payment.QueryFilter{GroupID: " " + grp.ID + " "}, want: []payment.Payment{mar2, mar1}},
		{
			name:   "inclusive range",
			filter: payment.QueryFilter{From: testutil.Date(t, "2024-02-10"), To: testutil.Date(t, "2024-02-29")},
			want:   []payment.Payment{feb},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svcs.Payments.Search(ctx, owner, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_SumGroup(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	grp := testutil.CreateGroup(t, svcs.GroupRepo, owner, "Physics", 1000)
	stu := testutil.CreateStudent(t, svcs.StudentRepo, owner, "Sara", grp.ID)
	day := testutil.Date(t, "2024-03-01")

	testutil.CreatePayment(t, svcs.PaymentRepo, owner, "", grp.ID, 200, day)
	testutil.CreatePayment(t, svcs.PaymentRepo, owner, stu.ID, grp.ID, 50, day)
	testutil.CreatePayment(t, svcs.PaymentRepo, owner, stu.ID, "", 400, day)
	testutil.CreatePayment(t, svcs.PaymentRepo, "own-2", "", grp.ID, 1000, day)

	total, err := svcs.Payments.SumGroup(ctx, owner, grp.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(250)), "got %s", total)

	total, err = svcs.Payments.SumGroup(ctx, owner, "no-such-group")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestService_Update(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	stu := testutil.CreateStudent(t, svcs.StudentRepo, owner, "Sara")
	p, err := svcs.Payments.Create(ctx, owner, payment.NewPayment{
		StudentID: stu.ID, Amount: decimal.NewFromInt(100), Note: "first",
	})
	require.NoError(t, err)

	got, err := svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{})
	require.NoError(t, err)
	assert.Equal(t, p, got)

	amount := decimal.NewFromInt(120)
	got, err = svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{Amount: &amount, Note: core.ClearString()})
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(amount))
	assert.False(t, got.Note.Valid)
	assert.Equal(t, stu.ID, got.StudentID.String)

	zero := decimal.Zero
	_, err = svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{Amount: &zero})
	assert.True(t, core.IsValidationError(err))

	method := payment.Method("cheque")
	_, err = svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{Method: &method})
	assert.True(t, core.IsValidationError(err))

	_, err = svcs.Payments.Update(ctx, "own-2", p.ID, payment.UpdatePayment{Amount: &amount})
	assert.True(t, errors.Is(err, payment.ErrNotFound))

	// Replace drops what the new payload omits
	got, err = svcs.Payments.Replace(ctx, owner, p.ID, payment.NewPayment{Amount: decimal.NewFromInt(80), Method: "transfer"})
	require.NoError(t, err)
	assert.False(t, got.StudentID.Valid)
	assert.Equal(t, payment.MethodTransfer, got.Method)
	assert.Equal(t, p.ID, got.ID)
}

func TestService_foreignStudent(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	mine := testutil.CreateStudent(t, svcs.StudentRepo, owner, "Sara")
	theirs := testutil.CreateStudent(t, svcs.StudentRepo, "own-2", "Ali")
	p := testutil.CreatePayment(t, svcs.PaymentRepo, owner, mine.ID, "", 100, testutil.Date(t, "2024-03-01"))
	amount := decimal.NewFromInt(10)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "create",
			call: func() error {
				_, err := svcs.Payments.Create(ctx, owner, payment.NewPayment{StudentID: theirs.ID, Amount: amount})
				return err
			},
		},
		{
			name: "update",
			call: func() error {
				_, err := svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{StudentID: core.SetString(theirs.ID)})
				return err
			},
		},
		{
			name: "replace",
			call: func() error {
				_, err := svcs.Payments.Replace(ctx, owner, p.ID, payment.NewPayment{StudentID: theirs.ID, Amount: amount})
				return err
			},
		},
		{
			name: "store",
			call: func() error {
				_, err := svcs.PaymentRepo.CreatePayment(ctx, payment.Payment{
					StudentID: core.NullString(theirs.ID), Amount: amount, Method: payment.MethodCash, OwnerID: owner,
				})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "unexpected error: %v", err)
			assert.Equal(t, "student_id", vErr.Fields[0].Field)
		})
	}

	got, err := svcs.Payments.GetByID(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestService_Update_noteLimit(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	p := testutil.CreatePayment(t, svcs.PaymentRepo, owner, "", "", 100, testutil.Date(t, "2024-03-01"))

	_, err := svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{Note: core.SetString(strings.Repeat("n", 501))})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr), "unexpected error: %v", err)
	assert.Equal(t, "note", vErr.Fields[0].Field)

	got, err := svcs.Payments.Update(ctx, owner, p.ID, payment.UpdatePayment{Note: core.SetString(strings.Repeat("n", 500))})
	require.NoError(t, err)
	assert.Len(t, got.Note.String, 500)
}

func TestService_Delete(t *testing.T) {
	svcs := testutil.NewServices(testutil.TestConfig())
	ctx := context.Background()
	p := testutil.CreatePayment(t, svcs.PaymentRepo, owner, "", "", 100, testutil.Date(t, "2024-03-01"))

	require.NoError(t, svcs.Payments.Delete(ctx, "own-2", p.ID))
	_, err := svcs.Payments.GetByID(ctx, owner, p.ID)
	require.NoError(t, err, "a foreign owner cannot delete the payment")

	require.NoError(t, svcs.Payments.Delete(ctx, owner, p.ID))
	require.NoError(t, svcs.Payments.Delete(ctx, owner, p.ID))
	_, err = svcs.Payments.GetByID(ctx, owner, p.ID)
	assert.True(t, errors.Is(err, payment.ErrNotFound))
}
