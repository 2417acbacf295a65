package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/tests"
)

func Test_paymentApi(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "own-1")
	stu := testutil.CreateStudent(t, app.svcs.StudentRepo, "own-1", "Sara")
	older := testutil.CreatePayment(t, app.svcs.PaymentRepo, "own-1", stu.ID, "", 100, testutil.Date(t, "2024-01-10"))

	req, rec := newAuthRequest(http.MethodPost, "/v1/payments", token,
		[]byte(`{"student_id": "`+stu.ID+`", "amount": 250.5, "method": "Card", "paid_at": "2024-02-01"}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, payment.MethodCard, created.Method)
	assert.Equal(t, "250.5", created.Amount.String())
	assert.Equal(t, "2024-02-01", created.PaidAt.String())

	tests := []httpTest{
		{name: "query", path: "/v1/payments", token: token, wantCode: http.StatusOK, wantData: marchallList(t, created, older)},
		{name: "query: from", path: "/v1/payments?from=2024-02-01", token: token, wantCode: http.StatusOK, wantData: marchallList(t, created)},
		{name: "query: to", path: "/v1/payments?to=2024-01-31", token: token, wantCode: http.StatusOK, wantData: marchallList(t, older)},
		{
			name: "create: zero amount", method: http.MethodPost, path: "/v1/payments", token: token,
			body: []byte(`{"amount": 0}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"amount": "amount must be greater than 0"}),
		},
		{
			name: "create: unknown student", method: http.MethodPost, path: "/v1/payments", token: token,
			body: []byte(`{"amount": 10, "student_id": "7f1c1c2e-7c55-4a55-9b4d-8f2f0b4c1a11"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "student_id does not reference an existing row"}),
		},
		{
			name: "retrieve: unknown", path: "/v1/payments/lol", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "payment not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	// PUT replaces every field: the omitted student and note are cleared
	req, rec = newAuthRequest(http.MethodPut, "/v1/payments/"+created.ID, token, []byte(`{"amount": 300, "paid_at": "2024-02-03"}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, created.ID, replaced.ID)
	assert.False(t, replaced.StudentID.Valid)
	assert.Equal(t, payment.MethodCash, replaced.Method)
	assert.Equal(t, "300", replaced.Amount.String())

	req, rec = newAuthRequest(http.MethodDelete, "/v1/payments/"+created.ID, token)
	app.serve(req, rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_expenseApi(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "own-1")
	rent := testutil.CreateExpense(t, app.svcs.ExpenseRepo, "own-1", "Room rent", 500, testutil.Date(t, "2024-03-01"))
	testutil.CreateExpense(t, app.svcs.ExpenseRepo, "own-2", "Room rent", 900, testutil.Date(t, "2024-03-01"))

	tests := []httpTest{
		{name: "query", path: "/v1/expenses", token: token, wantCode: http.StatusOK, wantData: marchallList(t, rent)},
		{name: "query: search", path: "/v1/expenses?search=RENT", token: token, wantCode: http.StatusOK, wantData: marchallList(t, rent)},
		{name: "query: search (unknown)", path: "/v1/expenses?search=lol", token: token, wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "create: blank description", method: http.MethodPost, path: "/v1/expenses", token: token,
			body: []byte(`{"description": " ", "amount": 5}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"description": "this field cannot be blank"}),
		},
	}
	runHTTPTests(t, app, tests)

	req, rec := newAuthRequest(http.MethodPut, "/v1/expenses/"+rent.ID, token, []byte(`{"description": "Markers", "amount": 20}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced expense.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	assert.Equal(t, "Markers", replaced.Description)
	assert.Equal(t, "20", replaced.Amount.String())
}
