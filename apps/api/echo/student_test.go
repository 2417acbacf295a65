package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core/student"
	"github.com/trezcool/daftar/tests"
)

func decodeStudent(t *testing.T, body []byte) student.Student {
	var stu student.Student
	require.NoError(t, json.Unmarshal(body, &stu))
	return stu
}

func Test_studentApi_auth(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{name: "no token", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/students", token: "lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "blank owner", path: "/v1/students", token: getToken(t, app.conf, " "), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "owner not authenticated"}),
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_studentApi_crud(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "own-1")
	otherToken := getToken(t, app.conf, "own-2")

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, []byte(`{"full_name": "  Amina  ", "phone": "0550"}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	amina := decodeStudent(t, rec.Body.Bytes())
	assert.Equal(t, "Amina", amina.FullName)
	assert.Equal(t, "0550", amina.Phone.String)
	assert.True(t, amina.Active)
	assert.EqualValues(t, "own-1", amina.OwnerID)

	tests := []httpTest{
		{
			name: "create: blank name", method: http.MethodPost, path: "/v1/students", token: token,
			body: []byte(`{"full_name": "   "}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"full_name": "this field cannot be blank"}),
		},
		{name: "retrieve", path: "/v1/students/" + amina.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, amina)},
		{
			name: "retrieve: other owner", path: "/v1/students/" + amina.ID, token: otherToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{name: "query", path: "/v1/students", token: token, wantCode: http.StatusOK, wantData: marchallList(t, amina)},
		{name: "query: other owner", path: "/v1/students", token: otherToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "query: search", path: "/v1/students?search=min", token: token, wantCode: http.StatusOK, wantData: marchallList(t, amina)},
		{name: "query: search (unknown)", path: "/v1/students?search=lol", token: token, wantCode: http.StatusOK, wantData: marchallList(t)},
		{
			name: "update: empty", method: http.MethodPatch, path: "/v1/students/" + amina.ID, token: token,
			body: []byte(`{}`), wantCode: http.StatusOK, wantData: marchallObj(t, amina),
		},
		{
			name: "update: other owner", method: http.MethodPatch, path: "/v1/students/" + amina.ID, token: otherToken,
			body: []byte(`{"full_name": "Stolen"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	// partial update: clear the phone, keep the name
	req, rec = newAuthRequest(http.MethodPatch, "/v1/students/"+amina.ID, token, []byte(`{"phone": null, "active": false}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeStudent(t, rec.Body.Bytes())
	assert.Equal(t, "Amina", updated.FullName)
	assert.False(t, updated.Phone.Valid)
	assert.False(t, updated.Active)

	// delete from another owner is a no-op
	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+amina.ID, otherToken)
	app.serve(req, rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+amina.ID, token)
	app.serve(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/students/"+amina.ID, token)
	app.serve(req, rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+amina.ID, token)
	app.serve(req, rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_studentApi_ensure(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, "own-1")
	existing := testutil.CreateStudent(t, app.svcs.StudentRepo, "own-1", "Yacine")

	req, rec := newAuthRequest(http.MethodPost, "/v1/students/ensure", token, []byte(`{"full_name": " Yacine "}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, existing.ID, decodeStudent(t, rec.Body.Bytes()).ID)

	req, rec = newAuthRequest(http.MethodPost, "/v1/students/ensure", token, []byte(`{"full_name": "Nour", "phone": "0661"}`))
	app.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	nour := decodeStudent(t, rec.Body.Bytes())
	assert.NotEqual(t, existing.ID, nour.ID)
	assert.Equal(t, "0661", nour.Phone.String)

	req, rec = newAuthRequest(http.MethodPost, "/v1/students/ensure", token, []byte(`{"full_name": ""}`))
	app.serve(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
