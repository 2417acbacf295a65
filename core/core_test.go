package core_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/daftar/core"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "date", in: "2024-03-05", want: "2024-03-05"},
		{name: "padded", in: " 2024-03-05 ", want: "2024-03-05"},
		{name: "rfc3339", in: "2024-03-05T23:10:00+01:00", want: "2024-03-05"},
		{name: "garbage", in: "lol", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type row struct {
		At core.Date `json:"at"`
	}

	data, err := json.Marshal(row{At: core.NewDate(2024, time.January, 31)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at": "2024-01-31"}`, string(data))

	data, err = json.Marshal(row{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at": null}`, string(data))

	var r row
	require.NoError(t, json.Unmarshal([]byte(`{"at": "2023-12-01"}`), &r))
	assert.Equal(t, "2023-12", r.At.MonthKey())

	assert.Error(t, json.Unmarshal([]byte(`{"at": "01/12/2023"}`), &r))
}

func TestOptString_UnmarshalJSON(t *testing.T) {
	type patch struct {
		Phone core.OptString `json:"phone"`
	}
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"phone": null}`, wantSet: true},
		{name: "blank", body: `{"phone": "  "}`, wantSet: true},
		{name: "value", body: `{"phone": " 0550 "}`, wantSet: true, wantValid: true, wantValue: "0550"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantSet, p.Phone.Set)
			assert.Equal(t, tt.wantValid, p.Phone.Value.Valid)
			assert.Equal(t, tt.wantValue, p.Phone.Value.String)
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ali%", core.ContainsPattern("ali"))
	assert.Equal(t, `%50\%\_off%`, core.ContainsPattern("50%_off"))
	assert.Equal(t, "%%", core.ContainsPattern(""))
}

func TestSortByName(t *testing.T) {
	names := []string{"يوسف", "بلال", "أحمد"}
	core.SortByName("ar", names, func(i int) string { return names[i] })
	assert.Equal(t, []string{"أحمد", "بلال", "يوسف"}, names)

	latin := []string{"b", "A", "c"}
	core.SortByName("not a locale", latin, func(i int) string { return latin[i] })
	assert.Equal(t, []string{"A", "b", "c"}, latin)
}

func TestContextOwnerResolver(t *testing.T) {
	var resolver core.ContextOwnerResolver

	_, err := resolver.ResolveOwner(context.Background())
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	_, err = resolver.ResolveOwner(core.WithOwner(context.Background(), "  "))
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	owner, err := resolver.ResolveOwner(core.WithOwner(context.Background(), "own-1"))
	require.NoError(t, err)
	assert.Equal(t, core.OwnerID("own-1"), owner)
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, core.NewStoreError("CreateStudent", nil))

	cause := errors.New("connection reset")
	err := errors.Wrap(core.NewStoreError("CreateStudent", cause), "creating student")
	assert.True(t, core.IsStoreError(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "creating student: store: CreateStudent: connection reset", err.Error())
	assert.False(t, core.IsValidationError(err))
}

func TestIsValidationError(t *testing.T) {
	err := errors.Wrap(core.NewFieldError("amount", "amount must be greater than 0"), "settling")
	assert.True(t, core.IsValidationError(err))

	validate, _ := core.NewValidator()
	type payload struct {
		Name string `json:"name" validate:"notblank"`
	}
	assert.True(t, core.IsValidationError(validate.Struct(payload{Name: "  "})))
	assert.NoError(t, validate.Struct(payload{Name: "ok"}))
}
