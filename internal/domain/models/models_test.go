package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantitiesCheck(t *testing.T) {
	cases := []struct {
		name    string
		q       Quantities
		wantErr bool
	}{
		{name: "empty", q: nil},
		{name: "known labels", q: Quantities{"10": 100, "26-32": 5}},
		{name: "unknown label", q: Quantities{"3": 1}, wantErr: true},
		{name: "negative", q: Quantities{"10": -1}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Check("size_quantities", SizeLabels)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "size_quantities", verr.Field)
		})
	}
}

func TestQuantitiesOrderedKeepsZeros(t *testing.T) {
	got := Quantities{"II": 3, "Extra": 7}.Ordered(QualityGrades)
	assert.Equal(t, []BucketAmount{
		{Label: "Extra", Kg: 7},
		{Label: "I", Kg: 0},
		{Label: "II", Kg: 3},
		{Label: "III", Kg: 0},
		{Label: "Industrial", Kg: 0},
	}, got)
}

func TestQuantitiesCloneIsIndependent(t *testing.T) {
	var nilQ Quantities
	assert.NotNil(t, nilQ.Clone())

	src := Quantities{"10": 1}
	dup := src.Clone()
	dup["10"] = 99
	assert.Equal(t, 1, src["10"])
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 10)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-10"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-10T08:15:00Z"`), &back))
	assert.True(t, back.Equal(d.Time))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())
	assert.Equal(t, "", empty.String())

	assert.Error(t, json.Unmarshal([]byte(`"10/03/2024"`), &back))
}

func TestParseDate(t *testing.T) {
	want := NewDate(2024, time.March, 10)
	for _, value := range []string{
		"2024-03-10",
		"2024-03-10T08:15:00Z",
		"2024-03-10T23:30:00+02:00",
		"2024-03-10T08:15:00.123456",
		"2024-03-10 08:15:00",
	} {
		got, err := ParseDate(value)
		require.NoError(t, err, value)
		assert.True(t, got.Equal(want.Time), value)
	}

	for _, value := range []string{"2024-03-10garbage", "2024-03-10T", "2024-3-10", "2024-03-1x", ""} {
		_, err := ParseDate(value)
		assert.Error(t, err, value)
	}
}

func TestReceiptNormalizeFillsDefaults(t *testing.T) {
	r := Receipt{
		SizeQuantities: Quantities{"10": 100, "12": 50},
		PricePerKg:     decimal.RequireFromString("0.80"),
	}
	r.Normalize()

	assert.NotNil(t, r.QualityQuantities)
	assert.NotNil(t, r.Certifications)
	assert.Equal(t, 150, r.TotalKg)
	assert.True(t, decimal.RequireFromString("120").Equal(r.TotalValue))
	assert.Equal(t, SchemaVersion, r.SchemaVersion)
}

func TestOrderValueFollowsDelivered(t *testing.T) {
	o := Order{
		OrderedSize:   Quantities{"10": 200},
		DeliveredSize: Quantities{"10": 150},
		PricePerKg:    decimal.RequireFromString("1.10"),
	}
	o.Normalize()

	assert.Equal(t, 200, o.TotalOrderedKg)
	assert.Equal(t, 150, o.TotalDeliveredKg)
	assert.Equal(t, 150, o.GoverningKg())
	assert.True(t, decimal.RequireFromString("165").Equal(o.TotalValue))
	assert.NotNil(t, o.DeliveredQuality)
}

func TestOrderUnmarshalLegacyBuckets(t *testing.T) {
	payload := `{"id":3,"order_date":"2024-03-02","customer_id":1,"variety":"Navel",
		"size_quantities":{"8":40},"quality_quantities":{"I":10},"price_per_kg":"0.5"}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(payload), &o))
	o.Normalize()

	assert.Equal(t, 3, o.ID)
	assert.Equal(t, Quantities{"8": 40}, o.OrderedSize)
	assert.Equal(t, Quantities{"I": 10}, o.OrderedQuality)
	assert.Equal(t, 50, o.TotalOrderedKg)
	assert.Equal(t, 0, o.TotalDeliveredKg)
	assert.Empty(t, o.DeliveredSize)
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleViewer, CapView, true},
		{RoleViewer, CapEdit, false},
		{RoleEditor, CapEdit, true},
		{RoleEditor, CapDelete, false},
		{RoleEditor, CapManageUsers, false},
		{RoleAdmin, CapDelete, true},
		{RoleAdmin, CapManageUsers, true},
		{Role("guest"), CapView, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.role.Can(tc.cap), "%s/%s", tc.role, tc.cap)
	}
}

func TestPrincipalAuthorize(t *testing.T) {
	p := Principal{Username: "eve", Role: RoleEditor}
	require.NoError(t, p.Authorize(CapEdit, "create receipt"))

	err := p.Authorize(CapDelete, "delete receipt")
	var aerr *AuthorizationError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, RoleEditor, aerr.Role)
	assert.Equal(t, "delete receipt", aerr.Action)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, NextID([]Producer{}))
	assert.Equal(t, 8, NextID([]Producer{{ID: 2}, {ID: 7}, {ID: 4}}))
}
