package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_EmptyIsNil(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())
}

func TestErrors_FirstMessageWins(t *testing.T) {
	errs := Errors{}
	errs.Add("name", "Product name is required")
	errs.Add("name", "ignored")
	errs.Add("vendor_1_name", "Vendor %d has no name", 1)

	var ve *Error
	require.True(t, errors.As(errs.Err(), &ve))
	assert.Equal(t, "Product name is required", ve.Fields["name"])
	assert.Equal(t, "Vendor 1 has no name", ve.Fields["vendor_1_name"])
}

func TestError_MessageSortedByField(t *testing.T) {
	ve := &Error{Fields: map[string]string{"vendors": "b", "name": "a"}}
	assert.Equal(t, "a; b", ve.Error())
}

func TestPositiveAmount(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"0.125", true},
		{"0.0001", true},
		{"99999999.9999", true},
		{"0", false},
		{"-2", false},
		{"0.00001", false},
		{"0.004", true},
		{"1.23456", false},
		{"100000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PositiveAmount(decimal.RequireFromString(tt.in)))
		})
	}
}
