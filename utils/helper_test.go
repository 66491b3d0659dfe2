package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsHalfStep(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"0", true},
		{"0.5", true},
		{"8", true},
		{"7.5", true},
		{"0.25", false},
		{"3.1", false},
		{"-0.5", false},
		{"-4", false},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.value)
		if err != nil {
			t.Fatal(err)
		}
		if got := IsHalfStep(d); got != tc.ok {
			t.Errorf("IsHalfStep(%s) = %v, want %v", tc.value, got, tc.ok)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("worker@example.com") {
		t.Error("plain address should validate")
	}
	if IsValidEmail("not-an-email") || IsValidEmail("a@b") || IsValidEmail("") {
		t.Error("malformed addresses should fail")
	}
}
