package utils

import (
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidMobile parses against the configured default region
// (DEFAULT_PHONE_REGION, "AU" when unset).
func IsValidMobile(mobile string) bool {
	region := strings.TrimSpace(os.Getenv("DEFAULT_PHONE_REGION"))
	if region == "" {
		region = "AU"
	}
	num, err := libphonenumber.Parse(mobile, region)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func NewTrue() *bool {
	b := true
	return &b
}

func DereferencePtr[T any](p *T, def ...T) T {
	if p != nil {
		return *p
	}
	if len(def) > 0 {
		return def[0]
	}
	var zero T
	return zero
}

func UniqueSlice[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var halfStep = decimal.NewFromFloat(0.5)

// IsHalfStep reports whether d is a non-negative multiple of 0.5.
// Docket hours are only ever booked in half-hour increments.
func IsHalfStep(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	return d.Mod(halfStep).IsZero()
}
