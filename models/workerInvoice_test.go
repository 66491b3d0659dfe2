package models

import (
	"errors"
	"testing"

	"bitbucket.org/fieldworks/dockets_backend/utils"
	"gorm.io/gorm"
)

func TestValidateInvoiceTransition(t *testing.T) {
	cases := []struct {
		from, to InvoiceStatus
		ok       bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSubmitted, true},
		{InvoiceStatusSubmitted, InvoiceStatusPaid, true},
		{InvoiceStatusPaid, InvoiceStatusSubmitted, true},

		{InvoiceStatusDraft, InvoiceStatusPaid, false},
		{InvoiceStatusDraft, InvoiceStatusDraft, false},
		{InvoiceStatusSubmitted, InvoiceStatusDraft, false},
		{InvoiceStatusSubmitted, InvoiceStatusSubmitted, false},
		{InvoiceStatusPaid, InvoiceStatusPaid, false},
		{InvoiceStatusPaid, InvoiceStatusDraft, false},
	}

	for _, tc := range cases {
		err := ValidateInvoiceTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	if s, err := ParseInvoiceStatus("Paid"); err != nil || s != InvoiceStatusPaid {
		t.Errorf("Paid should parse, got %v %v", s, err)
	}
	if _, err := ParseInvoiceStatus("paid"); err == nil {
		t.Errorf("status parsing is case sensitive")
	}
	if _, err := ParseInvoiceStatus("Void"); err == nil {
		t.Errorf("unknown status should be rejected")
	}
}

func TestLookupError(t *testing.T) {
	if err := lookupError(gorm.ErrRecordNotFound); err != utils.ErrorRecordNotFound {
		t.Errorf("missing row should map to the not-found sentinel, got %v", err)
	}
	transient := errors.New("dial tcp 10.0.0.5:3306: connect: connection refused")
	if err := lookupError(transient); err != transient {
		t.Errorf("transient failures must pass through unchanged, got %v", err)
	}
	if err := lookupError(nil); err != nil {
		t.Errorf("nil should stay nil, got %v", err)
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	if IsDuplicateKeyError(nil) {
		t.Error("nil is not a duplicate key error")
	}
	if !IsDuplicateKeyError(gorm.ErrDuplicatedKey) {
		t.Error("gorm.ErrDuplicatedKey should be detected")
	}
	if !IsDuplicateKeyError(errors.New("Error 1062 (23000): Duplicate entry '3-2025-09-01' for key 'uniq_contractor_week'")) {
		t.Error("raw mysql duplicate entry message should be detected")
	}
	if IsDuplicateKeyError(errors.New("connection refused")) {
		t.Error("unrelated errors must not be treated as duplicates")
	}
}
