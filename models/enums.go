package models

import "errors"

type UserRole string

const (
	UserRoleAdmin      UserRole = "A"
	UserRoleSupervisor UserRole = "S"
	UserRoleWorker     UserRole = "W"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleSupervisor, UserRoleWorker:
		return true
	}
	return false
}

func (r UserRole) DisplayName() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleSupervisor:
		return "Supervisor"
	case UserRoleWorker:
		return "Worker"
	}
	return string(r)
}

type InvoiceStatus string

const (
	// InvoiceStatusDraft is implicit: no invoice row exists until submission.
	// It only appears in transition checks, never in a persisted record.
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSubmitted InvoiceStatus = "Submitted"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch s {
	case "Draft":
		return InvoiceStatusDraft, nil
	case "Submitted":
		return InvoiceStatusSubmitted, nil
	case "Paid":
		return InvoiceStatusPaid, nil
	}
	return "", errors.New("invalid invoice status")
}
