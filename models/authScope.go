package models

import (
	"context"

	"bitbucket.org/fieldworks/dockets_backend/utils"
	"gorm.io/gorm"
)

// Role-based visibility is expressed as GORM scopes built once per request
// from the session user, so every list/read query applies the same filter.

// BuildDocketFilter: admin sees everything, a supervisor only their own
// dockets, a worker only dockets that contain an entry for their contractor.
func BuildDocketFilter(user *User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch user.Role {
		case UserRoleAdmin:
			return db
		case UserRoleSupervisor:
			return db.Where("supervisor_id = ?", user.ID)
		default:
			return db.Where("id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&TimeEntry{}).
					Select("docket_id").Where("contractor_id = ?", user.ContractorId))
		}
	}
}

// BuildInvoiceFilter: admin sees everything, a worker only their own
// contractor's invoices, a supervisor the invoices of contractors that
// appear on their dockets.
func BuildInvoiceFilter(user *User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch user.Role {
		case UserRoleAdmin:
			return db
		case UserRoleSupervisor:
			return db.Where("contractor_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&TimeEntry{}).
					Select("DISTINCT contractor_id").
					Where("docket_id IN (?)",
						db.Session(&gorm.Session{NewDB: true}).Model(&Docket{}).
							Select("id").Where("supervisor_id = ?", user.ID)))
		default:
			return db.Where("contractor_id = ?", user.ContractorId)
		}
	}
}

// RequireAdmin gates the admin-only mutations.
func RequireAdmin(ctx context.Context) error {
	role, ok := utils.GetUserRoleFromContext(ctx)
	if !ok || UserRole(role) != UserRoleAdmin {
		return utils.ErrorForbidden
	}
	return nil
}

// SubmitScopeCheck gates invoice submission: an admin may submit for any
// contractor, a worker only for their own. Supervisors enter dockets, they
// never submit, so they are rejected outright.
func SubmitScopeCheck(ctx context.Context, contractorId int) error {
	role, ok := utils.GetUserRoleFromContext(ctx)
	if !ok {
		return utils.ErrorForbidden
	}
	switch UserRole(role) {
	case UserRoleAdmin:
		return nil
	case UserRoleWorker:
		own, ok := utils.GetContractorIdFromContext(ctx)
		if !ok || own == 0 || own != contractorId {
			return utils.ErrorForbidden
		}
		return nil
	}
	return utils.ErrorForbidden
}

// ContractorScopeCheck rejects a worker acting on a contractor other than
// their own. Admin and supervisor pass through; reads only, submission goes
// through SubmitScopeCheck.
func ContractorScopeCheck(ctx context.Context, contractorId int) error {
	role, ok := utils.GetUserRoleFromContext(ctx)
	if !ok {
		return utils.ErrorForbidden
	}
	if UserRole(role) != UserRoleWorker {
		return nil
	}
	own, ok := utils.GetContractorIdFromContext(ctx)
	if !ok || own == 0 || own != contractorId {
		return utils.ErrorForbidden
	}
	return nil
}
