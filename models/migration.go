package models

import (
	"bitbucket.org/fieldworks/dockets_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&User{},
		&Builder{},
		&Location{},
		&Contractor{},
		&Docket{},
		&TimeEntry{},
		&WorkerInvoice{},
		&InvoiceAuditNote{},
		&History{},
	)
}
