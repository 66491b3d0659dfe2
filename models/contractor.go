package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/shopspring/decimal"
)

type Contractor struct {
	ID         int             `gorm:"primary_key" json:"id"`
	Name       string          `gorm:"size:255;not null;unique" json:"name" binding:"required"`
	Email      *string         `gorm:"size:100" json:"email"`
	Mobile     string          `gorm:"size:20" json:"mobile"`
	Abn        string          `gorm:"size:20" json:"abn"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"hourly_rate"`
	IsActive   *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContractor struct {
	Name       string          `json:"name" binding:"required"`
	Email      string          `json:"email"`
	Mobile     string          `json:"mobile"`
	Abn        string          `json:"abn"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	IsActive   *bool           `json:"is_active"`
}

func (input NewContractor) validate(ctx context.Context, exceptId int) error {
	if err := utils.ValidateUnique[Contractor](ctx, "name", input.Name, exceptId); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Mobile != "" && !utils.IsValidMobile(input.Mobile) {
		return errors.New("invalid mobile number")
	}
	if input.HourlyRate.IsNegative() {
		return errors.New("hourly rate cannot be negative")
	}
	return nil
}

func CreateContractor(ctx context.Context, input *NewContractor) (*Contractor, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	contractor := Contractor{
		Name:       input.Name,
		Email:      utils.NilIfEmpty(strings.ToLower(input.Email)),
		Mobile:     input.Mobile,
		Abn:        input.Abn,
		HourlyRate: input.HourlyRate,
		IsActive:   input.IsActive,
	}
	if contractor.IsActive == nil {
		contractor.IsActive = utils.NewTrue()
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(&contractor).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryCreate(tx, contractor.ID, &contractor, "Contractor "+contractor.Name+" created."); err != nil {
		return nil, err
	}
	return &contractor, tx.Commit().Error
}

func GetContractor(ctx context.Context, id int) (*Contractor, error) {
	db := config.GetDB()
	var result Contractor

	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func GetContractors(ctx context.Context, search string, activeOnly bool, limit int, offset int) ([]*Contractor, error) {
	db := config.GetDB()
	var results []*Contractor

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	dbCtx := db.WithContext(ctx).Model(&Contractor{})
	if search != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+search+"%")
	}
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	err := dbCtx.Order("name").Limit(limit).Offset(offset).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateContractor saves the new details. A rate change does not touch
// existing invoices: submitted invoices keep their frozen rate, only
// future submissions pick up the new one.
func UpdateContractor(ctx context.Context, id int, input *NewContractor) (*Contractor, error) {
	db := config.GetDB()

	var existing Contractor
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	before := existing
	existing.Name = input.Name
	existing.Email = utils.NilIfEmpty(strings.ToLower(input.Email))
	existing.Mobile = input.Mobile
	existing.Abn = input.Abn
	existing.HourlyRate = input.HourlyRate
	if input.IsActive != nil {
		existing.IsActive = input.IsActive
	}

	description := "Contractor " + existing.Name + " updated."
	if !before.HourlyRate.Equal(existing.HourlyRate) {
		description = "Contractor " + existing.Name + " updated. Hourly rate changed from " +
			before.HourlyRate.StringFixed(2) + " to " + existing.HourlyRate.StringFixed(2) + "."
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, id, "contractors", &before, &existing, description); err != nil {
		return nil, err
	}
	return &existing, tx.Commit().Error
}

func DeleteContractor(ctx context.Context, id int) (*Contractor, error) {
	db := config.GetDB()

	var result Contractor
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	var entryCount int64
	if err := db.WithContext(ctx).Model(&TimeEntry{}).Where("contractor_id = ?", id).Count(&entryCount).Error; err != nil {
		return nil, err
	}
	if entryCount > 0 {
		return nil, errors.New("contractor has time entries and cannot be deleted")
	}
	var invoiceCount int64
	if err := db.WithContext(ctx).Model(&WorkerInvoice{}).Where("contractor_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return nil, err
	}
	if invoiceCount > 0 {
		return nil, errors.New("contractor has invoices and cannot be deleted")
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryDelete(tx, id, "contractors", &result, "Contractor "+result.Name+" deleted."); err != nil {
		return nil, err
	}
	return &result, tx.Commit().Error
}
