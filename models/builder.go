package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
)

type Builder struct {
	ID          int         `gorm:"primary_key" json:"id"`
	Name        string      `gorm:"size:255;not null;unique" json:"name" binding:"required"`
	ContactName string      `gorm:"size:100" json:"contact_name"`
	Email       string      `gorm:"size:100" json:"email"`
	Phone       string      `gorm:"size:20" json:"phone"`
	IsActive    *bool       `gorm:"not null;default:true" json:"is_active"`
	Locations   []*Location `gorm:"foreignKey:BuilderId" json:"locations,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBuilder struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	IsActive    *bool  `json:"is_active"`
}

func (input NewBuilder) validate(ctx context.Context, exceptId int) error {
	if err := utils.ValidateUnique[Builder](ctx, "name", input.Name, exceptId); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if input.Phone != "" && !utils.IsValidMobile(input.Phone) {
		return errors.New("invalid phone number")
	}
	return nil
}

func CreateBuilder(ctx context.Context, input *NewBuilder) (*Builder, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	builder := Builder{
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		IsActive:    input.IsActive,
	}
	if builder.IsActive == nil {
		builder.IsActive = utils.NewTrue()
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(&builder).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryCreate(tx, builder.ID, &builder, "Builder "+builder.Name+" created."); err != nil {
		return nil, err
	}
	return &builder, tx.Commit().Error
}

func GetBuilder(ctx context.Context, id int) (*Builder, error) {
	db := config.GetDB()
	var result Builder

	err := db.WithContext(ctx).Preload("Locations").First(&result, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

// GetBuilders lists builders. Search/paging state is threaded through as
// explicit parameters, never kept module-level.
func GetBuilders(ctx context.Context, search string, activeOnly bool, limit int, offset int) ([]*Builder, error) {
	db := config.GetDB()
	var results []*Builder

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	dbCtx := db.WithContext(ctx).Model(&Builder{})
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

func UpdateBuilder(ctx context.Context, id int, input *NewBuilder) (*Builder, error) {
	db := config.GetDB()

	var existing Builder
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	before := existing
	existing.Name = input.Name
	existing.ContactName = input.ContactName
	existing.Email = input.Email
	existing.Phone = input.Phone
	if input.IsActive != nil {
		existing.IsActive = input.IsActive
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, id, "builders", &before, &existing, "Builder "+existing.Name+" updated."); err != nil {
		return nil, err
	}
	return &existing, tx.Commit().Error
}

func DeleteBuilder(ctx context.Context, id int) (*Builder, error) {
	db := config.GetDB()

	var result Builder
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	var docketCount int64
	if err := db.WithContext(ctx).Model(&Docket{}).Where("builder_id = ?", id).Count(&docketCount).Error; err != nil {
		return nil, err
	}
	if docketCount > 0 {
		return nil, errors.New("builder has dockets and cannot be deleted")
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Where("builder_id = ?", id).Delete(&Location{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryDelete(tx, id, "builders", &result, "Builder "+result.Name+" deleted."); err != nil {
		return nil, err
	}
	return &result, tx.Commit().Error
}
