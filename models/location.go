package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
)

type Location struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BuilderId int       `gorm:"index;not null;uniqueIndex:uniq_builder_location" json:"builder_id" binding:"required"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uniq_builder_location" json:"name" binding:"required"`
	Address   string    `gorm:"size:255" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLocation struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

func CreateLocation(ctx context.Context, builderId int, input *NewLocation) (*Location, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Builder](ctx, builderId); err != nil {
		return nil, errors.New("builder not found")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Location{}).
		Where("builder_id = ? AND name = ?", builderId, input.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate location name for this builder")
	}

	location := Location{
		BuilderId: builderId,
		Name:      input.Name,
		Address:   input.Address,
		IsActive:  input.IsActive,
	}
	if location.IsActive == nil {
		location.IsActive = utils.NewTrue()
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(&location).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryCreate(tx, location.ID, &location, "Location "+location.Name+" created."); err != nil {
		return nil, err
	}
	return &location, tx.Commit().Error
}

func GetLocation(ctx context.Context, id int) (*Location, error) {
	db := config.GetDB()
	var result Location

	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func GetLocations(ctx context.Context, builderId int, activeOnly bool) ([]*Location, error) {
	db := config.GetDB()
	var results []*Location

	dbCtx := db.WithContext(ctx).Model(&Location{}).Where("builder_id = ?", builderId)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func UpdateLocation(ctx context.Context, id int, input *NewLocation) (*Location, error) {
	db := config.GetDB()

	var existing Location
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Location{}).
		Where("builder_id = ? AND name = ? AND NOT id = ?", existing.BuilderId, input.Name, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate location name for this builder")
	}

	before := existing
	existing.Name = input.Name
	existing.Address = input.Address
	if input.IsActive != nil {
		existing.IsActive = input.IsActive
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, id, "locations", &before, &existing, "Location "+existing.Name+" updated."); err != nil {
		return nil, err
	}
	return &existing, tx.Commit().Error
}

func DeleteLocation(ctx context.Context, id int) (*Location, error) {
	db := config.GetDB()

	var result Location
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	var docketCount int64
	if err := db.WithContext(ctx).Model(&Docket{}).Where("location_id = ?", id).Count(&docketCount).Error; err != nil {
		return nil, err
	}
	if docketCount > 0 {
		return nil, errors.New("location has dockets and cannot be deleted")
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Delete(&result).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryDelete(tx, id, "locations", &result, "Location "+result.Name+" deleted."); err != nil {
		return nil, err
	}
	return &result, tx.Commit().Error
}
