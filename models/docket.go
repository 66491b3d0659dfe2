package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Docket is one day's work report for one builder/location, entered by a
// supervisor. Its time entries carry denormalized copies of builderId,
// locationId and workDate so weekly aggregation never needs a join back.
type Docket struct {
	ID           int          `gorm:"primary_key" json:"id"`
	BuilderId    int          `gorm:"index;not null" json:"builder_id" binding:"required"`
	LocationId   int          `gorm:"index;not null" json:"location_id" binding:"required"`
	DocketDate   time.Time    `gorm:"type:date;not null;index" json:"docket_date" binding:"required"`
	SupervisorId int          `gorm:"index;not null" json:"supervisor_id"`
	Notes        string       `gorm:"type:text" json:"notes"`
	Entries      []*TimeEntry `gorm:"foreignKey:DocketId" json:"entries"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type TimeEntry struct {
	ID             int             `gorm:"primary_key" json:"id"`
	DocketId       int             `gorm:"index;not null" json:"docket_id"`
	ContractorId   int             `gorm:"index;not null" json:"contractor_id" binding:"required"`
	BuilderId      int             `gorm:"index;not null" json:"builder_id"`
	LocationId     int             `gorm:"index;not null" json:"location_id"`
	WorkDate       time.Time       `gorm:"type:date;not null;index" json:"work_date"`
	TonnageHours   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tonnage_hours"`
	DayLabourHours decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"day_labour_hours"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewDocket struct {
	BuilderId  int            `json:"builder_id" binding:"required"`
	LocationId int            `json:"location_id" binding:"required"`
	DocketDate string         `json:"docket_date" binding:"required"`
	Notes      string         `json:"notes"`
	Entries    []NewTimeEntry `json:"entries" binding:"required"`
}

func (input NewDocket) parseDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", input.DocketDate)
	if err != nil {
		return time.Time{}, errors.New("docket_date must be YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}

type NewTimeEntry struct {
	ContractorId   int             `json:"contractor_id" binding:"required" validate:"required"`
	TonnageHours   decimal.Decimal `json:"tonnage_hours" validate:"halfstep"`
	DayLabourHours decimal.Decimal `json:"day_labour_hours" validate:"halfstep"`
}

func (input NewDocket) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Builder](ctx, input.BuilderId); err != nil {
		return errors.New("builder not found")
	}
	if err := utils.ValidateResourceId[Location](ctx, input.LocationId); err != nil {
		return errors.New("location not found")
	}
	// location must belong to the builder
	count, err := utils.ResourceCountWhere[Location](ctx, "id = ? AND builder_id = ?", input.LocationId, input.BuilderId)
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("location does not belong to builder")
	}
	if len(input.Entries) == 0 {
		return errors.New("docket needs at least one time entry")
	}
	seen := map[int]bool{}
	for _, e := range input.Entries {
		if err := utils.ValidateInput(e); err != nil {
			return err
		}
		if !utils.IsHalfStep(e.TonnageHours) || !utils.IsHalfStep(e.DayLabourHours) {
			return errors.New("hours must be non-negative multiples of 0.5")
		}
		if seen[e.ContractorId] {
			return errors.New("duplicate contractor in docket entries")
		}
		seen[e.ContractorId] = true
		if err := utils.ValidateResourceId[Contractor](ctx, e.ContractorId); err != nil {
			return errors.New("contractor not found")
		}
	}
	return nil
}

func (input NewDocket) buildEntries(docket *Docket) []*TimeEntry {
	entries := make([]*TimeEntry, 0, len(input.Entries))
	for _, e := range input.Entries {
		entries = append(entries, &TimeEntry{
			DocketId:       docket.ID,
			ContractorId:   e.ContractorId,
			BuilderId:      docket.BuilderId,
			LocationId:     docket.LocationId,
			WorkDate:       docket.DocketDate,
			TonnageHours:   e.TonnageHours,
			DayLabourHours: e.DayLabourHours,
		})
	}
	return entries
}

func CreateDocket(ctx context.Context, input *NewDocket) (*Docket, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	supervisorId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || supervisorId == 0 {
		return nil, errors.New("user id is required")
	}
	docketDate, err := input.parseDate()
	if err != nil {
		return nil, err
	}

	docket := Docket{
		BuilderId:    input.BuilderId,
		LocationId:   input.LocationId,
		DocketDate:   docketDate,
		SupervisorId: supervisorId,
		Notes:        input.Notes,
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(&docket).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryCreate(tx, docket.ID, &docket, "Docket created."); err != nil {
		return nil, err
	}
	docket.Entries = input.buildEntries(&docket)
	if err := tx.Create(&docket.Entries).Error; err != nil {
		return nil, err
	}
	return &docket, tx.Commit().Error
}

func GetDocket(ctx context.Context, id int, scope func(*gorm.DB) *gorm.DB) (*Docket, error) {
	db := config.GetDB()
	var result Docket

	err := db.WithContext(ctx).Scopes(scope).Preload("Entries").First(&result, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

type DocketQuery struct {
	BuilderId  int
	LocationId int
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// GetDockets lists dockets visible under the caller's authorization scope.
// All filter state arrives as explicit parameters.
func GetDockets(ctx context.Context, q DocketQuery, scope func(*gorm.DB) *gorm.DB) ([]*Docket, error) {
	db := config.GetDB()
	var results []*Docket

	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	dbCtx := db.WithContext(ctx).Model(&Docket{}).Scopes(scope)
	if q.BuilderId > 0 {
		dbCtx = dbCtx.Where("builder_id = ?", q.BuilderId)
	}
	if q.LocationId > 0 {
		dbCtx = dbCtx.Where("location_id = ?", q.LocationId)
	}
	if q.From != nil {
		dbCtx = dbCtx.Where("docket_date >= ?", q.From)
	}
	if q.To != nil {
		dbCtx = dbCtx.Where("docket_date < ?", q.To)
	}
	err := dbCtx.Preload("Entries").Order("docket_date DESC, id DESC").
		Limit(q.Limit).Offset(q.Offset).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateDocket replaces the docket's entries wholesale. Entry edits never
// touch a submitted invoice: those display from their frozen snapshot.
func UpdateDocket(ctx context.Context, id int, input *NewDocket, scope func(*gorm.DB) *gorm.DB) (*Docket, error) {
	db := config.GetDB()

	var existing Docket
	if err := db.WithContext(ctx).Scopes(scope).Preload("Entries").First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	docketDate, err := input.parseDate()
	if err != nil {
		return nil, err
	}

	before := existing
	existing.BuilderId = input.BuilderId
	existing.LocationId = input.LocationId
	existing.DocketDate = docketDate
	existing.Notes = input.Notes

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Where("docket_id = ?", id).Delete(&TimeEntry{}).Error; err != nil {
		return nil, err
	}
	existing.Entries = input.buildEntries(&existing)
	if err := tx.Create(&existing.Entries).Error; err != nil {
		return nil, err
	}
	if err := tx.Omit("Entries").Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, id, "dockets", &before, &existing, "Docket updated."); err != nil {
		return nil, err
	}
	return &existing, tx.Commit().Error
}

func DeleteDocket(ctx context.Context, id int, scope func(*gorm.DB) *gorm.DB) (*Docket, error) {
	db := config.GetDB()

	var result Docket
	if err := db.WithContext(ctx).Scopes(scope).Preload("Entries").First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Where("docket_id = ?", id).Delete(&TimeEntry{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&Docket{}, id).Error; err != nil {
		return nil, err
	}
	if err := SaveHistoryDelete(tx, id, "dockets", &result, "Docket deleted."); err != nil {
		return nil, err
	}
	return &result, tx.Commit().Error
}

// GetWeekEntries loads the raw time entries inside a week window, optionally
// restricted to one contractor. Fed straight into AggregateEntries.
func GetWeekEntries(ctx context.Context, window utils.WeekWindow, contractorId int) ([]TimeEntry, error) {
	db := config.GetDB()
	var results []TimeEntry

	dbCtx := db.WithContext(ctx).Model(&TimeEntry{}).
		Where("work_date >= ? AND work_date < ?", window.Start, window.End)
	if contractorId > 0 {
		dbCtx = dbCtx.Where("contractor_id = ?", contractorId)
	}
	if err := dbCtx.Order("work_date").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
