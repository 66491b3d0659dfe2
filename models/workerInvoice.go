package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkerInvoice is the frozen record of a contractor's submitted week.
// Draft is implicit: no row exists until submission, so the unique index on
// (contractor_id, week_start) is the real one-invoice-per-week guard.
type WorkerInvoice struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	ContractorId int                 `gorm:"not null;uniqueIndex:uniq_contractor_week" json:"contractor_id"`
	WeekStart    time.Time           `gorm:"type:date;not null;uniqueIndex:uniq_contractor_week" json:"week_start"`
	WeekEnd      time.Time           `gorm:"type:date;not null" json:"week_end"`
	TotalHours   decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"total_hours"`
	HourlyRate   decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"hourly_rate"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Status       InvoiceStatus       `gorm:"type:enum('Submitted','Paid');not null;default:Submitted" json:"status"`
	SubmittedAt  time.Time           `gorm:"not null" json:"submitted_at"`
	PaidAt       *time.Time          `json:"paid_at"`
	Notes        []*InvoiceAuditNote `gorm:"foreignKey:InvoiceId" json:"notes,omitempty"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceAuditNote is append-only. Undo-paid and admin edits must leave one.
type InvoiceAuditNote struct {
	ID        int       `gorm:"primary_key" json:"id"`
	InvoiceId int       `gorm:"index;not null" json:"invoice_id"`
	UserId    int       `gorm:"not null" json:"user_id"`
	UserName  string    `gorm:"size:100" json:"user_name"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ValidateInvoiceTransition is the pure state machine guard. Draft exists
// only as a virtual "from" state for submission; nothing ever returns to it.
func ValidateInvoiceTransition(from InvoiceStatus, to InvoiceStatus) error {
	switch {
	case from == InvoiceStatusDraft && to == InvoiceStatusSubmitted:
		return nil
	case from == InvoiceStatusSubmitted && to == InvoiceStatusPaid:
		return nil
	case from == InvoiceStatusPaid && to == InvoiceStatusSubmitted:
		return nil
	}
	return errors.New("invalid invoice transition from " + string(from) + " to " + string(to))
}

// IsDuplicateKeyError detects a MySQL unique violation on insert. The unique
// index on (contractor_id, week_start) makes a lost race surface here.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

func appendAuditNote(tx *gorm.DB, invoiceId int, note string) error {
	ctx := tx.Statement.Context
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, _ := utils.GetUserNameFromContext(ctx)
	return tx.Create(&InvoiceAuditNote{
		InvoiceId: invoiceId,
		UserId:    userId,
		UserName:  userName,
		Note:      note,
	}).Error
}

// lookupError maps a gorm lookup failure: a missing row becomes the
// not-found sentinel, anything else passes through. Collapsing a transient
// DB error into not-found here would make a frozen week render as live.
func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorRecordNotFound
	}
	return err
}

func FindInvoiceForWeek(ctx context.Context, contractorId int, weekStart time.Time) (*WorkerInvoice, error) {
	db := config.GetDB()
	var result WorkerInvoice

	err := db.WithContext(ctx).Preload("Notes").
		Where("contractor_id = ? AND week_start = ?", contractorId, weekStart).
		Take(&result).Error
	if err != nil {
		return nil, lookupError(err)
	}
	return &result, nil
}

func GetInvoice(ctx context.Context, id int, scope func(*gorm.DB) *gorm.DB) (*WorkerInvoice, error) {
	db := config.GetDB()
	var result WorkerInvoice

	err := db.WithContext(ctx).Scopes(scope).Preload("Notes").First(&result, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

type InvoiceQuery struct {
	ContractorId int
	Status       string
	WeekStart    *time.Time
	Limit        int
	Offset       int
}

// GetInvoices lists invoices under the caller's scope. Filter and paging
// state is explicit per call, never module-level.
func GetInvoices(ctx context.Context, q InvoiceQuery, scope func(*gorm.DB) *gorm.DB) ([]*WorkerInvoice, error) {
	db := config.GetDB()
	var results []*WorkerInvoice

	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	dbCtx := db.WithContext(ctx).Model(&WorkerInvoice{}).Scopes(scope)
	if q.ContractorId > 0 {
		dbCtx = dbCtx.Where("contractor_id = ?", q.ContractorId)
	}
	if q.Status != "" {
		status, err := ParseInvoiceStatus(q.Status)
		if err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if q.WeekStart != nil {
		dbCtx = dbCtx.Where("week_start = ?", q.WeekStart)
	}
	err := dbCtx.Preload("Notes").Order("week_start DESC, contractor_id").
		Limit(q.Limit).Offset(q.Offset).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MarkInvoicePaid moves Submitted to Paid. Admin only, enforced by the
// handler via RequireAdmin before calling.
func MarkInvoicePaid(ctx context.Context, id int, note string) (*WorkerInvoice, error) {
	db := config.GetDB()

	var invoice WorkerInvoice
	if err := db.WithContext(ctx).First(&invoice, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := ValidateInvoiceTransition(invoice.Status, InvoiceStatusPaid); err != nil {
		return nil, err
	}

	before := invoice
	now := time.Now().UTC()
	invoice.Status = InvoiceStatusPaid
	invoice.PaidAt = &now

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Save(&invoice).Error; err != nil {
		return nil, err
	}
	if note == "" {
		note = "Marked paid."
	}
	if err := appendAuditNote(tx, invoice.ID, note); err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, invoice.ID, "worker_invoices", &before, &invoice, "Invoice marked paid."); err != nil {
		return nil, err
	}
	return &invoice, tx.Commit().Error
}

// UndoInvoicePaid reverses a payment: Paid back to Submitted, never to
// Draft. The audit note is mandatory.
func UndoInvoicePaid(ctx context.Context, id int, note string) (*WorkerInvoice, error) {
	db := config.GetDB()

	if strings.TrimSpace(note) == "" {
		return nil, errors.New("an audit note explaining the reversal is required")
	}

	var invoice WorkerInvoice
	if err := db.WithContext(ctx).First(&invoice, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := ValidateInvoiceTransition(invoice.Status, InvoiceStatusSubmitted); err != nil {
		return nil, err
	}

	before := invoice
	invoice.Status = InvoiceStatusSubmitted
	invoice.PaidAt = nil

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Model(&WorkerInvoice{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": InvoiceStatusSubmitted, "paid_at": nil}).Error; err != nil {
		return nil, err
	}
	if err := appendAuditNote(tx, invoice.ID, note); err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, invoice.ID, "worker_invoices", &before, &invoice, "Invoice payment undone."); err != nil {
		return nil, err
	}
	return &invoice, tx.Commit().Error
}

type InvoiceEdit struct {
	TotalHours  *decimal.Decimal `json:"total_hours"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Note        string           `json:"note" binding:"required"`
}

// AdminEditInvoice updates the frozen snapshot directly. When hours or rate
// change and no explicit amount is supplied the amount is recomputed; an
// explicit amount always wins.
func AdminEditInvoice(ctx context.Context, id int, edit *InvoiceEdit) (*WorkerInvoice, error) {
	db := config.GetDB()

	if strings.TrimSpace(edit.Note) == "" {
		return nil, errors.New("an audit note is required")
	}
	if edit.TotalHours == nil && edit.HourlyRate == nil && edit.TotalAmount == nil {
		return nil, errors.New("nothing to edit")
	}

	var invoice WorkerInvoice
	if err := db.WithContext(ctx).First(&invoice, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	before := invoice
	if edit.TotalHours != nil {
		if !utils.IsHalfStep(*edit.TotalHours) {
			return nil, errors.New("total hours must be a non-negative multiple of 0.5")
		}
		invoice.TotalHours = *edit.TotalHours
	}
	if edit.HourlyRate != nil {
		if edit.HourlyRate.IsNegative() {
			return nil, errors.New("hourly rate cannot be negative")
		}
		invoice.HourlyRate = *edit.HourlyRate
	}
	if edit.TotalAmount != nil {
		invoice.TotalAmount = *edit.TotalAmount
	} else if edit.TotalHours != nil || edit.HourlyRate != nil {
		invoice.TotalAmount = invoice.TotalHours.Mul(invoice.HourlyRate)
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Save(&invoice).Error; err != nil {
		return nil, err
	}
	if err := appendAuditNote(tx, invoice.ID, edit.Note); err != nil {
		return nil, err
	}
	if err := SaveHistoryUpdate(tx, invoice.ID, "worker_invoices", &before, &invoice, "Invoice edited by admin."); err != nil {
		return nil, err
	}
	return &invoice, tx.Commit().Error
}
