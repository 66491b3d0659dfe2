package workflow

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/mail"
	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/pdf"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Submission dependencies are package-level so the server wires the real
// SMTP/maroto implementations once and tests swap in fakes.
var (
	mailer   mail.Mailer
	renderer pdf.Renderer = pdf.NewMarotoRenderer()
)

func SetMailer(m mail.Mailer) {
	mailer = m
}

func SetRenderer(r pdf.Renderer) {
	renderer = r
}

// BuildSubmission folds a week's aggregation rows into the frozen invoice
// record. Pure: the zero-hours guard and the freeze both live here.
func BuildSubmission(contractor *models.Contractor, window utils.WeekWindow,
	rows []*models.AggregationRow, now time.Time) (*models.WorkerInvoice, error) {

	totalHours := decimal.Zero
	for _, row := range rows {
		hours, _ := models.ComputeTotals(row, contractor.HourlyRate, nil)
		totalHours = totalHours.Add(hours)
	}
	if !totalHours.IsPositive() {
		return nil, errors.New("no billable hours recorded for this week")
	}

	return &models.WorkerInvoice{
		ContractorId: contractor.ID,
		WeekStart:    window.Start,
		WeekEnd:      window.End.AddDate(0, 0, -1),
		TotalHours:   totalHours,
		HourlyRate:   contractor.HourlyRate,
		TotalAmount:  totalHours.Mul(contractor.HourlyRate),
		Status:       models.InvoiceStatusSubmitted,
		SubmittedAt:  now,
	}, nil
}

func invoicePdfData(invoice *models.WorkerInvoice, contractor *models.Contractor,
	window utils.WeekWindow, rows []*models.AggregationRow) *pdf.InvoiceData {

	data := &pdf.InvoiceData{
		InvoiceId:      invoice.ID,
		ContractorName: contractor.Name,
		ContractorAbn:  contractor.Abn,
		WeekLabel:      window.Label(),
		WeekStart:      utils.MyDate(window.Start),
		WeekEnd:        utils.MyDate(invoice.WeekEnd),
		TotalHours:     invoice.TotalHours,
		HourlyRate:     invoice.HourlyRate,
		TotalAmount:    invoice.TotalAmount,
		SubmittedAt:    invoice.SubmittedAt.Format(time.RFC3339),
	}
	for _, row := range rows {
		hours, _ := models.ComputeTotals(row, invoice.HourlyRate, nil)
		data.Lines = append(data.Lines, pdf.InvoiceLine{
			BuilderName:  row.BuilderName,
			LocationName: row.LocationName,
			DailyHours:   row.DailyHours,
			Hours:        hours,
		})
	}
	return data
}

func notificationRecipients(contractor *models.Contractor) []string {
	var to []string
	if contractor.Email != nil && *contractor.Email != "" {
		to = append(to, *contractor.Email)
	}
	if extra := strings.TrimSpace(os.Getenv("INVOICE_NOTIFY_EMAIL")); extra != "" {
		to = append(to, extra)
	}
	return utils.UniqueSlice(to)
}

// RenderInvoicePdf regenerates the PDF for an existing invoice. Totals come
// from the frozen snapshot; the per-location lines are rebuilt from the
// week's entries.
func RenderInvoicePdf(ctx context.Context, invoice *models.WorkerInvoice) ([]byte, error) {
	if renderer == nil {
		return nil, errors.New("pdf renderer is not configured")
	}
	contractor, err := models.GetContractor(ctx, invoice.ContractorId)
	if err != nil {
		return nil, err
	}
	window := utils.WeekWindow{Start: invoice.WeekStart, End: invoice.WeekStart.AddDate(0, 0, 7)}
	rows, err := models.GetWeeklyRows(ctx, window, invoice.ContractorId)
	if err != nil {
		return nil, err
	}

	return renderer.Render(invoicePdfData(invoice, contractor, window, rows))
}

// SubmitWeeklyInvoice freezes the contractor's week into an invoice and
// notifies by email. The email is sent inside the DB transaction: if
// delivery fails the whole submission rolls back and the caller retries by
// resubmitting. The PDF is best-effort; a render failure only drops the
// attachment.
func SubmitWeeklyInvoice(ctx context.Context, contractorId int, window utils.WeekWindow) (*models.WorkerInvoice, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	contractor, err := models.GetContractor(ctx, contractorId)
	if err != nil {
		return nil, err
	}

	// Best-effort lock per contractor+week. Correctness does not depend on
	// it: the unique index on (contractor_id, week_start) is the real guard.
	if locker := config.GetRedisLock(); locker != nil {
		lockKey := "invoice:" + strconv.Itoa(contractorId) + ":" + utils.MyDate(window.Start)
		lock, lockErr := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
		if lockErr != nil {
			logger.WithFields(logrus.Fields{
				"field":         "SubmitWeeklyInvoice",
				"contractor_id": contractorId,
				"week_start":    utils.MyDate(window.Start),
			}).Warn("could not obtain redis lock; proceeding: " + lockErr.Error())
		} else {
			defer func() {
				if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil {
					logger.WithFields(logrus.Fields{
						"field":         "SubmitWeeklyInvoice",
						"contractor_id": contractorId,
					}).Warn("failed to release redis lock: " + releaseErr.Error())
				}
			}()
		}
	}

	rows, err := models.GetWeeklyRows(ctx, window, contractorId)
	if err != nil {
		return nil, err
	}

	invoice, err := BuildSubmission(contractor, window, rows, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(invoice).Error; err != nil {
		if models.IsDuplicateKeyError(err) {
			return nil, utils.ErrorDuplicateInvoice
		}
		return nil, err
	}
	if err := models.SaveHistoryCreate(tx, invoice.ID, invoice,
		"Invoice submitted for "+contractor.Name+", week "+window.Label()+"."); err != nil {
		return nil, err
	}

	if err := notifySubmission(invoice, contractor, window, rows); err != nil {
		return nil, err
	}

	return invoice, tx.Commit().Error
}

// notifySubmission renders the PDF and emails the submission. It runs before
// the transaction commits: an ErrorNotificationFailure return rolls the whole
// submission back. A render failure only drops the attachment.
func notifySubmission(invoice *models.WorkerInvoice, contractor *models.Contractor,
	window utils.WeekWindow, rows []*models.AggregationRow) error {

	logger := config.GetLogger()

	var attachment []byte
	if renderer != nil {
		rendered, err := renderer.Render(invoicePdfData(invoice, contractor, window, rows))
		if err != nil {
			config.LogError(logger, "submissionWorkflow.go", "notifySubmission", "render pdf", invoice.ID, err)
		} else {
			attachment = rendered
		}
	}

	to := notificationRecipients(contractor)
	if mailer == nil || len(to) == 0 {
		return utils.ErrorNotificationFailure
	}
	subject := "Invoice " + window.Label() + " submitted for " + contractor.Name
	body := "Invoice for week " + window.Label() + " (" + utils.MyDate(window.Start) + " to " +
		utils.MyDate(invoice.WeekEnd) + ")\n" +
		"Total hours: " + invoice.TotalHours.StringFixed(2) + "\n" +
		"Hourly rate: $" + invoice.HourlyRate.StringFixed(2) + "\n" +
		"Total amount: $" + invoice.TotalAmount.StringFixed(2) + "\n"
	filename := "invoice-" + strconv.Itoa(invoice.ID) + ".pdf"
	if err := mailer.Send(to, subject, body, filename, attachment); err != nil {
		config.LogError(logger, "submissionWorkflow.go", "notifySubmission", "send email", invoice.ID, err)
		return utils.ErrorNotificationFailure
	}
	return nil
}
