package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/utils"
)

var weeklyCsvHeader = []string{
	"contractor", "builder", "location",
	"mon", "tue", "wed", "thu", "fri", "sat",
	"tonnage_hours", "day_labour_hours", "sunday_hours",
	"total_hours", "hourly_rate", "amount",
}

// WeeklyCsv flattens a week's aggregation rows. All numbers are formatted at
// 2 decimal places; this is the only place the weekly report rounds.
func WeeklyCsv(rows []*models.AggregationRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(weeklyCsvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		hours, amount := models.ComputeTotals(row, row.HourlyRate, nil)
		record := []string{row.ContractorName, row.BuilderName, row.LocationName}
		for _, h := range row.DailyHours {
			record = append(record, h.StringFixed(2))
		}
		record = append(record,
			row.TonnageTotal.StringFixed(2),
			row.DayLabourTotal.StringFixed(2),
			row.SundayHours.StringFixed(2),
			hours.StringFixed(2),
			row.HourlyRate.StringFixed(2),
			amount.StringFixed(2),
		)
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var invoiceCsvHeader = []string{
	"invoice_id", "contractor_id", "week_start", "week_end",
	"status", "total_hours", "hourly_rate", "total_amount",
	"submitted_at", "paid_at",
}

// InvoicesCsv flattens invoices from their frozen snapshots. Live
// aggregation is never consulted here.
func InvoicesCsv(invoices []*models.WorkerInvoice) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(invoiceCsvHeader); err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = utils.MyDate(*inv.PaidAt)
		}
		record := []string{
			strconv.Itoa(inv.ID),
			strconv.Itoa(inv.ContractorId),
			utils.MyDate(inv.WeekStart),
			utils.MyDate(inv.WeekEnd),
			string(inv.Status),
			inv.TotalHours.StringFixed(2),
			inv.HourlyRate.StringFixed(2),
			inv.TotalAmount.StringFixed(2),
			utils.MyDate(inv.SubmittedAt),
			paidAt,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
