package reports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestWeeklyCsv_RoundTrip(t *testing.T) {
	rows := []*models.AggregationRow{
		{
			ContractorName: "Aaron Smith",
			BuilderName:    "Acme Homes",
			LocationName:   "North, Site", // comma must survive quoting
			DailyHours:     [6]decimal.Decimal{d("4"), d("0"), d("6"), d("0"), d("0"), d("0")},
			TonnageTotal:   d("4"),
			DayLabourTotal: d("6"),
			SundayHours:    d("1.5"),
			HourlyRate:     d("50"),
		},
	}

	out, err := WeeklyCsv(rows)
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if len(records[0]) != len(weeklyCsvHeader) {
		t.Fatalf("header width = %d, want %d", len(records[0]), len(weeklyCsvHeader))
	}

	row := records[1]
	if row[2] != "North, Site" {
		t.Errorf("location = %q, comma not preserved", row[2])
	}
	if row[3] != "4.00" || row[5] != "6.00" {
		t.Errorf("day buckets = %q / %q, want 4.00 / 6.00", row[3], row[5])
	}
	if row[12] != "10.00" {
		t.Errorf("total hours = %q, want 10.00", row[12])
	}
	if row[14] != "500.00" {
		t.Errorf("amount = %q, want 500.00", row[14])
	}
	if row[11] != "1.50" {
		t.Errorf("sunday hours = %q, want 1.50", row[11])
	}
}

func TestInvoicesCsv_UsesFrozenSnapshot(t *testing.T) {
	invoices := []*models.WorkerInvoice{
		{
			ID:           7,
			ContractorId: 3,
			Status:       models.InvoiceStatusPaid,
			TotalHours:   d("25"),
			HourlyRate:   d("48.5"),
			TotalAmount:  d("1212.5"),
		},
	}

	out, err := InvoicesCsv(invoices)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	row := records[1]
	if row[4] != "Paid" {
		t.Errorf("status = %q", row[4])
	}
	if row[5] != "25.00" || row[6] != "48.50" || row[7] != "1212.50" {
		t.Errorf("frozen values not formatted at 2dp: %v", row[5:8])
	}
}
