package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(date string) time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func entry(contractorId, builderId, locationId int, date string, tonnage, dayLabour string) TimeEntry {
	return TimeEntry{
		ContractorId:   contractorId,
		BuilderId:      builderId,
		LocationId:     locationId,
		WorkDate:       day(date),
		TonnageHours:   d(tonnage),
		DayLabourHours: d(dayLabour),
	}
}

func testLookups() (map[int]*Contractor, map[int]*Builder, map[int]*Location) {
	contractors := map[int]*Contractor{
		1: {ID: 1, Name: "Aaron Smith", HourlyRate: d("50")},
		2: {ID: 2, Name: "Zed Jones", HourlyRate: d("62.5")},
	}
	builders := map[int]*Builder{
		10: {ID: 10, Name: "Acme Homes"},
		11: {ID: 11, Name: "BuildCo"},
	}
	locations := map[int]*Location{
		100: {ID: 100, BuilderId: 10, Name: "North Site"},
		101: {ID: 101, BuilderId: 10, Name: "South Site"},
		102: {ID: 102, BuilderId: 11, Name: "Depot"},
	}
	return contractors, builders, locations
}

// Week of 2025-09-01 (Monday) .. 2025-09-07 (Sunday).
func TestAggregateEntries_Grouping(t *testing.T) {
	contractors, builders, locations := testLookups()

	entries := []TimeEntry{
		entry(1, 10, 100, "2025-09-01", "4", "0"),
		entry(1, 10, 100, "2025-09-03", "0", "6"),
		entry(1, 10, 101, "2025-09-02", "2", "0"),
		entry(2, 11, 102, "2025-09-01", "8", "0"),
	}

	rows := AggregateEntries(entries, contractors, builders, locations)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.ContractorName != "Aaron Smith" || first.LocationName != "North Site" {
		t.Fatalf("unexpected first row: %s / %s", first.ContractorName, first.LocationName)
	}
	if !first.DailyHours[0].Equal(d("4")) {
		t.Errorf("Monday bucket = %s, want 4", first.DailyHours[0])
	}
	if !first.DailyHours[2].Equal(d("6")) {
		t.Errorf("Wednesday bucket = %s, want 6", first.DailyHours[2])
	}
	if !first.TonnageTotal.Equal(d("4")) || !first.DayLabourTotal.Equal(d("6")) {
		t.Errorf("totals = %s/%s, want 4/6", first.TonnageTotal, first.DayLabourTotal)
	}
}

// Worked example: Monday tonnage 4h plus Wednesday day labour 6h at $50/h
// must bill exactly 10 hours and $500.00.
func TestComputeTotals_WorkedExample(t *testing.T) {
	contractors, builders, locations := testLookups()
	entries := []TimeEntry{
		entry(1, 10, 100, "2025-09-01", "4", "0"),
		entry(1, 10, 100, "2025-09-03", "0", "6"),
	}

	rows := AggregateEntries(entries, contractors, builders, locations)
	hours, amount := ComputeTotals(rows[0], d("50"), nil)
	if !hours.Equal(d("10")) {
		t.Errorf("hours = %s, want 10", hours)
	}
	if amount.StringFixed(2) != "500.00" {
		t.Errorf("amount = %s, want 500.00", amount.StringFixed(2))
	}
}

func TestAggregateEntries_SundayExcludedButVisible(t *testing.T) {
	contractors, builders, locations := testLookups()
	entries := []TimeEntry{
		entry(1, 10, 100, "2025-09-06", "3", "0"),   // Saturday
		entry(1, 10, 100, "2025-09-07", "0", "5.5"), // Sunday
	}

	rows := AggregateEntries(entries, contractors, builders, locations)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if !row.DailyHours[5].Equal(d("3")) {
		t.Errorf("Saturday bucket = %s, want 3", row.DailyHours[5])
	}
	if !row.SundayHours.Equal(d("5.5")) {
		t.Errorf("sundayHours = %s, want 5.5", row.SundayHours)
	}

	hours, _ := ComputeTotals(row, d("50"), nil)
	if !hours.Equal(d("3")) {
		t.Errorf("billable hours = %s, Sunday must not bill", hours)
	}
}

// The sum of day buckets must equal tonnageTotal + dayLabourTotal for every
// row: aggregation conserves hours.
func TestAggregateEntries_Conservation(t *testing.T) {
	contractors, builders, locations := testLookups()
	entries := []TimeEntry{
		entry(1, 10, 100, "2025-09-01", "4", "1.5"),
		entry(1, 10, 100, "2025-09-02", "0.5", "0"),
		entry(1, 10, 100, "2025-09-04", "2", "7"),
		entry(2, 11, 102, "2025-09-05", "8", "0.5"),
		entry(2, 11, 102, "2025-09-06", "0", "3"),
	}

	for _, row := range AggregateEntries(entries, contractors, builders, locations) {
		bucketSum := decimal.Zero
		for _, h := range row.DailyHours {
			bucketSum = bucketSum.Add(h)
		}
		total := row.TonnageTotal.Add(row.DayLabourTotal)
		if !bucketSum.Equal(total) {
			t.Errorf("row %s/%s: buckets %s != totals %s",
				row.ContractorName, row.LocationName, bucketSum, total)
		}
	}
}

func TestAggregateEntries_Deterministic(t *testing.T) {
	contractors, builders, locations := testLookups()
	entries := []TimeEntry{
		entry(2, 11, 102, "2025-09-01", "8", "0"),
		entry(1, 10, 101, "2025-09-02", "2", "0"),
		entry(1, 10, 100, "2025-09-01", "4", "0"),
	}

	first := AggregateEntries(entries, contractors, builders, locations)
	for i := 0; i < 10; i++ {
		again := AggregateEntries(entries, contractors, builders, locations)
		if len(again) != len(first) {
			t.Fatalf("row count changed between runs")
		}
		for j := range again {
			if again[j].ContractorId != first[j].ContractorId ||
				again[j].LocationId != first[j].LocationId {
				t.Fatalf("row order changed between runs at %d", j)
			}
		}
	}

	want := []string{"North Site", "South Site", "Depot"}
	for i, row := range first {
		if row.LocationName != want[i] {
			t.Errorf("row %d location = %s, want %s", i, row.LocationName, want[i])
		}
	}
}

func TestComputeTotals_FrozenWins(t *testing.T) {
	row := &AggregationRow{
		TonnageTotal:   d("20"),
		DayLabourTotal: d("10"),
	}
	frozen := &FrozenSnapshot{Hours: d("25"), Rate: d("48"), Amount: d("1200")}

	hours, amount := ComputeTotals(row, d("50"), frozen)
	if !hours.Equal(d("25")) || !amount.Equal(d("1200")) {
		t.Errorf("frozen snapshot must win: got %s / %s", hours, amount)
	}

	hours, amount = ComputeTotals(row, d("50"), nil)
	if !hours.Equal(d("30")) || !amount.Equal(d("1500")) {
		t.Errorf("live totals = %s / %s, want 30 / 1500", hours, amount)
	}
}
