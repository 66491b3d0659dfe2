package models

import (
	"context"
	"sort"

	"bitbucket.org/fieldworks/dockets_backend/config"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/shopspring/decimal"
)

// AggregationRow is one line of the weekly timesheet: one contractor at one
// builder/location, hours bucketed Monday..Saturday. Sunday hours are never
// bucketed or billed but are carried on the row so they are visible.
type AggregationRow struct {
	ContractorId   int                `json:"contractor_id"`
	ContractorName string             `json:"contractor_name"`
	BuilderId      int                `json:"builder_id"`
	BuilderName    string             `json:"builder_name"`
	LocationId     int                `json:"location_id"`
	LocationName   string             `json:"location_name"`
	DailyHours     [6]decimal.Decimal `json:"daily_hours"`
	TonnageTotal   decimal.Decimal    `json:"tonnage_total"`
	DayLabourTotal decimal.Decimal    `json:"day_labour_total"`
	SundayHours    decimal.Decimal    `json:"sunday_hours"`
	HourlyRate     decimal.Decimal    `json:"hourly_rate"`
}

// FrozenSnapshot is the hours/rate/amount frozen on an invoice at submission
// time. Once it exists it is authoritative over live aggregation.
type FrozenSnapshot struct {
	Hours  decimal.Decimal `json:"hours"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type aggregationKey struct {
	contractorId int
	builderId    int
	locationId   int
}

// AggregateEntries groups raw time entries by (contractor, builder, location)
// and buckets hours by weekday. Pure: callers load the entries and lookup
// maps, this only folds them.
func AggregateEntries(entries []TimeEntry,
	contractors map[int]*Contractor,
	builders map[int]*Builder,
	locations map[int]*Location) []*AggregationRow {

	rows := map[aggregationKey]*AggregationRow{}

	for _, entry := range entries {
		key := aggregationKey{entry.ContractorId, entry.BuilderId, entry.LocationId}
		row, ok := rows[key]
		if !ok {
			row = &AggregationRow{
				ContractorId: entry.ContractorId,
				BuilderId:    entry.BuilderId,
				LocationId:   entry.LocationId,
			}
			if c := contractors[entry.ContractorId]; c != nil {
				row.ContractorName = c.Name
				row.HourlyRate = c.HourlyRate
			}
			if b := builders[entry.BuilderId]; b != nil {
				row.BuilderName = b.Name
			}
			if l := locations[entry.LocationId]; l != nil {
				row.LocationName = l.Name
			}
			rows[key] = row
		}

		hours := entry.TonnageHours.Add(entry.DayLabourHours)
		idx := utils.PaidDayIndex(entry.WorkDate)
		if idx < 0 {
			row.SundayHours = row.SundayHours.Add(hours)
			continue
		}
		row.DailyHours[idx] = row.DailyHours[idx].Add(hours)
		row.TonnageTotal = row.TonnageTotal.Add(entry.TonnageHours)
		row.DayLabourTotal = row.DayLabourTotal.Add(entry.DayLabourHours)
	}

	results := make([]*AggregationRow, 0, len(rows))
	for _, row := range rows {
		results = append(results, row)
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ContractorName != b.ContractorName {
			return a.ContractorName < b.ContractorName
		}
		if a.BuilderName != b.BuilderName {
			return a.BuilderName < b.BuilderName
		}
		return a.LocationName < b.LocationName
	})
	return results
}

// ComputeTotals returns the billable hours and amount for a row. A frozen
// snapshot, when present, wins unchanged over any live recomputation.
func ComputeTotals(row *AggregationRow, rate decimal.Decimal, frozen *FrozenSnapshot) (decimal.Decimal, decimal.Decimal) {
	if frozen != nil {
		return frozen.Hours, frozen.Amount
	}
	hours := row.TonnageTotal.Add(row.DayLabourTotal)
	return hours, hours.Mul(rate)
}

// WeeklySummary is the dashboard payload for one contractor+week.
type WeeklySummary struct {
	ContractorId int               `json:"contractor_id"`
	Week         utils.WeekWindow  `json:"week"`
	Rows         []*AggregationRow `json:"rows"`
	TotalHours   decimal.Decimal   `json:"total_hours"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	SundayHours  decimal.Decimal   `json:"sunday_hours"`
	Frozen       bool              `json:"frozen"`
	Invoice      *WorkerInvoice    `json:"invoice,omitempty"`
}

func loadLookups(ctx context.Context, entries []TimeEntry) (map[int]*Contractor, map[int]*Builder, map[int]*Location, error) {
	contractorIds := map[int]bool{}
	builderIds := map[int]bool{}
	locationIds := map[int]bool{}
	for _, e := range entries {
		contractorIds[e.ContractorId] = true
		builderIds[e.BuilderId] = true
		locationIds[e.LocationId] = true
	}

	contractors := map[int]*Contractor{}
	builders := map[int]*Builder{}
	locations := map[int]*Location{}
	if len(entries) == 0 {
		return contractors, builders, locations, nil
	}

	db := config.GetDB().WithContext(ctx)
	var contractorList []*Contractor
	if err := db.Where("id IN ?", keysOf(contractorIds)).Find(&contractorList).Error; err != nil {
		return nil, nil, nil, err
	}
	for _, c := range contractorList {
		contractors[c.ID] = c
	}
	var builderList []*Builder
	if err := db.Where("id IN ?", keysOf(builderIds)).Find(&builderList).Error; err != nil {
		return nil, nil, nil, err
	}
	for _, b := range builderList {
		builders[b.ID] = b
	}
	var locationList []*Location
	if err := db.Where("id IN ?", keysOf(locationIds)).Find(&locationList).Error; err != nil {
		return nil, nil, nil, err
	}
	for _, l := range locationList {
		locations[l.ID] = l
	}
	return contractors, builders, locations, nil
}

func keysOf(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// GetWeeklyRows aggregates a week across contractors, contractorId 0 meaning
// all. Used by the export surface.
func GetWeeklyRows(ctx context.Context, window utils.WeekWindow, contractorId int) ([]*AggregationRow, error) {
	entries, err := GetWeekEntries(ctx, window, contractorId)
	if err != nil {
		return nil, err
	}
	contractors, builders, locations, err := loadLookups(ctx, entries)
	if err != nil {
		return nil, err
	}
	return AggregateEntries(entries, contractors, builders, locations), nil
}

// GetWeeklySummary aggregates one contractor's week. When a Submitted or Paid
// invoice already covers the week, its frozen totals are returned and the row
// set is still shown for reference.
func GetWeeklySummary(ctx context.Context, window utils.WeekWindow, contractorId int) (*WeeklySummary, error) {
	entries, err := GetWeekEntries(ctx, window, contractorId)
	if err != nil {
		return nil, err
	}
	contractors, builders, locations, err := loadLookups(ctx, entries)
	if err != nil {
		return nil, err
	}

	summary := WeeklySummary{
		ContractorId: contractorId,
		Week:         window,
		Rows:         AggregateEntries(entries, contractors, builders, locations),
	}

	var frozen *FrozenSnapshot
	invoice, err := FindInvoiceForWeek(ctx, contractorId, window.Start)
	if err != nil && err != utils.ErrorRecordNotFound {
		return nil, err
	}
	if invoice != nil {
		frozen = &FrozenSnapshot{Hours: invoice.TotalHours, Rate: invoice.HourlyRate, Amount: invoice.TotalAmount}
		summary.Frozen = true
		summary.Invoice = invoice
	}

	rate := decimal.Zero
	if c := contractors[contractorId]; c != nil {
		rate = c.HourlyRate
	}
	if frozen != nil {
		summary.TotalHours = frozen.Hours
		summary.TotalAmount = frozen.Amount
	} else {
		for _, row := range summary.Rows {
			rowRate := row.HourlyRate
			if rowRate.IsZero() {
				rowRate = rate
			}
			hours, amount := ComputeTotals(row, rowRate, nil)
			summary.TotalHours = summary.TotalHours.Add(hours)
			summary.TotalAmount = summary.TotalAmount.Add(amount)
		}
	}
	for _, row := range summary.Rows {
		summary.SundayHours = summary.SundayHours.Add(row.SundayHours)
	}
	return &summary, nil
}
