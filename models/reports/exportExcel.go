package reports

import (
	"fmt"
	"io"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"github.com/xuri/excelize/v2"
)

// WriteWeeklyXlsx writes the weekly timesheet as an XLSX workbook.
func WriteWeeklyXlsx(w io.Writer, rows []*models.AggregationRow) error {

	f := excelize.NewFile()
	sheetName := "Sheet1"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Add headers
	col := 'A'
	for _, h := range weeklyCsvHeader {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, row := range rows {
		hours, amount := models.ComputeTotals(row, row.HourlyRate, nil)
		rowNo := fmt.Sprint(i + 2)

		f.SetCellValue(sheetName, "A"+rowNo, row.ContractorName)
		f.SetCellValue(sheetName, "B"+rowNo, row.BuilderName)
		f.SetCellValue(sheetName, "C"+rowNo, row.LocationName)
		col := 'D'
		for _, h := range row.DailyHours {
			f.SetCellValue(sheetName, string(col)+rowNo, h.StringFixed(2))
			col++
		}
		f.SetCellValue(sheetName, "J"+rowNo, row.TonnageTotal.StringFixed(2))
		f.SetCellValue(sheetName, "K"+rowNo, row.DayLabourTotal.StringFixed(2))
		f.SetCellValue(sheetName, "L"+rowNo, row.SundayHours.StringFixed(2))
		f.SetCellValue(sheetName, "M"+rowNo, hours.StringFixed(2))
		f.SetCellValue(sheetName, "N"+rowNo, row.HourlyRate.StringFixed(2))
		f.SetCellValue(sheetName, "O"+rowNo, amount.StringFixed(2))
	}

	return f.Write(w)
}
