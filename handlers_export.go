package main

import (
	"bytes"
	"net/http"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/models/reports"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Exports are admin only: they flatten across all contractors.
func registerExportRoutes(r *gin.Engine) {

	r.GET("/exports/weekly.csv", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		window, err := utils.ParseWeekQuery(c.Query("week"), c.Query("start"))
		if err != nil {
			respondError(c, err)
			return
		}
		rows, err := models.GetWeeklyRows(c.Request.Context(), window, intQuery(c, "contractor_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		out, err := reports.WeeklyCsv(rows)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=weekly-"+utils.MyDate(window.Start)+".csv")
		c.Data(http.StatusOK, "text/csv", out)
	})

	r.GET("/exports/weekly.xlsx", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		window, err := utils.ParseWeekQuery(c.Query("week"), c.Query("start"))
		if err != nil {
			respondError(c, err)
			return
		}
		rows, err := models.GetWeeklyRows(c.Request.Context(), window, intQuery(c, "contractor_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		var buf bytes.Buffer
		if err := reports.WriteWeeklyXlsx(&buf, rows); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=weekly-"+utils.MyDate(window.Start)+".xlsx")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	})

	r.GET("/exports/invoices.csv", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		q := models.InvoiceQuery{
			ContractorId: intQuery(c, "contractor_id"),
			Status:       c.Query("status"),
			Limit:        200,
			Offset:       intQuery(c, "offset"),
		}
		if week := c.Query("week"); week != "" {
			window, err := utils.ResolveWeek(week, nil)
			if err != nil {
				respondError(c, err)
				return
			}
			q.WeekStart = &window.Start
		}
		adminScope := func(db *gorm.DB) *gorm.DB { return db }
		invoices, err := models.GetInvoices(c.Request.Context(), q, adminScope)
		if err != nil {
			respondError(c, err)
			return
		}
		out, err := reports.InvoicesCsv(invoices)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=invoices.csv")
		c.Data(http.StatusOK, "text/csv", out)
	})
}
