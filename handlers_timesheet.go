package main

import (
	"net/http"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/gin-gonic/gin"
)

func registerTimesheetRoutes(r *gin.Engine) {

	// Weekly timesheet for one contractor. If a Submitted/Paid invoice
	// covers the week its frozen snapshot is authoritative: the totals come
	// from the invoice and the live rows are reference only.
	r.GET("/timesheets/weekly", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}

		window, err := utils.ParseWeekQuery(c.Query("week"), c.Query("start"))
		if err != nil {
			respondError(c, err)
			return
		}

		contractorId := intQuery(c, "contractor_id")
		if user.Role == models.UserRoleWorker {
			contractorId = user.ContractorId
		}
		if contractorId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contractor_id is required"})
			return
		}
		if err := models.ContractorScopeCheck(c.Request.Context(), contractorId); err != nil {
			respondError(c, err)
			return
		}

		summary, err := models.GetWeeklySummary(c.Request.Context(), window, contractorId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}
