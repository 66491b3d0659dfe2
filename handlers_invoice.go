package main

import (
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"bitbucket.org/fieldworks/dockets_backend/workflow"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type submitInvoiceRequest struct {
	ContractorId int    `json:"contractor_id" binding:"required"`
	Week         string `json:"week"`
	Start        string `json:"start"`
}

type invoiceNoteRequest struct {
	Note string `json:"note"`
}

func registerInvoiceRoutes(r *gin.Engine) {

	r.POST("/invoices/submit", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		var req submitInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := models.SubmitScopeCheck(c.Request.Context(), req.ContractorId); err != nil {
			respondError(c, err)
			return
		}
		window, err := utils.ParseWeekQuery(req.Week, req.Start)
		if err != nil {
			respondError(c, err)
			return
		}
		invoice, err := workflow.SubmitWeeklyInvoice(c.Request.Context(), req.ContractorId, window)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, invoice)
	})

	r.GET("/invoices", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		q := models.InvoiceQuery{
			ContractorId: intQuery(c, "contractor_id"),
			Status:       c.Query("status"),
			Limit:        intQuery(c, "limit"),
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
		invoices, err := models.GetInvoices(c.Request.Context(), q, models.BuildInvoiceFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoices)
	})

	r.GET("/invoices/:id", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		invoice, err := models.GetInvoice(c.Request.Context(), id, models.BuildInvoiceFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})

	r.POST("/invoices/:id/pay", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req invoiceNoteRequest
		_ = c.ShouldBindJSON(&req)
		invoice, err := models.MarkInvoicePaid(c.Request.Context(), id, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})

	r.POST("/invoices/:id/undo-paid", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req invoiceNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "an audit note is required"})
			return
		}
		invoice, err := models.UndoInvoicePaid(c.Request.Context(), id, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})

	r.PUT("/invoices/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var edit models.InvoiceEdit
		if err := c.ShouldBindJSON(&edit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		invoice, err := models.AdminEditInvoice(c.Request.Context(), id, &edit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, invoice)
	})

	// Issues a short-lived signed link so the PDF can open outside the app
	// (email clients, new tabs) without the session token header.
	r.GET("/invoices/:id/pdf-link", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if _, err := models.GetInvoice(c.Request.Context(), id, models.BuildInvoiceFilter(user)); err != nil {
			respondError(c, err)
			return
		}
		token, err := utils.JwtGenerateDownload(id, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"url": "/invoices/" + strconv.Itoa(id) + "/pdf?dl=" + token,
		})
	})

	r.GET("/invoices/:id/pdf", func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		claim, err := utils.JwtValidateDownload(c.Query("dl"))
		if err != nil || claim.InvoiceId != id {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		// The link was scope-checked at issue time; re-load without a
		// session scope since the signature binds invoice and user.
		invoice, err := models.GetInvoice(c.Request.Context(), id, func(db *gorm.DB) *gorm.DB { return db })
		if err != nil {
			respondError(c, err)
			return
		}
		pdfBytes, err := workflow.RenderInvoicePdf(c.Request.Context(), invoice)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := "invoice-" + strconv.Itoa(invoice.ID) + "-" + invoice.WeekStart.Format("2006-01-02") + ".pdf"
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Cache-Control", "private, max-age="+strconv.Itoa(int((5*time.Minute).Seconds())))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	})
}
