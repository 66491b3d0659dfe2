package main

import (
	"net/http"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"github.com/gin-gonic/gin"
)

// Dockets: admins and supervisors create and edit; a supervisor only ever
// sees their own, a worker only dockets naming their contractor.
func registerDocketRoutes(r *gin.Engine) {

	r.GET("/dockets", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		q := models.DocketQuery{
			BuilderId:  intQuery(c, "builder_id"),
			LocationId: intQuery(c, "location_id"),
			Limit:      intQuery(c, "limit"),
			Offset:     intQuery(c, "offset"),
		}
		if from := c.Query("from"); from != "" {
			parsed, err := time.Parse("2006-01-02", from)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
				return
			}
			q.From = &parsed
		}
		if to := c.Query("to"); to != "" {
			parsed, err := time.Parse("2006-01-02", to)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
				return
			}
			q.To = &parsed
		}
		dockets, err := models.GetDockets(c.Request.Context(), q, models.BuildDocketFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dockets)
	})

	r.GET("/dockets/:id", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		docket, err := models.GetDocket(c.Request.Context(), id, models.BuildDocketFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, docket)
	})

	r.POST("/dockets", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		if user.Role == models.UserRoleWorker {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		var input models.NewDocket
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		docket, err := models.CreateDocket(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, docket)
	})

	r.PUT("/dockets/:id", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		if user.Role == models.UserRoleWorker {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.NewDocket
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		docket, err := models.UpdateDocket(c.Request.Context(), id, &input, models.BuildDocketFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, docket)
	})

	r.DELETE("/dockets/:id", func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			return
		}
		if user.Role == models.UserRoleWorker {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		docket, err := models.DeleteDocket(c.Request.Context(), id, models.BuildDocketFilter(user))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, docket)
	})
}
