package main

import (
	"net/http"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/gin-gonic/gin"
)

// Builders, locations, contractors and users. Reads are open to any session
// user; mutations are admin only.
func registerMasterDataRoutes(r *gin.Engine) {

	r.GET("/builders", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		builders, err := models.GetBuilders(c.Request.Context(),
			c.Query("search"), c.Query("active") == "true",
			intQuery(c, "limit"), intQuery(c, "offset"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, builders)
	})

	r.GET("/builders/:id", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		builder, err := models.GetBuilder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, builder)
	})

	r.POST("/builders", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		var input models.NewBuilder
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		builder, err := models.CreateBuilder(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, builder)
	})

	r.PUT("/builders/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.NewBuilder
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		builder, err := models.UpdateBuilder(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, builder)
	})

	r.DELETE("/builders/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		builder, err := models.DeleteBuilder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, builder)
	})

	r.GET("/builders/:id/locations", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		builderId, ok := intParam(c, "id")
		if !ok {
			return
		}
		locations, err := models.GetLocations(c.Request.Context(), builderId, c.Query("active") == "true")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, locations)
	})

	r.POST("/builders/:id/locations", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		builderId, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.NewLocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		location, err := models.CreateLocation(c.Request.Context(), builderId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, location)
	})

	r.PUT("/locations/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.NewLocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		location, err := models.UpdateLocation(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, location)
	})

	r.DELETE("/locations/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		location, err := models.DeleteLocation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, location)
	})

	r.GET("/contractors", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		contractors, err := models.GetContractors(c.Request.Context(),
			c.Query("search"), c.Query("active") == "true",
			intQuery(c, "limit"), intQuery(c, "offset"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contractors)
	})

	r.GET("/contractors/:id", func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		contractor, err := models.GetContractor(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contractor)
	})

	r.POST("/contractors", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		var input models.NewContractor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		contractor, err := models.CreateContractor(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contractor)
	})

	r.PUT("/contractors/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var input models.NewContractor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		contractor, err := models.UpdateContractor(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contractor)
	})

	r.DELETE("/contractors/:id", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		contractor, err := models.DeleteContractor(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contractor)
	})

	r.GET("/users", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	})

	r.POST("/users", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	})

	r.GET("/histories", func(c *gin.Context) {
		if err := models.RequireAdmin(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		refId := intQuery(c, "reference_id")
		refType := c.Query("reference_type")
		userId := intQuery(c, "user_id")
		histories, err := models.GetHistories(c.Request.Context(),
			&refId, utils.NilIfEmpty(refType), &userId,
			intQuery(c, "limit"), intQuery(c, "offset"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, histories)
	})
}
