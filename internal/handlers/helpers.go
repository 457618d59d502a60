package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/ledger"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

// Ledger is the single transaction engine instance, wired up in main.
// Handlers never write Transaction rows or Item stock themselves.
var Ledger *ledger.Engine

// activeCompanyForUser loads the caller's one active company, or writes a
// 404 and returns ok=false. Every /api handler below the auth routes starts
// with this: the company is the tenant boundary for all queries.
func activeCompanyForUser(c *gin.Context) (*models.Company, bool) {
	userID := c.MustGet("userID").(uint)

	var company models.Company
	if err := database.DB.Where("user_id = ? AND is_deleted = ?", userID, false).First(&company).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No company found. Please create a company first."})
		return nil, false
	}
	return &company, true
}

// respondLedgerError translates the engine's error kinds to HTTP statuses.
// Storage failures get a generic 500 so internals never leak to the client.
func respondLedgerError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	var nfe *ledger.NotFoundError
	var ce *ledger.ConflictError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Message})
	case errors.As(err, &nfe):
		c.JSON(http.StatusNotFound, gin.H{"message": nfe.Message})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"message": ce.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong. Please try again."})
	}
}

// parseIDParam reads a positive integer path parameter like /items/:id.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. endOfDay
// pushes the time to 23:59:59 so "to=2026-01-31" includes the whole day.
func parseDateQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dates must be in YYYY-MM-DD format"})
		return nil, false
	}
	if endOfDay {
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return &t, true
}
