package handlers

import (
	"net/http"
	"sort"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

type ExpenseRequest struct {
	Category    string  `json:"category" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Date        string  `json:"date"` // YYYY-MM-DD, defaults to today
	Description string  `json:"description"`
	PaymentMode string  `json:"payment_mode"`
	PartyID     *uint   `json:"party_id"` // optional vendor
}

// vendorExists verifies an optional party reference before it is attached.
func vendorExists(companyID uint, partyID uint) bool {
	var party models.Party
	return database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", partyID, companyID, false).
		First(&party).Error == nil
}

// --- POST /api/expenses ---
func CreateExpense(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input ExpenseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category and amount are required"})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Amount must be greater than zero"})
		return
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Dates must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	if input.PartyID != nil && !vendorExists(company.ID, *input.PartyID) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	expense := models.Expense{
		CompanyID:   company.ID,
		PartyID:     input.PartyID,
		Date:        date,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		PaymentMode: input.PaymentMode,
	}
	if err := database.DB.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// --- GET /api/expenses ---
// Supports ?category=, ?party_id=, ?from=/?to= (YYYY-MM-DD),
// ?sort=date|amount (default date, newest first).
func GetExpenses(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	q := database.DB.Where("company_id = ? AND is_deleted = ?", company.ID, false)

	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if partyID := c.Query("party_id"); partyID != "" {
		q = q.Where("party_id = ?", partyID)
	}

	from, ok := parseDateQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to", true)
	if !ok {
		return
	}
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}

	switch c.DefaultQuery("sort", "date") {
	case "amount":
		q = q.Order("amount desc")
	default:
		q = q.Order("date desc, id desc")
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch expenses"})
		return
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"expenses": expenses,
		"count":    len(expenses),
		"total":    total,
	})
}

// --- GET /api/expenses/monthly ---
// Month buckets are computed in Go rather than SQL so the grouping does not
// depend on dialect-specific date functions.
func GetMonthlyExpenseReport(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	from, ok := parseDateQuery(c, "from", false)
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to", true)
	if !ok {
		return
	}

	q := database.DB.Where("company_id = ? AND is_deleted = ?", company.ID, false)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch expenses"})
		return
	}

	type monthBucket struct {
		Month string  `json:"month"` // YYYY-MM
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	buckets := make(map[string]*monthBucket)
	for _, e := range expenses {
		key := e.Date.Format("2006-01")
		if _, exists := buckets[key]; !exists {
			buckets[key] = &monthBucket{Month: key}
		}
		buckets[key].Total += e.Amount
		buckets[key].Count++
	}

	months := make([]monthBucket, 0, len(buckets))
	for _, b := range buckets {
		months = append(months, *b)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	c.JSON(http.StatusOK, gin.H{"months": months})
}

// --- GET /api/expenses/categories ---
func GetExpenseCategoryBreakdown(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	type categoryRow struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int64   `json:"count"`
	}

	var rows []categoryRow
	err := database.DB.Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Where("company_id = ? AND is_deleted = ?", company.ID, false).
		Group("category").
		Order("total desc").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch category breakdown"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": rows})
}

// --- GET /api/expenses/:id ---
func GetExpense(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found"})
		return
	}

	c.JSON(http.StatusOK, expense)
}

// --- PUT /api/expenses/:id ---
func UpdateExpense(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found"})
		return
	}

	var input struct {
		Category    *string  `json:"category"`
		Amount      *float64 `json:"amount"`
		Date        *string  `json:"date"`
		Description *string  `json:"description"`
		PaymentMode *string  `json:"payment_mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Amount must be greater than zero"})
			return
		}
		expense.Amount = *input.Amount
	}
	if input.Date != nil {
		parsed, err := time.Parse("2006-01-02", *input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Dates must be in YYYY-MM-DD format"})
			return
		}
		expense.Date = parsed
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.PaymentMode != nil {
		expense.PaymentMode = *input.PaymentMode
	}

	if err := database.DB.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully", "expense": expense})
}

// --- PATCH /api/expenses/:id/vendor ---
// Attaches or clears the vendor party on an expense.
func AssignExpenseVendor(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found"})
		return
	}

	var input struct {
		PartyID *uint `json:"party_id"` // null clears the vendor
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.PartyID != nil && !vendorExists(company.ID, *input.PartyID) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	expense.PartyID = input.PartyID
	if err := database.DB.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vendor assigned successfully", "expense": expense})
}

// --- DELETE /api/expenses/:id ---
func DeleteExpense(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&expense).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Expense not found"})
		return
	}

	expense.IsDeleted = true
	if err := database.DB.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
