package handlers

import (
	"net/http"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/ledger"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

// TransactionRequest is what the frontend sends for both invoices and
// purchase bills. The transaction type comes from the route, not the body.
type TransactionRequest struct {
	PartyID     uint                   `json:"party_id"`
	Date        string                 `json:"date"` // YYYY-MM-DD, defaults to today
	PaymentMode string                 `json:"payment_mode"`
	GSTRate     float64                `json:"gst_rate"`
	LineItems   []ledger.LineItemInput `json:"line_items"`
}

// --- POST /api/invoices ---
func CreateInvoice(c *gin.Context) {
	createTransaction(c, models.TxnTypeSale)
}

// --- POST /api/purchases ---
func CreatePurchase(c *gin.Context) {
	createTransaction(c, models.TxnTypePurchase)
}

func createTransaction(c *gin.Context, txnType string) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input TransactionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var date time.Time
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Dates must be in YYYY-MM-DD format"})
			return
		}
		date = parsed
	}

	result, err := Ledger.CreateTransaction(ledger.CreateTransactionInput{
		CompanyID:   company.ID,
		PartyID:     input.PartyID,
		Type:        txnType,
		Date:        date,
		PaymentMode: input.PaymentMode,
		GSTRate:     input.GSTRate,
		LineItems:   input.LineItems,
	})
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	label := "Invoice created successfully"
	if txnType == models.TxnTypePurchase {
		label = "Purchase bill created successfully"
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      label,
		"transaction":  result.Transaction,
		"party_name":   result.PartyName,
		"subtotal":     result.Subtotal,
		"gst_rate":     result.GSTRate,
		"tax_amount":   result.TaxAmount,
		"total_amount": result.TotalAmount,
	})
}

// --- GET /api/transactions ---
// Supports ?type=Sale|Purchase, ?status=..., ?party_id=N, ?from= / ?to=
// (YYYY-MM-DD), ?sort=date|amount (default date, newest first).
func GetTransactions(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	q := database.DB.
		Where("company_id = ? AND is_deleted = ?", company.ID, false).
		Preload("LineItems")

	if t := c.Query("type"); t != "" {
		if t != models.TxnTypeSale && t != models.TxnTypePurchase && t != models.TxnTypeEstimate {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Type must be 'Sale', 'Purchase', or 'Estimate'"})
			return
		}
		q = q.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		if s != models.TxnStatusPending && s != models.TxnStatusCompleted && s != models.TxnStatusCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be 'Pending', 'Completed', or 'Cancelled'"})
			return
		}
		q = q.Where("status = ?", s)
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
		q = q.Order("total_amount desc")
	default:
		q = q.Order("date desc, id desc")
	}

	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
		"party_names":  partyNamesFor(company.ID, transactions),
	})
}

// partyNamesFor maps party_id -> name for the transactions in one page, so
// the list view can show names without an extra request per row.
func partyNamesFor(companyID uint, transactions []models.Transaction) map[uint]string {
	ids := make([]uint, 0, len(transactions))
	seen := make(map[uint]bool)
	for _, txn := range transactions {
		if !seen[txn.PartyID] {
			seen[txn.PartyID] = true
			ids = append(ids, txn.PartyID)
		}
	}

	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	var parties []models.Party
	// Deleted parties keep their names on old transactions.
	database.DB.Where("company_id = ? AND id IN ?", companyID, ids).Find(&parties)
	for _, p := range parties {
		names[p.ID] = p.Name
	}
	return names
}

// --- GET /api/transactions/:id ---
func GetTransaction(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var txn models.Transaction
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		Preload("LineItems").
		First(&txn).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found"})
		return
	}

	var party models.Party
	database.DB.Where("id = ? AND company_id = ?", txn.PartyID, company.ID).First(&party)

	// The header stores only the grand total. Recover the breakdown from
	// the immutable line items so the detail view can show it.
	var subtotal float64
	for _, line := range txn.LineItems {
		subtotal += line.LineTotal
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": txn,
		"party":       party,
		"subtotal":    subtotal,
		"tax_amount":  txn.TotalAmount - subtotal,
	})
}

// --- DELETE /api/transactions/:id ---
// Reverses the stock effect and soft-deletes, as one atomic unit.
func DeleteTransaction(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := Ledger.ReverseTransaction(company.ID, id)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction deleted and stock restored",
		"transaction": txn,
	})
}

// --- PATCH /api/transactions/:id/status ---
func UpdateTransactionStatus(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status must be 'Pending', 'Completed', or 'Cancelled'"})
		return
	}

	txn, err := Ledger.UpdateStatus(company.ID, id, input.Status)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Status updated successfully",
		"transaction": txn,
	})
}

// --- GET /api/transactions/summary ---
// Sales vs purchases totals for a date window, for the dashboard cards.
func GetTransactionSummary(c *gin.Context) {
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

	salesTotal, err := database.TransactionTotal(company.ID, models.TxnTypeSale, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate totals"})
		return
	}
	salesCount, err := database.TransactionCount(company.ID, models.TxnTypeSale, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate totals"})
		return
	}
	purchaseTotal, err := database.TransactionTotal(company.ID, models.TxnTypePurchase, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate totals"})
		return
	}
	purchaseCount, err := database.TransactionCount(company.ID, models.TxnTypePurchase, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate totals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales":     gin.H{"total": salesTotal, "count": salesCount},
		"purchases": gin.H{"total": purchaseTotal, "count": purchaseCount},
		"net_flow":  salesTotal - purchaseTotal,
	})
}
