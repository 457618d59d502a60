package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// flatGSTRate is the single rate this design models for the GST return
// summary. Transactions carry their own rate at creation; the return view
// collapses to one flat rate.
const flatGSTRate = 5.0

// --- GET /api/reports/sales ---
func GetSalesReport(c *gin.Context) {
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

	totals, err := database.GetSalesTotals(company.ID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate revenue"})
		return
	}

	// Zero-safe average: an empty period reports 0, not NaN.
	var average float64
	if totals.TotalCount > 0 {
		average = totals.TotalRevenue / float64(totals.TotalCount)
	}

	// Per-day breakdown, grouped in Go to stay dialect-neutral. Like the
	// totals above, only Completed sales count.
	q := database.DB.
		Where("company_id = ? AND type = ? AND status = ? AND is_deleted = ?",
			company.ID, models.TxnTypeSale, models.TxnStatusCompleted, false)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	var sales []models.Transaction
	if err := q.Order("date asc").Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch sales"})
		return
	}

	type dayBucket struct {
		Date  string  `json:"date"` // YYYY-MM-DD
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
	buckets := make(map[string]*dayBucket)
	for _, s := range sales {
		key := s.Date.Format("2006-01-02")
		if _, exists := buckets[key]; !exists {
			buckets[key] = &dayBucket{Date: key}
		}
		buckets[key].Total += s.TotalAmount
		buckets[key].Count++
	}
	days := make([]dayBucket, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	c.JSON(http.StatusOK, gin.H{
		"total_revenue":             totals.TotalRevenue,
		"total_count":               totals.TotalCount,
		"average_transaction_value": average,
		"daily":                     days,
	})
}

// --- GET /api/reports/purchases ---
func GetPurchaseReport(c *gin.Context) {
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

	q := database.DB.
		Where("company_id = ? AND type = ? AND status = ? AND is_deleted = ?",
			company.ID, models.TxnTypePurchase, models.TxnStatusCompleted, false)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}

	var purchases []models.Transaction
	if err := q.Order("date asc").Find(&purchases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch purchases"})
		return
	}

	names := partyNamesFor(company.ID, purchases)

	type supplierGroup struct {
		PartyID   uint                 `json:"party_id"`
		PartyName string               `json:"party_name"`
		Total     float64              `json:"total"`
		Bills     []models.Transaction `json:"bills"`
	}

	var grandTotal float64
	grouped := make(map[uint]*supplierGroup)
	for _, p := range purchases {
		grandTotal += p.TotalAmount
		if _, exists := grouped[p.PartyID]; !exists {
			grouped[p.PartyID] = &supplierGroup{
				PartyID:   p.PartyID,
				PartyName: names[p.PartyID],
			}
		}
		grouped[p.PartyID].Total += p.TotalAmount
		grouped[p.PartyID].Bills = append(grouped[p.PartyID].Bills, p)
	}

	suppliers := make([]supplierGroup, 0, len(grouped))
	for _, g := range grouped {
		suppliers = append(suppliers, *g)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].Total > suppliers[j].Total })

	c.JSON(http.StatusOK, gin.H{
		"total_purchases": grandTotal,
		"total_count":     len(purchases),
		"suppliers":       suppliers,
	})
}

// --- GET /api/reports/gst ---
// Output GST on outward supplies minus input GST on inward supplies. The
// net is split into a non-negative liability or credit, never both.
func GetGSTReport(c *gin.Context) {
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

	outward, err := database.TransactionTotal(company.ID, models.TxnTypeSale, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate GST"})
		return
	}
	inward, err := database.TransactionTotal(company.ID, models.TxnTypePurchase, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate GST"})
		return
	}

	outputGST := outward * flatGSTRate / 100
	inputGST := inward * flatGSTRate / 100
	net := outputGST - inputGST

	var liability, credit float64
	if net >= 0 {
		liability = net
	} else {
		credit = -net
	}

	c.JSON(http.StatusOK, gin.H{
		"gst_rate":          flatGSTRate,
		"outward_supplies":  outward,
		"inward_supplies":   inward,
		"output_gst":        outputGST,
		"input_gst":         inputGST,
		"net_gst_liability": liability,
		"input_credit":      credit,
	})
}

// --- GET /api/reports/profit-loss ---
func GetProfitLossReport(c *gin.Context) {
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

	revenue, err := database.TransactionTotal(company.ID, models.TxnTypeSale, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate profit and loss"})
		return
	}
	cogs, err := database.TransactionTotal(company.ID, models.TxnTypePurchase, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate profit and loss"})
		return
	}
	expenses, err := database.ExpenseTotal(company.ID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to calculate profit and loss"})
		return
	}

	grossProfit := revenue - cogs
	netProfit := grossProfit - expenses

	// Zero-safe margin.
	var margin float64
	if revenue > 0 {
		margin = netProfit / revenue * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"revenue":            revenue,
		"cost_of_goods":      cogs,
		"gross_profit":       grossProfit,
		"operating_expenses": expenses,
		"net_profit":         netProfit,
		"net_margin_percent": margin,
	})
}

// --- STOCK SUMMARY ---

// StockRow is one line of the stock summary (JSON and spreadsheet share it).
type StockRow struct {
	ItemID       uint    `json:"item_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
	SellingPrice float64 `json:"selling_price"`
	StockValue   float64 `json:"stock_value"`
	Status       string  `json:"status"` // 'In Stock', 'Low Stock', 'Out of Stock'
}

func buildStockSummary(companyID uint) ([]StockRow, float64, error) {
	var items []models.Item
	err := database.DB.
		Where("company_id = ? AND is_deleted = ?", companyID, false).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	var grandTotal float64
	rows := make([]StockRow, 0, len(items))
	for _, item := range items {
		status := "In Stock"
		switch {
		case item.CurrentStock <= 0:
			status = "Out of Stock"
		case item.CurrentStock <= lowStockThreshold:
			status = "Low Stock"
		}

		value := item.CurrentStock * item.SellingPrice
		grandTotal += value

		rows = append(rows, StockRow{
			ItemID:       item.ID,
			Name:         item.Name,
			Unit:         item.Unit,
			CurrentStock: item.CurrentStock,
			SellingPrice: item.SellingPrice,
			StockValue:   value,
			Status:       status,
		})
	}
	return rows, grandTotal, nil
}

// --- GET /api/reports/stock ---
func GetStockSummary(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	rows, grandTotal, err := buildStockSummary(company.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch inventory"})
		return
	}

	var alerts []StockRow
	for _, row := range rows {
		if row.Status != "In Stock" {
			alerts = append(alerts, row)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       rows,
		"total_value": grandTotal,
		"alerts":      alerts,
	})
}

// --- GET /api/reports/stock/export ---
// Same data as the JSON stock summary, as an .xlsx download.
func ExportStockSummary(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	rows, grandTotal, err := buildStockSummary(company.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch inventory"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Stock Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Item", "Unit", "Current Stock", "Selling Price", "Stock Value", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Unit)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.CurrentStock)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.SellingPrice)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.StockValue)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", r), row.Status)
	}

	totalRow := len(rows) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total Value")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), grandTotal)

	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "F", 15)

	filename := fmt.Sprintf("stock_summary_%s.xlsx", company.Name)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate spreadsheet"})
		return
	}
}

// --- GET /api/reports/parties/:id/ledger ---
// One running account per party: sales they owe us for (debits), purchase
// bills and expenses we owe them for (credits), and the settle position.
func GetPartyLedger(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var party models.Party
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&party).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	// Only Completed transactions enter the running account.
	var transactions []models.Transaction
	if err := database.DB.
		Where("company_id = ? AND party_id = ? AND status = ? AND is_deleted = ?",
			company.ID, party.ID, models.TxnStatusCompleted, false).
		Order("date asc, id asc").
		Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch ledger"})
		return
	}

	var expenses []models.Expense
	if err := database.DB.
		Where("company_id = ? AND party_id = ? AND is_deleted = ?", company.ID, party.ID, false).
		Order("date asc, id asc").
		Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch ledger"})
		return
	}

	type ledgerEntry struct {
		Date      string  `json:"date"`
		Kind      string  `json:"kind"` // 'Invoice', 'Purchase Bill', 'Expense'
		Reference string  `json:"reference"`
		Debit     float64 `json:"debit"`
		Credit    float64 `json:"credit"`
	}

	var entries []ledgerEntry
	var totalDebit, totalCredit float64

	for _, txn := range transactions {
		entry := ledgerEntry{
			Date:      txn.Date.Format("2006-01-02"),
			Reference: txn.InvoiceNumber,
		}
		if txn.Type == models.TxnTypeSale {
			entry.Kind = "Invoice"
			entry.Debit = txn.TotalAmount
			totalDebit += txn.TotalAmount
		} else {
			entry.Kind = "Purchase Bill"
			entry.Credit = txn.TotalAmount
			totalCredit += txn.TotalAmount
		}
		entries = append(entries, entry)
	}
	for _, exp := range expenses {
		entries = append(entries, ledgerEntry{
			Date:      exp.Date.Format("2006-01-02"),
			Kind:      "Expense",
			Reference: exp.Category,
			Credit:    exp.Amount,
		})
		totalCredit += exp.Amount
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	balance := totalDebit - totalCredit
	status := "Settled"
	if balance > 0 {
		status = "Receivable"
	} else if balance < 0 {
		status = "Payable"
	}

	c.JSON(http.StatusOK, gin.H{
		"party":        party,
		"entries":      entries,
		"total_debit":  totalDebit,
		"total_credit": totalCredit,
		"balance":      balance,
		"status":       status,
	})
}
