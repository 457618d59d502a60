package handlers

import (
	"net/http"
	"strings"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

// lowStockThreshold marks items that need reordering in lists and reports.
const lowStockThreshold = 10

type ItemRequest struct {
	Name          string  `json:"name" binding:"required"`
	Unit          string  `json:"unit"`
	Description   string  `json:"description"`
	SellingPrice  float64 `json:"selling_price"`
	PurchasePrice float64 `json:"purchase_price"`
	OpeningStock  float64 `json:"opening_stock"`
}

func itemNameTaken(companyID uint, name string, excludeID uint) bool {
	var clash models.Item
	q := database.DB.
		Where("company_id = ? AND LOWER(name) = ? AND is_deleted = ?", companyID, strings.ToLower(name), false)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.First(&clash).Error == nil
}

// --- POST /api/items ---
func CreateItem(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input ItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Item name is required"})
		return
	}
	if input.SellingPrice < 0 || input.PurchasePrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Prices must not be negative"})
		return
	}
	if input.OpeningStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Opening stock must not be negative"})
		return
	}

	if itemNameTaken(company.ID, input.Name, 0) {
		c.JSON(http.StatusConflict, gin.H{"message": "An item with this name already exists"})
		return
	}

	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}

	item := models.Item{
		CompanyID:     company.ID,
		Name:          input.Name,
		Unit:          unit,
		Description:   input.Description,
		SellingPrice:  input.SellingPrice,
		PurchasePrice: input.PurchasePrice,
		CurrentStock:  input.OpeningStock,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// --- GET /api/items ---
// Supports ?search=<name>, ?stock=low|out|in, ?sort=name|stock|price.
func GetItems(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	q := database.DB.Where("company_id = ? AND is_deleted = ?", company.ID, false)

	if search := c.Query("search"); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	switch c.Query("stock") {
	case "":
		// no filter
	case "out":
		q = q.Where("current_stock <= 0")
	case "low":
		q = q.Where("current_stock > 0 AND current_stock <= ?", lowStockThreshold)
	case "in":
		q = q.Where("current_stock > ?", lowStockThreshold)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Stock filter must be 'low', 'out', or 'in'"})
		return
	}

	switch c.DefaultQuery("sort", "name") {
	case "stock":
		q = q.Order("current_stock asc")
	case "price":
		q = q.Order("selling_price desc")
	default:
		q = q.Order("name asc")
	}

	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// --- GET /api/items/summary ---
// Inventory valuation snapshot for the dashboard.
func GetInventorySummary(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var items []models.Item
	if err := database.DB.
		Where("company_id = ? AND is_deleted = ?", company.ID, false).
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch inventory"})
		return
	}

	var totalValue float64
	var lowStock, outOfStock []models.Item
	for _, item := range items {
		totalValue += item.CurrentStock * item.SellingPrice
		switch {
		case item.CurrentStock <= 0:
			outOfStock = append(outOfStock, item)
		case item.CurrentStock <= lowStockThreshold:
			lowStock = append(lowStock, item)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_items":  len(items),
		"total_value":  totalValue,
		"low_stock":    lowStock,
		"out_of_stock": outOfStock,
	})
}

// --- GET /api/items/:id ---
func GetItem(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var item models.Item
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// --- PUT /api/items/:id ---
// Stock is deliberately NOT editable here. The adjust endpoint is the only
// manual path to CurrentStock, so every change carries a reason.
func UpdateItem(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var item models.Item
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
		return
	}

	var input struct {
		Name          *string  `json:"name"`
		Unit          *string  `json:"unit"`
		Description   *string  `json:"description"`
		SellingPrice  *float64 `json:"selling_price"`
		PurchasePrice *float64 `json:"purchase_price"`
		CurrentStock  *float64 `json:"current_stock"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.CurrentStock != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Stock cannot be edited directly. Use the stock adjustment endpoint."})
		return
	}
	if input.Name != nil && *input.Name != item.Name {
		if itemNameTaken(company.ID, *input.Name, item.ID) {
			c.JSON(http.StatusConflict, gin.H{"message": "An item with this name already exists"})
			return
		}
		item.Name = *input.Name
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.SellingPrice != nil {
		if *input.SellingPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Prices must not be negative"})
			return
		}
		item.SellingPrice = *input.SellingPrice
	}
	if input.PurchasePrice != nil {
		if *input.PurchasePrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Prices must not be negative"})
			return
		}
		item.PurchasePrice = *input.PurchasePrice
	}

	if err := database.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "item": item})
}

// --- POST /api/items/:id/adjust-stock ---
type AdjustStockRequest struct {
	QuantityAdjustment *float64 `json:"quantity_adjustment"`
	Reason             string   `json:"reason"`
	Notes              string   `json:"notes"`
}

func AdjustItemStock(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input AdjustStockRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.QuantityAdjustment == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Quantity adjustment is required and must be a number"})
		return
	}

	adjustment, err := Ledger.AdjustStock(company.ID, id, *input.QuantityAdjustment, input.Reason, input.Notes)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Stock adjusted successfully",
		"adjustment": adjustment,
	})
}

// --- DELETE /api/items/:id ---
func DeleteItem(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var item models.Item
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found"})
		return
	}

	item.IsDeleted = true
	if err := database.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
