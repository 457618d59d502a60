package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// nextInvoiceNumber formats the number the counter would assign next,
// without consuming it. The engine consumes inside its own unit of work.
func nextInvoiceNumber(company *models.Company) string {
	prefix := company.InvoicePrefix
	if prefix == "" {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%05d", prefix, company.CurrentNumber)
}

// --- GET /api/settings ---
func GetSettings(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company": company,
		"invoice_settings": gin.H{
			"prefix":              company.InvoicePrefix,
			"current_number":      company.CurrentNumber,
			"increment_by":        company.IncrementBy,
			"next_invoice_number": nextInvoiceNumber(company),
		},
	})
}

// --- PUT /api/settings/invoice ---
type InvoiceSettingsRequest struct {
	Prefix         *string `json:"prefix"`
	StartingNumber *int    `json:"starting_number"` // resets the counter
	IncrementBy    *int    `json:"increment_by"`
}

func UpdateInvoiceSettings(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input InvoiceSettingsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.Prefix != nil {
		if *input.Prefix == "" || len(*input.Prefix) > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Prefix must be 1-10 characters"})
			return
		}
		company.InvoicePrefix = *input.Prefix
	}
	if input.StartingNumber != nil {
		if *input.StartingNumber < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Starting number must be at least 1"})
			return
		}
		company.CurrentNumber = *input.StartingNumber
	}
	if input.IncrementBy != nil {
		if *input.IncrementBy < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Increment must be at least 1"})
			return
		}
		company.IncrementBy = *input.IncrementBy
	}

	if err := database.DB.Save(company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Invoice settings updated successfully",
		"next_invoice_number": nextInvoiceNumber(company),
	})
}

// --- GET /api/settings/next-invoice-number ---
func GetNextInvoiceNumber(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"next_invoice_number": nextInvoiceNumber(company)})
}

// --- BACKUP / RESTORE ---

// BackupEnvelope is the portable dump of one company's books. IDs are kept
// as stored so foreign keys survive a round trip.
type BackupEnvelope struct {
	Metadata struct {
		Version     int       `json:"version"`
		ExportedAt  time.Time `json:"exported_at"`
		CompanyID   uint      `json:"company_id"`
		CompanyName string    `json:"company_name"`
	} `json:"metadata"`
	Company      models.Company               `json:"company"`
	Parties      []models.Party               `json:"parties"`
	Items        []models.Item                `json:"items"`
	Transactions []models.Transaction         `json:"transactions"`
	LineItems    []models.TransactionLineItem `json:"transaction_line_items"`
	Expenses     []models.Expense             `json:"expenses"`
}

// --- GET /api/settings/backup ---
// Deleted rows are included: a backup is the whole book, not the active view.
func BackupData(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var envelope BackupEnvelope
	envelope.Metadata.Version = 1
	envelope.Metadata.ExportedAt = time.Now()
	envelope.Metadata.CompanyID = company.ID
	envelope.Metadata.CompanyName = company.Name
	envelope.Company = *company

	if err := database.DB.Where("company_id = ?", company.ID).Find(&envelope.Parties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export data"})
		return
	}
	if err := database.DB.Where("company_id = ?", company.ID).Find(&envelope.Items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export data"})
		return
	}
	if err := database.DB.Where("company_id = ?", company.ID).Find(&envelope.Transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export data"})
		return
	}
	txnIDs := make([]uint, 0, len(envelope.Transactions))
	for _, txn := range envelope.Transactions {
		txnIDs = append(txnIDs, txn.ID)
	}
	if len(txnIDs) > 0 {
		if err := database.DB.Where("transaction_id IN ?", txnIDs).Find(&envelope.LineItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export data"})
			return
		}
	}
	if err := database.DB.Where("company_id = ?", company.ID).Find(&envelope.Expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to export data"})
		return
	}

	filename := fmt.Sprintf("backup_%s_%s.json", company.Name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.JSON(http.StatusOK, envelope)
}

// --- POST /api/settings/restore ---
// Accepts a backup file as multipart field "file". Rows are re-created with
// their original IDs (FirstOrCreate), so restoring on top of existing data
// is idempotent and never duplicates.
func RestoreData(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No backup file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read backup file"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read backup file"})
		return
	}

	var envelope BackupEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Backup file is not valid JSON"})
		return
	}
	if envelope.Metadata.Version != 1 || envelope.Metadata.CompanyID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Backup file structure is not recognized"})
		return
	}
	if envelope.Metadata.CompanyID != company.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Backup belongs to a different company"})
		return
	}

	restored := map[string]int{}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i := range envelope.Parties {
			p := envelope.Parties[i]
			p.CompanyID = company.ID
			if err := tx.Where("id = ?", p.ID).FirstOrCreate(&p).Error; err != nil {
				return err
			}
			restored["parties"]++
		}
		for i := range envelope.Items {
			it := envelope.Items[i]
			it.CompanyID = company.ID
			if err := tx.Where("id = ?", it.ID).FirstOrCreate(&it).Error; err != nil {
				return err
			}
			restored["items"]++
		}
		for i := range envelope.Transactions {
			txn := envelope.Transactions[i]
			txn.CompanyID = company.ID
			txn.LineItems = nil // restored separately with their own IDs
			if err := tx.Where("id = ?", txn.ID).FirstOrCreate(&txn).Error; err != nil {
				return err
			}
			restored["transactions"]++
		}
		for i := range envelope.LineItems {
			line := envelope.LineItems[i]
			if err := tx.Where("id = ?", line.ID).FirstOrCreate(&line).Error; err != nil {
				return err
			}
			restored["line_items"]++
		}
		for i := range envelope.Expenses {
			exp := envelope.Expenses[i]
			exp.CompanyID = company.ID
			if err := tx.Where("id = ?", exp.ID).FirstOrCreate(&exp).Error; err != nil {
				return err
			}
			restored["expenses"]++
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Restore failed. No data was changed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Backup restored successfully",
		"restored": restored,
	})
}
