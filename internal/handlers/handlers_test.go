package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"go-bizbooks/internal/auth"
	"go-bizbooks/internal/database"
	"go-bizbooks/internal/ledger"
	"go-bizbooks/internal/middleware"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest builds a fresh in-memory database, the engine, an authenticated
// user with one company, and a router with the API routes under test.
func setupTest(t *testing.T) (*gin.Engine, models.Company, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Party{},
		&models.Item{},
		&models.Transaction{},
		&models.TransactionLineItem{},
		&models.Expense{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	database.DB = db
	Ledger = ledger.New(db, ledger.Config{})

	user := models.User{
		Username:     "asha",
		Email:        "asha@example.com",
		MobileNumber: "9876543210",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	company := models.Company{
		UserID:        user.ID,
		Name:          "Acme Traders",
		InvoicePrefix: "INV",
		CurrentNumber: 1000,
		IncrementBy:   1,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/parties", CreateParty)
		api.GET("/parties", GetParties)
		api.PUT("/parties/:id", UpdateParty)

		api.POST("/items", CreateItem)
		api.PUT("/items/:id", UpdateItem)
		api.POST("/items/:id/adjust-stock", AdjustItemStock)

		api.POST("/invoices", CreateInvoice)
		api.POST("/purchases", CreatePurchase)
		api.GET("/transactions", GetTransactions)
		api.GET("/transactions/:id", GetTransaction)
		api.DELETE("/transactions/:id", DeleteTransaction)
		api.PATCH("/transactions/:id/status", UpdateTransactionStatus)

		api.GET("/reports/sales", GetSalesReport)
	}

	return r, company, token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func seedTestParty(t *testing.T, companyID uint, name, partyType string) models.Party {
	t.Helper()
	party := models.Party{CompanyID: companyID, Name: name, Type: partyType}
	if err := database.DB.Create(&party).Error; err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return party
}

func seedTestItem(t *testing.T, companyID uint, name string, stock float64) models.Item {
	t.Helper()
	item := models.Item{
		CompanyID:     companyID,
		Name:          name,
		Unit:          "pcs",
		SellingPrice:  100,
		PurchasePrice: 60,
		CurrentStock:  stock,
	}
	if err := database.DB.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func currentStock(t *testing.T, itemID uint) float64 {
	t.Helper()
	var item models.Item
	if err := database.DB.First(&item, itemID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return item.CurrentStock
}
