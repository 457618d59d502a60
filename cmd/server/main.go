package main

import (
	"log"
	"os"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/handlers"
	"go-bizbooks/internal/ledger"
	"go-bizbooks/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()

	// Wire the transaction engine. It is the only writer of transactions
	// and stock; handlers go through handlers.Ledger.
	allowNegative := os.Getenv("ALLOW_NEGATIVE_STOCK") == "true"
	handlers.Ledger = ledger.New(database.DB, ledger.Config{AllowNegativeStock: allowNegative})
	if allowNegative {
		log.Println("⚠️ WARNING: Negative stock is ALLOWED. Sales will not be blocked by stock levels.")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })

	// --- AUTH (open routes) ---
	r.POST("/api/auth/login", handlers.Login)

	// Signup stays open unless explicitly closed in .env.
	if os.Getenv("ALLOW_REGISTRATION") != "false" {
		r.POST("/api/auth/signup", handlers.Signup)
	} else {
		log.Println("🔒 Signup route is DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/auth/me", handlers.Me)

		// Company (one active per user)
		api.POST("/company", handlers.CreateCompany)
		api.GET("/company", handlers.GetMyCompany)
		api.PUT("/company", handlers.UpdateCompany)
		api.DELETE("/company", handlers.DeleteCompany)

		// Parties
		api.POST("/parties", handlers.CreateParty)
		api.GET("/parties", handlers.GetParties)
		api.GET("/parties/:id", handlers.GetParty)
		api.PUT("/parties/:id", handlers.UpdateParty)
		api.DELETE("/parties/:id", handlers.DeleteParty)

		// Items & stock
		api.POST("/items", handlers.CreateItem)
		api.GET("/items", handlers.GetItems)
		api.GET("/items/summary", handlers.GetInventorySummary)
		api.GET("/items/:id", handlers.GetItem)
		api.PUT("/items/:id", handlers.UpdateItem)
		api.DELETE("/items/:id", handlers.DeleteItem)
		api.POST("/items/:id/adjust-stock", handlers.AdjustItemStock)

		// Transactions (all writes go through the engine)
		api.POST("/invoices", handlers.CreateInvoice)
		api.POST("/purchases", handlers.CreatePurchase)
		api.GET("/transactions", handlers.GetTransactions)
		api.GET("/transactions/summary", handlers.GetTransactionSummary)
		api.GET("/transactions/:id", handlers.GetTransaction)
		api.DELETE("/transactions/:id", handlers.DeleteTransaction)
		api.PATCH("/transactions/:id/status", handlers.UpdateTransactionStatus)

		// Expenses
		api.POST("/expenses", handlers.CreateExpense)
		api.GET("/expenses", handlers.GetExpenses)
		api.GET("/expenses/monthly", handlers.GetMonthlyExpenseReport)
		api.GET("/expenses/categories", handlers.GetExpenseCategoryBreakdown)
		api.GET("/expenses/:id", handlers.GetExpense)
		api.PUT("/expenses/:id", handlers.UpdateExpense)
		api.PATCH("/expenses/:id/vendor", handlers.AssignExpenseVendor)
		api.DELETE("/expenses/:id", handlers.DeleteExpense)

		// Reports
		api.GET("/reports/sales", handlers.GetSalesReport)
		api.GET("/reports/purchases", handlers.GetPurchaseReport)
		api.GET("/reports/gst", handlers.GetGSTReport)
		api.GET("/reports/profit-loss", handlers.GetProfitLossReport)
		api.GET("/reports/stock", handlers.GetStockSummary)
		api.GET("/reports/stock/export", handlers.ExportStockSummary)
		api.GET("/reports/parties/:id/ledger", handlers.GetPartyLedger)

		// Settings & backup
		api.GET("/settings", handlers.GetSettings)
		api.PUT("/settings/invoice", handlers.UpdateInvoiceSettings)
		api.GET("/settings/next-invoice-number", handlers.GetNextInvoiceNumber)
		api.GET("/settings/backup", handlers.BackupData)
		api.POST("/settings/restore", handlers.RestoreData)

		// AI assistant
		api.POST("/ask", handlers.AskAI)
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("🚀 Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
