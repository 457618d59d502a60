package ledger

import (
	"errors"
	"fmt"
	"testing"

	"go-bizbooks/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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
	return db
}

func seedCompany(t *testing.T, db *gorm.DB) models.Company {
	t.Helper()
	company := models.Company{
		UserID:        1,
		Name:          "Acme Traders",
		InvoicePrefix: "INV",
		CurrentNumber: 1000,
		IncrementBy:   1,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company
}

func seedParty(t *testing.T, db *gorm.DB, companyID uint, name, partyType string) models.Party {
	t.Helper()
	party := models.Party{CompanyID: companyID, Name: name, Type: partyType}
	if err := db.Create(&party).Error; err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return party
}

func seedItem(t *testing.T, db *gorm.DB, companyID uint, name string, stock float64) models.Item {
	t.Helper()
	item := models.Item{
		CompanyID:     companyID,
		Name:          name,
		Unit:          "pcs",
		SellingPrice:  100,
		PurchasePrice: 60,
		CurrentStock:  stock,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func reloadItem(t *testing.T, db *gorm.DB, id uint) models.Item {
	t.Helper()
	var item models.Item
	if err := db.First(&item, id).Error; err != nil {
		t.Fatalf("reload item %d: %v", id, err)
	}
	return item
}

func TestCreateTransactionComputesTotalsAndStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	result, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		GSTRate:   10,
		LineItems: []LineItemInput{
			{ItemID: item.ID, Quantity: 5, Rate: 100, Discount: 5},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// 5*100 - 5 = 495, tax 49.5, total 544.5
	if result.Subtotal != 495 {
		t.Errorf("subtotal = %v, want 495", result.Subtotal)
	}
	if result.TaxAmount != 49.5 {
		t.Errorf("tax = %v, want 49.5", result.TaxAmount)
	}
	if result.TotalAmount != 544.5 {
		t.Errorf("total = %v, want 544.5", result.TotalAmount)
	}
	if result.Transaction.TotalAmount != 544.5 {
		t.Errorf("persisted total = %v, want 544.5", result.Transaction.TotalAmount)
	}
	if result.Transaction.Status != models.TxnStatusCompleted {
		t.Errorf("status = %q, want Completed", result.Transaction.Status)
	}
	if len(result.Transaction.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(result.Transaction.LineItems))
	}
	if result.Transaction.LineItems[0].LineTotal != 495 {
		t.Errorf("line total = %v, want 495", result.Transaction.LineItems[0].LineTotal)
	}
	if result.Transaction.LineItems[0].ItemName != "Steel Rod" {
		t.Errorf("item name snapshot = %q, want Steel Rod", result.Transaction.LineItems[0].ItemName)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 45 {
		t.Errorf("stock after sale = %v, want 45", got)
	}
}

func TestCreateTransactionAssignsSequentialInvoiceNumbers(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	want := []string{"INV-01000", "INV-01001"}
	for i, expected := range want {
		result, err := engine.CreateTransaction(CreateTransactionInput{
			CompanyID: company.ID,
			PartyID:   customer.ID,
			Type:      models.TxnTypeSale,
			GSTRate:   0,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
		})
		if err != nil {
			t.Fatalf("sale %d: %v", i+1, err)
		}
		if result.Transaction.InvoiceNumber != expected {
			t.Errorf("invoice %d = %q, want %q", i+1, result.Transaction.InvoiceNumber, expected)
		}
	}

	var company2 models.Company
	if err := db.First(&company2, company.ID).Error; err != nil {
		t.Fatalf("reload company: %v", err)
	}
	if company2.CurrentNumber != 1002 {
		t.Errorf("counter = %d, want 1002", company2.CurrentNumber)
	}
}

func TestCreateTransactionPurchaseAddsStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	supplier := seedParty(t, db, company.ID, "Mehta Wholesale", models.PartyTypeSupplier)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   supplier.ID,
		Type:      models.TxnTypePurchase,
		GSTRate:   5,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 30, Rate: 60}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 80 {
		t.Errorf("stock after purchase = %v, want 80", got)
	}
}

func TestCreateTransactionAggregatesDuplicateItemLines(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 10)

	// The same item on two lines: the stock effect is the sum of both.
	result, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{
			{ItemID: item.ID, Quantity: 3, Rate: 100},
			{ItemID: item.ID, Quantity: 4, Rate: 90},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 3 {
		t.Errorf("stock = %v, want 3 (10 - 3 - 4)", got)
	}
	if len(result.Transaction.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(result.Transaction.LineItems))
	}
	if result.Subtotal != 660 {
		t.Errorf("subtotal = %v, want 660", result.Subtotal)
	}

	// A purchase accumulates the same way.
	supplier := seedParty(t, db, company.ID, "Mehta Wholesale", models.PartyTypeSupplier)
	if _, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   supplier.ID,
		Type:      models.TxnTypePurchase,
		LineItems: []LineItemInput{
			{ItemID: item.ID, Quantity: 5, Rate: 60},
			{ItemID: item.ID, Quantity: 2, Rate: 60},
		},
	}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got := reloadItem(t, db, item.ID).CurrentStock; got != 10 {
		t.Errorf("stock after purchase = %v, want 10 (3 + 5 + 2)", got)
	}
}

func TestCreateTransactionDuplicateLinesCumulativeFloor(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 5)

	// Each line alone fits in stock; together they do not. Strict mode
	// must reject on the cumulative quantity.
	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{
			{ItemID: item.ID, Quantity: 4, Rate: 100},
			{ItemID: item.ID, Quantity: 4, Rate: 100},
		},
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if ce.Message != "Insufficient stock for Steel Rod. Current stock: 5, requested: 8" {
		t.Errorf("message = %q", ce.Message)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 5 {
		t.Errorf("stock = %v, want unchanged 5", got)
	}
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction count = %d, want 0", count)
	}
}

func TestCreateTransactionRejectsWrongPartyType(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	supplier := seedParty(t, db, company.ID, "Mehta Wholesale", models.PartyTypeSupplier)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	both := seedParty(t, db, company.ID, "Sharma & Sons", models.PartyTypeBoth)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	line := []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}}

	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID, PartyID: supplier.ID, Type: models.TxnTypeSale, LineItems: line,
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("sale to supplier: got %v, want ValidationError", err)
	}
	if ve.Message != "Party must be a Customer to create invoice" {
		t.Errorf("message = %q", ve.Message)
	}

	_, err = engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypePurchase, LineItems: line,
	})
	if !errors.As(err, &ve) {
		t.Fatalf("purchase from customer: got %v, want ValidationError", err)
	}

	// 'Both' parties pass either gate.
	if _, err = engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID, PartyID: both.ID, Type: models.TxnTypeSale, LineItems: line,
	}); err != nil {
		t.Errorf("sale to Both party: %v", err)
	}
	if _, err = engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID, PartyID: both.ID, Type: models.TxnTypePurchase, LineItems: line,
	}); err != nil {
		t.Errorf("purchase from Both party: %v", err)
	}

	// Nothing was written by the rejected calls: two transactions exist.
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 2 {
		t.Errorf("transaction count = %d, want 2", count)
	}
}

func TestCreateTransactionInputValidation(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	cases := []struct {
		name string
		in   CreateTransactionInput
	}{
		{"estimate type", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeEstimate,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
		}},
		{"missing party", CreateTransactionInput{
			CompanyID: company.ID, Type: models.TxnTypeSale,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
		}},
		{"empty lines", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale,
		}},
		{"gst above 100", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale, GSTRate: 101,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
		}},
		{"negative gst", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale, GSTRate: -1,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
		}},
		{"zero quantity", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 0, Rate: 100}},
		}},
		{"negative rate", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: -1}},
		}},
		{"negative discount", CreateTransactionInput{
			CompanyID: company.ID, PartyID: customer.ID, Type: models.TxnTypeSale,
			LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100, Discount: -1}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CreateTransaction(tc.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 50 {
		t.Errorf("stock = %v, want unchanged 50", got)
	}
}

func TestCreateTransactionInsufficientStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 3)

	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 5, Rate: 100}},
	})

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if ce.Message != "Insufficient stock for Steel Rod. Current stock: 3, requested: 5" {
		t.Errorf("message = %q", ce.Message)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 3 {
		t.Errorf("stock = %v, want unchanged 3", got)
	}
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction count = %d, want 0", count)
	}
}

func TestCreateTransactionAllowNegativeStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{AllowNegativeStock: true})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 3)

	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 5, Rate: 100}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != -2 {
		t.Errorf("stock = %v, want -2", got)
	}
}

func TestCreateTransactionRollsBackOnMissingItem(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{
			{ItemID: item.ID, Quantity: 5, Rate: 100},
			{ItemID: 9999, Quantity: 1, Rate: 10},
		},
	})

	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if nfe.Message != "Item 9999 not found" {
		t.Errorf("message = %q", nfe.Message)
	}

	// The whole unit rolled back: no stock change, no rows, no counter move.
	if got := reloadItem(t, db, item.ID).CurrentStock; got != 50 {
		t.Errorf("stock = %v, want unchanged 50", got)
	}
	var txnCount, lineCount int64
	db.Model(&models.Transaction{}).Count(&txnCount)
	db.Model(&models.TransactionLineItem{}).Count(&lineCount)
	if txnCount != 0 || lineCount != 0 {
		t.Errorf("rows = %d transactions, %d lines; want 0, 0", txnCount, lineCount)
	}
	var company2 models.Company
	db.First(&company2, company.ID)
	if company2.CurrentNumber != 1000 {
		t.Errorf("counter = %d, want unchanged 1000", company2.CurrentNumber)
	}
}

func TestReverseTransactionRestoresStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	result, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 5, Rate: 100}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	reversed, err := engine.ReverseTransaction(company.ID, result.Transaction.ID)
	if err != nil {
		t.Fatalf("ReverseTransaction: %v", err)
	}
	if !reversed.IsDeleted {
		t.Error("reversed transaction should be soft-deleted")
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != 50 {
		t.Errorf("stock after reversal = %v, want 50", got)
	}

	// Reversing twice must fail: the transaction is already gone.
	_, err = engine.ReverseTransaction(company.ID, result.Transaction.ID)
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("second reversal: got %v, want NotFoundError", err)
	}
	if got := reloadItem(t, db, item.ID).CurrentStock; got != 50 {
		t.Errorf("stock after double reversal attempt = %v, want 50", got)
	}
}

func TestReversePurchaseMayDriveStockNegative(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	supplier := seedParty(t, db, company.ID, "Mehta Wholesale", models.PartyTypeSupplier)
	item := seedItem(t, db, company.ID, "Steel Rod", 0)

	result, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   supplier.ID,
		Type:      models.TxnTypePurchase,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 10, Rate: 60}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	// Sell part of the purchased stock, then reverse the purchase. The
	// reversal must fully undo the original even though the balance dips
	// below zero.
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	if _, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 4, Rate: 100}},
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	if _, err := engine.ReverseTransaction(company.ID, result.Transaction.ID); err != nil {
		t.Fatalf("ReverseTransaction: %v", err)
	}

	if got := reloadItem(t, db, item.ID).CurrentStock; got != -4 {
		t.Errorf("stock = %v, want -4", got)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	result, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: company.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 5, Rate: 100}},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	txn, err := engine.UpdateStatus(company.ID, result.Transaction.ID, models.TxnStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if txn.Status != models.TxnStatusCancelled {
		t.Errorf("status = %q, want Cancelled", txn.Status)
	}

	// A status change never touches stock. Reversal is the undo path.
	if got := reloadItem(t, db, item.ID).CurrentStock; got != 45 {
		t.Errorf("stock after cancel = %v, want 45", got)
	}

	_, err = engine.UpdateStatus(company.ID, result.Transaction.ID, "Archived")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("bad status: got %v, want ValidationError", err)
	}

	_, err = engine.UpdateStatus(company.ID, 9999, models.TxnStatusPending)
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("missing transaction: got %v, want NotFoundError", err)
	}
}

func TestAdjustStock(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	adj, err := engine.AdjustStock(company.ID, item.ID, -8, "damage", "water damage in storage")
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if adj.PreviousStock != 50 || adj.NewStock != 42 || adj.Delta != -8 {
		t.Errorf("adjustment = %+v, want 50 -> 42", adj)
	}
	if got := reloadItem(t, db, item.ID).CurrentStock; got != 42 {
		t.Errorf("stock = %v, want 42", got)
	}

	// Down to exactly zero is allowed; below zero is not.
	if _, err := engine.AdjustStock(company.ID, item.ID, -42, "recount", ""); err != nil {
		t.Fatalf("adjust to zero: %v", err)
	}
	_, err = engine.AdjustStock(company.ID, item.ID, -1, "recount", "")
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("floor breach: got %v, want ConflictError", err)
	}
	if ce.Message != "Cannot reduce stock below zero. Current stock: 0" {
		t.Errorf("message = %q", ce.Message)
	}

	_, err = engine.AdjustStock(company.ID, item.ID, 5, "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("missing reason: got %v, want ValidationError", err)
	}

	_, err = engine.AdjustStock(company.ID, 9999, 5, "receipt", "")
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("missing item: got %v, want NotFoundError", err)
	}
}

func TestCompanyScopeIsEnforced(t *testing.T) {
	db := openTestDB(t)
	engine := New(db, Config{})

	company := seedCompany(t, db)
	other := models.Company{UserID: 2, Name: "Rival Books", InvoicePrefix: "RB", CurrentNumber: 1, IncrementBy: 1}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed second company: %v", err)
	}

	customer := seedParty(t, db, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedItem(t, db, company.ID, "Steel Rod", 50)

	// Another tenant's party and item must be invisible.
	_, err := engine.CreateTransaction(CreateTransactionInput{
		CompanyID: other.ID,
		PartyID:   customer.ID,
		Type:      models.TxnTypeSale,
		LineItems: []LineItemInput{{ItemID: item.ID, Quantity: 1, Rate: 100}},
	})
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("cross-tenant sale: got %v, want NotFoundError", err)
	}

	_, err = engine.AdjustStock(other.ID, item.ID, 5, "receipt", "")
	if !errors.As(err, &nfe) {
		t.Errorf("cross-tenant adjust: got %v, want NotFoundError", err)
	}
}
