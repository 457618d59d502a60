package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go-bizbooks/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine is the sole writer of Transaction, TransactionLineItem and
// Item.CurrentStock. Every operation runs its reads and writes inside one
// database transaction with row locks on the items (and company) it touches,
// so concurrent calls against the same item serialize instead of losing
// updates.
type Engine struct {
	db  *gorm.DB
	cfg Config
}

type Config struct {
	// AllowNegativeStock lets a Sale drive item stock below zero. Default
	// (false) rejects such sales with a ConflictError before any write.
	AllowNegativeStock bool
}

func New(db *gorm.DB, cfg Config) *Engine {
	return &Engine{db: db, cfg: cfg}
}

// LineItemInput is one requested line of a transaction.
type LineItemInput struct {
	ItemID   uint    `json:"item_id"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Discount float64 `json:"discount"` // flat amount, defaults to 0
}

// CreateTransactionInput carries everything needed for one invoice or
// purchase bill.
type CreateTransactionInput struct {
	CompanyID   uint
	PartyID     uint
	Type        string // Sale or Purchase
	Date        time.Time
	PaymentMode string
	GSTRate     float64
	LineItems   []LineItemInput
}

// CreateTransactionResult is the structured success payload: the persisted
// transaction plus the computed money breakdown.
type CreateTransactionResult struct {
	Transaction models.Transaction
	PartyName   string
	Subtotal    float64
	GSTRate     float64
	TaxAmount   float64
	TotalAmount float64
}

// StockAdjustment records the outcome of a manual stock correction.
type StockAdjustment struct {
	ItemID        uint      `json:"item_id"`
	ItemName      string    `json:"item_name"`
	Reason        string    `json:"reason"`
	Notes         string    `json:"notes"`
	PreviousStock float64   `json:"previous_stock"`
	Delta         float64   `json:"adjusted_quantity"`
	NewStock      float64   `json:"new_stock"`
	Timestamp     time.Time `json:"timestamp"`
}

// round2 rounds a money amount to 2 decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// lockForUpdate adds a FOR UPDATE clause on dialects that support it.
// SQLite has no row locks and rejects the syntax; its single-writer database
// lock already serializes the unit of work there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreateTransaction validates the party and line items, computes line totals,
// GST and the grand total, assigns the next invoice number off the company's
// counter, persists the header plus line items, and mutates item stock - all
// as one atomic unit. On any error nothing is written.
func (e *Engine) CreateTransaction(in CreateTransactionInput) (*CreateTransactionResult, error) {
	if in.Type != models.TxnTypeSale && in.Type != models.TxnTypePurchase {
		return nil, validationf("Type must be 'Sale' or 'Purchase'")
	}
	if in.PartyID == 0 {
		return nil, validationf("Party ID and a non-empty line items array are required")
	}
	if len(in.LineItems) == 0 {
		return nil, validationf("Party ID and a non-empty line items array are required")
	}
	if math.IsNaN(in.GSTRate) || in.GSTRate < 0 || in.GSTRate > 100 {
		return nil, validationf("Valid GST rate (0-100) is required")
	}
	for i, li := range in.LineItems {
		if li.ItemID == 0 || li.Quantity <= 0 {
			return nil, validationf("Line item %d must have an item ID and a quantity greater than zero", i+1)
		}
		if li.Rate < 0 {
			return nil, validationf("Line item %d rate must not be negative", i+1)
		}
		if li.Discount < 0 {
			return nil, validationf("Line item %d discount must not be negative", i+1)
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var result CreateTransactionResult

	err := e.db.Transaction(func(tx *gorm.DB) error {
		// Lock the company row: the invoice counter lives on it.
		var company models.Company
		if err := lockForUpdate(tx).
			Where("id = ? AND is_deleted = ?", in.CompanyID, false).
			First(&company).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("Company not found")
			}
			return err
		}

		var party models.Party
		if err := tx.
			Where("id = ? AND company_id = ? AND is_deleted = ?", in.PartyID, company.ID, false).
			First(&party).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("Party not found")
			}
			return err
		}

		// Type gating: a Sale needs a buyer, a Purchase needs a seller.
		switch in.Type {
		case models.TxnTypeSale:
			if party.Type != models.PartyTypeCustomer && party.Type != models.PartyTypeBoth {
				return validationf("Party must be a Customer to create invoice")
			}
		case models.TxnTypePurchase:
			if party.Type != models.PartyTypeSupplier && party.Type != models.PartyTypeBoth {
				return validationf("Party must be a Supplier to create purchase bill")
			}
		}

		// The same item may appear on several lines, so stock is tracked
		// per distinct item: each row is loaded and locked once, the
		// quantities accumulate, and the floor check and the stock write
		// both run against the cumulative delta.
		var subtotal float64
		items := make(map[uint]*models.Item, len(in.LineItems))
		qtyByItem := make(map[uint]float64, len(in.LineItems))
		itemOrder := make([]uint, 0, len(in.LineItems))
		lines := make([]models.TransactionLineItem, 0, len(in.LineItems))

		for _, li := range in.LineItems {
			item, loaded := items[li.ItemID]
			if !loaded {
				// Lock the item row so a concurrent call on the same item
				// cannot interleave its stock read with our write.
				item = &models.Item{}
				if err := lockForUpdate(tx).
					Where("id = ? AND company_id = ? AND is_deleted = ?", li.ItemID, company.ID, false).
					First(item).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return notFoundf("Item %d not found", li.ItemID)
					}
					return err
				}
				items[li.ItemID] = item
				itemOrder = append(itemOrder, li.ItemID)
			}
			qtyByItem[li.ItemID] += li.Quantity

			lineTotal := li.Quantity*li.Rate - li.Discount
			subtotal += lineTotal

			lines = append(lines, models.TransactionLineItem{
				ItemID:    item.ID,
				ItemName:  item.Name, // snapshot: renames must not rewrite history
				Quantity:  li.Quantity,
				Rate:      li.Rate,
				Discount:  li.Discount,
				LineTotal: lineTotal,
			})
		}

		if in.Type == models.TxnTypeSale && !e.cfg.AllowNegativeStock {
			for _, id := range itemOrder {
				item := items[id]
				if item.CurrentStock-qtyByItem[id] < 0 {
					return conflictf("Insufficient stock for %s. Current stock: %g, requested: %g",
						item.Name, item.CurrentStock, qtyByItem[id])
				}
			}
		}

		taxAmount := subtotal * in.GSTRate / 100
		totalAmount := round2(subtotal + taxAmount)

		// Consume the next invoice number off the locked company row.
		prefix := company.InvoicePrefix
		if prefix == "" {
			prefix = "INV"
		}
		increment := company.IncrementBy
		if increment < 1 {
			increment = 1
		}
		invoiceNumber := fmt.Sprintf("%s-%05d", prefix, company.CurrentNumber)
		company.CurrentNumber += increment
		if err := tx.Save(&company).Error; err != nil {
			return err
		}

		txn := models.Transaction{
			CompanyID:     company.ID,
			PartyID:       party.ID,
			InvoiceNumber: invoiceNumber,
			Date:          date,
			Type:          in.Type,
			Status:        models.TxnStatusCompleted,
			TotalAmount:   totalAmount,
			PaymentMode:   in.PaymentMode,
			LineItems:     lines,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		// Apply the stock effect once per distinct item: Sale subtracts
		// the item's cumulative quantity, Purchase adds it.
		for _, id := range itemOrder {
			item := items[id]
			if in.Type == models.TxnTypeSale {
				item.CurrentStock -= qtyByItem[id]
			} else {
				item.CurrentStock += qtyByItem[id]
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		result = CreateTransactionResult{
			Transaction: txn,
			PartyName:   party.Name,
			Subtotal:    round2(subtotal),
			GSTRate:     in.GSTRate,
			TaxAmount:   round2(taxAmount),
			TotalAmount: totalAmount,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "create transaction", Err: err}
	}
	return &result, nil
}

// ReverseTransaction undoes the stock effect of a transaction and marks it
// soft-deleted, atomically. A reversed Sale adds its quantities back; a
// reversed Purchase subtracts them (even below zero - the reversal must fully
// undo the original, and the non-negative rule binds manual adjustments only).
func (e *Engine) ReverseTransaction(companyID, transactionID uint) (*models.Transaction, error) {
	var reversed models.Transaction

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := lockForUpdate(tx).
			Where("id = ? AND company_id = ? AND is_deleted = ?", transactionID, companyID, false).
			First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("Transaction not found")
			}
			return err
		}

		var lines []models.TransactionLineItem
		if err := tx.Where("transaction_id = ?", txn.ID).Find(&lines).Error; err != nil {
			return err
		}

		// Estimates never touched stock; Sale/Purchase did at creation.
		if txn.Type == models.TxnTypeSale || txn.Type == models.TxnTypePurchase {
			for _, line := range lines {
				// No is_deleted filter here: stock on a since-deleted item
				// still has to be conserved.
				var item models.Item
				if err := lockForUpdate(tx).
					Where("id = ? AND company_id = ?", line.ItemID, txn.CompanyID).
					First(&item).Error; err != nil {
					return err
				}
				if txn.Type == models.TxnTypeSale {
					item.CurrentStock += line.Quantity
				} else {
					item.CurrentStock -= line.Quantity
				}
				if err := tx.Save(&item).Error; err != nil {
					return err
				}
			}
		}

		txn.IsDeleted = true
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}
		txn.LineItems = lines
		reversed = txn
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "reverse transaction", Err: err}
	}
	return &reversed, nil
}

// UpdateStatus transitions a transaction among Pending/Completed/Cancelled.
// Stock is mutated at creation time only; a status change never recomputes it
// (reversal is the documented way to undo a transaction's stock effect).
func (e *Engine) UpdateStatus(companyID, transactionID uint, status string) (*models.Transaction, error) {
	if status != models.TxnStatusPending &&
		status != models.TxnStatusCompleted &&
		status != models.TxnStatusCancelled {
		return nil, validationf("Status must be 'Pending', 'Completed', or 'Cancelled'")
	}

	var txn models.Transaction
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("id = ? AND company_id = ? AND is_deleted = ?", transactionID, companyID, false).
			First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("Transaction not found")
			}
			return err
		}
		txn.Status = status
		return tx.Save(&txn).Error
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "update transaction status", Err: err}
	}
	return &txn, nil
}

// AdjustStock applies a manual stock correction with a reason code. The
// adjustment is rejected if it would drive stock below zero.
func (e *Engine) AdjustStock(companyID, itemID uint, delta float64, reason, notes string) (*StockAdjustment, error) {
	if math.IsNaN(delta) {
		return nil, validationf("Quantity adjustment is required and must be a number")
	}
	if reason == "" {
		return nil, validationf("Reason for adjustment is required (e.g., 'damage', 'recount', 'receipt')")
	}

	var adjustment StockAdjustment

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := lockForUpdate(tx).
			Where("id = ? AND company_id = ? AND is_deleted = ?", itemID, companyID, false).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("Item not found")
			}
			return err
		}

		previous := item.CurrentStock
		newStock := previous + delta
		if newStock < 0 {
			return conflictf("Cannot reduce stock below zero. Current stock: %g", previous)
		}

		item.CurrentStock = newStock
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		adjustment = StockAdjustment{
			ItemID:        item.ID,
			ItemName:      item.Name,
			Reason:        reason,
			Notes:         notes,
			PreviousStock: previous,
			Delta:         delta,
			NewStock:      newStock,
			Timestamp:     item.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "adjust stock", Err: err}
	}
	return &adjustment, nil
}
