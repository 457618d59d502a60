package models

import (
	"time"
)

// Party type tags gate which transaction types a party may appear on.
const (
	PartyTypeCustomer = "Customer"
	PartyTypeSupplier = "Supplier"
	PartyTypeBoth     = "Both"
)

// Transaction types
const (
	TxnTypeSale     = "Sale"
	TxnTypePurchase = "Purchase"
	TxnTypeEstimate = "Estimate"
)

// Transaction statuses
const (
	TxnStatusPending   = "Pending"
	TxnStatusCompleted = "Completed"
	TxnStatusCancelled = "Cancelled"
)

// User - The account holder. Owns exactly one active Company.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:100" json:"email"`
	MobileNumber string    `gorm:"uniqueIndex;size:20" json:"mobile_number"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	IsDeleted    bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Company - The tenant boundary. Every Party, Item, Transaction and Expense
// hangs off one Company. Also carries the invoice numbering sequence.
type Company struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index" json:"user_id"`
	Name          string    `gorm:"size:100" json:"name"`
	Address       string    `gorm:"size:255" json:"address"`
	Email         string    `gorm:"size:100" json:"email"`
	InvoicePrefix string    `gorm:"size:10;default:INV" json:"invoice_prefix"`
	CurrentNumber int       `gorm:"default:1000" json:"current_number"`
	IncrementBy   int       `gorm:"default:1" json:"increment_by"`
	IsDeleted     bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Party - A customer, supplier, or both, scoped to one Company.
type Party struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"index" json:"company_id"`
	Name         string    `gorm:"size:100" json:"name"`
	Type         string    `gorm:"size:20;default:Customer" json:"type"` // 'Customer', 'Supplier', 'Both'
	Email        string    `gorm:"size:100" json:"email"`
	MobileNumber string    `gorm:"size:20" json:"mobile_number"`
	Address      string    `gorm:"size:255" json:"address"`
	GSTNumber    string    `gorm:"size:20" json:"gst_number"`
	IsDeleted    bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item - A stock-keeping unit. CurrentStock is the ledger balance and is
// only written by the ledger engine (transactions and manual adjustments).
type Item struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CompanyID     uint      `gorm:"index" json:"company_id"`
	Name          string    `gorm:"size:150" json:"name"`
	Unit          string    `gorm:"size:20" json:"unit"` // e.g. 'pcs', 'kg', 'hr'
	Description   string    `gorm:"size:255" json:"description"`
	SellingPrice  float64   `json:"selling_price"`
	PurchasePrice float64   `json:"purchase_price"`
	CurrentStock  float64   `json:"current_stock"` // fractional quantities allowed
	IsDeleted     bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Transaction - The commercial event header (invoice / purchase bill).
type Transaction struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	CompanyID     uint                  `gorm:"index" json:"company_id"`
	PartyID       uint                  `gorm:"index" json:"party_id"`
	InvoiceNumber string                `gorm:"size:20" json:"invoice_number"`
	Date          time.Time             `json:"date"`
	Type          string                `gorm:"size:20;default:Sale" json:"type"`      // 'Sale', 'Purchase', 'Estimate'
	Status        string                `gorm:"size:20;default:Pending" json:"status"` // 'Pending', 'Completed', 'Cancelled'
	TotalAmount   float64               `json:"total_amount"`                          // derived, persisted for query speed
	PaymentMode   string                `gorm:"size:50" json:"payment_mode"`
	IsDeleted     bool                  `gorm:"default:false" json:"is_deleted"`
	LineItems     []TransactionLineItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TransactionLineItem - One priced quantity of one Item inside a Transaction.
// ItemName snapshots the item's name at creation so later renames do not
// rewrite historical invoices. Immutable once created.
type TransactionLineItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"index" json:"transaction_id"`
	ItemID        uint      `gorm:"index" json:"item_id"`
	ItemName      string    `gorm:"size:150" json:"item_name"`
	Quantity      float64   `json:"quantity"`
	Rate          float64   `json:"rate"`
	Discount      float64   `json:"discount"` // flat amount, not a percentage
	LineTotal     float64   `json:"line_total"`
	CreatedAt     time.Time `json:"created_at"`
}

// Expense - A cost record, optionally attributed to a Party as vendor.
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"index" json:"company_id"`
	PartyID     *uint     `gorm:"index" json:"party_id"` // nullable vendor reference
	Date        time.Time `json:"date"`
	Category    string    `gorm:"size:100" json:"category"` // e.g. 'Rent', 'Utilities', 'Salaries'
	Amount      float64   `json:"amount"`
	Description string    `gorm:"size:255" json:"description"`
	PaymentMode string    `gorm:"size:50" json:"payment_mode"`
	IsDeleted   bool      `gorm:"default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
