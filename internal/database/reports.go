package database

import (
	"time"

	"go-bizbooks/internal/models"

	"gorm.io/gorm"
)

// Aggregate queries shared by the report endpoints and the AI assistant's
// tools. Everything here is read-only and respects soft deletion.

// SalesTotals is the headline block of the sales report.
type SalesTotals struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCount   int64   `json:"total_count"`
}

// Only Completed transactions count towards report figures: a Pending or
// Cancelled sale is not revenue.
func transactionScope(companyID uint, txnType string, from, to *time.Time) *gorm.DB {
	q := DB.Model(&models.Transaction{}).
		Where("company_id = ? AND type = ? AND status = ? AND is_deleted = ?",
			companyID, txnType, models.TxnStatusCompleted, false)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	return q
}

// TransactionTotal sums total_amount over Completed, non-deleted
// transactions of one type, optionally windowed by date.
func TransactionTotal(companyID uint, txnType string, from, to *time.Time) (float64, error) {
	var total float64
	err := transactionScope(companyID, txnType, from, to).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

// TransactionCount counts Completed, non-deleted transactions of one type
// in a window.
func TransactionCount(companyID uint, txnType string, from, to *time.Time) (int64, error) {
	var count int64
	err := transactionScope(companyID, txnType, from, to).Count(&count).Error
	return count, err
}

// GetSalesTotals bundles revenue and count for one query site (the AI agent's
// sales tool and the sales report header).
func GetSalesTotals(companyID uint, from, to *time.Time) (*SalesTotals, error) {
	var totals SalesTotals
	var err error
	if totals.TotalRevenue, err = TransactionTotal(companyID, models.TxnTypeSale, from, to); err != nil {
		return nil, err
	}
	if totals.TotalCount, err = TransactionCount(companyID, models.TxnTypeSale, from, to); err != nil {
		return nil, err
	}
	return &totals, nil
}

// ExpenseTotal sums non-deleted expenses, optionally windowed by date.
func ExpenseTotal(companyID uint, from, to *time.Time) (float64, error) {
	q := DB.Model(&models.Expense{}).
		Where("company_id = ? AND is_deleted = ?", companyID, false)
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	var total float64
	err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
