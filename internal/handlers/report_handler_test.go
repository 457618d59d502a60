package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"
)

func TestSalesReportCountsOnlyCompletedSales(t *testing.T) {
	r, company, token := setupTest(t)
	customer := seedTestParty(t, company.ID, "Ravi Kumar", models.PartyTypeCustomer)
	item := seedTestItem(t, company.ID, "Steel Rod", 50)

	// Two invoices of 100 each, no GST.
	for i := 0; i < 2; i++ {
		w := doRequest(t, r, "POST", "/api/invoices", token, map[string]interface{}{
			"party_id": customer.ID,
			"line_items": []map[string]interface{}{
				{"item_id": item.ID, "quantity": 1, "rate": 100},
			},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("invoice %d: status = %d, body = %s", i+1, w.Code, w.Body.String())
		}
	}

	// Cancel the second one. Cancelling does not reverse stock, but it
	// must drop the sale out of every report figure.
	var cancelled models.Transaction
	if err := database.DB.Order("id desc").First(&cancelled).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	w := doRequest(t, r, "PATCH", fmt.Sprintf("/api/transactions/%d/status", cancelled.ID), token,
		map[string]string{"status": models.TxnStatusCancelled})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, "GET", "/api/reports/sales", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report: status = %d, body = %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["total_revenue"] != 100.0 {
		t.Errorf("total_revenue = %v, want 100", body["total_revenue"])
	}
	if body["total_count"] != 1.0 {
		t.Errorf("total_count = %v, want 1", body["total_count"])
	}
	if body["average_transaction_value"] != 100.0 {
		t.Errorf("average_transaction_value = %v, want 100", body["average_transaction_value"])
	}

	daily, ok := body["daily"].([]interface{})
	if !ok {
		t.Fatalf("missing daily breakdown in %v", body)
	}
	if len(daily) != 1 {
		t.Fatalf("daily buckets = %d, want 1", len(daily))
	}
	day := daily[0].(map[string]interface{})
	if day["total"] != 100.0 || day["count"] != 1.0 {
		t.Errorf("daily bucket = %v, want total 100, count 1", day)
	}
}
