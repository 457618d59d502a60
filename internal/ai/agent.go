package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers one bookkeeping question with tool access to the caller's
// company. Every tool is scoped to companyID; the model never sees another
// tenant's books.
func RunAgent(userMessage string, apiKey string, companyID uint) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are a bookkeeping assistant for a small business.

	RULES:
	1. READ: If the user asks about STOCK, PRICE, or ITEM DETAILS:
	   - Call 'check_inventory' to get the full item list.
	   - Read the JSON to find the specific item and answer the user.
	   - Do NOT say "I cannot check stock". You CAN, via check_inventory.

	2. SALES: If the user asks about sales, revenue, or turnover, use
	   'get_sales_report' with a date range. Use today's date for open ranges.

	3. RECORD: If the user reports a cost they paid (rent, fuel, salaries),
	   use 'record_expense'. If they name a new customer or supplier, use
	   'create_party'. Confirm what you recorded in your answer.

	USER: %s`, today, userMessage)

	// --- DEFINE TOOLS ---
	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY item details like ID, Name, Unit, Selling Price, or Current Stock.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get total sales revenue and invoice count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "create_party",
					Description: "Add a new customer or supplier to the books.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name": {Type: genai.TypeString, Description: "Name of the party"},
							"type": {Type: genai.TypeString, Description: "One of: Customer, Supplier, Both"},
						},
						Required: []string{"name", "type"},
					},
				},
				{
					Name:        "record_expense",
					Description: "Record a business expense with a category and amount.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"category":    {Type: genai.TypeString, Description: "Expense category (Rent, Utilities, Salaries, etc)"},
							"amount":      {Type: genai.TypeNumber, Description: "Amount spent"},
							"description": {Type: genai.TypeString, Description: "What the money was spent on"},
						},
						Required: []string{"category", "amount"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	// --- HANDLE TOOL CALLS ---
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, session, companyID)
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall, companyID), nil
			case "create_party":
				return executeCreateParty(ctx, session, funcCall, companyID), nil
			case "record_expense":
				return executeRecordExpense(ctx, session, funcCall, companyID), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- TOOL EXECUTORS ---

func executeCheckInventory(ctx context.Context, session *genai.ChatSession, companyID uint) (string, error) {
	var items []models.Item
	database.DB.Where("company_id = ? AND is_deleted = ?", companyID, false).Find(&items)

	type SimpleItem struct {
		ID    uint    `json:"id"`
		Name  string  `json:"name"`
		Unit  string  `json:"unit"`
		Stock float64 `json:"stock"`
		Price float64 `json:"price"`
	}
	var simpleList []SimpleItem
	for _, item := range items {
		simpleList = append(simpleList, SimpleItem{
			ID:    item.ID,
			Name:  item.Name,
			Unit:  item.Unit,
			Stock: item.CurrentStock,
			Price: item.SellingPrice,
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall, companyID uint) string {
	args := funcCall.Args
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	totals, err := database.GetSalesTotals(companyID, &start, &end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":       totals.TotalRevenue,
			"invoice_count": totals.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeCreateParty(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall, companyID uint) string {
	args := funcCall.Args
	name, _ := args["name"].(string)
	partyType, _ := args["type"].(string)

	if partyType != models.PartyTypeCustomer && partyType != models.PartyTypeSupplier && partyType != models.PartyTypeBoth {
		partyType = models.PartyTypeCustomer
	}

	party := models.Party{
		CompanyID: companyID,
		Name:      name,
		Type:      partyType,
	}
	status := "created"
	if err := database.DB.Create(&party).Error; err != nil {
		status = "failed"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "create_party",
		Response: map[string]interface{}{"status": status, "id": party.ID, "name": party.Name, "type": party.Type},
	})
	return printResponse(finalResp)
}

func executeRecordExpense(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall, companyID uint) string {
	args := funcCall.Args
	category, _ := args["category"].(string)
	amount, _ := args["amount"].(float64)
	description, _ := args["description"].(string)

	if amount <= 0 {
		return "Error: Expense amount must be greater than zero."
	}

	expense := models.Expense{
		CompanyID:   companyID,
		Date:        time.Now(),
		Category:    category,
		Amount:      amount,
		Description: description,
	}
	status := "recorded"
	if err := database.DB.Create(&expense).Error; err != nil {
		status = "failed"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "record_expense",
		Response: map[string]interface{}{"status": status, "id": expense.ID, "category": category, "amount": amount},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
