package llm

import (
	"fmt"
	"strings"
)

// BusinessSnapshot is the shop context given to the assistant on every chat turn
type BusinessSnapshot struct {
	OwnerName     string
	BusinessName  string
	Currency      string
	TodaySales    float64
	TodayExpenses float64
	OpenDebts     float64
	LowStock      []string
}

// BuildAssistantPrompt membuat system prompt untuk Soko Assistant
func BuildAssistantPrompt(s *BusinessSnapshot) string {
	var sb strings.Builder

	currency := s.Currency
	if currency == "" {
		currency = "KES"
	}

	sb.WriteString("You are Soko Assistant, a friendly bookkeeping helper for small shop owners in Kenya.\n")
	sb.WriteString("Reply in the same language the user writes in (English or Kiswahili). Keep answers short.\n\n")

	if s.BusinessName != "" || s.OwnerName != "" {
		sb.WriteString("=== BUSINESS ===\n")
		if s.BusinessName != "" {
			sb.WriteString(fmt.Sprintf("Business: %s\n", s.BusinessName))
		}
		if s.OwnerName != "" {
			sb.WriteString(fmt.Sprintf("Owner: %s\n", s.OwnerName))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== TODAY ===\n")
	sb.WriteString(fmt.Sprintf("Sales: %s %.2f\n", currency, s.TodaySales))
	sb.WriteString(fmt.Sprintf("Expenses: %s %.2f\n", currency, s.TodayExpenses))
	if s.OpenDebts > 0 {
		sb.WriteString(fmt.Sprintf("Unpaid debts and loans: %s %.2f\n", currency, s.OpenDebts))
	}
	sb.WriteString("\n")

	if len(s.LowStock) > 0 {
		sb.WriteString("=== LOW STOCK ===\n")
		for _, name := range s.LowStock {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Instructions:\n")
	sb.WriteString("- When the user reports a sale, purchase, expense, debt or loan, restate it briefly and ask them to confirm it in the app\n")
	sb.WriteString("- Never claim a transaction was saved; saving only happens after the user confirms\n")
	sb.WriteString("- Use the figures above when asked about today's business\n")
	sb.WriteString("- If you do not know, say so honestly\n")

	return sb.String()
}
