package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const topN = 3

// ReportService builds business summaries from the ledger
type ReportService struct {
	transactions repositories.TransactionRepo
	inventory    repositories.InventoryRepo
	now          func() time.Time
}

func NewReportService(repos *repositories.Set) *ReportService {
	return &ReportService{
		transactions: repos.Transactions,
		inventory:    repos.Inventory,
		now:          time.Now,
	}
}

// Summary reports income, expenses, top sellers and stock for one period
func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID, period *analytics.DateRange) (*models.BusinessSummary, error) {
	transactions, err := s.transactions.ListBetween(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	stock, err := s.inventory.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	return BuildSummary(period, transactions, stock), nil
}

// Snapshot is today's figures handed to the assistant prompt
func (s *ReportService) Snapshot(ctx context.Context, userID uuid.UUID) (*llm.BusinessSnapshot, error) {
	today := analytics.DateRangeAt(analytics.PeriodToday, s.now())

	transactions, err := s.transactions.ListBetween(ctx, userID, today.Start, today.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's transactions: %w", err)
	}
	debts, err := s.transactions.ListUnpaidLiabilities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debts: %w", err)
	}
	lowStock, err := s.inventory.ListLowStock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}

	snapshot := &llm.BusinessSnapshot{Currency: "KES"}
	for _, tx := range transactions {
		switch {
		case isIncome(tx.Type):
			snapshot.TodaySales += tx.Amount.InexactFloat64()
		case isExpense(tx.Type):
			snapshot.TodayExpenses += tx.Amount.InexactFloat64()
		}
	}
	for _, tx := range debts {
		snapshot.OpenDebts += tx.Amount.InexactFloat64()
	}
	for _, item := range lowStock {
		snapshot.LowStock = append(snapshot.LowStock, fmt.Sprintf("%s (%s %s left)", item.Name, humanize.Ftoa(item.CurrentQuantity), item.Unit))
	}

	return snapshot, nil
}

// BuildSummary aggregates transactions and inventory into a report.
// Sales count as income; purchases and expenses count as expenses.
func BuildSummary(period *analytics.DateRange, transactions []models.Transaction, stock []models.InventoryItem) *models.BusinessSummary {
	summary := &models.BusinessSummary{
		Period:           *period,
		TransactionCount: len(transactions),
		TopSellingItems:  []models.ItemSales{},
		TopCustomers:     []models.CustomerSpend{},
	}

	items := map[string]*models.ItemSales{}
	customers := map[string]*models.CustomerSpend{}
	var incomePoints, expensePoints []analytics.TrendPoint

	for _, tx := range transactions {
		amount := tx.Amount.InexactFloat64()

		switch {
		case isIncome(tx.Type):
			summary.TotalIncome += amount
			incomePoints = append(incomePoints, analytics.TrendPoint{At: tx.OccurredAt, Amount: amount})

			for _, item := range tx.Items {
				key := extraction.NormalizeName(item.Name)
				if key == "" || key == extraction.PlaceholderItemName {
					continue
				}
				entry, ok := items[key]
				if !ok {
					entry = &models.ItemSales{Name: key}
					items[key] = entry
				}
				entry.Quantity += item.Quantity
				entry.Revenue += item.TotalPrice
			}

			if tx.CustomerName != nil && strings.TrimSpace(*tx.CustomerName) != "" {
				key := extraction.NormalizeName(*tx.CustomerName)
				entry, ok := customers[key]
				if !ok {
					entry = &models.CustomerSpend{Name: strings.TrimSpace(*tx.CustomerName)}
					customers[key] = entry
				}
				entry.TotalSpent += amount
				entry.Purchases++
			}

		case isExpense(tx.Type):
			summary.TotalExpenses += amount
			expensePoints = append(expensePoints, analytics.TrendPoint{At: tx.OccurredAt, Amount: amount})

		default:
			if tx.Status == models.StatusUnpaid {
				summary.OutstandingDebts += amount
			}
		}
	}

	summary.TotalIncome = round2(summary.TotalIncome)
	summary.TotalExpenses = round2(summary.TotalExpenses)
	summary.OutstandingDebts = round2(summary.OutstandingDebts)
	summary.NetProfit = round2(summary.TotalIncome - summary.TotalExpenses)
	if summary.TotalIncome > 0 {
		summary.ProfitMargin = math.Round(summary.NetProfit/summary.TotalIncome*1000) / 10
	}

	for _, entry := range items {
		entry.Revenue = round2(entry.Revenue)
		summary.TopSellingItems = append(summary.TopSellingItems, *entry)
	}
	slices.SortFunc(summary.TopSellingItems, func(a, b models.ItemSales) int {
		return cmp.Or(cmp.Compare(b.Revenue, a.Revenue), cmp.Compare(a.Name, b.Name))
	})
	if len(summary.TopSellingItems) > topN {
		summary.TopSellingItems = summary.TopSellingItems[:topN]
	}

	for _, entry := range customers {
		entry.TotalSpent = round2(entry.TotalSpent)
		summary.TopCustomers = append(summary.TopCustomers, *entry)
	}
	slices.SortFunc(summary.TopCustomers, func(a, b models.CustomerSpend) int {
		return cmp.Or(cmp.Compare(b.TotalSpent, a.TotalSpent), cmp.Compare(a.Name, b.Name))
	})
	if len(summary.TopCustomers) > topN {
		summary.TopCustomers = summary.TopCustomers[:topN]
	}

	for i := range stock {
		summary.StockValue += stock[i].StockValue().InexactFloat64()
		if stock[i].IsLowStock() {
			summary.LowStockCount++
		}
	}
	summary.StockValue = round2(summary.StockValue)

	summary.Trend = analytics.BuildTrendChart(
		analytics.GetDailyRanges(period.Start, period.End),
		map[string][]analytics.TrendPoint{"Income": incomePoints, "Expenses": expensePoints},
		"Income", "Expenses",
	)

	return summary
}

// FormatSummary renders a summary as the assistant's chat reply
func FormatSummary(summary *models.BusinessSummary, downloadURL string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("I've generated your business report for **%s**!\n\n", summary.Period.Label))
	sb.WriteString("📊 **Summary:**\n")
	sb.WriteString(fmt.Sprintf("• Total Income: KES %s\n", kes(summary.TotalIncome)))
	sb.WriteString(fmt.Sprintf("• Total Expenses: KES %s\n", kes(summary.TotalExpenses)))
	sb.WriteString(fmt.Sprintf("• Net Profit: KES %s (%.1f%% margin)\n", kes(summary.NetProfit), summary.ProfitMargin))
	sb.WriteString(fmt.Sprintf("• Transactions: %d\n\n", summary.TransactionCount))

	sb.WriteString("🏆 **Top Selling Items:**\n")
	if len(summary.TopSellingItems) == 0 {
		sb.WriteString("No sales recorded\n")
	}
	for i, item := range summary.TopSellingItems {
		sb.WriteString(fmt.Sprintf("%d. %s - %s units, KES %s\n", i+1, item.Name, humanize.Ftoa(item.Quantity), kes(item.Revenue)))
	}

	sb.WriteString("\n👥 **Top Customers:**\n")
	if len(summary.TopCustomers) == 0 {
		sb.WriteString("No named customers\n")
	}
	for i, c := range summary.TopCustomers {
		sb.WriteString(fmt.Sprintf("%d. %s - KES %s\n", i+1, c.Name, kes(c.TotalSpent)))
	}

	sb.WriteString("\n📦 **Inventory:**\n")
	sb.WriteString(fmt.Sprintf("• Stock Value: KES %s\n", kes(summary.StockValue)))
	sb.WriteString(fmt.Sprintf("• Low Stock Items: %d\n", summary.LowStockCount))

	if downloadURL != "" {
		sb.WriteString(fmt.Sprintf("\nClick here to download the full CSV report: %s", downloadURL))
	}

	return sb.String()
}

func isIncome(t extraction.TransactionType) bool {
	return t == extraction.TypeSale
}

func isExpense(t extraction.TransactionType) bool {
	return t == extraction.TypePurchase || t == extraction.TypeExpense
}

func kes(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
