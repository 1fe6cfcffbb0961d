package models

import "github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"

// ItemSales is revenue and volume of one sold item
type ItemSales struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// CustomerSpend is what one customer bought in a period
type CustomerSpend struct {
	Name       string  `json:"name"`
	TotalSpent float64 `json:"total_spent"`
	Purchases  int     `json:"purchases"`
}

// BusinessSummary is the report for one period
type BusinessSummary struct {
	Period           analytics.DateRange `json:"period"`
	TotalIncome      float64             `json:"total_income"`
	TotalExpenses    float64             `json:"total_expenses"`
	NetProfit        float64             `json:"net_profit"`
	ProfitMargin     float64             `json:"profit_margin"` // percent of income
	TransactionCount int                 `json:"transaction_count"`
	TopSellingItems  []ItemSales         `json:"top_selling_items"`
	TopCustomers     []CustomerSpend     `json:"top_customers"`
	OutstandingDebts float64             `json:"outstanding_debts"`
	StockValue       float64             `json:"stock_value"`
	LowStockCount    int                 `json:"low_stock_count"`
	Trend            analytics.ChartData `json:"trend"`
}
