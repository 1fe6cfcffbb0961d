package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExportHeaders are the columns of every transaction export
var ExportHeaders = []string{"Date", "Type", "Description", "Amount", "Customer", "Status"}

// TransactionService manages the ledger outside of the chat confirmation flow
type TransactionService struct {
	repos   *repositories.Set
	applier *InventoryApplier
	auditor Auditor
	now     func() time.Time
}

func NewTransactionService(repos *repositories.Set, auditor Auditor) *TransactionService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &TransactionService{
		repos:   repos,
		applier: NewInventoryApplier(repos.Inventory),
		auditor: auditor,
		now:     time.Now,
	}
}

// List returns one page of transactions
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (*models.TransactionListResponse, error) {
	filter.Normalize()

	transactions, total, err := s.repos.Transactions.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &models.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	return s.repos.Transactions.GetByID(ctx, userID, id)
}

// Create records a manual transaction. No dedup applies; the status rule does.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	txType, _ := extraction.ParseTransactionType(req.Type)
	tx := &models.Transaction{
		UserID:     userID,
		Type:       txType,
		Amount:     money(req.Amount),
		OccurredAt: s.now(),
		Status:     models.StatusFor(txType),
		Notes:      req.Notes,
		Source:     models.SourceManual,
		Items:      []models.TransactionItem{},
	}
	if req.OccurredAt != nil {
		tx.OccurredAt = *req.OccurredAt
	}

	if name := trimmed(req.CustomerName); name != "" {
		customer, err := s.repos.Customers.FindOrCreate(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve customer: %w", err)
		}
		tx.CustomerID = &customer.ID
		tx.CustomerName = &customer.Name
	}

	for _, input := range req.Items {
		name := strings.ToLower(strings.TrimSpace(input.Name))
		unit := input.Unit
		if unit == "" {
			unit = "unit"
		}
		catalogItem, err := s.repos.Items.FindOrCreate(ctx, userID, name, unit, input.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve item %q: %w", name, err)
		}
		tx.Items = append(tx.Items, models.TransactionItem{
			ItemID:     &catalogItem.ID,
			Name:       name,
			Quantity:   input.Quantity,
			Unit:       unit,
			UnitPrice:  input.UnitPrice,
			TotalPrice: round2(input.UnitPrice * input.Quantity),
		})
	}

	if err := s.repos.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	if tx.Type == extraction.TypeSale {
		s.applier.ApplyInventoryEffects(ctx, tx)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCreate,
		Entity:      audit.EntityTransaction,
		EntityID:    tx.ID.String(),
		NewValue:    tx,
		Description: fmt.Sprintf("Manual %s of %s", tx.Type, tx.Amount.StringFixed(2)),
	})

	return tx, nil
}

// Update changes status, notes or customer of a transaction
func (s *TransactionService) Update(ctx context.Context, userID, id uuid.UUID, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	tx, err := s.repos.Transactions.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	before := *tx

	if req.Status != nil {
		tx.Status = models.TransactionStatus(*req.Status)
	}
	if req.Notes != nil {
		tx.Notes = req.Notes
	}
	if req.CustomerName != nil {
		if name := strings.TrimSpace(*req.CustomerName); name == "" {
			tx.CustomerID = nil
			tx.CustomerName = nil
		} else {
			customer, err := s.repos.Customers.FindOrCreate(ctx, userID, name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve customer: %w", err)
			}
			tx.CustomerID = &customer.ID
			tx.CustomerName = &customer.Name
		}
	}

	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   userID,
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityTransaction,
		EntityID: tx.ID.String(),
		OldValue: before,
		NewValue: tx,
	})

	return tx, nil
}

// Delete soft-deletes a transaction. Inventory is not restored.
func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repos.Transactions.SoftDelete(ctx, userID, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:   userID,
		Action:   audit.ActionDelete,
		Entity:   audit.EntityTransaction,
		EntityID: id.String(),
	})
	return nil
}

// Debts lists unpaid debts and loans with the outstanding total
func (s *TransactionService) Debts(ctx context.Context, userID uuid.UUID) (*models.DebtSummary, error) {
	transactions, err := s.repos.Transactions.ListUnpaidLiabilities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	outstanding := decimal.Zero
	for _, tx := range transactions {
		outstanding = outstanding.Add(tx.Amount)
	}

	return &models.DebtSummary{
		Transactions: transactions,
		Count:        len(transactions),
		Outstanding:  outstanding,
	}, nil
}

// ExportData collects the transactions of a period, optionally of one type, as an export table
func (s *TransactionService) ExportData(ctx context.Context, userID uuid.UUID, period *analytics.DateRange, txType string) (*export.ExportData, error) {
	transactions, err := s.repos.Transactions.ListBetween(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	filtered := transactions[:0]
	for _, tx := range transactions {
		if txType == "" || string(tx.Type) == txType {
			filtered = append(filtered, tx)
		}
	}

	return BuildExport(period, filtered, s.now()), nil
}

// BuildExport lays transactions out as Date, Type, Description, Amount, Customer, Status
func BuildExport(period *analytics.DateRange, transactions []models.Transaction, at time.Time) *export.ExportData {
	rows := make([][]interface{}, 0, len(transactions))
	summary := BuildSummary(period, transactions, nil)

	for _, tx := range transactions {
		customer := ""
		if tx.CustomerName != nil {
			customer = *tx.CustomerName
		}
		rows = append(rows, []interface{}{
			tx.OccurredAt.Format("2006-01-02"),
			string(tx.Type),
			tx.Description(),
			tx.Amount.InexactFloat64(),
			customer,
			string(tx.Status),
		})
	}

	return &export.ExportData{
		Title:       "SokoTally Transactions",
		Description: period.Label,
		CreatedAt:   at,
		Summary: []export.SummaryLine{
			{Label: "Total Income", Value: "KES " + kes(summary.TotalIncome)},
			{Label: "Total Expenses", Value: "KES " + kes(summary.TotalExpenses)},
			{Label: "Net Profit", Value: "KES " + kes(summary.NetProfit)},
			{Label: "Transactions", Value: fmt.Sprintf("%d", summary.TransactionCount)},
		},
		Headers: ExportHeaders,
		Rows:    rows,
		Style:   export.DefaultStyle(),
	}
}

// Receipt is the text encoded into a transaction's receipt QR code
func Receipt(tx *models.Transaction) string {
	var sb strings.Builder
	sb.WriteString("SokoTally receipt\n")
	sb.WriteString(fmt.Sprintf("ID: %s\n", tx.ID))
	sb.WriteString(fmt.Sprintf("Date: %s\n", tx.OccurredAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("Type: %s\n", tx.Type))
	for _, item := range tx.Items {
		sb.WriteString(fmt.Sprintf("- %s x%g %s @ %.2f = %.2f\n", item.Name, item.Quantity, item.Unit, item.UnitPrice, item.TotalPrice))
	}
	if tx.CustomerName != nil {
		sb.WriteString(fmt.Sprintf("Customer: %s\n", *tx.CustomerName))
	}
	sb.WriteString(fmt.Sprintf("Total: KES %s\n", tx.Amount.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Status: %s", tx.Status))
	return sb.String()
}
