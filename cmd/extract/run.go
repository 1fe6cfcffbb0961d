package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/models"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories/memory"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
)

// Report is what the CLI prints for one message
type Report struct {
	Message        string                     `json:"message"`
	Candidate      extraction.Candidate       `json:"candidate"`
	StrongIntent   bool                       `json:"strongIntent"`
	Classification extraction.Label           `json:"classification"`
	Stock          *models.PendingStockUpdate `json:"stock,omitempty"`
	Transaction    *models.ConfirmResult      `json:"transaction,omitempty"`
	StockResult    *models.StockResult        `json:"stockResult,omitempty"`
}

// Run extracts, gates and classifies message. With confirm, whatever passes is
// saved into a fresh in-memory ledger so the persisted shape can be inspected.
func Run(ctx context.Context, invoker extraction.Invoker, message string, confirm bool) (*Report, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	report := &Report{Message: message}
	report.Candidate = extraction.NewExtractor(invoker).Extract(ctx, message)
	report.StrongIntent = extraction.IsStrongIntent(message, report.Candidate)
	report.Classification = extraction.NewClassifier(invoker).Classify(ctx, message)
	if report.Classification == extraction.LabelStock {
		report.Stock = models.NewPendingStockUpdate(extraction.NewStockExtractor(invoker).Extract(ctx, message))
	}

	if !confirm {
		return report, nil
	}

	store := memory.NewStore()
	confirmer := services.NewConfirmService(store.Set(), nil, 0)
	userID := uuid.New()

	if report.StrongIntent {
		pending := models.NewPendingTransaction(report.Candidate, message, "cli")
		result, err := confirmer.ConfirmTransaction(ctx, userID, pending, models.SourceChat)
		if err != nil {
			return nil, fmt.Errorf("confirm transaction: %w", err)
		}
		report.Transaction = result
	}
	if report.Stock != nil {
		result, err := confirmer.ConfirmStock(ctx, userID, report.Stock)
		if err != nil {
			return nil, fmt.Errorf("confirm stock: %w", err)
		}
		report.StockResult = result
	}

	return report, nil
}
