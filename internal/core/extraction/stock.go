package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// StockAction is what a stock update does to on-hand quantity
type StockAction string

const (
	StockAdd    StockAction = "add_stock"
	StockRemove StockAction = "remove_stock"
	StockUpdate StockAction = "update_stock"
)

// Valid reports whether the action is one of the three known actions
func (a StockAction) Valid() bool {
	return a == StockAdd || a == StockRemove || a == StockUpdate
}

// StockCandidate is an extracted, unconfirmed stock update
type StockCandidate struct {
	ActionType         StockAction `json:"actionType"`
	ItemName           string      `json:"itemName"`
	Quantity           float64     `json:"quantity"`
	Unit               string      `json:"unit"`
	BuyingPricePerUnit float64     `json:"buyingPricePerUnit"`
	SellingPrice       float64     `json:"sellingPrice"`
	SupplierName       *string     `json:"supplierName"`
	Source             Source      `json:"source,omitempty"`
}

// Complete reports whether the candidate can be offered for confirmation.
func (s StockCandidate) Complete() bool {
	return s.ActionType.Valid() && strings.TrimSpace(s.ItemName) != ""
}

type rawStock struct {
	ActionType         *string `json:"actionType"`
	ItemName           *string `json:"itemName"`
	Quantity           Number  `json:"quantity"`
	Unit               *string `json:"unit"`
	BuyingPricePerUnit Number  `json:"buyingPricePerUnit"`
	SellingPrice       Number  `json:"sellingPrice"`
	SupplierName       *string `json:"supplierName"`
}

var stockSchema = mustCompile("stock.json", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"actionType": map[string]any{
			"enum": []any{"add_stock", "remove_stock", "update_stock", nil},
		},
		"itemName":           map[string]any{"type": []any{"string", "null"}},
		"quantity":           nullableNumber,
		"unit":               map[string]any{"type": []any{"string", "null"}},
		"buyingPricePerUnit": nullableNumber,
		"sellingPrice":       nullableNumber,
		"supplierName":       map[string]any{"type": []any{"string", "null"}},
	},
	"required": []any{"actionType", "itemName"},
})

const stockPrompt = `You extract inventory updates for SokoTally from messages in English or Swahili.

Return ONLY valid JSON with these fields:
- actionType: "add_stock", "remove_stock", "update_stock" or null
- itemName: product name in English, lowercase, or null
- quantity: number
- unit: "kg", "pieces", "liters", "bags" or "unit"
- buyingPricePerUnit: number or 0
- sellingPrice: number or 0
- supplierName: name or null

RULES:
- add / restock / received stock / ongeza / weka stoki = add_stock
- remove / spoiled / damaged / expired / ondoa / zimeharibika = remove_stock
- update / set / stock is now / remaining / zimebaki = update_stock

EXAMPLES:
"Add 20 kg of onions from Mama Njeri at 80 each"
{"actionType":"add_stock","itemName":"onions","quantity":20,"unit":"kg","buyingPricePerUnit":80,"sellingPrice":0,"supplierName":"Mama Njeri"}

"Nyanya 5 zimeharibika"
{"actionType":"remove_stock","itemName":"tomatoes","quantity":5,"unit":"pieces","buyingPricePerUnit":0,"sellingPrice":0,"supplierName":null}

"Cabbage stock is now 12"
{"actionType":"update_stock","itemName":"cabbage","quantity":12,"unit":"pieces","buyingPricePerUnit":0,"sellingPrice":0,"supplierName":null}

ONLY RETURN JSON.`

// StockExtractor turns a stock message into a StockCandidate
type StockExtractor struct {
	invoker Invoker
}

func NewStockExtractor(invoker Invoker) *StockExtractor {
	return &StockExtractor{invoker: invoker}
}

// Extract never fails; unusable model output goes to ExtractStockFallback.
func (s *StockExtractor) Extract(ctx context.Context, message string) StockCandidate {
	if s.invoker != nil {
		completion, err := s.invoker.Invoke(ctx, message, stockPrompt, nil)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ LLM stock extraction failed, using heuristic extractor")
			return ExtractStockFallback(message)
		}
		var raw rawStock
		if err := decodeReply(completion.Reply, stockSchema, &raw); err != nil {
			log.Warn().Err(err).Msg("⚠️ LLM stock reply unusable, using heuristic extractor")
			return ExtractStockFallback(message)
		}
		candidate := normalizeStock(raw)
		candidate.Source = SourceLLM
		return candidate
	}
	return ExtractStockFallback(message)
}

func normalizeStock(raw rawStock) StockCandidate {
	c := StockCandidate{
		Quantity:           max(0, raw.Quantity.Or(0)),
		Unit:               "pieces",
		BuyingPricePerUnit: max(0, raw.BuyingPricePerUnit.Or(0)),
		SellingPrice:       max(0, raw.SellingPrice.Or(0)),
		SupplierName:       nonEmpty(raw.SupplierName),
	}
	if raw.ActionType != nil {
		c.ActionType = StockAction(strings.ToLower(strings.TrimSpace(*raw.ActionType)))
	}
	if raw.ItemName != nil {
		c.ItemName = NormalizeName(*raw.ItemName)
	}
	if raw.Unit != nil && strings.TrimSpace(*raw.Unit) != "" {
		c.Unit = NormalizeUnit(*raw.Unit)
	}
	return c
}

var (
	stockQuantity = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*(kgs?|kilos?|pieces?|pcs|liters?|litres?|units?|bags?)\b)?(?:\s+of)?(?:\s+([a-z]+))?`)
	supplierName  = regexp.MustCompile(`\bfrom\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)?)`)
)

// words that can follow a quantity without naming the item
var stockStopwords = map[string]bool{
	"to": true, "from": true, "in": true, "into": true, "at": true, "for": true, "stock": true,
	"each": true, "per": true, "kila": true, "kwa": true, "and": true, "the": true,
	"zimeharibika": true, "imeharibika": true, "zimebaki": true, "imebaki": true, "imeoza": true,
}

// stockActionPrecedence lets explicit updates win over incidental add/remove words.
var stockActionPrecedence = []Family{FamilyStockUpdate, FamilyStockRemove, FamilyStockAdd}

// ExtractStockFallback is the deterministic stock extraction path
func ExtractStockFallback(message string) StockCandidate {
	lower := strings.ToLower(message)
	c := StockCandidate{Unit: "pieces", Source: SourceFallback}

	for _, family := range stockActionPrecedence {
		if HasFamily(lower, family, RoleStock) {
			c.ActionType = StockAction(family)
			break
		}
	}

	if name, ok := LookupItem(lower); ok {
		c.ItemName = name
	}

	if m := stockQuantity.FindStringSubmatch(lower); m != nil {
		c.Quantity, _ = strconv.ParseFloat(m[1], 64)
		if m[2] != "" {
			c.Unit = NormalizeUnit(m[2])
		}
		if c.ItemName == "" && m[3] != "" && !stockStopwords[m[3]] {
			c.ItemName = m[3]
		}
	}

	if amounts := findCurrencyAmounts(lower); len(amounts) > 0 {
		price := amounts[0].value
		if !perUnitMarker.MatchString(lower) && c.Quantity > 0 {
			price = price / c.Quantity
		}
		c.BuyingPricePerUnit = roundUnitPrice(price)
	}

	if m := supplierName.FindStringSubmatch(message); m != nil {
		name := m[1]
		c.SupplierName = &name
	}
	return c
}
