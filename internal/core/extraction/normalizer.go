package extraction

import (
	"math"
	"strings"
)

const (
	// PlaceholderItemName is synthesized when a typed candidate has no items.
	PlaceholderItemName = "unspecified item"
	// PlaceholderConfidence is forced whenever the placeholder item is synthesized.
	PlaceholderConfidence = 0.4

	defaultUnit     = "unit"
	defaultItemName = "item"
)

// confidenceLabels maps categorical confidences to scores
var confidenceLabels = map[string]float64{
	"high":   0.9,
	"medium": 0.7,
	"low":    0.4,
}

// CoerceConfidence turns any upstream confidence into a score in [0,1].
// Unknown labels and absent values become 0.
func CoerceConfidence(c Confidence) float64 {
	if !c.Present {
		return 0
	}
	if c.Numeric {
		if math.IsNaN(c.Score) {
			return 0
		}
		return math.Min(1, math.Max(0, c.Score))
	}
	return confidenceLabels[strings.ToLower(strings.TrimSpace(c.Label))]
}

// Normalize enforces the canonical candidate shape. It never fails: bad
// fields degrade to safe defaults.
func Normalize(raw RawCandidate) Candidate {
	c := Candidate{
		TransactionType: normalizeType(raw.TransactionType),
		CustomerName:    nonEmpty(raw.CustomerName),
		Date:            nonEmpty(raw.Date),
		Notes:           nonEmpty(raw.Notes),
		PaymentStatus:   nonEmpty(raw.PaymentStatus),
		Confidence:      CoerceConfidence(raw.Confidence),
	}

	for _, ri := range raw.Items {
		c.Items = append(c.Items, normalizeItem(ri))
	}

	total := raw.TotalAmount.Or(0)
	if total <= 0 {
		total = c.ItemsTotal()
	}
	c.TotalAmount = roundMoney(math.Max(0, total))

	if !c.IsTransaction() {
		c.Confidence = 0
		if c.Items == nil {
			c.Items = []Item{}
		}
		return c
	}

	if len(c.Items) == 0 {
		c = withPlaceholder(c)
	}
	return c
}

// normalizeType keeps null as null and maps unknown strings to sale.
func normalizeType(raw *string) TransactionType {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return TypeNone
	}
	if t, ok := ParseTransactionType(*raw); ok {
		return t
	}
	lowered := strings.ToLower(strings.TrimSpace(*raw))
	if lowered == "null" || lowered == "none" {
		return TypeNone
	}
	return TypeSale
}

func normalizeItem(ri RawItem) Item {
	name := defaultItemName
	if ri.Name != nil {
		if n := strings.ToLower(strings.TrimSpace(*ri.Name)); n != "" {
			name = n
		}
	}

	unit := defaultUnit
	if ri.Unit != nil {
		if u := strings.ToLower(strings.TrimSpace(*ri.Unit)); u != "" {
			unit = u
		}
	}

	qty := ri.Quantity.Or(0)
	if qty <= 0 {
		qty = 1
	}

	unitPrice := ri.UnitPrice.Or(-1)
	if unitPrice < 0 {
		unitPrice = 0
		if tp := ri.TotalPrice.Or(0); tp > 0 {
			unitPrice = tp / qty
		}
	}

	return Item{
		Name:       name,
		Quantity:   qty,
		Unit:       unit,
		UnitPrice:  roundUnitPrice(unitPrice),
		TotalPrice: roundMoney(unitPrice * qty),
	}
}

// withPlaceholder synthesizes the single placeholder item and forces confidence down.
func withPlaceholder(c Candidate) Candidate {
	c.Items = []Item{{
		Name:       PlaceholderItemName,
		Quantity:   1,
		Unit:       defaultUnit,
		UnitPrice:  c.TotalAmount,
		TotalPrice: c.TotalAmount,
	}}
	c.Confidence = PlaceholderConfidence
	return c
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// unit prices keep more precision so 200/3 still multiplies back close to 200
func roundUnitPrice(v float64) float64 {
	return math.Round(v*10000) / 10000
}
