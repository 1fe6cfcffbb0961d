package extraction

import (
	"encoding/json"
	"strings"
)

// TransactionType classifies a candidate. The zero value means "not a transaction".
type TransactionType string

const (
	TypeNone     TransactionType = ""
	TypeSale     TransactionType = "sale"
	TypePurchase TransactionType = "purchase"
	TypeExpense  TransactionType = "expense"
	TypeDebt     TransactionType = "debt"
	TypeLoan     TransactionType = "loan"
)

// TransactionTypes lists every non-null type
var TransactionTypes = []TransactionType{TypeSale, TypePurchase, TypeExpense, TypeDebt, TypeLoan}

// ParseTransactionType accepts any casing and surrounding spaces.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TransactionTypes {
		if t == known {
			return t, true
		}
	}
	return TypeNone, false
}

// IsLiability reports whether the type leaves money owed, which persists as unpaid.
func (t TransactionType) IsLiability() bool {
	return t == TypeDebt || t == TypeLoan
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	if t == TypeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *TransactionType) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = TypeNone
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = TransactionType(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// Source records which path produced a candidate
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Item is one normalized line of a candidate
type Item struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Quantity   float64 `json:"quantity" validate:"gte=0"`
	Unit       string  `json:"unit" validate:"max=50"`
	UnitPrice  float64 `json:"unitPrice" validate:"gte=0"`
	TotalPrice float64 `json:"totalPrice" validate:"gte=0"`
}

// Candidate is an unsaved, normalized transaction extracted from a message.
// Confidence is always a number in [0,1] once a Candidate exists.
type Candidate struct {
	TransactionType TransactionType `json:"transactionType" validate:"required,oneof=sale purchase expense debt loan"`
	Items           []Item          `json:"items" validate:"dive"`
	TotalAmount     float64         `json:"totalAmount" validate:"gte=0"`
	CustomerName    *string         `json:"customerName" validate:"omitempty,max=200"`
	Date            *string         `json:"date"`
	Notes           *string         `json:"notes" validate:"omitempty,max=1000"`
	PaymentStatus   *string         `json:"paymentStatus,omitempty"`
	Confidence      float64         `json:"confidence" validate:"gte=0,lte=1"`
	Source          Source          `json:"source,omitempty"`
}

// IsTransaction reports whether the candidate carries a transaction type at all.
func (c Candidate) IsTransaction() bool {
	return c.TransactionType != TypeNone
}

// HasPlaceholderItem reports whether items were synthesized because none were parsed.
func (c Candidate) HasPlaceholderItem() bool {
	return len(c.Items) == 1 && c.Items[0].Name == PlaceholderItemName
}

// ItemsTotal sums the per-item totals.
func (c Candidate) ItemsTotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.TotalPrice
	}
	return roundMoney(sum)
}
