package extraction

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RawCandidate is an unvalidated candidate as produced by the model or the
// heuristic extractor. Only Normalize turns it into a Candidate.
type RawCandidate struct {
	TransactionType *string    `json:"transactionType"`
	Items           []RawItem  `json:"items"`
	TotalAmount     Number     `json:"totalAmount"`
	CustomerName    *string    `json:"customerName"`
	Date            *string    `json:"date"`
	Notes           *string    `json:"notes"`
	PaymentStatus   *string    `json:"paymentStatus"`
	Confidence      Confidence `json:"confidence"`
}

// RawItem is one unvalidated item line
type RawItem struct {
	Name       *string `json:"name"`
	Quantity   Number  `json:"quantity"`
	Unit       *string `json:"unit"`
	UnitPrice  Number  `json:"unitPrice"`
	TotalPrice Number  `json:"totalPrice"`
}

// Number is a tolerant numeric JSON value. It accepts numbers, numeric
// strings such as "1,500" or "KES 200", and null. Anything else is invalid.
type Number struct {
	Value float64
	Valid bool
}

// Num wraps a known value
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or returns the value, or def when the number is invalid or not finite.
func (n Number) Or(def float64) float64 {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return def
	}
	return n.Value
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null" || s == "true" || s == "false":
		*n = Number{}
		return nil
	case s[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		v, ok := ParseAmount(str)
		*n = Number{Value: v, Valid: ok}
		return nil
	case s[0] == '{' || s[0] == '[':
		*n = Number{}
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseAmount reads the first number in s after dropping thousands separators.
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Confidence is either a categorical label ("high", "medium", "low") or a
// numeric score. It never leaves this package unconverted.
type Confidence struct {
	Label   string
	Score   float64
	Numeric bool
	Present bool
}

// ConfidenceLabel builds a categorical confidence
func ConfidenceLabel(label string) Confidence {
	return Confidence{Label: strings.ToLower(strings.TrimSpace(label)), Present: true}
}

// Score builds a numeric confidence
func Score(v float64) Confidence {
	return Confidence{Score: v, Numeric: true, Present: true}
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	switch {
	case !c.Present:
		return []byte("null"), nil
	case c.Numeric:
		return json.Marshal(c.Score)
	default:
		return json.Marshal(c.Label)
	}
}

func (c *Confidence) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*c = Confidence{}
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*c = Score(v)
			return nil
		}
		*c = ConfidenceLabel(str)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = Confidence{}
		return nil
	}
	*c = Score(v)
	return nil
}
