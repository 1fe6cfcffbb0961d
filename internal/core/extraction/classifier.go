package extraction

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Label is the classifier's verdict on a message
type Label string

const (
	LabelStock       Label = "stock"
	LabelTransaction Label = "transaction"
	LabelNone        Label = "none"
)

const classifierPrompt = `Classify the shop owner's message (English or Swahili) into exactly one label:
- stock: adding, removing, spoiling or setting inventory quantities without a sale or purchase price (e.g. "Add 20 kg of onions to stock", "Nyanya 5 zimeharibika")
- transaction: a sale, purchase, expense, debt or loan involving money
- none: anything else

Reply with the single word stock, transaction or none.`

// Classifier labels messages as stock, transaction or none
type Classifier struct {
	invoker Invoker
}

func NewClassifier(invoker Invoker) *Classifier {
	return &Classifier{invoker: invoker}
}

// Classify asks the model for a label and falls back to the keyword check
// when the model fails or answers outside the label set.
func (c *Classifier) Classify(ctx context.Context, message string) Label {
	if c.invoker != nil {
		completion, err := c.invoker.Invoke(ctx, message, classifierPrompt, nil)
		if err == nil {
			if label, ok := parseLabel(completion.Reply); ok {
				return label
			}
			log.Warn().Str("reply", completion.Reply).Msg("⚠️ Classifier returned unknown label")
		} else {
			log.Warn().Err(err).Msg("⚠️ Classifier call failed, using keyword check")
		}
	}
	return ClassifyByKeywords(message)
}

// ClassifyByKeywords is the deterministic classifier
func ClassifyByKeywords(message string) Label {
	switch {
	case HasRole(message, RoleStock):
		return LabelStock
	case HasRole(message, RoleGate):
		return LabelTransaction
	default:
		return LabelNone
	}
}

func parseLabel(reply string) (Label, bool) {
	word := strings.ToLower(strings.Trim(strings.TrimSpace(reply), "\"'`.!"))
	if fields := strings.Fields(word); len(fields) > 0 {
		word = strings.Trim(fields[0], "\"'`.,:!")
	}
	switch Label(word) {
	case LabelStock, LabelTransaction, LabelNone:
		return Label(word), true
	}
	return "", false
}
