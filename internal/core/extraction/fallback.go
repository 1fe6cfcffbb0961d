package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const numberPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

var (
	perUnitMarker  = regexp.MustCompile(`(?i)\b(each|per|kila\s+moja|kila)\b`)
	currencyBefore = regexp.MustCompile(`\b(?:kshs|ksh|kes|shilingi|shillings?|bob|sh)\.?\s*` + numberPattern)
	currencyAfter  = regexp.MustCompile(numberPattern + `\s*(?:/=|(?:kshs|ksh|kes|shilingi|shillings?|bob)\b)`)
	bareNumber     = regexp.MustCompile(numberPattern)
	quantityUnit   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(kgs?|kilos?|pieces?|pcs|liters?|litres?|units?|bags?)\b`)
	quantityItem   = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s+(?:of\s+)?(` + itemWordPattern + `)\b`)
	itemQuantity   = regexp.MustCompile(`\b(` + itemWordPattern + `)\s+(\d+(?:\.\d+)?)\b`)
	customerName   = regexp.MustCompile(`\b(?:to|from|for)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
)

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

type amountMatch struct {
	value float64
	at    span
}

type quantityMatch struct {
	quantity float64
	unit     string
	name     string
	number   span
	whole    span
}

// ExtractFallback is the deterministic extraction path. It is pure and
// total: every input, including the empty string, yields a well-formed raw
// candidate with a categorical "medium" confidence.
func ExtractFallback(message string) RawCandidate {
	lower := strings.ToLower(message)

	currency := findCurrencyAmounts(lower)
	quantities := findQuantities(lower, currency)
	amounts := currency
	if len(amounts) == 0 {
		amounts = findBareAmounts(lower, quantities)
	}

	var first float64
	if len(amounts) > 0 {
		first = amounts[0].value
	}

	txType := detectType(lower)
	if txType == TypeNone && first > 0 {
		txType = TypeSale
	}

	items := priceItems(quantities, amounts, perUnitMarker.MatchString(lower))
	if len(quantities) == 0 && first > 0 {
		name := defaultItemName
		if canonical, ok := LookupItem(lower); ok {
			name = canonical
		}
		items = []RawItem{rawItem(name, 1, defaultUnit, first, first)}
	}

	var total float64
	for _, item := range items {
		total += item.TotalPrice.Or(0)
	}

	raw := RawCandidate{
		Items:       items,
		TotalAmount: Num(roundMoney(total)),
		Confidence:  ConfidenceLabel("medium"),
	}
	if txType != TypeNone {
		s := string(txType)
		raw.TransactionType = &s
	}
	if m := customerName.FindStringSubmatch(message); m != nil {
		name := m[1]
		raw.CustomerName = &name
	}
	return raw
}

// detectType scans the detect families in order. The last family that matches
// wins, which puts loan above debt above expense above purchase above sale.
func detectType(lower string) TransactionType {
	detected := TypeNone
	for _, family := range []Family{FamilySale, FamilyPurchase, FamilyExpense, FamilyDebt, FamilyLoan} {
		if HasFamily(lower, family, RoleDetect) {
			detected = TransactionType(family)
		}
	}
	return detected
}

func findCurrencyAmounts(lower string) []amountMatch {
	var found []amountMatch
	for _, re := range []*regexp.Regexp{currencyBefore, currencyAfter} {
		for _, idx := range re.FindAllStringSubmatchIndex(lower, -1) {
			at := span{idx[2], idx[3]}
			if containsSpan(found, at) {
				continue
			}
			if v, ok := parseNumber(lower[at.start:at.end]); ok {
				found = append(found, amountMatch{value: v, at: at})
			}
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at.start < found[j].at.start })
	return found
}

func containsSpan(found []amountMatch, at span) bool {
	for _, f := range found {
		if f.at.overlaps(at) {
			return true
		}
	}
	return false
}

func findBareAmounts(lower string, quantities []quantityMatch) []amountMatch {
	var found []amountMatch
	for _, idx := range bareNumber.FindAllStringIndex(lower, -1) {
		at := span{idx[0], idx[1]}
		taken := false
		for _, q := range quantities {
			if q.whole.overlaps(at) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		if v, ok := parseNumber(lower[at.start:at.end]); ok {
			found = append(found, amountMatch{value: v, at: at})
		}
	}
	return found
}

// findQuantities collects quantity mentions. A unit-word match beats an
// item-word match on the same number; numbers already read as money are skipped.
func findQuantities(lower string, currency []amountMatch) []quantityMatch {
	byNumber := map[int]quantityMatch{}

	add := func(q quantityMatch, override bool) {
		for _, c := range currency {
			if c.at.overlaps(q.number) {
				return
			}
		}
		if _, exists := byNumber[q.number.start]; exists && !override {
			return
		}
		byNumber[q.number.start] = q
	}

	for _, idx := range quantityItem.FindAllStringSubmatchIndex(lower, -1) {
		qty, _ := strconv.ParseFloat(lower[idx[2]:idx[3]], 64)
		name, _ := LookupItem(lower[idx[4]:idx[5]])
		add(quantityMatch{
			quantity: qty, unit: "pieces", name: name,
			number: span{idx[2], idx[3]}, whole: span{idx[0], idx[1]},
		}, false)
	}
	for _, idx := range itemQuantity.FindAllStringSubmatchIndex(lower, -1) {
		qty, _ := strconv.ParseFloat(lower[idx[4]:idx[5]], 64)
		name, _ := LookupItem(lower[idx[2]:idx[3]])
		add(quantityMatch{
			quantity: qty, unit: "pieces", name: name,
			number: span{idx[4], idx[5]}, whole: span{idx[0], idx[1]},
		}, false)
	}
	// words claimed by one unit match are not looked at again by the next one
	unitMatches := quantityUnit.FindAllStringSubmatchIndex(lower, -1)
	from := 0
	for i, idx := range unitMatches {
		to := len(lower)
		if i+1 < len(unitMatches) {
			to = unitMatches[i+1][0]
		}
		name, tookAfter := nameAround(lower, from, idx[0], idx[1], to)
		from = idx[1]
		if tookAfter {
			from = to
		}

		qty, _ := strconv.ParseFloat(lower[idx[2]:idx[3]], 64)
		add(quantityMatch{
			quantity: qty,
			unit:     NormalizeUnit(lower[idx[4]:idx[5]]),
			name:     name,
			number:   span{idx[2], idx[3]},
			whole:    span{idx[0], idx[1]},
		}, true)
	}

	quantities := make([]quantityMatch, 0, len(byNumber))
	for _, q := range byNumber {
		if q.quantity <= 0 {
			continue
		}
		if q.name == "" {
			q.name = defaultItemName
		}
		quantities = append(quantities, q)
	}
	sort.Slice(quantities, func(i, j int) bool { return quantities[i].number.start < quantities[j].number.start })
	return quantities
}

// nameAround looks at up to three words before a match, then up to three
// after, never leaving lower[from:to]. tookAfter is set when the name came
// from the words after.
func nameAround(lower string, from, start, end, to int) (name string, tookAfter bool) {
	before := strings.Fields(lower[from:start])
	if len(before) > 3 {
		before = before[len(before)-3:]
	}
	if name, ok := LookupItem(strings.Join(before, " ")); ok {
		return name, false
	}
	after := strings.Fields(lower[end:to])
	if len(after) > 3 {
		after = after[:3]
	}
	if name, ok := LookupItem(strings.Join(after, " ")); ok {
		return name, true
	}
	return defaultItemName, false
}

// priceItems applies the pricing rule. With a per-unit marker the quoted
// number is the unit price; otherwise it is the total.
func priceItems(quantities []quantityMatch, amounts []amountMatch, perUnit bool) []RawItem {
	if len(quantities) == 0 {
		return nil
	}

	paired := len(quantities) > 1 && len(amounts) == len(quantities)
	var first float64
	if len(amounts) > 0 {
		first = amounts[0].value
	}
	var sumQty float64
	for _, q := range quantities {
		sumQty += q.quantity
	}

	items := make([]RawItem, 0, len(quantities))
	for i, q := range quantities {
		amount := first
		if paired {
			amount = amounts[i].value
		}

		var unitPrice, totalPrice float64
		switch {
		case perUnit:
			unitPrice = amount
			totalPrice = amount * q.quantity
		case paired || len(quantities) == 1:
			totalPrice = amount
			unitPrice = amount / q.quantity
		default:
			unitPrice = amount / sumQty
			totalPrice = unitPrice * q.quantity
		}
		items = append(items, rawItem(q.name, q.quantity, q.unit, unitPrice, roundMoney(totalPrice)))
	}
	return items
}

// NormalizeUnit maps unit words to kg, pieces, liters, bags, or unit.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.HasPrefix(u, "kilo") || u == "kg" || u == "kgs":
		return "kg"
	case strings.HasPrefix(u, "piece") || u == "pcs":
		return "pieces"
	case strings.HasPrefix(u, "liter") || strings.HasPrefix(u, "litre"):
		return "liters"
	case strings.HasPrefix(u, "bag"):
		return "bags"
	default:
		return defaultUnit
	}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v, err == nil
}

func rawItem(name string, qty float64, unit string, unitPrice, totalPrice float64) RawItem {
	return RawItem{
		Name:       &name,
		Quantity:   Num(qty),
		Unit:       &unit,
		UnitPrice:  Num(unitPrice),
		TotalPrice: Num(totalPrice),
	}
}
