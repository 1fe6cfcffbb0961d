package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// Family is the meaning a keyword signals
type Family string

const (
	FamilySale     Family = "sale"
	FamilyPurchase Family = "purchase"
	FamilyExpense  Family = "expense"
	FamilyDebt     Family = "debt"
	FamilyLoan     Family = "loan"
	FamilyIncome   Family = "income"

	FamilyStockAdd    Family = "add_stock"
	FamilyStockRemove Family = "remove_stock"
	FamilyStockUpdate Family = "update_stock"

	FamilyReport Family = "report"
)

// Lang of a keyword
type Lang string

const (
	LangEnglish Lang = "en"
	LangSwahili Lang = "sw"
)

// Role is a bitmask of the components that read a keyword.
type Role uint8

const (
	// RoleDetect feeds the heuristic extractor's type detection
	RoleDetect Role = 1 << iota
	// RoleOverride feeds the type-heuristic overrider
	RoleOverride
	// RoleGate feeds the intent-strength gate
	RoleGate
	// RoleStock feeds stock classification and extraction
	RoleStock
	// RoleReport feeds report detection
	RoleReport
)

// Keyword is one entry of the bilingual lexicon
type Keyword struct {
	Term   string
	Family Family
	Lang   Lang
	Roles  Role
}

// Lexicon is the one table every keyword scan reads.
var Lexicon = []Keyword{
	// sale
	{"sold", FamilySale, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"sale", FamilySale, LangEnglish, RoleDetect | RoleOverride},
	{"nimeuza", FamilySale, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"niliuza", FamilySale, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"niuza", FamilySale, LangSwahili, RoleOverride},
	{"umeduza", FamilySale, LangSwahili, RoleOverride},
	{"uza", FamilySale, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"mauzo", FamilySale, LangSwahili, RoleDetect | RoleGate},

	// purchase
	{"bought", FamilyPurchase, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"buy", FamilyPurchase, LangEnglish, RoleOverride},
	{"purchase", FamilyPurchase, LangEnglish, RoleDetect | RoleOverride},
	{"nilinunua", FamilyPurchase, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"nimenunua", FamilyPurchase, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"nunua", FamilyPurchase, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"numenua", FamilyPurchase, LangSwahili, RoleDetect | RoleGate},
	{"stoki", FamilyPurchase, LangSwahili, RoleOverride},

	// expense
	{"expense", FamilyExpense, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"spent", FamilyExpense, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"paid", FamilyExpense, LangEnglish, RoleOverride | RoleGate},
	{"rent", FamilyExpense, LangEnglish, RoleOverride},
	{"salary", FamilyExpense, LangEnglish, RoleOverride},
	{"transport", FamilyExpense, LangEnglish, RoleOverride},
	{"matumizi", FamilyExpense, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"gharama", FamilyExpense, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"nililipia", FamilyExpense, LangSwahili, RoleDetect | RoleGate},
	{"nimelipa", FamilyExpense, LangSwahili, RoleDetect | RoleGate},
	{"lipa", FamilyExpense, LangSwahili, RoleGate},
	{"umeme", FamilyExpense, LangSwahili, RoleOverride},
	{"maji", FamilyExpense, LangSwahili, RoleOverride},

	// income is only a gate signal
	{"received", FamilyIncome, LangEnglish, RoleGate},

	// debt
	{"debt", FamilyDebt, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"owe", FamilyDebt, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"deni", FamilyDebt, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"anadai", FamilyDebt, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"nadai", FamilyDebt, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"wadeni", FamilyDebt, LangSwahili, RoleDetect | RoleOverride | RoleGate},

	// loan
	{"loan", FamilyLoan, LangEnglish, RoleDetect | RoleOverride | RoleGate},
	{"mkopo", FamilyLoan, LangSwahili, RoleDetect | RoleOverride | RoleGate},
	{"nahitaji mkopo", FamilyLoan, LangSwahili, RoleOverride},

	// stock actions
	{"add", FamilyStockAdd, LangEnglish, RoleStock},
	{"add stock", FamilyStockAdd, LangEnglish, RoleStock},
	{"added", FamilyStockAdd, LangEnglish, RoleStock},
	{"restock", FamilyStockAdd, LangEnglish, RoleStock},
	{"received stock", FamilyStockAdd, LangEnglish, RoleStock},
	{"new stock", FamilyStockAdd, LangEnglish, RoleStock},
	{"ongeza", FamilyStockAdd, LangSwahili, RoleStock},
	{"nimeongeza", FamilyStockAdd, LangSwahili, RoleStock},
	{"weka stoki", FamilyStockAdd, LangSwahili, RoleStock},
	{"remove", FamilyStockRemove, LangEnglish, RoleStock},
	{"spoiled", FamilyStockRemove, LangEnglish, RoleStock},
	{"damaged", FamilyStockRemove, LangEnglish, RoleStock},
	{"expired", FamilyStockRemove, LangEnglish, RoleStock},
	{"rotten", FamilyStockRemove, LangEnglish, RoleStock},
	{"ondoa", FamilyStockRemove, LangSwahili, RoleStock},
	{"imeharibika", FamilyStockRemove, LangSwahili, RoleStock},
	{"zimeharibika", FamilyStockRemove, LangSwahili, RoleStock},
	{"imeoza", FamilyStockRemove, LangSwahili, RoleStock},
	{"update stock", FamilyStockUpdate, LangEnglish, RoleStock},
	{"set stock", FamilyStockUpdate, LangEnglish, RoleStock},
	{"stock is now", FamilyStockUpdate, LangEnglish, RoleStock},
	{"remaining", FamilyStockUpdate, LangEnglish, RoleStock},
	{"zimebaki", FamilyStockUpdate, LangSwahili, RoleStock},
	{"imebaki", FamilyStockUpdate, LangSwahili, RoleStock},
	{"badilisha", FamilyStockUpdate, LangSwahili, RoleStock},

	// reports
	{"report", FamilyReport, LangEnglish, RoleReport},
	{"ripoti", FamilyReport, LangSwahili, RoleReport},
	{"tengeneza ripoti", FamilyReport, LangSwahili, RoleReport},
	{"nataka ripoti", FamilyReport, LangSwahili, RoleReport},
}

// Matches reports whether the keyword occurs in an already lowercased text.
// English terms must start at a word boundary and may only be followed by an
// inflection ending, so "owe" hits "owes" but not "flowers" or "Owen".
// Swahili terms match anywhere because verbs take prefixes ("nimeuza" holds "uza").
func (k Keyword) Matches(lower string) bool {
	if k.Lang == LangSwahili {
		return strings.Contains(lower, k.Term)
	}
	for offset := 0; offset < len(lower); {
		idx := strings.Index(lower[offset:], k.Term)
		if idx < 0 {
			return false
		}
		at := offset + idx
		if (at == 0 || !isWordByte(lower[at-1])) && endsWord(lower[at+len(k.Term):]) {
			return true
		}
		offset = at + 1
	}
	return false
}

var englishEndings = []string{"ing", "es", "ed", "s", "d"}

// endsWord reports whether rest starts with a word end, optionally after an inflection ending
func endsWord(rest string) bool {
	if rest == "" || !isWordByte(rest[0]) {
		return true
	}
	for _, ending := range englishEndings {
		if strings.HasPrefix(rest, ending) && (len(rest) == len(ending) || !isWordByte(rest[len(ending)])) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b < 0x80 && (unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}

// HasFamily reports whether any keyword of the family with the given role occurs in text.
func HasFamily(text string, family Family, role Role) bool {
	lower := strings.ToLower(text)
	for _, k := range Lexicon {
		if k.Family == family && k.Roles&role != 0 && k.Matches(lower) {
			return true
		}
	}
	return false
}

// HasRole reports whether any keyword carrying the role occurs in text.
func HasRole(text string, role Role) bool {
	lower := strings.ToLower(text)
	for _, k := range Lexicon {
		if k.Roles&role != 0 && k.Matches(lower) {
			return true
		}
	}
	return false
}

// MatchedTerms lists the keywords with the role found in text, in lexicon order.
func MatchedTerms(text string, role Role) []Keyword {
	lower := strings.ToLower(text)
	var found []Keyword
	for _, k := range Lexicon {
		if k.Roles&role != 0 && k.Matches(lower) {
			found = append(found, k)
		}
	}
	return found
}

// itemDictionary maps English and Swahili product words to canonical names.
// Order matters: the first hit wins.
var itemDictionary = []struct {
	Term      string
	Canonical string
}{
	{"tomato", "tomatoes"},
	{"onion", "onions"},
	{"cabbage", "cabbage"},
	{"carrot", "carrots"},
	{"potato", "potatoes"},
	{"spinach", "spinach"},
	{"kale", "kale"},
	{"lettuce", "lettuce"},
	{"pepper", "peppers"},
	{"bean", "beans"},
	{"nyanya", "tomatoes"},
	{"vitunguu", "onions"},
	{"kabichi", "cabbage"},
	{"karoti", "carrots"},
	{"viazi", "potatoes"},
	{"sukuma", "kale"},
	{"pilipili", "peppers"},
	{"kunde", "beans"},
	{"maharagwe", "beans"},
}

// LookupItem returns the canonical name of the first dictionary item in text.
func LookupItem(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, entry := range itemDictionary {
		if strings.Contains(lower, entry.Term) {
			return entry.Canonical, true
		}
	}
	return "", false
}

var itemWordPattern = func() string {
	terms := make([]string, 0, len(itemDictionary))
	for _, entry := range itemDictionary {
		terms = append(terms, regexp.QuoteMeta(entry.Term))
	}
	return `(?:` + strings.Join(terms, "|") + `)[a-z]*`
}()

// NormalizeName is the canonical form used to match item names against inventory.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
