package extraction

// overridePrecedence is evaluated in order; the first family present wins.
var overridePrecedence = []Family{FamilyLoan, FamilyDebt, FamilySale, FamilyPurchase, FamilyExpense}

// DetectOverride returns the type the original message's keywords force, if any.
func DetectOverride(message string) (TransactionType, bool) {
	for _, family := range overridePrecedence {
		if HasFamily(message, family, RoleOverride) {
			return TransactionType(family), true
		}
	}
	return TypeNone, false
}

// ApplyHeuristics re-scans the original message and overrides the candidate
// type when a keyword family is present, even if the classifier abstained.
func ApplyHeuristics(message string, c Candidate) Candidate {
	override, ok := DetectOverride(message)
	if !ok {
		return c
	}

	promoted := !c.IsTransaction()
	c.TransactionType = override
	if promoted && len(c.Items) == 0 {
		c = withPlaceholder(c)
	}
	return c
}
