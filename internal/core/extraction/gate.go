package extraction

// StrongConfidence is the score a candidate must exceed to pass the gate on confidence alone.
const StrongConfidence = 0.4

// IsStrongIntent decides whether a candidate is offered to the user as a
// pending transaction. The message is re-scanned for transaction verbs
// rather than trusting the upstream type.
func IsStrongIntent(message string, c Candidate) bool {
	if !c.IsTransaction() || c.TotalAmount <= 0 {
		return false
	}
	return c.Confidence > StrongConfidence || HasRole(message, RoleGate)
}
