package models

// ValidateEntry checks the sign rules for a ledger entry kind.
// Returns a human-readable problem description, or "" when the entry is fine.
func ValidateEntry(kind string, amount int64) string {
	switch kind {
	case KindEarn:
		if amount <= 0 {
			return "earn amount must be positive"
		}
	case KindSpend:
		if amount >= 0 {
			return "spend amount must be negative"
		}
	case KindAdjust:
		if amount == 0 {
			return "adjust amount must not be zero"
		}
	default:
		return "unknown entry kind"
	}
	return ""
}

// EntryCanTransition reports whether a ledger entry may move from one
// status to another. The only legal moves are pending -> approved and
// pending -> rejected; approved and rejected are terminal.
func EntryCanTransition(from, to string) bool {
	return from == EntryPending && (to == EntryApproved || to == EntryRejected)
}

// RedemptionCanTransition reports whether a redemption may move from one
// status to another: pending -> approved, pending -> rejected,
// approved -> issued. Issued and rejected are terminal.
func RedemptionCanTransition(from, to string) bool {
	switch {
	case from == RedemptionPending && to == RedemptionApproved:
		return true
	case from == RedemptionPending && to == RedemptionRejected:
		return true
	case from == RedemptionApproved && to == RedemptionIssued:
		return true
	}
	return false
}
