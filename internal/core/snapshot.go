package core

// Snapshot is an immutable point-in-time view of the ledger. Every derivation
// takes one as input and mutates nothing; after a write the caller must fetch
// a fresh snapshot before trusting derived values again.
type Snapshot struct {
	Members      []Member
	Transactions []Transaction
	Loans        []Loan
}

// SavingsBalance derives a member's net savings: the sum of signed amounts of
// that member's Deposit and Withdrawal transactions. Withdrawals are stored
// negative, so this is a plain sum; order of the input does not matter.
func (s Snapshot) SavingsBalance(memberID string) int64 {
	var sum int64
	for _, tx := range s.Transactions {
		if tx.MemberID == memberID && tx.Type.IsSavings() {
			sum += tx.AmountCents
		}
	}
	return sum
}

// CashOnHand derives the cooperative-wide cash position: the sum of signed
// amounts of all Deposit and Withdrawal transactions.
func (s Snapshot) CashOnHand() int64 {
	var sum int64
	for _, tx := range s.Transactions {
		if tx.Type.IsSavings() {
			sum += tx.AmountCents
		}
	}
	return sum
}

// MemberByID looks a member up in the snapshot.
func (s Snapshot) MemberByID(id string) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// LoanByID looks a loan up in the snapshot.
func (s Snapshot) LoanByID(id string) (Loan, bool) {
	for _, l := range s.Loans {
		if l.ID == id {
			return l, true
		}
	}
	return Loan{}, false
}

// SavingsLedger returns the member's Deposit/Withdrawal transactions in
// snapshot order, for the per-member ledger view.
func (s Snapshot) SavingsLedger(memberID string) []Transaction {
	var out []Transaction
	for _, tx := range s.Transactions {
		if tx.MemberID == memberID && tx.Type.IsSavings() {
			out = append(out, tx)
		}
	}
	return out
}

// LoanLedger returns the issuance and payment transactions belonging to the
// member behind a loan. The old system keyed these by remarks substrings; with
// day-precision dates and one loan per disbursement this member-scoped filter
// is the faithful equivalent.
func (s Snapshot) LoanLedger(memberID string) []Transaction {
	var out []Transaction
	for _, tx := range s.Transactions {
		if tx.MemberID == memberID && (tx.Type == LoanIssued || tx.Type == LoanPayment) {
			out = append(out, tx)
		}
	}
	return out
}
