package core

import (
	"testing"
	"time"
)

func txn(member string, typ TransactionType, cents int64) Transaction {
	return Transaction{
		MemberID:    member,
		Type:        typ,
		AmountCents: cents,
		Date:        time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSavingsBalance(t *testing.T) {
	s := Snapshot{Transactions: []Transaction{
		txn("m1", Deposit, 50_000),
		txn("m1", Withdrawal, -20_000),
		txn("m2", Deposit, 100_000),
		txn("m1", LoanPayment, 5_000), // not savings
		txn("m1", LoanIssued, 97_000), // not savings
	}}
	if got := s.SavingsBalance("m1"); got != 30_000 {
		t.Fatalf("SavingsBalance(m1) = %d, want 30000", got)
	}
	if got := s.SavingsBalance("m2"); got != 100_000 {
		t.Fatalf("SavingsBalance(m2) = %d, want 100000", got)
	}
	if got := s.SavingsBalance("missing"); got != 0 {
		t.Fatalf("SavingsBalance(missing) = %d, want 0", got)
	}
}

func TestSavingsBalanceCancellation(t *testing.T) {
	// Appending an equal-and-opposite deposit/withdrawal pair must not change
	// the derived balance.
	base := Snapshot{Transactions: []Transaction{
		txn("m1", Deposit, 75_000),
		txn("m1", Withdrawal, -25_000),
	}}
	want := base.SavingsBalance("m1")

	extended := Snapshot{Transactions: append(append([]Transaction{}, base.Transactions...),
		txn("m1", Deposit, 13_337),
		txn("m1", Withdrawal, -13_337),
	)}
	if got := extended.SavingsBalance("m1"); got != want {
		t.Fatalf("balance changed after no-op pair: %d != %d", got, want)
	}
}

func TestCashOnHandOrderIndependent(t *testing.T) {
	txs := []Transaction{
		txn("m1", Deposit, 50_000),
		txn("m2", Deposit, 120_000),
		txn("m1", Withdrawal, -30_000),
		txn("m2", Withdrawal, -45_000),
	}
	forward := Snapshot{Transactions: txs}

	reversed := make([]Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	backward := Snapshot{Transactions: reversed}

	if forward.CashOnHand() != backward.CashOnHand() {
		t.Fatalf("cash on hand depends on ordering: %d != %d", forward.CashOnHand(), backward.CashOnHand())
	}
	if got := forward.CashOnHand(); got != 95_000 {
		t.Fatalf("CashOnHand = %d, want 95000", got)
	}
}

func TestLedgerViews(t *testing.T) {
	s := Snapshot{Transactions: []Transaction{
		txn("m1", Deposit, 50_000),
		txn("m1", LoanIssued, 97_000),
		txn("m1", LoanPayment, 10_000),
		txn("m2", Deposit, 10_000),
		txn("m1", Withdrawal, -5_000),
	}}
	if got := len(s.SavingsLedger("m1")); got != 2 {
		t.Fatalf("SavingsLedger(m1) has %d rows, want 2", got)
	}
	if got := len(s.LoanLedger("m1")); got != 2 {
		t.Fatalf("LoanLedger(m1) has %d rows, want 2", got)
	}
	if got := s.LoanLedger("m2"); got != nil {
		t.Fatalf("LoanLedger(m2) = %v, want empty", got)
	}
}
