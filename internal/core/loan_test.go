package core

import (
	"errors"
	"testing"
)

func TestMaxLoan(t *testing.T) {
	cases := []struct {
		savings int64
		want    int64
	}{
		{199_900, 0},         // 1,999.00: below the floor
		{200_000, 400_000},   // 2,000.00 -> 4,000.00
		{3_000_000, 5_000_000}, // 30,000.00: ceiling applies
		{0, 0},
	}
	for _, tc := range cases {
		if got := MaxLoan(tc.savings); got != tc.want {
			t.Fatalf("MaxLoan(%d) = %d, want %d", tc.savings, got, tc.want)
		}
	}
}

func TestQuoteLoan(t *testing.T) {
	q := QuoteLoan(1_000_000) // 10,000.00
	if q.ServiceChargeCents != 30_000 {
		t.Fatalf("service charge = %d, want 30000", q.ServiceChargeCents)
	}
	if q.NetDisbursedCents != 970_000 {
		t.Fatalf("net disbursement = %d, want 970000", q.NetDisbursedCents)
	}
	if q.ServiceChargeCents+q.NetDisbursedCents != q.PrincipalCents {
		t.Fatal("quote does not add back to principal")
	}
}

func TestCheckEligibility(t *testing.T) {
	if err := CheckEligibility(200_000, 400_000); err != nil {
		t.Fatalf("expected ok at the ceiling, got %v", err)
	}
	err := CheckEligibility(200_000, 400_001)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != ReasonLoanDenied {
		t.Fatalf("expected loan_denied, got %v", err)
	}
	if ve.LimitCents != 400_000 {
		t.Fatalf("denial carries limit %d, want 400000", ve.LimitCents)
	}
	if err := CheckEligibility(200_000, 0); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestApplyPaymentSequence(t *testing.T) {
	l := Loan{AmountCents: 1_000_000, BalanceCents: 1_000_000, Status: LoanActive}

	payments := []int64{300_000, 300_000, 400_000}
	for i, p := range payments {
		var err error
		l, err = l.ApplyPayment(p)
		if err != nil {
			t.Fatalf("payment %d failed: %v", i, err)
		}
		if l.PaymentsMadeCents+l.BalanceCents != l.AmountCents {
			t.Fatalf("identity broken after payment %d: %d + %d != %d",
				i, l.PaymentsMadeCents, l.BalanceCents, l.AmountCents)
		}
	}
	if l.BalanceCents != 0 {
		t.Fatalf("final balance = %d, want 0", l.BalanceCents)
	}
	if l.Status != LoanCompleted {
		t.Fatalf("final status = %q, want completed", l.Status)
	}
	if l.PaymentsMadeCents != l.AmountCents {
		t.Fatalf("payments made = %d, want %d", l.PaymentsMadeCents, l.AmountCents)
	}
}

func TestApplyPaymentRejections(t *testing.T) {
	orig := Loan{AmountCents: 500_000, BalanceCents: 200_000, PaymentsMadeCents: 300_000, Status: LoanActive}

	if _, err := orig.ApplyPayment(0); err == nil {
		t.Fatal("expected error for zero payment")
	}
	if _, err := orig.ApplyPayment(-100); err == nil {
		t.Fatal("expected error for negative payment")
	}

	_, err := orig.ApplyPayment(200_001)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != ReasonPaymentOverBalance {
		t.Fatalf("expected payment_exceeds_balance, got %v", err)
	}
	if ve.LimitCents != 200_000 {
		t.Fatalf("refusal carries balance %d, want 200000", ve.LimitCents)
	}

	// Pure transition: the input loan is untouched by a rejection.
	if orig.BalanceCents != 200_000 || orig.PaymentsMadeCents != 300_000 || orig.Status != LoanActive {
		t.Fatal("rejected payment mutated the loan")
	}
}

func TestCheckWithdrawal(t *testing.T) {
	// Exactly the balance succeeds; one cent more fails with the balance attached.
	if err := CheckWithdrawal(50_000, 50_000); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	err := CheckWithdrawal(50_000, 50_001)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != ReasonInsufficientFunds {
		t.Fatalf("expected insufficient_funds, got %v", err)
	}
	if ve.LimitCents != 50_000 {
		t.Fatalf("refusal carries balance %d, want 50000", ve.LimitCents)
	}
	if err := CheckWithdrawal(50_000, 0); err == nil {
		t.Fatal("expected error for zero amount")
	}
}
