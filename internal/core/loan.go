package core

// MaxLoan computes the ceiling a member qualifies for given their current
// savings. Below the savings floor the answer is zero; above it the ceiling
// is twice the savings, capped at the cooperative-wide maximum.
func MaxLoan(savingsCents int64) int64 {
	if savingsCents < MinSavingsForLoanCents {
		return 0
	}
	if ceiling := savingsCents * 2; ceiling < MaxLoanCents {
		return ceiling
	}
	return MaxLoanCents
}

// LoanQuote is the money split of an approved loan at issuance.
type LoanQuote struct {
	PrincipalCents     int64
	ServiceChargeCents int64
	NetDisbursedCents  int64
}

// QuoteLoan splits a gross principal into the 3% service charge (rounded
// half-up) and the net cash actually disbursed to the member.
func QuoteLoan(principalCents int64) LoanQuote {
	charge := PercentOf(principalCents, 3)
	return LoanQuote{
		PrincipalCents:     principalCents,
		ServiceChargeCents: charge,
		NetDisbursedCents:  principalCents - charge,
	}
}

// CheckEligibility validates a requested loan against the member's savings.
// On refusal the error carries the computed ceiling for display.
func CheckEligibility(savingsCents, requestedCents int64) error {
	if requestedCents <= 0 {
		return &ValidationError{Reason: ReasonInvalidAmount, Msg: "loan amount must be greater than zero"}
	}
	max := MaxLoan(savingsCents)
	if requestedCents > max {
		return &ValidationError{
			Reason:     ReasonLoanDenied,
			Msg:        "loan denied",
			LimitCents: max,
		}
	}
	return nil
}

// ApplyPayment returns the loan state after a payment. It is a pure
// transition: the input loan is unchanged and nothing is persisted here.
// Payments of zero or less are invalid; payments above the outstanding
// balance are refused with the balance attached. The identity
// PaymentsMadeCents + BalanceCents == AmountCents is preserved exactly.
func (l Loan) ApplyPayment(amountCents int64) (Loan, error) {
	if amountCents <= 0 {
		return Loan{}, &ValidationError{Reason: ReasonInvalidAmount, Msg: "payment amount must be greater than zero"}
	}
	if amountCents > l.BalanceCents {
		return Loan{}, &ValidationError{
			Reason:     ReasonPaymentOverBalance,
			Msg:        "payment exceeds outstanding balance",
			LimitCents: l.BalanceCents,
		}
	}
	next := l
	next.BalanceCents -= amountCents
	next.PaymentsMadeCents += amountCents
	if next.BalanceCents <= 0 {
		next.Status = LoanCompleted
	}
	return next, nil
}

// CheckWithdrawal validates a withdrawal request against the member's current
// savings; the refusal carries the balance for display.
func CheckWithdrawal(savingsCents, requestedCents int64) error {
	if requestedCents <= 0 {
		return &ValidationError{Reason: ReasonInvalidAmount, Msg: "withdrawal amount must be greater than zero"}
	}
	if requestedCents > savingsCents {
		return &ValidationError{
			Reason:     ReasonInsufficientFunds,
			Msg:        "insufficient funds",
			LimitCents: savingsCents,
		}
	}
	return nil
}
