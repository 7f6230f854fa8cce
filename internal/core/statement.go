package core

import "time"

// FinancialStatement aggregates the whole ledger into the income-statement
// and balance-sheet figures. All fields are signed cents.
//
// TotalLoansIssued sums the Loan Issued transactions, which record net
// disbursements (principal minus service charge), while LoansReceivable sums
// gross balances off the loan records. That mismatch is inherited from the
// source accounting model; IdentityGapCents surfaces it as a diagnostic
// instead of forcing the books to balance.
type FinancialStatement struct {
	TotalDeposits          int64
	TotalWithdrawals       int64 // negative
	TotalLoansIssued       int64 // net disbursement figures
	TotalLoanPayments      int64
	ServiceChargeFromLoans int64

	CashOnHand        int64
	LoansReceivable   int64
	TotalAssets       int64
	MemberSavings     int64 // liability; equals CashOnHand by definition
	InitialDeposits   int64 // equity from membership deposits
	NetIncome         int64
	CooperativeEquity int64

	// IdentityGapCents = TotalAssets - (MemberSavings + CooperativeEquity).
	// Diagnostic only; the model does not guarantee zero.
	IdentityGapCents int64
}

// BuildStatement derives the financial statement from a snapshot. Pure and
// order-independent: every figure is a plain sum over the inputs.
func BuildStatement(s Snapshot) FinancialStatement {
	var st FinancialStatement
	for _, tx := range s.Transactions {
		switch tx.Type {
		case Deposit:
			st.TotalDeposits += tx.AmountCents
		case Withdrawal:
			st.TotalWithdrawals += tx.AmountCents
		case LoanIssued:
			st.TotalLoansIssued += tx.AmountCents
		case LoanPayment:
			st.TotalLoanPayments += tx.AmountCents
		}
		if tx.IsCapitalBuildUp() {
			st.ServiceChargeFromLoans += tx.AmountCents
		}
		if tx.IsInitialDeposit() {
			st.InitialDeposits += tx.AmountCents
		}
	}
	for _, l := range s.Loans {
		if l.Status == LoanActive {
			st.LoansReceivable += l.BalanceCents
		}
	}

	st.CashOnHand = st.TotalDeposits + st.TotalWithdrawals
	st.TotalAssets = st.CashOnHand + st.LoansReceivable
	st.MemberSavings = st.CashOnHand
	st.NetIncome = (st.ServiceChargeFromLoans + st.TotalLoanPayments) - st.TotalLoansIssued
	st.CooperativeEquity = st.InitialDeposits + st.ServiceChargeFromLoans + st.NetIncome
	st.IdentityGapCents = st.TotalAssets - (st.MemberSavings + st.CooperativeEquity)
	return st
}

// PeriodReport summarizes ledger activity over an inclusive date range.
type PeriodReport struct {
	Start time.Time
	End   time.Time

	NewMembers        int
	DepositsCents     int64
	WithdrawalsCents  int64 // absolute value
	LoansIssuedCents  int64
	LoanPaymentsCents int64
}

// BuildPeriodReport derives the weekly/custom-range report. Both bounds are
// normalized to day boundaries and inclusive. An unset or reversed range is a
// validation error; a range containing no activity yields an all-zero report.
//
// New-member counting uses the explicit join timestamp when present and falls
// back to the date of the member's initial-deposit transaction, matching how
// older records lacked the attribute.
func BuildPeriodReport(s Snapshot, start, end time.Time) (PeriodReport, error) {
	if start.IsZero() || end.IsZero() {
		return PeriodReport{}, &ValidationError{Reason: ReasonInvalidInput, Msg: "report range is not set"}
	}
	lo := DayStart(start)
	hi := DayStart(end)
	if lo.After(hi) {
		return PeriodReport{}, &ValidationError{Reason: ReasonReversedDateRange, Msg: "report start date is after end date"}
	}

	rep := PeriodReport{Start: lo, End: hi}
	inRange := func(t time.Time) bool {
		d := DayStart(t)
		return !d.Before(lo) && !d.After(hi)
	}

	for _, m := range s.Members {
		joined := m.JoinedAt
		if joined.IsZero() {
			for _, tx := range s.Transactions {
				if tx.MemberID == m.ID && tx.IsInitialDeposit() {
					joined = tx.Date
					break
				}
			}
		}
		if !joined.IsZero() && inRange(joined) {
			rep.NewMembers++
		}
	}

	for _, tx := range s.Transactions {
		if !inRange(tx.Date) {
			continue
		}
		switch tx.Type {
		case Deposit:
			rep.DepositsCents += tx.AmountCents
		case Withdrawal:
			rep.WithdrawalsCents += abs(tx.AmountCents)
		case LoanIssued:
			rep.LoansIssuedCents += tx.AmountCents
		case LoanPayment:
			rep.LoanPaymentsCents += tx.AmountCents
		}
	}
	return rep, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
