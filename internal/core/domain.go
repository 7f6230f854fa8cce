package core

import (
	"strings"
	"time"
)

const (
	Deposit     TransactionType = "Deposit"
	Withdrawal  TransactionType = "Withdrawal"
	LoanIssued  TransactionType = "Loan Issued"
	LoanPayment TransactionType = "Loan Payment"
)

const (
	// TagNone marks an ordinary transaction with no special role.
	TagNone TransactionTag = ""
	// TagInitialDeposit marks the fixed deposit created at registration.
	TagInitialDeposit TransactionTag = "initial_deposit"
	// TagCapitalBuildUp marks the service-charge deposit created at loan issuance.
	TagCapitalBuildUp TransactionTag = "capital_buildup"
)

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
)

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
)

// Legacy remarks literals. Ledgers imported from the old system classified
// transactions by matching these strings; classification now prefers the Tag
// field but still falls back to them.
const (
	RemarksInitialDeposit = "Initial Deposit for Membership"
	RemarksCapitalBuildUp = "Capital Build-Up from Loan Service Charge"
	RemarksDeposit        = "Member Deposit"
	RemarksWithdrawal     = "Member Withdrawal"
)

// Fixed amounts and rules of the cooperative.
const (
	// InitialDepositCents is deposited automatically when a member registers.
	InitialDepositCents int64 = 50_000 // 500.00
	// MinSavingsForLoanCents is the savings floor below which no loan is granted.
	MinSavingsForLoanCents int64 = 200_000 // 2,000.00
	// MaxLoanCents caps any single loan.
	MaxLoanCents int64 = 5_000_000 // 50,000.00
	// MinimumAge for registration.
	MinimumAge = 18
)

// ServiceChargeRate is the fixed fee rate deducted from a loan's principal at
// issuance (3%), recorded on the loan for the historical record.
const ServiceChargeRate = 0.03

type (
	TransactionType string
	TransactionTag  string
	MemberStatus    string
	LoanStatus      string

	Member struct {
		ID          string
		Name        string
		MemberCode  string
		Status      MemberStatus
		DateOfBirth time.Time
		Address     string
		Contact     string
		JoinedAt    time.Time
	}

	// Transaction is an immutable, append-only ledger record. Withdrawals are
	// stored with negative amounts; every other type is positive. Corrections
	// are made by inserting offsetting transactions, never by edits.
	Transaction struct {
		ID          string
		MemberID    string
		Type        TransactionType
		AmountCents int64
		Date        time.Time
		Remarks     string
		Tag         TransactionTag
	}

	Loan struct {
		ID                string
		MemberID          string
		AmountCents       int64 // gross principal
		DurationMonths    int
		ServiceChargeRate float64
		IssueDate         time.Time
		BalanceCents      int64
		PaymentsMadeCents int64
		Status            LoanStatus
	}
)

// IsSavings reports whether the transaction type moves member savings.
func (t TransactionType) IsSavings() bool {
	return t == Deposit || t == Withdrawal
}

func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdrawal, LoanIssued, LoanPayment:
		return true
	}
	return false
}

// IsInitialDeposit classifies the registration deposit, preferring the
// explicit tag and falling back to the legacy remarks literal.
func (tx Transaction) IsInitialDeposit() bool {
	if tx.Tag == TagInitialDeposit {
		return true
	}
	return tx.Tag == TagNone && tx.Remarks == RemarksInitialDeposit
}

// IsCapitalBuildUp classifies the loan service-charge deposit.
func (tx Transaction) IsCapitalBuildUp() bool {
	if tx.Tag == TagCapitalBuildUp {
		return true
	}
	return tx.Tag == TagNone && tx.Remarks == RemarksCapitalBuildUp
}

func (tx Transaction) Validate() error {
	if tx.MemberID == "" {
		return &ValidationError{Reason: ReasonMissingMember, Msg: "transaction has no member reference"}
	}
	if !tx.Type.Valid() {
		return &ValidationError{Reason: ReasonInvalidInput, Msg: "unknown transaction type " + string(tx.Type)}
	}
	if tx.Date.IsZero() {
		return &ValidationError{Reason: ReasonInvalidInput, Msg: "transaction date is not set"}
	}
	switch tx.Type {
	case Withdrawal:
		if tx.AmountCents >= 0 {
			return &ValidationError{Reason: ReasonInvalidAmount, Msg: "withdrawal amount must be negative"}
		}
	default:
		if tx.AmountCents <= 0 {
			return &ValidationError{Reason: ReasonInvalidAmount, Msg: "amount must be positive"}
		}
	}
	return nil
}

// Age computes full years between the date of birth and now.
func (m Member) Age(now time.Time) int {
	years := now.Year() - m.DateOfBirth.Year()
	anniversary := m.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

func (m Member) Validate(now time.Time) error {
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Reason: ReasonInvalidInput, Msg: "member name is required"}
	}
	if m.DateOfBirth.IsZero() {
		return &ValidationError{Reason: ReasonInvalidInput, Msg: "date of birth is required"}
	}
	if m.Age(now) < MinimumAge {
		return &ValidationError{Reason: ReasonUnderAge, Msg: "member must be at least 18 years old"}
	}
	return nil
}

// DayStart truncates t to midnight UTC. Ledger dates carry day precision.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the YYYY-MM bucket key for a transaction date.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
