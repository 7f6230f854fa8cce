// Package services orchestrates the validate-then-write flows of the
// cooperative ledger: registration, savings movements, loan issuance and
// repayment. Rules live in core; persistence behind ledger.Store; events are
// published after the write and never fail the request.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"koopera/internal/amqp"
	"koopera/internal/core"
	"koopera/internal/ledger"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
	Close() error
}

type LedgerService struct {
	store  ledger.Store
	events EventPublisher
}

func NewLedgerService(store ledger.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// LoadSnapshot fetches members, transactions and loans in parallel and
// assembles the immutable view every derivation works from.
func (s *LedgerService) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ms, err := s.store.ListMembers(ctx)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		snap.Members = ms
		return nil
	})
	g.Go(func() error {
		txs, err := s.store.ListTransactions(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		ls, err := s.store.ListLoans(ctx)
		if err != nil {
			return fmt.Errorf("list loans: %w", err)
		}
		snap.Loans = ls
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// RegistrationInput carries the member-supplied fields of a registration.
type RegistrationInput struct {
	Name        string
	DateOfBirth time.Time
	Address     string
	Contact     string
}

// RegisterMember validates the applicant, assigns a unique member code and
// creates the member together with the fixed initial deposit.
func (s *LedgerService) RegisterMember(ctx context.Context, in RegistrationInput) (core.Member, error) {
	now := time.Now().UTC()

	member := core.Member{
		Name:        in.Name,
		Status:      core.MemberActive,
		DateOfBirth: in.DateOfBirth,
		Address:     in.Address,
		Contact:     in.Contact,
		JoinedAt:    core.DayStart(now),
	}
	if err := member.Validate(now); err != nil {
		return core.Member{}, err
	}

	code, err := s.uniqueMemberCode(ctx)
	if err != nil {
		return core.Member{}, err
	}
	member.MemberCode = code

	id, err := s.store.InsertMember(ctx, member)
	if err != nil {
		return core.Member{}, fmt.Errorf("save member: %w", err)
	}
	member.ID = id

	txID, err := s.store.InsertTransaction(ctx, core.Transaction{
		MemberID:    id,
		Type:        core.Deposit,
		AmountCents: core.InitialDepositCents,
		Date:        member.JoinedAt,
		Remarks:     core.RemarksInitialDeposit,
		Tag:         core.TagInitialDeposit,
	})
	if err != nil {
		return core.Member{}, fmt.Errorf("save initial deposit: %w", err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EventMemberRegistered, id)
	msg.TransactionID = txID
	msg.AmountCents = core.InitialDepositCents
	msg.Date = member.JoinedAt
	s.publish(ctx, msg)

	return member, nil
}

// uniqueMemberCode probes the store for collisions and retries within the
// attempt budget.
func (s *LedgerService) uniqueMemberCode(ctx context.Context) (string, error) {
	for range core.MemberCodeMaxAttempts {
		code, err := core.NewMemberCode()
		if err != nil {
			return "", err
		}
		hits, err := s.store.FindMembersByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("probe member code: %w", err)
		}
		if len(hits) == 0 {
			return code, nil
		}
	}
	return "", core.ErrCodeRetriesExceeded()
}

// UpdateMember writes the mutable profile fields. The member code never
// changes after registration.
func (s *LedgerService) UpdateMember(ctx context.Context, m core.Member) error {
	if err := m.Validate(time.Now().UTC()); err != nil {
		return err
	}
	if err := s.store.UpdateMember(ctx, m); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewLedgerEventMessage(amqp.EventMemberUpdated, m.ID))
	return nil
}

// DeleteMember removes the member record. The member's transactions and loans
// stay in the ledger as orphaned records.
func (s *LedgerService) DeleteMember(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewLedgerEventMessage(amqp.EventMemberDeleted, id))
	return nil
}

// Deposit appends a savings deposit for the member.
func (s *LedgerService) Deposit(ctx context.Context, memberID string, amountCents int64, date time.Time) (core.Transaction, error) {
	if amountCents <= 0 {
		return core.Transaction{}, &core.ValidationError{Reason: core.ReasonInvalidAmount, Msg: "deposit amount must be greater than zero"}
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, ok := snap.MemberByID(memberID); !ok {
		return core.Transaction{}, &core.NotFoundError{Kind: "member", ID: memberID}
	}

	tx := core.Transaction{
		MemberID:    memberID,
		Type:        core.Deposit,
		AmountCents: amountCents,
		Date:        entryDate(date),
		Remarks:     core.RemarksDeposit,
	}
	id, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save deposit: %w", err)
	}
	tx.ID = id

	msg := amqp.NewLedgerEventMessage(amqp.EventDeposit, memberID)
	msg.TransactionID = id
	msg.AmountCents = amountCents
	msg.Date = tx.Date
	s.publish(ctx, msg)

	return tx, nil
}

// Withdraw appends a savings withdrawal, refused when it would overdraw the
// member's balance. The stored amount is negative.
func (s *LedgerService) Withdraw(ctx context.Context, memberID string, amountCents int64, date time.Time) (core.Transaction, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, ok := snap.MemberByID(memberID); !ok {
		return core.Transaction{}, &core.NotFoundError{Kind: "member", ID: memberID}
	}
	if err := core.CheckWithdrawal(snap.SavingsBalance(memberID), amountCents); err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		MemberID:    memberID,
		Type:        core.Withdrawal,
		AmountCents: -amountCents,
		Date:        entryDate(date),
		Remarks:     core.RemarksWithdrawal,
	}
	id, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save withdrawal: %w", err)
	}
	tx.ID = id

	msg := amqp.NewLedgerEventMessage(amqp.EventWithdrawal, memberID)
	msg.TransactionID = id
	msg.AmountCents = -amountCents
	msg.Date = tx.Date
	s.publish(ctx, msg)

	return tx, nil
}

// IssueLoan grants a loan against the member's savings. The loan records the
// gross principal; the ledger records the net disbursement and books the 3%
// service charge back into savings as capital build-up.
func (s *LedgerService) IssueLoan(ctx context.Context, memberID string, principalCents int64, durationMonths int, date time.Time) (core.Loan, core.LoanQuote, error) {
	if durationMonths <= 0 {
		return core.Loan{}, core.LoanQuote{}, &core.ValidationError{Reason: core.ReasonInvalidInput, Msg: "loan duration must be at least one month"}
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return core.Loan{}, core.LoanQuote{}, err
	}
	if _, ok := snap.MemberByID(memberID); !ok {
		return core.Loan{}, core.LoanQuote{}, &core.NotFoundError{Kind: "member", ID: memberID}
	}
	if err := core.CheckEligibility(snap.SavingsBalance(memberID), principalCents); err != nil {
		return core.Loan{}, core.LoanQuote{}, err
	}

	quote := core.QuoteLoan(principalCents)
	issueDate := entryDate(date)

	loan := core.Loan{
		MemberID:          memberID,
		AmountCents:       quote.PrincipalCents,
		DurationMonths:    durationMonths,
		ServiceChargeRate: core.ServiceChargeRate,
		IssueDate:         issueDate,
		BalanceCents:      quote.PrincipalCents,
		Status:            core.LoanActive,
	}
	loanID, err := s.store.InsertLoan(ctx, loan)
	if err != nil {
		return core.Loan{}, core.LoanQuote{}, fmt.Errorf("save loan: %w", err)
	}
	loan.ID = loanID

	txID, err := s.store.InsertTransaction(ctx, core.Transaction{
		MemberID:    memberID,
		Type:        core.LoanIssued,
		AmountCents: quote.NetDisbursedCents,
		Date:        issueDate,
		Remarks:     "Loan Disbursement (Net of Service Charge)",
	})
	if err != nil {
		return core.Loan{}, core.LoanQuote{}, fmt.Errorf("save loan disbursement: %w", err)
	}

	if _, err := s.store.InsertTransaction(ctx, core.Transaction{
		MemberID:    memberID,
		Type:        core.Deposit,
		AmountCents: quote.ServiceChargeCents,
		Date:        issueDate,
		Remarks:     core.RemarksCapitalBuildUp,
		Tag:         core.TagCapitalBuildUp,
	}); err != nil {
		return core.Loan{}, core.LoanQuote{}, fmt.Errorf("save capital build-up: %w", err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EventLoanIssued, memberID)
	msg.LoanID = loanID
	msg.TransactionID = txID
	msg.AmountCents = quote.NetDisbursedCents
	msg.Date = issueDate
	s.publish(ctx, msg)

	return loan, quote, nil
}

// PayLoan applies a repayment to an active loan. The loan row is updated
// first, then the payment transaction appended; there is no compensating
// rollback between the two writes.
func (s *LedgerService) PayLoan(ctx context.Context, loanID string, amountCents int64, date time.Time) (core.Loan, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return core.Loan{}, err
	}
	loan, ok := snap.LoanByID(loanID)
	if !ok {
		return core.Loan{}, &core.NotFoundError{Kind: "loan", ID: loanID}
	}

	next, err := loan.ApplyPayment(amountCents)
	if err != nil {
		return core.Loan{}, err
	}

	if err := s.store.UpdateLoan(ctx, next); err != nil {
		return core.Loan{}, fmt.Errorf("update loan: %w", err)
	}

	paymentDate := entryDate(date)
	txID, err := s.store.InsertTransaction(ctx, core.Transaction{
		MemberID:    loan.MemberID,
		Type:        core.LoanPayment,
		AmountCents: amountCents,
		Date:        paymentDate,
		Remarks:     "Loan Repayment",
	})
	if err != nil {
		return core.Loan{}, fmt.Errorf("save loan payment: %w", err)
	}

	msg := amqp.NewLedgerEventMessage(amqp.EventLoanPayment, loan.MemberID)
	msg.LoanID = loanID
	msg.TransactionID = txID
	msg.AmountCents = amountCents
	msg.Date = paymentDate
	s.publish(ctx, msg)

	return next, nil
}

func entryDate(date time.Time) time.Time {
	if date.IsZero() {
		date = time.Now()
	}
	return core.DayStart(date)
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.LedgerEventMessage) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		// The ledger write already succeeded; a lost event only delays the
		// report export.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", msg.Kind,
			"member_id", msg.MemberID,
			"error", err)
	}
}

// Close releases the event publisher. The store is owned by the caller.
func (s *LedgerService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close event publisher: %w", err)
		}
	}
	return nil
}
