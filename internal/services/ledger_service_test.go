package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"koopera/internal/amqp"
	"koopera/internal/core"
	"koopera/internal/ledger/memory"
)

type capturedEvents struct {
	msgs   []*amqp.LedgerEventMessage
	failed bool
}

func (c *capturedEvents) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEventMessage) error {
	if c.failed {
		return errors.New("broker down")
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *capturedEvents) Close() error { return nil }

func newTestService(t *testing.T) (*LedgerService, *memory.Store, *capturedEvents) {
	t.Helper()
	store := memory.New()
	events := &capturedEvents{}
	return NewLedgerService(store, events), store, events
}

func registerAdult(t *testing.T, svc *LedgerService) core.Member {
	t.Helper()
	m, err := svc.RegisterMember(context.Background(), RegistrationInput{
		Name:        "Ana Reyes",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		Address:     "Quezon City",
		Contact:     "0917 000 0000",
	})
	require.NoError(t, err)
	return m
}

func TestRegisterMemberCreatesInitialDeposit(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()

	m := registerAdult(t, svc)
	require.NotEmpty(t, m.ID)
	require.Regexp(t, `^MEM-[A-Z0-9]{4}$`, m.MemberCode)
	require.Equal(t, core.MemberActive, m.Status)
	require.False(t, m.JoinedAt.IsZero())

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, core.Deposit, txs[0].Type)
	require.Equal(t, core.InitialDepositCents, txs[0].AmountCents)
	require.Equal(t, core.TagInitialDeposit, txs[0].Tag)
	require.True(t, txs[0].IsInitialDeposit())

	require.Len(t, events.msgs, 1)
	require.Equal(t, amqp.EventMemberRegistered, events.msgs[0].Kind)
	require.Equal(t, m.ID, events.msgs[0].MemberID)
}

func TestRegisterMemberRejectsMinor(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.RegisterMember(context.Background(), RegistrationInput{
		Name:        "Too Young",
		DateOfBirth: time.Now().UTC().AddDate(-17, 0, 0),
	})
	require.True(t, core.IsValidation(err))

	txs, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Empty(t, txs, "no ledger entry on refused registration")
}

func TestDepositAndWithdraw(t *testing.T) {
	svc, _, events := newTestService(t)
	ctx := context.Background()
	m := registerAdult(t, svc)

	date := time.Date(2025, 2, 10, 15, 4, 0, 0, time.UTC)
	dep, err := svc.Deposit(ctx, m.ID, 150_000, date)
	require.NoError(t, err)
	require.Equal(t, int64(150_000), dep.AmountCents)
	require.Equal(t, core.DayStart(date), dep.Date, "ledger dates carry day precision")

	wd, err := svc.Withdraw(ctx, m.ID, 25_000, date)
	require.NoError(t, err)
	require.Equal(t, int64(-25_000), wd.AmountCents, "withdrawals are stored negative")

	snap, err := svc.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(50_000+150_000-25_000), snap.SavingsBalance(m.ID))

	kinds := make([]string, 0, len(events.msgs))
	for _, msg := range events.msgs {
		kinds = append(kinds, msg.Kind)
	}
	require.Equal(t, []string{amqp.EventMemberRegistered, amqp.EventDeposit, amqp.EventWithdrawal}, kinds)
}

func TestWithdrawRefusesOverdraft(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	m := registerAdult(t, svc)

	// Balance is the 500.00 initial deposit.
	_, err := svc.Withdraw(ctx, m.ID, 50_001, time.Time{})
	require.True(t, core.IsValidation(err))

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, core.ReasonInsufficientFunds, verr.Reason)
	require.Equal(t, int64(50_000), verr.LimitCents)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1, "refused withdrawal leaves the ledger untouched")
}

func TestDepositUnknownMember(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Deposit(context.Background(), "missing", 1_000, time.Time{})
	require.True(t, core.IsNotFound(err))
}

func TestIssueLoanBooksThreeRecords(t *testing.T) {
	svc, store, events := newTestService(t)
	ctx := context.Background()
	m := registerAdult(t, svc)

	// Bring savings to 5,500.00 so a 10,000.00 loan fits under 2x savings.
	_, err := svc.Deposit(ctx, m.ID, 500_000, time.Time{})
	require.NoError(t, err)

	issueDate := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	loan, quote, err := svc.IssueLoan(ctx, m.ID, 1_000_000, 12, issueDate)
	require.NoError(t, err)

	require.Equal(t, int64(1_000_000), loan.AmountCents, "loan records the gross principal")
	require.Equal(t, int64(1_000_000), loan.BalanceCents)
	require.Equal(t, core.LoanActive, loan.Status)
	require.Equal(t, int64(30_000), quote.ServiceChargeCents)
	require.Equal(t, int64(970_000), quote.NetDisbursedCents)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	var disbursed, buildUp *core.Transaction
	for i := range txs {
		switch {
		case txs[i].Type == core.LoanIssued:
			disbursed = &txs[i]
		case txs[i].IsCapitalBuildUp():
			buildUp = &txs[i]
		}
	}
	require.NotNil(t, disbursed)
	require.Equal(t, int64(970_000), disbursed.AmountCents, "ledger records the net disbursement")
	require.NotNil(t, buildUp)
	require.Equal(t, core.Deposit, buildUp.Type)
	require.Equal(t, int64(30_000), buildUp.AmountCents)

	// The service charge lands back in savings.
	snap, err := svc.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(50_000+500_000+30_000), snap.SavingsBalance(m.ID))

	last := events.msgs[len(events.msgs)-1]
	require.Equal(t, amqp.EventLoanIssued, last.Kind)
	require.Equal(t, loan.ID, last.LoanID)
}

func TestIssueLoanDeniedCarriesCeiling(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	m := registerAdult(t, svc)

	// Savings 500.00 is below the 2,000.00 floor: ceiling is zero.
	_, _, err := svc.IssueLoan(ctx, m.ID, 100_000, 6, time.Time{})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, core.ReasonLoanDenied, verr.Reason)
	require.Equal(t, int64(0), verr.LimitCents)

	loans, err := store.ListLoans(ctx)
	require.NoError(t, err)
	require.Empty(t, loans)
}

func TestPayLoanToCompletion(t *testing.T) {
	svc, _, events := newTestService(t)
	ctx := context.Background()
	m := registerAdult(t, svc)

	_, err := svc.Deposit(ctx, m.ID, 500_000, time.Time{})
	require.NoError(t, err)
	loan, _, err := svc.IssueLoan(ctx, m.ID, 1_000_000, 12, time.Time{})
	require.NoError(t, err)

	mid, err := svc.PayLoan(ctx, loan.ID, 400_000, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(600_000), mid.BalanceCents)
	require.Equal(t, core.LoanActive, mid.Status)
	require.Equal(t, loan.AmountCents, mid.PaymentsMadeCents+mid.BalanceCents)

	done, err := svc.PayLoan(ctx, loan.ID, 600_000, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(0), done.BalanceCents)
	require.Equal(t, core.LoanCompleted, done.Status)

	// Overpayment against the completed loan is refused.
	_, err = svc.PayLoan(ctx, loan.ID, 1, time.Time{})
	require.True(t, core.IsValidation(err))

	last := events.msgs[len(events.msgs)-1]
	require.Equal(t, amqp.EventLoanPayment, last.Kind)
	require.Equal(t, m.ID, last.MemberID)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	store := memory.New()
	events := &capturedEvents{failed: true}
	svc := NewLedgerService(store, events)

	m, err := svc.RegisterMember(context.Background(), RegistrationInput{
		Name:        "Ben Cruz",
		DateOfBirth: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err, "broker outage must not fail the registration")
	require.NotEmpty(t, m.ID)
}

func TestServiceWorksWithoutPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	_, err := svc.RegisterMember(context.Background(), RegistrationInput{
		Name:        "Cora Lim",
		DateOfBirth: time.Date(1970, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}
