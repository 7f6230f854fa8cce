// Package ledger defines the store contract the core consumes. The durable
// store is an external collaborator; these ports keep it narrow and let the
// SQLite and in-memory implementations swap freely.
package ledger

import (
	"context"

	"koopera/internal/core"
)

type (
	// MemberStore lists members ordered by name and supports the mutation
	// and uniqueness-probing operations of the registration flow.
	MemberStore interface {
		ListMembers(ctx context.Context) ([]core.Member, error)
		InsertMember(ctx context.Context, m core.Member) (id string, err error)
		UpdateMember(ctx context.Context, m core.Member) error
		// DeleteMember removes the member record only. Transactions and
		// loans referencing it become orphaned records; they are retained
		// for historical integrity.
		DeleteMember(ctx context.Context, id string) error
		FindMembersByCode(ctx context.Context, code string) ([]core.Member, error)
	}

	// TransactionStore lists the append-only log ordered by date descending.
	// There is deliberately no update or delete: corrections are offsetting
	// inserts.
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		InsertTransaction(ctx context.Context, tx core.Transaction) (id string, err error)
	}

	// LoanStore lists loans ordered by issue date descending.
	LoanStore interface {
		ListLoans(ctx context.Context) ([]core.Loan, error)
		InsertLoan(ctx context.Context, l core.Loan) (id string, err error)
		UpdateLoan(ctx context.Context, l core.Loan) error
	}

	// Store is the full contract the ledger service needs.
	Store interface {
		MemberStore
		TransactionStore
		LoanStore
	}
)
