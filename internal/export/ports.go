// Package export defines the outbound report ports: the ledger feed and the
// financial statement pushed to a spreadsheet the treasurer can open.
package export

import (
	"context"
	"time"

	"koopera/internal/core"
)

// ReportEntry is one row of the exported ledger feed.
type ReportEntry struct {
	Date        time.Time
	Kind        string
	MemberID    string
	AmountCents int64
}

type (
	// EntryWriter appends ledger feed rows.
	EntryWriter interface {
		AppendEntry(ctx context.Context, e ReportEntry) (rowRef string, err error)
	}

	// StatementWriter replaces the statement block with fresh figures.
	StatementWriter interface {
		WriteStatement(ctx context.Context, st core.FinancialStatement, asOf time.Time) error
	}

	// ReportWriter is the full contract the report worker needs.
	ReportWriter interface {
		EntryWriter
		StatementWriter
	}
)
