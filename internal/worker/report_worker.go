// Package worker drives the report export: it turns consumed ledger events
// into feed rows and keeps the exported financial statement current.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"koopera/internal/amqp"
	"koopera/internal/core"
	"koopera/internal/export"
	"koopera/internal/ledger"
)

type ReportWorker struct {
	store  ledger.Store
	writer export.ReportWriter
}

func NewReportWorker(store ledger.Store, writer export.ReportWriter) *ReportWorker {
	return &ReportWorker{
		store:  store,
		writer: writer,
	}
}

// HandleLedgerEvent appends one feed row for the event and refreshes the
// statement block. Returning an error requeues the delivery.
func (w *ReportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	entry := export.ReportEntry{
		Date:        msg.Date,
		Kind:        msg.Kind,
		MemberID:    msg.MemberID,
		AmountCents: msg.AmountCents,
	}
	if entry.Date.IsZero() {
		entry.Date = msg.Timestamp
	}

	ref, err := w.writer.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append report entry: %w", err)
	}

	slog.InfoContext(ctx, "Exported ledger event",
		"kind", msg.Kind,
		"member_id", msg.MemberID,
		"sheets_ref", ref)

	return w.RefreshStatement(ctx)
}

// RefreshStatement rebuilds the financial statement from the store and
// replaces the exported block. Also run periodically to catch lost events.
func (w *ReportWorker) RefreshStatement(ctx context.Context) error {
	snap, err := w.loadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	st := core.BuildStatement(snap)
	if err := w.writer.WriteStatement(ctx, st, time.Now()); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement exported",
		"total_assets_cents", st.TotalAssets,
		"cash_on_hand_cents", st.CashOnHand,
		"loans_receivable_cents", st.LoansReceivable)
	return nil
}

func (w *ReportWorker) loadSnapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ms, err := w.store.ListMembers(ctx)
		if err != nil {
			return err
		}
		snap.Members = ms
		return nil
	})
	g.Go(func() error {
		txs, err := w.store.ListTransactions(ctx)
		if err != nil {
			return err
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		ls, err := w.store.ListLoans(ctx)
		if err != nil {
			return err
		}
		snap.Loans = ls
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}
