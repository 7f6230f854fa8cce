// Package storage is the durable ledger store: SQLite via modernc.org/sqlite
// with embedded migrations. It implements the ledger.Store contract and
// translates driver failures into the store error taxonomy.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"koopera/internal/core"
	"koopera/internal/ledger"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// storeErr wraps a driver error into the taxonomy the core surfaces. SQLite
// has no permission layer; classification is availability vs internal.
func storeErr(op string, err error) error {
	cat := core.StoreInternal
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		cat = core.StoreUnavailable
	}
	return &core.StoreError{Category: cat, Op: op, Err: err}
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	out, err := r.queries.ListMembers(ctx)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertMember(ctx context.Context, m core.Member) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.queries.InsertMember(ctx, m); err != nil {
		return "", storeErr("insert member", err)
	}
	slog.InfoContext(ctx, "Member saved", "id", m.ID, "member_code", m.MemberCode)
	return m.ID, nil
}

func (r *SQLiteRepository) UpdateMember(ctx context.Context, m core.Member) error {
	n, err := r.queries.UpdateMember(ctx, m)
	if err != nil {
		return storeErr("update member", err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: "member", ID: m.ID}
	}
	return nil
}

func (r *SQLiteRepository) DeleteMember(ctx context.Context, id string) error {
	n, err := r.queries.DeleteMember(ctx, id)
	if err != nil {
		return storeErr("delete member", err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: "member", ID: id}
	}
	// Transactions and loans are left in place as orphaned records.
	slog.InfoContext(ctx, "Member deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) FindMembersByCode(ctx context.Context, code string) ([]core.Member, error) {
	out, err := r.queries.FindMembersByCode(ctx, code)
	if err != nil {
		return nil, storeErr("find members by code", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	out, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := r.queries.InsertTransaction(ctx, tx); err != nil {
		return "", storeErr("insert transaction", err)
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"member_id", tx.MemberID,
		"type", string(tx.Type),
		"amount_cents", tx.AmountCents)
	return tx.ID, nil
}

func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.Loan, error) {
	out, err := r.queries.ListLoans(ctx)
	if err != nil {
		return nil, storeErr("list loans", err)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertLoan(ctx context.Context, l core.Loan) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if err := r.queries.InsertLoan(ctx, l); err != nil {
		return "", storeErr("insert loan", err)
	}
	slog.InfoContext(ctx, "Loan saved",
		"id", l.ID,
		"member_id", l.MemberID,
		"amount_cents", l.AmountCents)
	return l.ID, nil
}

func (r *SQLiteRepository) UpdateLoan(ctx context.Context, l core.Loan) error {
	n, err := r.queries.UpdateLoan(ctx, l)
	if err != nil {
		return storeErr("update loan", err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: "loan", ID: l.ID}
	}
	return nil
}
