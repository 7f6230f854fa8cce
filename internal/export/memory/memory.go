// Package memory is the in-memory report writer, used as the dev backend and
// by tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"koopera/internal/core"
	"koopera/internal/export"
)

type Writer struct {
	mu        sync.Mutex
	entries   []export.ReportEntry
	statement core.FinancialStatement
	asOf      time.Time
	writes    int
}

var _ export.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (w *Writer) AppendEntry(_ context.Context, e export.ReportEntry) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	return fmt.Sprintf("mem:%d", len(w.entries)), nil
}

func (w *Writer) WriteStatement(_ context.Context, st core.FinancialStatement, asOf time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.statement = st
	w.asOf = asOf
	w.writes++
	return nil
}

// Entries returns a copy of the appended feed rows.
func (w *Writer) Entries() []export.ReportEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]export.ReportEntry(nil), w.entries...)
}

// Statement returns the last written statement and how many times it was
// replaced.
func (w *Writer) Statement() (core.FinancialStatement, time.Time, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statement, w.asOf, w.writes
}
