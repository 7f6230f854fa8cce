package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"koopera/internal/core"
	"koopera/internal/export"
)

func TestAppendEntryReturnsRowRefs(t *testing.T) {
	w := New()
	ctx := context.Background()

	ref, err := w.AppendEntry(ctx, export.ReportEntry{
		Date:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Kind:        "deposit",
		MemberID:    "m1",
		AmountCents: 50_000,
	})
	require.NoError(t, err)
	require.Equal(t, "mem:1", ref)

	ref, err = w.AppendEntry(ctx, export.ReportEntry{Kind: "withdrawal", MemberID: "m1", AmountCents: -10_000})
	require.NoError(t, err)
	require.Equal(t, "mem:2", ref)

	entries := w.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, int64(-10_000), entries[1].AmountCents)
}

func TestWriteStatementReplaces(t *testing.T) {
	w := New()
	ctx := context.Background()

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteStatement(ctx, core.FinancialStatement{CashOnHand: 100}, asOf))
	require.NoError(t, w.WriteStatement(ctx, core.FinancialStatement{CashOnHand: 200}, asOf.AddDate(0, 0, 1)))

	st, got, writes := w.Statement()
	require.Equal(t, int64(200), st.CashOnHand)
	require.True(t, got.After(asOf))
	require.Equal(t, 2, writes)
}
