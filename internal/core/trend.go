package core

import (
	"iter"
	"sort"
)

// MonthFlow carries one calendar month's cash movement: the inflow/outflow
// pair used by the trends chart and the three-way split used by the flow
// chart. All amounts are positive cents.
type MonthFlow struct {
	InflowCents  int64 // deposits + loan payments
	OutflowCents int64 // |withdrawals| + loans issued

	DepositsCents     int64
	LoanPaymentsCents int64
	WithdrawalsCents  int64 // absolute value
}

// MonthlyFlows buckets the snapshot's transactions by calendar month and
// yields (YYYY-MM, MonthFlow) pairs sorted ascending by key. The sequence is
// lazy and restartable: each range re-walks the same immutable snapshot.
func MonthlyFlows(s Snapshot) iter.Seq2[string, MonthFlow] {
	return func(yield func(string, MonthFlow) bool) {
		buckets := make(map[string]MonthFlow)
		for _, tx := range s.Transactions {
			if tx.Date.IsZero() {
				continue
			}
			key := MonthKey(tx.Date)
			f := buckets[key]
			switch tx.Type {
			case Deposit:
				f.InflowCents += tx.AmountCents
				f.DepositsCents += tx.AmountCents
			case LoanPayment:
				f.InflowCents += tx.AmountCents
				f.LoanPaymentsCents += tx.AmountCents
			case Withdrawal:
				f.OutflowCents += abs(tx.AmountCents)
				f.WithdrawalsCents += abs(tx.AmountCents)
			case LoanIssued:
				f.OutflowCents += abs(tx.AmountCents)
			}
			buckets[key] = f
		}

		keys := make([]string, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !yield(k, buckets[k]) {
				return
			}
		}
	}
}
