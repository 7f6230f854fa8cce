package storage

import (
	"context"
	"database/sql"
	"time"

	"koopera/internal/core"
)

// Queries holds the raw SQL for the ledger tables. Dates are stored as
// RFC 3339 text; amounts as integer cents.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const dateLayout = time.RFC3339

func encodeDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func decodeDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (q *Queries) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, member_code, status, date_of_birth, address, contact, joined_at
		FROM members ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		var m core.Member
		var status, dob, joined string
		if err := rows.Scan(&m.ID, &m.Name, &m.MemberCode, &status, &dob, &m.Address, &m.Contact, &joined); err != nil {
			return nil, err
		}
		m.Status = core.MemberStatus(status)
		m.DateOfBirth = decodeDate(dob)
		m.JoinedAt = decodeDate(joined)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) InsertMember(ctx context.Context, m core.Member) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO members (id, name, member_code, status, date_of_birth, address, contact, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.MemberCode, string(m.Status), encodeDate(m.DateOfBirth), m.Address, m.Contact, encodeDate(m.JoinedAt))
	return err
}

// UpdateMember writes the mutable profile fields. member_code is not in the
// SET list: it is immutable post-creation.
func (q *Queries) UpdateMember(ctx context.Context, m core.Member) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE members SET name = ?, status = ?, date_of_birth = ?, address = ?, contact = ?
		WHERE id = ?`,
		m.Name, string(m.Status), encodeDate(m.DateOfBirth), m.Address, m.Contact, m.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteMember(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) FindMembersByCode(ctx context.Context, code string) ([]core.Member, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, member_code, status, date_of_birth, address, contact, joined_at
		FROM members WHERE member_code = ?`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		var m core.Member
		var status, dob, joined string
		if err := rows.Scan(&m.ID, &m.Name, &m.MemberCode, &status, &dob, &m.Address, &m.Contact, &joined); err != nil {
			return nil, err
		}
		m.Status = core.MemberStatus(status)
		m.DateOfBirth = decodeDate(dob)
		m.JoinedAt = decodeDate(joined)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, member_id, type, amount_cents, date, remarks, tag
		FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ, date, tag string
		// Legacy records can carry NULL amounts; coerce to zero so reads of
		// the ledger never fault on a malformed row.
		var amount sql.NullInt64
		if err := rows.Scan(&tx.ID, &tx.MemberID, &typ, &amount, &date, &tx.Remarks, &tag); err != nil {
			return nil, err
		}
		tx.Type = core.TransactionType(typ)
		tx.AmountCents = amount.Int64
		tx.Date = decodeDate(date)
		tx.Tag = core.TransactionTag(tag)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (q *Queries) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (id, member_id, type, amount_cents, date, remarks, tag)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.MemberID, string(tx.Type), tx.AmountCents, encodeDate(tx.Date), tx.Remarks, string(tx.Tag))
	return err
}

func (q *Queries) ListLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, member_id, amount_cents, duration_months, service_charge_rate,
		       issue_date, balance_cents, payments_made_cents, status
		FROM loans ORDER BY issue_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		var l core.Loan
		var issue, status string
		if err := rows.Scan(&l.ID, &l.MemberID, &l.AmountCents, &l.DurationMonths, &l.ServiceChargeRate,
			&issue, &l.BalanceCents, &l.PaymentsMadeCents, &status); err != nil {
			return nil, err
		}
		l.IssueDate = decodeDate(issue)
		l.Status = core.LoanStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q *Queries) InsertLoan(ctx context.Context, l core.Loan) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO loans (id, member_id, amount_cents, duration_months, service_charge_rate,
		                   issue_date, balance_cents, payments_made_cents, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.MemberID, l.AmountCents, l.DurationMonths, l.ServiceChargeRate,
		encodeDate(l.IssueDate), l.BalanceCents, l.PaymentsMadeCents, string(l.Status))
	return err
}

func (q *Queries) UpdateLoan(ctx context.Context, l core.Loan) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE loans SET balance_cents = ?, payments_made_cents = ?, status = ?
		WHERE id = ?`,
		l.BalanceCents, l.PaymentsMadeCents, string(l.Status), l.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
