// Package memory is the in-memory ledger store, used as the dev backend and
// by tests. It honors the same ordering contract as the SQLite store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"koopera/internal/core"
	"koopera/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	members      []core.Member
	transactions []core.Transaction
	loans        []core.Loan
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Seed replaces the store contents; test helper.
func (s *Store) Seed(members []core.Member, txs []core.Transaction, loans []core.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append([]core.Member(nil), members...)
	s.transactions = append([]core.Transaction(nil), txs...)
	s.loans = append([]core.Loan(nil), loans...)
}

func (s *Store) ListMembers(_ context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Member(nil), s.members...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) InsertMember(_ context.Context, m core.Member) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.members = append(s.members, m)
	return m.ID, nil
}

func (s *Store) UpdateMember(_ context.Context, m core.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == m.ID {
			// Member code and join date are immutable post-creation; profile
			// edits never carry them.
			m.MemberCode = s.members[i].MemberCode
			m.JoinedAt = s.members[i].JoinedAt
			s.members[i] = m
			return nil
		}
	}
	return &core.NotFoundError{Kind: "member", ID: m.ID}
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID == id {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return &core.NotFoundError{Kind: "member", ID: id}
}

func (s *Store) FindMembersByCode(_ context.Context, code string) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Member
	for _, m := range s.members {
		if m.MemberCode == code {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.transactions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

func (s *Store) ListLoans(_ context.Context) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Loan(nil), s.loans...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssueDate.After(out[j].IssueDate)
	})
	return out, nil
}

func (s *Store) InsertLoan(_ context.Context, l core.Loan) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.loans = append(s.loans, l)
	return l.ID, nil
}

func (s *Store) UpdateLoan(_ context.Context, l core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.loans {
		if s.loans[i].ID == l.ID {
			s.loans[i] = l
			return nil
		}
	}
	return &core.NotFoundError{Kind: "loan", ID: l.ID}
}
