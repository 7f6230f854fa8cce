package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"koopera/internal/core"
	"koopera/internal/services"
)

const dateLayout = "2006-01-02"

// Request bodies. Amounts arrive as decimal strings ("500.00") and are parsed
// to cents; dates as YYYY-MM-DD.
type (
	registerRequest struct {
		Name        string `json:"name"`
		DateOfBirth string `json:"date_of_birth"`
		Address     string `json:"address"`
		Contact     string `json:"contact"`
	}

	updateMemberRequest struct {
		Name        string `json:"name"`
		Status      string `json:"status"`
		DateOfBirth string `json:"date_of_birth"`
		Address     string `json:"address"`
		Contact     string `json:"contact"`
	}

	amountRequest struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
	}

	issueLoanRequest struct {
		MemberID       string `json:"member_id"`
		Amount         string `json:"amount"`
		DurationMonths int    `json:"duration_months"`
		Date           string `json:"date"`
	}
)

type (
	memberResponse struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		MemberCode    string `json:"member_code"`
		Status        string `json:"status"`
		DateOfBirth   string `json:"date_of_birth"`
		Address       string `json:"address,omitempty"`
		Contact       string `json:"contact,omitempty"`
		JoinedAt      string `json:"joined_at"`
		SavingsCents  int64  `json:"savings_cents"`
		Savings       string `json:"savings"`
	}

	transactionResponse struct {
		ID          string `json:"id"`
		MemberID    string `json:"member_id"`
		Type        string `json:"type"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
		Date        string `json:"date"`
		Remarks     string `json:"remarks,omitempty"`
		Tag         string `json:"tag,omitempty"`
	}

	loanResponse struct {
		ID                string  `json:"id"`
		MemberID          string  `json:"member_id"`
		AmountCents       int64   `json:"amount_cents"`
		Amount            string  `json:"amount"`
		DurationMonths    int     `json:"duration_months"`
		ServiceChargeRate float64 `json:"service_charge_rate"`
		IssueDate         string  `json:"issue_date"`
		BalanceCents      int64   `json:"balance_cents"`
		Balance           string  `json:"balance"`
		PaymentsMadeCents int64   `json:"payments_made_cents"`
		Status            string  `json:"status"`
	}

	issueLoanResponse struct {
		Loan               loanResponse `json:"loan"`
		ServiceChargeCents int64        `json:"service_charge_cents"`
		ServiceCharge      string       `json:"service_charge"`
		NetDisbursedCents  int64        `json:"net_disbursed_cents"`
		NetDisbursed       string       `json:"net_disbursed"`
	}

	balanceResponse struct {
		MemberID     string `json:"member_id"`
		SavingsCents int64  `json:"savings_cents"`
		Savings      string `json:"savings"`
		MaxLoanCents int64  `json:"max_loan_cents"`
		MaxLoan      string `json:"max_loan"`
	}

	statementResponse struct {
		TotalDeposits          int64 `json:"total_deposits_cents"`
		TotalWithdrawals       int64 `json:"total_withdrawals_cents"`
		TotalLoansIssued       int64 `json:"total_loans_issued_cents"`
		TotalLoanPayments      int64 `json:"total_loan_payments_cents"`
		ServiceChargeFromLoans int64 `json:"service_charge_from_loans_cents"`
		CashOnHand             int64 `json:"cash_on_hand_cents"`
		LoansReceivable        int64 `json:"loans_receivable_cents"`
		TotalAssets            int64 `json:"total_assets_cents"`
		MemberSavings          int64 `json:"member_savings_cents"`
		InitialDeposits        int64 `json:"initial_deposits_cents"`
		NetIncome              int64 `json:"net_income_cents"`
		CooperativeEquity      int64 `json:"cooperative_equity_cents"`
		IdentityGapCents       int64 `json:"identity_gap_cents"`
	}

	periodReportResponse struct {
		Start             string `json:"start"`
		End               string `json:"end"`
		NewMembers        int    `json:"new_members"`
		DepositsCents     int64  `json:"deposits_cents"`
		WithdrawalsCents  int64  `json:"withdrawals_cents"`
		LoansIssuedCents  int64  `json:"loans_issued_cents"`
		LoanPaymentsCents int64  `json:"loan_payments_cents"`
	}

	monthFlowResponse struct {
		Month             string `json:"month"`
		InflowCents       int64  `json:"inflow_cents"`
		OutflowCents      int64  `json:"outflow_cents"`
		DepositsCents     int64  `json:"deposits_cents"`
		LoanPaymentsCents int64  `json:"loan_payments_cents"`
		WithdrawalsCents  int64  `json:"withdrawals_cents"`
	}

	errorResponse struct {
		Error      string `json:"error"`
		Reason     string `json:"reason,omitempty"`
		LimitCents int64  `json:"limit_cents,omitempty"`
	}
)

func toMemberResponse(m core.Member, savings int64) memberResponse {
	return memberResponse{
		ID:           m.ID,
		Name:         m.Name,
		MemberCode:   m.MemberCode,
		Status:       string(m.Status),
		DateOfBirth:  m.DateOfBirth.Format(dateLayout),
		Address:      m.Address,
		Contact:      m.Contact,
		JoinedAt:     m.JoinedAt.Format(dateLayout),
		SavingsCents: savings,
		Savings:      core.FormatPesos(savings),
	}
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		MemberID:    tx.MemberID,
		Type:        string(tx.Type),
		AmountCents: tx.AmountCents,
		Amount:      core.FormatPesos(tx.AmountCents),
		Date:        tx.Date.Format(dateLayout),
		Remarks:     tx.Remarks,
		Tag:         string(tx.Tag),
	}
}

func toLoanResponse(l core.Loan) loanResponse {
	return loanResponse{
		ID:                l.ID,
		MemberID:          l.MemberID,
		AmountCents:       l.AmountCents,
		Amount:            core.FormatPesos(l.AmountCents),
		DurationMonths:    l.DurationMonths,
		ServiceChargeRate: l.ServiceChargeRate,
		IssueDate:         l.IssueDate.Format(dateLayout),
		BalanceCents:      l.BalanceCents,
		Balance:           core.FormatPesos(l.BalanceCents),
		PaymentsMadeCents: l.PaymentsMadeCents,
		Status:            string(l.Status),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses: refused input is
// 422, missing records 404, store failures 502, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      verr.Error(),
			Reason:     string(verr.Reason),
			LimitCents: verr.LimitCents,
		})
		return
	}

	var nfe *core.NotFoundError
	if errors.As(err, &nfe) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nfe.Error()})
		return
	}

	var serr *core.StoreError
	if errors.As(err, &serr) {
		slog.ErrorContext(r.Context(), "Store error", "op", serr.Op, "category", string(serr.Category), "error", serr.Err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "ledger store unavailable"})
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// parseDate parses an optional YYYY-MM-DD field; empty means "today".
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Optional member-code lookup: ?code=MEM-XXXX.
	code := strings.TrimSpace(r.URL.Query().Get("code"))

	out := make([]memberResponse, 0, len(snap.Members))
	for _, m := range snap.Members {
		if code != "" && !strings.EqualFold(m.MemberCode, code) {
			continue
		}
		out = append(out, toMemberResponse(m, snap.SavingsBalance(m.ID)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}

	m, err := s.ledger.RegisterMember(r.Context(), services.RegistrationInput{
		Name:        strings.TrimSpace(req.Name),
		DateOfBirth: dob,
		Address:     strings.TrimSpace(req.Address),
		Contact:     strings.TrimSpace(req.Contact),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toMemberResponse(m, core.InitialDepositCents))
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req updateMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date_of_birth, expected YYYY-MM-DD"})
		return
	}

	status := core.MemberStatus(req.Status)
	switch status {
	case "":
		status = core.MemberActive
	case core.MemberActive, core.MemberInactive:
	default:
		writeError(w, r, &core.ValidationError{
			Reason: core.ReasonInvalidInput,
			Msg:    "status must be Active or Inactive",
		})
		return
	}

	m := core.Member{
		ID:          r.PathValue("id"),
		Name:        strings.TrimSpace(req.Name),
		Status:      status,
		DateOfBirth: dob,
		Address:     strings.TrimSpace(req.Address),
		Contact:     strings.TrimSpace(req.Contact),
	}
	if err := s.ledger.UpdateMember(r.Context(), m); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMemberBalance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if _, ok := snap.MemberByID(id); !ok {
		writeError(w, r, &core.NotFoundError{Kind: "member", ID: id})
		return
	}

	savings := snap.SavingsBalance(id)
	maxLoan := core.MaxLoan(savings)
	writeJSON(w, http.StatusOK, balanceResponse{
		MemberID:     id,
		SavingsCents: savings,
		Savings:      core.FormatPesos(savings),
		MaxLoanCents: maxLoan,
		MaxLoan:      core.FormatPesos(maxLoan),
	})
}

func (s *Server) handleSavingsLedger(w http.ResponseWriter, r *http.Request) {
	s.handleMemberLedger(w, r, core.Snapshot.SavingsLedger)
}

func (s *Server) handleLoanLedger(w http.ResponseWriter, r *http.Request) {
	s.handleMemberLedger(w, r, core.Snapshot.LoanLedger)
}

func (s *Server) handleMemberLedger(w http.ResponseWriter, r *http.Request, view func(core.Snapshot, string) []core.Transaction) {
	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.PathValue("id")
	if _, ok := snap.MemberByID(id); !ok {
		writeError(w, r, &core.NotFoundError{Kind: "member", ID: id})
		return
	}

	txs := view(snap, id)
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, date, err := parseAmountAndDate(req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	tx, err := s.ledger.Deposit(r.Context(), r.PathValue("id"), cents, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, date, err := parseAmountAndDate(req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	tx, err := s.ledger.Withdraw(r.Context(), r.PathValue("id"), cents, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func parseAmountAndDate(req amountRequest) (int64, time.Time, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return 0, time.Time{}, errors.New("invalid amount: " + err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return 0, time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return cents, date, nil
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]loanResponse, 0, len(snap.Loans))
	for _, l := range snap.Loans {
		out = append(out, toLoanResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIssueLoan(w http.ResponseWriter, r *http.Request) {
	var req issueLoanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid amount: " + err.Error()})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	loan, quote, err := s.ledger.IssueLoan(r.Context(), req.MemberID, cents, req.DurationMonths, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, issueLoanResponse{
		Loan:               toLoanResponse(loan),
		ServiceChargeCents: quote.ServiceChargeCents,
		ServiceCharge:      core.FormatPesos(quote.ServiceChargeCents),
		NetDisbursedCents:  quote.NetDisbursedCents,
		NetDisbursed:       core.FormatPesos(quote.NetDisbursedCents),
	})
}

func (s *Server) handlePayLoan(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cents, date, err := parseAmountAndDate(req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	loan, err := s.ledger.PayLoan(r.Context(), r.PathValue("id"), cents, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, toLoanResponse(loan))
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	if st, found := s.statementCache.Get(statementCacheKey); found {
		writeJSON(w, http.StatusOK, toStatementResponse(st))
		return
	}

	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	st := core.BuildStatement(snap)
	s.statementCache.Set(statementCacheKey, st)
	writeJSON(w, http.StatusOK, toStatementResponse(st))
}

func toStatementResponse(st core.FinancialStatement) statementResponse {
	return statementResponse{
		TotalDeposits:          st.TotalDeposits,
		TotalWithdrawals:       st.TotalWithdrawals,
		TotalLoansIssued:       st.TotalLoansIssued,
		TotalLoanPayments:      st.TotalLoanPayments,
		ServiceChargeFromLoans: st.ServiceChargeFromLoans,
		CashOnHand:             st.CashOnHand,
		LoansReceivable:        st.LoansReceivable,
		TotalAssets:            st.TotalAssets,
		MemberSavings:          st.MemberSavings,
		InitialDeposits:        st.InitialDeposits,
		NetIncome:              st.NetIncome,
		CooperativeEquity:      st.CooperativeEquity,
		IdentityGapCents:       st.IdentityGapCents,
	}
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid start, expected YYYY-MM-DD"})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid end, expected YYYY-MM-DD"})
		return
	}

	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	rep, err := core.BuildPeriodReport(snap, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, periodReportResponse{
		Start:             rep.Start.Format(dateLayout),
		End:               rep.End.Format(dateLayout),
		NewMembers:        rep.NewMembers,
		DepositsCents:     rep.DepositsCents,
		WithdrawalsCents:  rep.WithdrawalsCents,
		LoansIssuedCents:  rep.LoansIssuedCents,
		LoanPaymentsCents: rep.LoanPaymentsCents,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if flows, found := s.trendsCache.Get(trendsCacheKey); found {
		writeJSON(w, http.StatusOK, flows)
		return
	}

	snap, err := s.ledger.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]monthFlowResponse, 0)
	for month, flow := range core.MonthlyFlows(snap) {
		out = append(out, monthFlowResponse{
			Month:             month,
			InflowCents:       flow.InflowCents,
			OutflowCents:      flow.OutflowCents,
			DepositsCents:     flow.DepositsCents,
			LoanPaymentsCents: flow.LoanPaymentsCents,
			WithdrawalsCents:  flow.WithdrawalsCents,
		})
	}

	s.trendsCache.Set(trendsCacheKey, out)
	writeJSON(w, http.StatusOK, out)
}
