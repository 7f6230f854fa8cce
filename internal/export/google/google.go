// Package google is the Google Sheets report writer: a running ledger feed on
// one sheet and the financial statement block on another.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"koopera/internal/core"
	ports "koopera/internal/export"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	ledgerSheet    string
	statementSheet string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables and a
// service account.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_LEDGER_SHEET_NAME (default "Ledger"),
// GOOGLE_STATEMENT_SHEET_NAME (default "Statement"). Sheet names are
// prefixed with the current year.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerBase := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerBase == "" {
		ledgerBase = "Ledger"
	}
	statementBase := strings.TrimSpace(os.Getenv("GOOGLE_STATEMENT_SHEET_NAME"))
	if statementBase == "" {
		statementBase = "Statement"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	currentYear := time.Now().Year()
	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		ledgerSheet:    yearPrefixedName(ledgerBase, currentYear),
		statementSheet: yearPrefixedName(statementBase, currentYear),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendEntry writes one ledger feed row to the next empty row.
func (c *Client) AppendEntry(ctx context.Context, e ports.ReportEntry) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the sheet dimensions.
	rng := fmt.Sprintf("%s!A:A", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.ledgerSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:D%d", c.ledgerSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.Format("2006-01-02"),
		e.Kind,
		e.MemberID,
		pesos(e.AmountCents),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// WriteStatement replaces the statement block with fresh figures.
func (c *Client) WriteStatement(ctx context.Context, st core.FinancialStatement, asOf time.Time) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{
		{"As of", asOf.Format("2006-01-02")},
		{"Total Deposits", pesos(st.TotalDeposits)},
		{"Total Withdrawals", pesos(st.TotalWithdrawals)},
		{"Total Loans Issued", pesos(st.TotalLoansIssued)},
		{"Total Loan Payments", pesos(st.TotalLoanPayments)},
		{"Service Charge from Loans", pesos(st.ServiceChargeFromLoans)},
		{"Cash on Hand", pesos(st.CashOnHand)},
		{"Loans Receivable", pesos(st.LoansReceivable)},
		{"Total Assets", pesos(st.TotalAssets)},
		{"Member Savings", pesos(st.MemberSavings)},
		{"Initial Deposits", pesos(st.InitialDeposits)},
		{"Net Income", pesos(st.NetIncome)},
		{"Cooperative Equity", pesos(st.CooperativeEquity)},
		{"Identity Gap", pesos(st.IdentityGapCents)},
	}

	dataRange := fmt.Sprintf("%s!A1:B%d", c.statementSheet, len(rows))
	vr := &gsheet.ValueRange{Values: rows}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", dataRange, err)
	}
	return nil
}

func pesos(cents int64) float64 {
	return float64(cents) / 100.0
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
