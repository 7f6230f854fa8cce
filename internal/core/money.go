// Package core implements the ledger computation and loan-accounting engine
// of the cooperative: balance derivation, loan rules, financial aggregation
// and trend bucketing, all as pure functions over an immutable snapshot.
//
// Money is integer cents throughout. Keeping the arithmetic in int64 makes
// the loan identity payments_made + balance == loan_amount exact, with no
// floating-point tolerance anywhere in the core.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Accepts both dot and comma decimal
// separators. Only positive amounts are valid ledger input; signs are applied
// by the operation (withdrawals negate on insert).
//
// Examples:
//
//	ParseDecimalToCents("500")    -> 50000, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "amount is required"}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "amount must be an unsigned decimal"}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "malformed amount " + s}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "malformed amount " + s}
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "malformed amount " + s}
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "amount out of range"}
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, &ValidationError{Reason: ReasonInvalidAmount, Msg: "amount must be greater than zero"}
	}
	return cents, nil
}

// PercentOf computes cents*numerator/100 with half-up rounding, used for the
// loan service charge. Negative inputs round away from zero.
func PercentOf(cents int64, percent int64) int64 {
	p := cents * percent
	if p >= 0 {
		return (p + 50) / 100
	}
	return (p - 50) / 100
}

// FormatPesos renders cents as a display string, e.g. -123456 -> "-₱1,234.56".
// Display only; never parsed back.
func FormatPesos(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	out := fmt.Sprintf("₱%s.%02d", b.String(), frac)
	if neg {
		return "-" + out
	}
	return out
}
