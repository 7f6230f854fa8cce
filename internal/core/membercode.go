package core

import (
	"crypto/rand"
	"fmt"
)

const (
	memberCodePrefix  = "MEM-"
	memberCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	memberCodeSuffix  = 4

	// MemberCodeMaxAttempts bounds the probe-and-retry loop during
	// registration. Exhaustion is a validation-class failure: the caller
	// retries the whole registration.
	MemberCodeMaxAttempts = 5
)

// NewMemberCode generates a candidate member code: the fixed prefix plus four
// random alphanumerics. Uniqueness is the caller's job (probe the store,
// retry on collision up to MemberCodeMaxAttempts).
func NewMemberCode() (string, error) {
	buf := make([]byte, memberCodeSuffix)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate member code: %w", err)
	}
	out := make([]byte, memberCodeSuffix)
	for i, b := range buf {
		out[i] = memberCodeCharset[int(b)%len(memberCodeCharset)]
	}
	return memberCodePrefix + string(out), nil
}

// ErrCodeRetriesExceeded is returned when no unique code could be generated
// within the attempt budget.
func ErrCodeRetriesExceeded() error {
	return &ValidationError{
		Reason: ReasonCodeRetriesExceeded,
		Msg:    "failed to generate a unique member code after several attempts, please try again",
	}
}
