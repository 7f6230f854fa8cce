package core

import (
	"strings"
	"testing"
)

func TestNewMemberCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewMemberCode()
		if err != nil {
			t.Fatalf("NewMemberCode: %v", err)
		}
		if !strings.HasPrefix(code, "MEM-") || len(code) != 8 {
			t.Fatalf("malformed code %q", code)
		}
		for _, r := range code[4:] {
			if !strings.ContainsRune(memberCodeCharset, r) {
				t.Fatalf("code %q contains invalid rune %q", code, r)
			}
		}
		seen[code] = true
	}
	// Collisions are possible but 100 draws from 36^4 should not all collide.
	if len(seen) < 2 {
		t.Fatal("generator produced a single code across 100 draws")
	}
}

func TestErrCodeRetriesExceeded(t *testing.T) {
	err := ErrCodeRetriesExceeded()
	if !IsValidation(err) {
		t.Fatalf("exhaustion must be a validation-class failure, got %T", err)
	}
}
