package domain

import (
	"strings"

	dErrors "mintguard/pkg/domain-errors"
)

// Address identifies a token account (mint recipient or burn source).
// Invariant: non-empty and not the zero address.
//
// Usage: construct via ParseAddress at trust boundaries to enforce validity;
// direct casting bypasses validation.
type Address string

// ParseAddress constructs an Address from external input.
//
// Errors: returns CodeBadRequest when the value is empty or the zero address;
// no other errors are expected.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "address cannot be empty")
	}
	if isZeroAddress(s) {
		return "", dErrors.New(dErrors.CodeBadRequest, "zero address is not a valid account")
	}
	return Address(s), nil
}

// isZeroAddress reports whether s is a hex address with every digit zero.
func isZeroAddress(s string) bool {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok || body == "" {
		return false
	}
	for _, c := range body {
		if c != '0' {
			return false
		}
	}
	return true
}

// IsNil returns true if the address is empty.
func (a Address) IsNil() bool {
	return a == ""
}

// String returns the string representation of the address.
func (a Address) String() string {
	return string(a)
}
