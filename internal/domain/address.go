package domain

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const addressByteLength = 32

// Address is a base58-encoded ed25519 public key.
type Address string

// ParseAddress validates that raw is well-formed base58 decoding to exactly
// 32 bytes. Validation is local; no network call is made.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("parse address: %w", ErrInvalidAddress)
	}

	decoded, err := base58.Decode(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse address %q: %w", trimmed, ErrInvalidAddress)
	}
	if len(decoded) != addressByteLength {
		return "", fmt.Errorf("parse address %q: %w", trimmed, ErrInvalidAddress)
	}

	return Address(trimmed), nil
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ""
}

// Short returns a display form with the middle elided.
func (a Address) Short() string {
	return shortenOpaque(string(a))
}

func shortenOpaque(s string) string {
	if len(s) <= 10 {
		return s
	}

	return s[:6] + "…" + s[len(s)-4:]
}
