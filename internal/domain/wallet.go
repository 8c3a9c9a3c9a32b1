package domain

import (
	"fmt"
	"strings"
	"time"
)

// Wallet is a registry entry for a locally held keypair. The keyfile itself
// is provider custody; the registry only records where it lives.
type Wallet struct {
	Name      string
	Address   Address
	KeyPath   string
	CreatedAt time.Time
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !validWalletName(w.Name) {
		return fmt.Errorf("invalid wallet name %q: use letters, digits, '-' or '_'", w.Name)
	}
	if strings.TrimSpace(w.KeyPath) == "" {
		return fmt.Errorf("key path is required")
	}

	return nil
}

func validWalletName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}

	return name != ""
}
