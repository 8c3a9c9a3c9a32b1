package domain

import (
	"fmt"
	"math"
	"strings"
)

// TokenHandle identifies a created token: the mint and the session account's
// holding (associated token) account for it. Held in memory only; cleared on
// disconnect.
type TokenHandle struct {
	Mint           Address
	HoldingAccount Address
}

func (h TokenHandle) IsZero() bool {
	return h.Mint.IsZero()
}

// TokenAmount is a holding account balance as reported by the chain.
type TokenAmount struct {
	Raw      uint64
	Decimals uint8
	Display  string
}

// HumanReadable prefers the chain-reported display string and falls back to
// formatting the raw amount at the reported precision.
func (a TokenAmount) HumanReadable() string {
	if a.Display != "" {
		return a.Display
	}

	return FormatRawAmount(a.Raw, a.Decimals)
}

// ScaleToRaw converts a whole-token amount to base units at the given
// decimal precision (100 tokens at 9 decimals → 100_000_000_000). Amounts
// whose raw form would not fit in uint64 are rejected.
func ScaleToRaw(amount uint64, decimals uint8) (uint64, error) {
	raw := amount
	for i := uint8(0); i < decimals; i++ {
		if raw > math.MaxUint64/10 {
			return 0, fmt.Errorf("amount %d overflows at %d decimals", amount, decimals)
		}
		raw *= 10
	}

	return raw, nil
}

func FormatRawAmount(raw uint64, decimals uint8) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", raw)
	}

	divisor, err := ScaleToRaw(1, decimals)
	if err != nil {
		return fmt.Sprintf("%d", raw)
	}
	whole := raw / divisor
	frac := raw % divisor

	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}

	fracText := strings.TrimRight(fmt.Sprintf("%0*d", decimals, frac), "0")
	return fmt.Sprintf("%d.%s", whole, fracText)
}
