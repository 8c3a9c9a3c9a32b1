package domain

import (
	"math"
	"strconv"
)

// LamportsPerSol is the number of lamports in one SOL.
const LamportsPerSol = 1_000_000_000

type Lamports uint64

func LamportsFromSol(sol float64) Lamports {
	if sol <= 0 {
		return 0
	}

	return Lamports(math.Round(sol * LamportsPerSol))
}

func (l Lamports) Sol() float64 {
	return float64(l) / LamportsPerSol
}

// FormatSol renders the balance in SOL with the shortest exact decimal form.
func (l Lamports) FormatSol() string {
	return strconv.FormatFloat(l.Sol(), 'f', -1, 64)
}
