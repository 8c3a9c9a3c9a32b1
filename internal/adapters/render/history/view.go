package history

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

type RenderOptions struct {
	Account domain.Address
	Now     time.Time
}

func renderView(records []domain.TransactionRecord, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Recent Transactions"),
		s.header.Render(headerLine(opts.Account, len(records))),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No transactions yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range records {
		lines = append(lines, s.section.Render(renderRecord(record, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(account domain.Address, count int) string {
	if account.IsZero() {
		return fmt.Sprintf("entries: %d", count)
	}

	return fmt.Sprintf("account: %s  entries: %d", account.Short(), count)
}

func renderRecord(record domain.TransactionRecord, opts RenderOptions, s styles) string {
	meta := s.meta.Render(fmt.Sprintf("slot %d  %s", record.Slot, record.FormatTime()))
	if age := formatAge(record.Time, opts.Now); age != "" {
		meta = lipgloss.JoinHorizontal(lipgloss.Top, meta, " ", s.age.Render("("+age+")"))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.signature.Render(record.Signature),
		meta,
	)
}

func formatAge(at, now time.Time) string {
	if at.IsZero() || now.IsZero() || at.After(now) {
		return ""
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(math.Round(elapsed.Minutes())))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(math.Round(elapsed.Hours())))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
