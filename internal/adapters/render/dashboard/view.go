package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/solana-wallet-cli/internal/application"
	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func (m model) View() string {
	if !m.opts.WalletAvailable {
		return m.viewNoWallet()
	}

	switch m.screen {
	case screenSend:
		return m.viewSend()
	case screenHistory:
		return m.viewHistory()
	default:
		return m.viewMain()
	}
}

func (m model) viewNoWallet() string {
	lines := []string{
		m.styles.title.Render("Solana Devnet Wallet"),
		m.styles.section.Render(m.styles.fail.Render("no wallet found")),
		m.styles.value.Render("Create one first:"),
		m.styles.keyHint.Render("  sw wallet new"),
		m.styles.section.Render(m.styles.faint.Render("q quit")),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) viewMain() string {
	lines := []string{
		m.styles.title.Render("Solana Devnet Wallet"),
		m.styles.subtitle.Render("wallet: " + walletLabel(m.opts.WalletName)),
		"",
		m.connectionLine(),
	}

	if m.session.Connected {
		lines = append(lines, m.balanceLine(), m.tokenLine())
	}

	lines = append(lines,
		m.styles.section.Render(renderBanner(m.status, m.spinner.View(), m.styles)),
		m.styles.section.Render(m.menu()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) viewSend() string {
	lines := []string{
		m.styles.title.Render(fmt.Sprintf("Send %d tokens", m.opts.SendAmount)),
		m.styles.subtitle.Render("mint: " + m.token.Mint.Short()),
		"",
		m.input.View(),
		m.styles.section.Render(m.styles.faint.Render("enter send   esc cancel")),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) viewHistory() string {
	lines := []string{m.styles.title.Render("Recent transactions")}

	if len(m.history) == 0 {
		lines = append(lines, m.styles.faint.Render("no transactions yet"))
	}
	for _, record := range m.history {
		lines = append(lines, renderRecord(record, m.styles))
	}

	lines = append(lines, m.styles.section.Render(m.styles.faint.Render("esc close")))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) connectionLine() string {
	if !m.session.Connected {
		return m.styles.faint.Render("○ not connected")
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.styles.ok.Render("● connected"),
		" ",
		m.styles.value.Render(m.session.Account.String()),
	)
}

func (m model) balanceLine() string {
	return m.styles.label.Render("balance  ") + m.styles.value.Render(m.session.NativeBalance.FormatSol()+" SOL")
}

func (m model) tokenLine() string {
	if m.token.IsZero() {
		return m.styles.label.Render("token    ") + m.styles.faint.Render("none")
	}

	return m.styles.label.Render("token    ") + m.styles.value.Render(m.token.Mint.String())
}

func (m model) menu() string {
	entries := make([]string, 0, 8)

	if !m.session.Connected {
		entries = append(entries, m.key("c", "connect", true))
	} else {
		entries = append(entries,
			m.key("d", "disconnect", true),
			m.key("t", "create token", true),
			m.key("m", fmt.Sprintf("mint %d", m.opts.MintAmount), !m.token.IsZero()),
			m.key("s", fmt.Sprintf("send %d", m.opts.SendAmount), !m.token.IsZero()),
			m.key("b", "token balance", !m.token.IsZero()),
			m.key("h", "history", true),
			m.key("a", "airdrop", true),
		)
	}
	entries = append(entries, m.key("q", "quit", true))

	return strings.Join(entries, "   ")
}

func (m model) key(key, label string, enabled bool) string {
	if !enabled {
		return m.styles.disabled.Render(key + " " + label)
	}

	return m.styles.keyHint.Render(key) + " " + m.styles.value.Render(label)
}

func renderBanner(status application.OperationStatus, spinnerView string, s styles) string {
	switch status.Phase {
	case application.OperationRunning:
		return spinnerView + " " + s.value.Render(status.Label+"...")
	case application.OperationSucceeded:
		return s.ok.Render("✓ " + status.Message)
	case application.OperationFailed:
		return s.fail.Render("✗ " + status.Message)
	default:
		return s.faint.Render("ready")
	}
}

func renderRecord(record domain.TransactionRecord, s styles) string {
	return s.value.Render(record.ShortSignature()) + "  " + s.subtitle.Render(record.FormatTime())
}

func walletLabel(name string) string {
	if name == "" {
		return "default"
	}

	return name
}
