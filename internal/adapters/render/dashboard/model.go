package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/solana-wallet-cli/internal/application"
	"github.com/bnema/solana-wallet-cli/internal/domain"
)

// Services are the gateways the dashboard drives. Every chain interaction
// goes through the orchestrator, so at most one operation runs at a time
// and its outcome lands in the status banner.
type Services struct {
	Sessions *application.SessionService
	Tokens   *application.TokenService
	Ops      *application.Orchestrator
}

type Options struct {
	WalletName      string
	WalletAvailable bool
	MintAmount      uint64
	SendAmount      uint64
	AirdropAmount   domain.Lamports
}

type screen int

const (
	screenMain screen = iota
	screenSend
	screenHistory
)

type (
	statusChangedMsg struct{}
	opFinishedMsg    struct{}

	historyMsg struct {
		records []domain.TransactionRecord
		err     error
	}
)

type model struct {
	ctx  context.Context
	svc  Services
	opts Options

	screen  screen
	session domain.Session
	token   domain.TokenHandle
	status  application.OperationStatus
	history []domain.TransactionRecord

	spinner spinner.Model
	input   textinput.Model
	styles  styles
}

func newModel(ctx context.Context, svc Services, opts Options) model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	input := textinput.New()
	input.Placeholder = "recipient address"
	// Base58 of 32 bytes never exceeds 44 characters.
	input.CharLimit = 44
	input.Width = 46

	return model{
		ctx:     ctx,
		svc:     svc,
		opts:    opts,
		spinner: s,
		input:   input,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.status.Running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusChangedMsg:
		m = m.refresh()
		if m.status.Running() {
			return m, m.spinner.Tick
		}
		return m, nil

	case opFinishedMsg:
		return m.refresh(), nil

	case historyMsg:
		m = m.refresh()
		if msg.err == nil {
			m.history = msg.records
			m.screen = screenHistory
		}
		return m, nil
	}

	return m, nil
}

func (m model) refresh() model {
	m.status = m.svc.Ops.Status()
	m.session = m.svc.Sessions.Session()
	m.token = m.svc.Tokens.Token()
	return m
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenSend:
		return m.handleSendKey(msg)
	case screenHistory:
		switch msg.String() {
		case "esc", "enter", "q":
			m.screen = screenMain
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if !m.opts.WalletAvailable || m.status.Running() {
		return m, nil
	}

	switch msg.String() {
	case "c":
		if m.session.Connected {
			return m, nil
		}
		return m, m.runOp("connect", func(ctx context.Context) (string, error) {
			session, err := m.svc.Sessions.Connect(ctx)
			if err != nil {
				return "", err
			}
			return "connected " + session.Account.Short(), nil
		})

	case "d":
		if !m.session.Connected {
			return m, nil
		}
		return m, m.runOp("disconnect", func(ctx context.Context) (string, error) {
			if err := m.svc.Sessions.Disconnect(ctx); err != nil {
				return "", err
			}
			return "wallet disconnected", nil
		})

	case "t":
		if !m.session.Connected {
			return m, nil
		}
		return m, m.runOp("create token", func(ctx context.Context) (string, error) {
			handle, err := m.svc.Tokens.CreateToken(ctx)
			if err != nil {
				return "", err
			}
			return "token created " + handle.Mint.Short(), nil
		})

	case "m":
		if !m.session.Connected || m.token.IsZero() {
			return m, nil
		}
		amount := m.opts.MintAmount
		return m, m.runOp("mint", func(ctx context.Context) (string, error) {
			if _, err := m.svc.Tokens.MintTokens(ctx, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("minted %d tokens", amount), nil
		})

	case "b":
		if m.token.IsZero() {
			return m, nil
		}
		return m, m.runOp("token balance", func(ctx context.Context) (string, error) {
			amount, err := m.svc.Tokens.TokenBalance(ctx)
			if err != nil {
				return "", err
			}
			return "token balance: " + amount.HumanReadable(), nil
		})

	case "s":
		if !m.session.Connected || m.token.IsZero() {
			return m, nil
		}
		m.screen = screenSend
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "h":
		if !m.session.Connected {
			return m, nil
		}
		return m, m.fetchHistory()

	case "a":
		if !m.session.Connected {
			return m, nil
		}
		amount := m.opts.AirdropAmount
		return m, m.runOp("airdrop", func(ctx context.Context) (string, error) {
			if _, err := m.svc.Sessions.RequestAirdrop(ctx, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("airdropped %s SOL", amount.FormatSol()), nil
		})
	}

	return m, nil
}

func (m model) handleSendKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.screen = screenMain
		m.input.Blur()
		return m, nil

	case "enter":
		destination := strings.TrimSpace(m.input.Value())
		if destination == "" {
			return m, nil
		}
		m.screen = screenMain
		m.input.Blur()
		amount := m.opts.SendAmount
		return m, m.runOp("send", func(ctx context.Context) (string, error) {
			if _, err := m.svc.Tokens.SendTokens(ctx, destination, amount); err != nil {
				return "", err
			}
			return fmt.Sprintf("sent %d tokens to %s", amount, domain.Address(destination).Short()), nil
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runOp wraps a gateway call in the orchestrator. The outcome reaches the
// banner through the status machine; the returned error is deliberately
// not routed anywhere else.
func (m model) runOp(label string, op func(context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		_ = m.svc.Ops.Run(m.ctx, label, op)
		return opFinishedMsg{}
	}
}

func (m model) fetchHistory() tea.Cmd {
	account := m.session.Account
	return func() tea.Msg {
		var records []domain.TransactionRecord
		err := m.svc.Ops.Run(m.ctx, "history", func(ctx context.Context) (string, error) {
			fetched, err := m.svc.Sessions.FetchHistory(ctx, account)
			if err != nil {
				return "", err
			}
			records = fetched
			return fmt.Sprintf("%d signatures", len(fetched)), nil
		})
		return historyMsg{records: records, err: err}
	}
}

// Dashboard drives the interactive wallet session in the terminal.
type Dashboard struct {
	svc  Services
	opts Options
}

func New(svc Services, opts Options) *Dashboard {
	return &Dashboard{svc: svc, opts: opts}
}

func (d *Dashboard) Run(ctx context.Context) error {
	p := tea.NewProgram(
		newModel(ctx, d.svc, d.opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	d.svc.Ops.Notify(func() { p.Send(statusChangedMsg{}) })
	defer d.svc.Ops.Notify(nil)

	_, err := p.Run()
	return err
}
