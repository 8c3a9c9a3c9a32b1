package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/log"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

// SessionService is the account session gateway: it opens and closes the
// wallet session and serves account-scoped reads. It owns the provider
// event subscription for the lifetime of the process; a provider-initiated
// disconnect clears the session and the token handle exactly like an
// API-initiated one.
type SessionService struct {
	provider     ports.WalletProvider
	chain        ports.ChainClient
	tokens       *TokenService
	historyLimit int

	mu      sync.RWMutex
	session domain.Session

	subMu        sync.Mutex
	unsubscribes []func()
}

func NewSessionService(provider ports.WalletProvider, chain ports.ChainClient, tokens *TokenService, historyLimit int) *SessionService {
	if historyLimit < 1 {
		historyLimit = 5
	}

	s := &SessionService{
		provider:     provider,
		chain:        chain,
		tokens:       tokens,
		historyLimit: historyLimit,
	}

	s.subMu.Lock()
	s.unsubscribes = append(s.unsubscribes,
		provider.Subscribe(domain.WalletEventDisconnect, s.onProviderDisconnect))
	s.subMu.Unlock()

	return s
}

// Connect opens the provider session and reads the account's native
// balance. The provider may stay connected when the balance read fails;
// partial progress is reported, not rolled back.
func (s *SessionService) Connect(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	if !s.provider.Available(ctx) {
		return domain.Session{}, domain.ErrProviderNotFound
	}

	account, err := s.provider.Connect(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("connect failed: %w", err)
	}

	balance, err := s.chain.NativeBalance(ctx, account)
	if err != nil {
		return domain.Session{}, fmt.Errorf("connect failed: %w", err)
	}

	session := domain.Session{
		Connected:     true,
		Account:       account,
		NativeBalance: balance,
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	log.Session.Debug().Str("account", account.Short()).Msg("session connected")

	return session, nil
}

// Disconnect closes the provider session. Disconnecting while already
// disconnected is a no-op, not an error.
func (s *SessionService) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.provider.Connected() {
		return nil
	}

	if err := s.provider.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}

	s.clearState()

	return nil
}

// FetchHistory returns the account's most recent transaction signatures,
// newest first, capped at the configured limit. No transactions is an
// empty slice, not an error.
func (s *SessionService) FetchHistory(ctx context.Context, account domain.Address) ([]domain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.provider.Connected() {
		return nil, domain.ErrNotConnected
	}

	records, err := s.chain.RecentSignatures(ctx, account, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("history fetch failed: %w", err)
	}

	return records, nil
}

// RequestAirdrop asks the faucet to fund the session account, waits for
// the grant to confirm, and folds the new balance into the session
// snapshot. Devnet only by nature; mainnet endpoints reject the call.
func (s *SessionService) RequestAirdrop(ctx context.Context, amount domain.Lamports) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if !session.Connected {
		return "", domain.ErrNotConnected
	}

	signature, err := s.chain.RequestAirdrop(ctx, session.Account, amount)
	if err != nil {
		return "", fmt.Errorf("airdrop failed: %w", err)
	}

	if _, err := s.RefreshBalance(ctx); err != nil {
		log.Session.Debug().Err(err).Msg("balance refresh after airdrop failed")
	}

	return signature, nil
}

// RefreshBalance re-reads the native balance and folds it into the session
// snapshot.
func (s *SessionService) RefreshBalance(ctx context.Context) (domain.Lamports, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	if !session.Connected {
		return 0, domain.ErrNotConnected
	}

	balance, err := s.chain.NativeBalance(ctx, session.Account)
	if err != nil {
		return 0, fmt.Errorf("balance fetch failed: %w", err)
	}

	s.mu.Lock()
	if s.session.Connected {
		s.session.NativeBalance = balance
	}
	s.mu.Unlock()

	return balance, nil
}

func (s *SessionService) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session
}

// Close releases the provider subscriptions.
func (s *SessionService) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
	s.unsubscribes = nil
}

func (s *SessionService) onProviderDisconnect() {
	s.clearState()
	log.Session.Debug().Msg("session cleared on provider disconnect")
}

func (s *SessionService) clearState() {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	s.tokens.ClearToken()
}
