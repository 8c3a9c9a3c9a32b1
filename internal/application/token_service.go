package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/log"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

// TokenService is the token operations gateway. It validates preconditions
// locally, fails fast before any delegated call, and keeps the in-memory
// handle of the one token the session works with.
type TokenService struct {
	provider         ports.WalletProvider
	chain            ports.ChainClient
	decimals         uint8
	minCreateBalance domain.Lamports

	mu     sync.RWMutex
	handle domain.TokenHandle
}

func NewTokenService(provider ports.WalletProvider, chain ports.ChainClient, decimals uint8, minCreateBalance domain.Lamports) *TokenService {
	return &TokenService{
		provider:         provider,
		chain:            chain,
		decimals:         decimals,
		minCreateBalance: minCreateBalance,
	}
}

// CreateToken creates a new mint with the session account as authority,
// along with its holding account, and remembers the resulting handle. The
// account must hold at least the configured reserve to cover rent and
// fees.
func (t *TokenService) CreateToken(ctx context.Context) (domain.TokenHandle, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenHandle{}, err
	}

	if !t.provider.Connected() {
		return domain.TokenHandle{}, domain.ErrNotConnected
	}

	balance, err := t.chain.NativeBalance(ctx, t.provider.Address())
	if err != nil {
		return domain.TokenHandle{}, fmt.Errorf("create token failed: %w", err)
	}
	if balance < t.minCreateBalance {
		return domain.TokenHandle{}, fmt.Errorf("%w: balance %s SOL is below the %s SOL minimum",
			domain.ErrInsufficientFunds, balance.FormatSol(), t.minCreateBalance.FormatSol())
	}

	result, err := t.chain.CreateToken(ctx, t.provider, t.decimals)
	if err != nil {
		return domain.TokenHandle{}, fmt.Errorf("create token failed: %w", err)
	}

	t.mu.Lock()
	t.handle = result.Handle
	t.mu.Unlock()

	log.Token.Debug().
		Str("mint", result.Handle.Mint.Short()).
		Str("signature", result.Signature).
		Msg("token created")

	return result.Handle, nil
}

// MintTokens mints amount whole tokens (scaled by the configured decimals)
// to the handle's holding account and returns the transaction signature.
func (t *TokenService) MintTokens(ctx context.Context, amount uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !t.provider.Connected() {
		return "", domain.ErrNotConnected
	}

	handle := t.Token()
	if handle.IsZero() {
		return "", domain.ErrNoToken
	}

	raw, err := domain.ScaleToRaw(amount, t.decimals)
	if err != nil {
		return "", fmt.Errorf("minting failed: %w", err)
	}

	signature, err := t.chain.MintTokens(ctx, t.provider, handle, raw)
	if err != nil {
		return "", fmt.Errorf("minting failed: %w", err)
	}

	log.Token.Debug().Uint64("amount", amount).Msg("tokens minted")

	return signature, nil
}

// SendTokens transfers amount whole tokens to the destination owner's
// holding account for the mint, creating that account when it does not
// exist yet. The destination address shape is validated before anything
// goes over the wire.
func (t *TokenService) SendTokens(ctx context.Context, destination string, amount uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !t.provider.Connected() {
		return "", domain.ErrNotConnected
	}

	handle := t.Token()
	if handle.IsZero() {
		return "", domain.ErrNoToken
	}

	address, err := domain.ParseAddress(destination)
	if err != nil {
		return "", err
	}

	raw, err := domain.ScaleToRaw(amount, t.decimals)
	if err != nil {
		return "", fmt.Errorf("transfer failed: %w", err)
	}

	signature, err := t.chain.TransferTokens(ctx, t.provider, handle, address, raw)
	if err != nil {
		return "", fmt.Errorf("transfer failed: %w", err)
	}

	log.Token.Debug().
		Uint64("amount", amount).
		Str("destination", address.Short()).
		Msg("tokens sent")

	return signature, nil
}

// TokenBalance reads the holding account's balance for the current handle.
func (t *TokenService) TokenBalance(ctx context.Context) (domain.TokenAmount, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenAmount{}, err
	}

	handle := t.Token()
	if handle.IsZero() {
		return domain.TokenAmount{}, domain.ErrNoToken
	}

	amount, err := t.chain.TokenBalance(ctx, handle.HoldingAccount)
	if err != nil {
		return domain.TokenAmount{}, fmt.Errorf("token balance fetch failed: %w", err)
	}

	return amount, nil
}

func (t *TokenService) Token() domain.TokenHandle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.handle
}

// SetToken adopts an existing mint's handle, for flows where the token was
// created in an earlier process.
func (t *TokenService) SetToken(handle domain.TokenHandle) {
	t.mu.Lock()
	t.handle = handle
	t.mu.Unlock()
}

func (t *TokenService) ClearToken() {
	t.mu.Lock()
	t.handle = domain.TokenHandle{}
	t.mu.Unlock()
}
