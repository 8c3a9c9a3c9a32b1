package mocks

import (
	"context"
	"sync"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

type ChainClient struct {
	BalanceResult domain.Lamports
	BalanceErr    error

	TokenAmountResult domain.TokenAmount
	TokenBalanceErr   error

	Records    []domain.TransactionRecord
	RecordsErr error

	CreateResult ports.CreateTokenResult
	CreateErr    error

	MintSignature string
	MintErr       error

	TransferSignature string
	TransferErr       error

	AirdropSignature string
	AirdropErr       error

	mu              sync.Mutex
	calls           map[string]int
	LastLimit       int
	LastMintRaw     uint64
	LastTransferRaw uint64
	LastDestination domain.Address
	LastAirdrop     domain.Lamports
}

var _ ports.ChainClient = (*ChainClient)(nil)

func NewChainClient() *ChainClient {
	return &ChainClient{calls: map[string]int{}}
}

func (c *ChainClient) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls[method]
}

func (c *ChainClient) NativeBalance(_ context.Context, _ domain.Address) (domain.Lamports, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["NativeBalance"]++
	if c.BalanceErr != nil {
		return 0, c.BalanceErr
	}

	return c.BalanceResult, nil
}

func (c *ChainClient) TokenBalance(_ context.Context, _ domain.Address) (domain.TokenAmount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["TokenBalance"]++
	if c.TokenBalanceErr != nil {
		return domain.TokenAmount{}, c.TokenBalanceErr
	}

	return c.TokenAmountResult, nil
}

func (c *ChainClient) RecentSignatures(_ context.Context, _ domain.Address, limit int) ([]domain.TransactionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["RecentSignatures"]++
	c.LastLimit = limit
	if c.RecordsErr != nil {
		return nil, c.RecordsErr
	}

	return c.Records, nil
}

func (c *ChainClient) CreateToken(_ context.Context, _ ports.Signer, _ uint8) (ports.CreateTokenResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["CreateToken"]++
	if c.CreateErr != nil {
		return ports.CreateTokenResult{}, c.CreateErr
	}

	return c.CreateResult, nil
}

func (c *ChainClient) MintTokens(_ context.Context, _ ports.Signer, _ domain.TokenHandle, rawAmount uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["MintTokens"]++
	c.LastMintRaw = rawAmount
	if c.MintErr != nil {
		return "", c.MintErr
	}

	return c.MintSignature, nil
}

func (c *ChainClient) TransferTokens(_ context.Context, _ ports.Signer, _ domain.TokenHandle, destination domain.Address, rawAmount uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["TransferTokens"]++
	c.LastTransferRaw = rawAmount
	c.LastDestination = destination
	if c.TransferErr != nil {
		return "", c.TransferErr
	}

	return c.TransferSignature, nil
}

func (c *ChainClient) RequestAirdrop(_ context.Context, _ domain.Address, amount domain.Lamports) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["RequestAirdrop"]++
	c.LastAirdrop = amount
	if c.AirdropErr != nil {
		return "", c.AirdropErr
	}

	return c.AirdropSignature, nil
}

func (c *ChainClient) HoldingAccount(owner, mint domain.Address) (domain.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls["HoldingAccount"]++

	return domain.Address(string(owner[:4]) + string(mint[:4])), nil
}
