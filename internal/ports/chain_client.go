package ports

import (
	"context"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

type CreateTokenResult struct {
	Handle    domain.TokenHandle
	Signature string
}

// ChainClient is the consumed blockchain capability set. Implementations
// submit at a fixed endpoint and commitment level chosen at construction
// and confirm transactions before returning their signature.
type ChainClient interface {
	NativeBalance(ctx context.Context, account domain.Address) (domain.Lamports, error)
	TokenBalance(ctx context.Context, holdingAccount domain.Address) (domain.TokenAmount, error)
	RecentSignatures(ctx context.Context, account domain.Address, limit int) ([]domain.TransactionRecord, error)

	CreateToken(ctx context.Context, signer Signer, decimals uint8) (CreateTokenResult, error)
	MintTokens(ctx context.Context, signer Signer, handle domain.TokenHandle, rawAmount uint64) (string, error)
	TransferTokens(ctx context.Context, signer Signer, handle domain.TokenHandle, destination domain.Address, rawAmount uint64) (string, error)
	RequestAirdrop(ctx context.Context, account domain.Address, amount domain.Lamports) (string, error)

	// HoldingAccount derives the deterministic holding account for an
	// (owner, mint) pair without touching the network.
	HoldingAccount(owner, mint domain.Address) (domain.Address, error)
}
