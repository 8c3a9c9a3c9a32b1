package ports

import (
	"context"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

// Signer releases signing material for transaction assembly. The 64-byte
// ed25519 keypair is only readable while the provider is connected.
type Signer interface {
	Address() domain.Address
	Keypair(ctx context.Context) ([]byte, error)
}

// WalletProvider is the consumed wallet capability set: availability probe,
// session control, account identity, signing, and connect/disconnect events.
// Subscribe returns the matching unsubscribe; callers own the teardown.
type WalletProvider interface {
	Signer

	Available(ctx context.Context) bool
	Connect(ctx context.Context) (domain.Address, error)
	Disconnect(ctx context.Context) error
	Connected() bool
	Subscribe(event domain.WalletEvent, handler func()) (unsubscribe func())
}
