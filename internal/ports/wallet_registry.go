package ports

import (
	"context"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

type WalletRegistry interface {
	Create(ctx context.Context, wallet domain.Wallet) error
	GetByName(ctx context.Context, name string) (domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	Remove(ctx context.Context, name string) error
	Active(ctx context.Context) (domain.Wallet, error)
	SetActive(ctx context.Context, name string) error
}
