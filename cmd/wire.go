package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	solanachain "github.com/bnema/solana-wallet-cli/internal/adapters/chain/solana"
	historyrender "github.com/bnema/solana-wallet-cli/internal/adapters/render/history"
	tomlrepo "github.com/bnema/solana-wallet-cli/internal/adapters/repo/toml"
	"github.com/bnema/solana-wallet-cli/internal/adapters/wallet/keyfile"
	"github.com/bnema/solana-wallet-cli/internal/application"
	"github.com/bnema/solana-wallet-cli/internal/config"
	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/log"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

var errNoActiveWallet = errors.New(`no active wallet; run "sw wallet new" first`)

type app struct {
	cfg             config.Config
	registry        ports.WalletRegistry
	chain           ports.ChainClient
	historyRenderer func([]domain.TransactionRecord, historyrender.RenderOptions) (string, error)
	now             func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log.Init(cfg.LogLevel, cfg.LogJSON)

	registry, err := tomlrepo.NewRegistry(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire wallet registry: %w", err)
	}

	commitment, err := solanachain.CommitmentFromString(cfg.Commitment)
	if err != nil {
		return nil, err
	}

	chain, err := solanachain.NewClient(solanachain.Config{
		RPCURL:     cfg.RPCURL,
		Commitment: commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("wire chain client: %w", err)
	}

	return &app{
		cfg:             cfg,
		registry:        registry,
		chain:           chain,
		historyRenderer: historyrender.Render,
		now:             time.Now,
	}, nil
}

// gateways bundles the services bound to one wallet's keyfile. They are
// rebuilt per invocation because `sw wallet use` can switch the active
// wallet between runs.
type gateways struct {
	wallet   domain.Wallet
	sessions *application.SessionService
	tokens   *application.TokenService
	ops      *application.Orchestrator
}

func (a *app) openGateways(ctx context.Context) (*gateways, error) {
	wallet, err := a.registry.Active(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, errNoActiveWallet
		}
		return nil, fmt.Errorf("resolve active wallet: %w", err)
	}

	provider := keyfile.NewProvider(wallet.KeyPath)
	tokens := application.NewTokenService(provider, a.chain, a.cfg.TokenDecimals, a.cfg.MinCreateBalance)
	sessions := application.NewSessionService(provider, a.chain, tokens, a.cfg.HistoryLimit)

	return &gateways{
		wallet:   wallet,
		sessions: sessions,
		tokens:   tokens,
		ops:      application.NewOrchestrator(a.cfg.StatusReset),
	}, nil
}

func (g *gateways) close() {
	g.sessions.Close()
	g.ops.Close()
}

// withSession opens the gateways, connects the active wallet, runs fn under
// the configured operation deadline, and always disconnects so key material
// never outlives the command.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, g *gateways) error) error {
	ctx, cancel := a.opContext(cmd)
	defer cancel()

	g, err := a.openGateways(ctx)
	if err != nil {
		return err
	}
	defer g.close()

	if _, err := g.sessions.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		_ = g.sessions.Disconnect(context.WithoutCancel(ctx))
	}()

	return fn(ctx, g)
}

func (a *app) opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.OpTimeout)
}
