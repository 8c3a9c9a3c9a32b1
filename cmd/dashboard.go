package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bnema/solana-wallet-cli/internal/adapters/render/dashboard"
	"github.com/bnema/solana-wallet-cli/internal/adapters/wallet/keyfile"
	"github.com/bnema/solana-wallet-cli/internal/application"
	"github.com/bnema/solana-wallet-cli/internal/domain"
)

const dashboardAirdropSol = 1

func newDashboardCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive wallet dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// A missing wallet is not an error here: the dashboard renders
			// its own "no wallet" screen.
			walletName := ""
			keyPath := ""
			if wallet, err := app.registry.Active(ctx); err == nil {
				walletName = wallet.Name
				keyPath = wallet.KeyPath
			} else if !errors.Is(err, domain.ErrWalletNotFound) {
				return err
			}

			provider := keyfile.NewProvider(keyPath)
			tokens := application.NewTokenService(provider, app.chain, app.cfg.TokenDecimals, app.cfg.MinCreateBalance)
			sessions := application.NewSessionService(provider, app.chain, tokens, app.cfg.HistoryLimit)
			defer sessions.Close()
			ops := application.NewOrchestrator(app.cfg.StatusReset)
			defer ops.Close()
			defer func() {
				_ = sessions.Disconnect(context.WithoutCancel(ctx))
			}()

			dash := dashboard.New(
				dashboard.Services{Sessions: sessions, Tokens: tokens, Ops: ops},
				dashboard.Options{
					WalletName:      walletName,
					WalletAvailable: provider.Available(ctx),
					MintAmount:      app.cfg.MintAmount,
					SendAmount:      app.cfg.SendAmount,
					AirdropAmount:   domain.LamportsFromSol(dashboardAirdropSol),
				},
			)

			return dash.Run(ctx)
		},
	}
}
