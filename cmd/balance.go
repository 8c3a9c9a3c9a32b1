package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newBalanceCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the active wallet's SOL balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := app.opContext(cmd)
			defer cancel()

			wallet, err := app.registry.Active(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrWalletNotFound) {
					return errNoActiveWallet
				}
				return err
			}

			balance, err := app.chain.NativeBalance(ctx, wallet.Address)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s SOL\n", balance.FormatSol())
			return nil
		},
	}
}
