package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newAirdropCmd(app *app) *cobra.Command {
	var sol float64

	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Request devnet SOL for the active wallet",
		Long:  "Requests SOL from the devnet faucet, waits for the transaction to confirm, and prints the refreshed balance. Mainnet endpoints reject this call.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sol <= 0 {
				return errors.New("--sol must be positive")
			}

			return app.withSession(cmd, func(ctx context.Context, g *gateways) error {
				var signature string
				op := func(ctx context.Context) (string, error) {
					var err error
					signature, err = g.sessions.RequestAirdrop(ctx, domain.LamportsFromSol(sol))
					return "airdrop confirmed", err
				}

				spinnerText := fmt.Sprintf("Requesting %s SOL from the faucet...", formatSolInput(sol))
				if err := runWithSpinner(ctx, cmd.ErrOrStderr(), g.ops, "airdrop", spinnerText, op); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "airdropped %s SOL\n", formatSolInput(sol))
				_, _ = fmt.Fprintf(out, "signature: %s\n", signature)
				_, _ = fmt.Fprintf(out, "balance: %s SOL\n", g.sessions.Session().NativeBalance.FormatSol())
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&sol, "sol", 1, "Amount of SOL to request")

	return cmd
}

func formatSolInput(sol float64) string {
	return strconv.FormatFloat(sol, 'f', -1, 64)
}
