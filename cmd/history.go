package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	historyrender "github.com/bnema/solana-wallet-cli/internal/adapters/render/history"
	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent transactions for the active wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd, func(ctx context.Context, g *gateways) error {
				var records []domain.TransactionRecord
				account := g.sessions.Session().Account
				op := func(ctx context.Context) (string, error) {
					var err error
					records, err = g.sessions.FetchHistory(ctx, account)
					return "history fetched", err
				}

				if asJSON {
					if err := g.ops.Run(ctx, "fetch history", op); err != nil {
						return err
					}

					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}

				if err := runWithSpinner(ctx, cmd.ErrOrStderr(), g.ops, "fetch history", "Fetching recent transactions...", op); err != nil {
					return err
				}

				rendered, err := app.historyRenderer(records, historyrender.RenderOptions{
					Account: account,
					Now:     app.now(),
				})
				if err != nil {
					return fmt.Errorf("render history: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
