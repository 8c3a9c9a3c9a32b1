package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create, mint, send, and inspect tokens",
	}

	cmd.AddCommand(
		newTokenCreateCmd(app),
		newTokenMintCmd(app),
		newTokenSendCmd(app),
		newTokenBalanceCmd(app),
	)

	return cmd
}

// adoptMint points the token gateway at an existing mint so mint, send, and
// balance work across process restarts. The holding account is derived from
// the mint, never created here.
func adoptMint(app *app, g *gateways, owner domain.Address, raw string) error {
	mint, err := domain.ParseAddress(raw)
	if err != nil {
		return err
	}

	holding, err := app.chain.HoldingAccount(owner, mint)
	if err != nil {
		return err
	}

	g.tokens.SetToken(domain.TokenHandle{Mint: mint, HoldingAccount: holding})
	return nil
}

func newTokenCreateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a token mint with the active wallet as authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd, func(ctx context.Context, g *gateways) error {
				var handle domain.TokenHandle
				op := func(ctx context.Context) (string, error) {
					var err error
					handle, err = g.tokens.CreateToken(ctx)
					return "token created", err
				}

				if err := runWithSpinner(ctx, cmd.ErrOrStderr(), g.ops, "create token", "Creating token...", op); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "mint: %s\n", handle.Mint)
				_, _ = fmt.Fprintf(out, "holding account: %s\n", handle.HoldingAccount)
				return nil
			})
		},
	}
}

func newTokenMintCmd(app *app) *cobra.Command {
	var amount uint64
	var mintAddr string

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens to the wallet's holding account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount == 0 {
				return errors.New("--amount must be positive")
			}

			return app.withSession(cmd, func(ctx context.Context, g *gateways) error {
				if mintAddr != "" {
					if err := adoptMint(app, g, g.sessions.Session().Account, mintAddr); err != nil {
						return err
					}
				}

				var signature string
				op := func(ctx context.Context) (string, error) {
					var err error
					signature, err = g.tokens.MintTokens(ctx, amount)
					return fmt.Sprintf("minted %d tokens", amount), err
				}

				spinnerText := fmt.Sprintf("Minting %d tokens...", amount)
				if err := runWithSpinner(ctx, cmd.ErrOrStderr(), g.ops, "mint tokens", spinnerText, op); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "minted %d tokens\n", amount)
				_, _ = fmt.Fprintf(out, "signature: %s\n", signature)
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", app.cfg.MintAmount, "Whole tokens to mint")
	cmd.Flags().StringVar(&mintAddr, "mint", "", "Existing mint address (default: the mint created this session)")

	return cmd
}

func newTokenSendCmd(app *app) *cobra.Command {
	var amount uint64
	var to string
	var mintAddr string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send tokens to another wallet",
		Long:  "Sends tokens from the active wallet's holding account. The destination's holding account is created on the fly when it does not exist yet.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount == 0 {
				return errors.New("--amount must be positive")
			}

			return app.withSession(cmd, func(ctx context.Context, g *gateways) error {
				if mintAddr != "" {
					if err := adoptMint(app, g, g.sessions.Session().Account, mintAddr); err != nil {
						return err
					}
				}

				var signature string
				op := func(ctx context.Context) (string, error) {
					var err error
					signature, err = g.tokens.SendTokens(ctx, to, amount)
					return fmt.Sprintf("sent %d tokens", amount), err
				}

				spinnerText := fmt.Sprintf("Sending %d tokens...", amount)
				if err := runWithSpinner(ctx, cmd.ErrOrStderr(), g.ops, "send tokens", spinnerText, op); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "sent %d tokens to %s\n", amount, to)
				_, _ = fmt.Fprintf(out, "signature: %s\n", signature)
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&amount, "amount", app.cfg.SendAmount, "Whole tokens to send")
	cmd.Flags().StringVar(&to, "to", "", "Destination wallet address")
	cmd.Flags().StringVar(&mintAddr, "mint", "", "Existing mint address (default: the mint created this session)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newTokenBalanceCmd(app *app) *cobra.Command {
	var mintAddr string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet's token balance for a mint",
		Long:  "Reads the balance of the active wallet's holding account for the given mint. The mint must be passed explicitly because in-memory token handles do not survive the process.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := app.opContext(cmd)
			defer cancel()

			g, err := app.openGateways(ctx)
			if err != nil {
				return err
			}
			defer g.close()

			if err := adoptMint(app, g, g.wallet.Address, mintAddr); err != nil {
				return err
			}

			amount, err := g.tokens.TokenBalance(ctx)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s tokens\n", amount.HumanReadable())
			return nil
		},
	}

	cmd.Flags().StringVar(&mintAddr, "mint", "", "Mint address to check")
	_ = cmd.MarkFlagRequired("mint")

	return cmd
}
