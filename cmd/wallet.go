package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/solana-wallet-cli/internal/adapters/wallet/keyfile"
	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newWalletCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage local wallet keypairs",
	}

	cmd.AddCommand(
		newWalletNewCmd(app),
		newWalletImportCmd(app),
		newWalletListCmd(app),
		newWalletUseCmd(app),
		newWalletRemoveCmd(app),
		newWalletAddressCmd(app),
	)

	return cmd
}

func newWalletNewCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a keypair and register it as a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, err := app.registry.GetByName(ctx, name); err == nil {
				return fmt.Errorf("wallet %q: %w", name, domain.ErrWalletExists)
			} else if !errors.Is(err, domain.ErrWalletNotFound) {
				return err
			}

			keyPath := filepath.Join(app.cfg.WalletDir, name+".json")
			address, err := keyfile.Generate(keyPath)
			if err != nil {
				return err
			}

			wallet := domain.Wallet{
				Name:      name,
				Address:   address,
				KeyPath:   keyPath,
				CreatedAt: app.now(),
			}
			if err := app.registry.Create(ctx, wallet); err != nil {
				_ = os.Remove(keyPath)
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "created wallet %q\n", name)
			_, _ = fmt.Fprintf(out, "address: %s\n", address)
			_, _ = fmt.Fprintf(out, "keyfile: %s\n", keyPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "main", "Wallet name")

	return cmd
}

func newWalletImportCmd(app *app) *cobra.Command {
	var name string
	var keyPathFlag string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Register an existing Solana CLI keyfile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keyPath, err := filepath.Abs(keyPathFlag)
			if err != nil {
				return fmt.Errorf("resolve keyfile path: %w", err)
			}

			key, err := keyfile.ReadKeypair(keyPath)
			if err != nil {
				return fmt.Errorf("read keyfile: %w", err)
			}
			address := keyfile.AddressOf(key)
			for i := range key {
				key[i] = 0
			}

			if name == "" {
				name = strings.TrimSuffix(filepath.Base(keyPath), filepath.Ext(keyPath))
			}

			wallet := domain.Wallet{
				Name:      name,
				Address:   address,
				KeyPath:   keyPath,
				CreatedAt: app.now(),
			}
			if err := app.registry.Create(cmd.Context(), wallet); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "imported wallet %q\n", name)
			_, _ = fmt.Fprintf(out, "address: %s\n", address)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Wallet name (default: keyfile basename)")
	cmd.Flags().StringVar(&keyPathFlag, "keyfile", "", "Path to a Solana CLI keyfile (JSON array of 64 bytes)")
	_ = cmd.MarkFlagRequired("keyfile")

	return cmd
}

func newWalletListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			wallets, err := app.registry.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(wallets) == 0 {
				_, _ = fmt.Fprintln(out, `no wallets; run "sw wallet new"`)
				return nil
			}

			activeName := ""
			if active, err := app.registry.Active(ctx); err == nil {
				activeName = active.Name
			}

			for _, wallet := range wallets {
				marker := " "
				if wallet.Name == activeName {
					marker = "*"
				}
				_, _ = fmt.Fprintf(out, "%s %s\t%s\n", marker, wallet.Name, wallet.Address)
			}

			return nil
		},
	}
}

func newWalletUseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the active wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := app.registry.SetActive(cmd.Context(), name); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "active wallet: %s\n", name)
			return nil
		},
	}
}

func newWalletRemoveCmd(app *app) *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a wallet from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			wallet, err := app.registry.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if err := app.registry.Remove(ctx, name); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "removed wallet %q\n", name)

			if !purge {
				_, _ = fmt.Fprintf(out, "keyfile kept at %s\n", wallet.KeyPath)
				return nil
			}

			if err := os.Remove(wallet.KeyPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("delete keyfile: %w", err)
			}
			_, _ = fmt.Fprintf(out, "deleted keyfile %s\n", wallet.KeyPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the keyfile from disk")

	return cmd
}

func newWalletAddressCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the active wallet's address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wallet, err := app.registry.Active(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrWalletNotFound) {
					return errNoActiveWallet
				}
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), wallet.Address)
			return nil
		},
	}
}
