package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sw",
		Short:         "Solana Wallet CLI (sw): devnet wallet, token, and history operations",
		Long:          "sw (Solana Wallet CLI) manages local keypairs and drives devnet sessions from the terminal: check balances, request airdrops, create and move tokens, and browse recent transactions, one-shot or from an interactive dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newWalletCmd(app),
		newBalanceCmd(app),
		newAirdropCmd(app),
		newHistoryCmd(app),
		newTokenCmd(app),
		newDashboardCmd(app),
	)

	return rootCmd
}
