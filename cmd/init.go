package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/rpc"
	"github.com/Mohsinsiddi/solsend/internal/ui"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure solsend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Banner())

		result, err := ui.RunWizard(wizardChoices())
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Fprintln(out, ui.Meta("Setup cancelled; nothing saved."))
			return nil
		}

		if result.Network != "" {
			if err := cfg.SetNetwork(result.Network); err != nil {
				return err
			}
		}
		if err := cfg.SetConnector(result.Connector); err != nil {
			return err
		}
		if result.RPCAlgorithm != "" {
			if err := cfg.SetAlgorithm(result.RPCAlgorithm); err != nil {
				return err
			}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		if result.WalletAddress != "" {
			mgr := newWalletManager()
			if err := mgr.Add(result.WalletName, &wallet.Wallet{
				Name:      result.WalletName,
				Address:   result.WalletAddress,
				Type:      wallet.TypeWatchOnly,
				IsDefault: true,
			}); err != nil {
				fmt.Fprintln(out, ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
			}
		}

		fmt.Fprintln(out, ui.Success("solsend configured! Run `solsend --help` to explore commands."))
		if cfg.Connector == wallet.ConnectorKeychain && cfg.DefaultWallet == "" {
			fmt.Fprintln(out, ui.Hint("Create a signing wallet: solsend wallet generate main && solsend wallet use main"))
		}
		return nil
	},
}

func wizardChoices() ui.WizardChoices {
	var opts ui.WizardChoices
	for _, c := range chain.NewRegistry().All() {
		opts.Networks = append(opts.Networks, string(c.Network))
	}
	opts.Connectors = []string{
		wallet.ConnectorKeychain,
		wallet.ConnectorKeyfile,
		wallet.ConnectorEnv,
		wallet.ConnectorBurner,
	}
	for _, a := range rpc.Algorithms() {
		opts.Algorithms = append(opts.Algorithms, string(a))
	}
	return opts
}
